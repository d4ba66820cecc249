package ledger

import "sort"

// Eligible returns the catalog achievements an entity with the given total
// has crossed but not yet unlocked, lowest threshold first.
func Eligible(catalog []Achievement, unlocked []Unlock, total int64) []Achievement {
	held := unlockedSet(unlocked)

	var out []Achievement
	for _, a := range catalog {
		if a.Threshold <= total && !held[a.ID] {
			out = append(out, a)
		}
	}
	sortByThreshold(out)
	return out
}

// Locked returns the catalog achievements the entity has not unlocked,
// lowest threshold first. This can include achievements whose threshold is
// already met but which have not been evaluated yet.
func Locked(catalog []Achievement, unlocked []Unlock) []Achievement {
	held := unlockedSet(unlocked)

	out := []Achievement{}
	for _, a := range catalog {
		if !held[a.ID] {
			out = append(out, a)
		}
	}
	sortByThreshold(out)
	return out
}

// NextLocked returns the first locked achievement whose threshold is above
// total, or nil when none remain.
func NextLocked(catalog []Achievement, unlocked []Unlock, total int64) *Achievement {
	for _, a := range Locked(catalog, unlocked) {
		if a.Threshold > total {
			next := a
			return &next
		}
	}
	return nil
}

func unlockedSet(unlocked []Unlock) map[AchievementID]bool {
	held := make(map[AchievementID]bool, len(unlocked))
	for _, u := range unlocked {
		held[u.AchievementID] = true
	}
	return held
}

func sortByThreshold(as []Achievement) {
	sort.SliceStable(as, func(i, j int) bool {
		if as[i].Threshold != as[j].Threshold {
			return as[i].Threshold < as[j].Threshold
		}
		return as[i].ID < as[j].ID
	})
}
