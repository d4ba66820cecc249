package api

import (
	"github.com/warp/coinboard/ledger"
	"github.com/warp/coinboard/rewards"
	"github.com/warp/coinboard/store/sqlite"
)

// =============================================================================
// DOMAIN -> DTO
// =============================================================================

func toTeamDTO(t ledger.Team) TeamDTO {
	return TeamDTO{
		ID:          int64(t.ID),
		Name:        t.Name,
		Description: t.Description,
		Color:       t.Color,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toUserDTO(u ledger.User) UserDTO {
	return UserDTO{
		ID:        int64(u.ID),
		Name:      u.Name,
		Email:     u.Email,
		TeamID:    int64(u.TeamID),
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserRecordDTO(r sqlite.UserRecord) UserDTO {
	dto := toUserDTO(r.User)
	dto.TeamName = r.TeamName
	dto.TeamColor = r.TeamColor
	return dto
}

func toTransactionDTO(e ledger.Entry) TransactionDTO {
	dto := TransactionDTO{
		ID:        int64(e.ID),
		TeamID:    int64(e.TeamID),
		Amount:    e.Amount,
		Reason:    e.Reason,
		AwardedBy: e.AwardedBy,
		CreatedAt: e.CreatedAt,
	}
	if e.UserID != nil {
		uid := int64(*e.UserID)
		dto.UserID = &uid
	}
	return dto
}

func toTransactionDTOs(entries []ledger.Entry) []TransactionDTO {
	out := make([]TransactionDTO, len(entries))
	for i, e := range entries {
		out[i] = toTransactionDTO(e)
	}
	return out
}

func toAchievementDTO(a ledger.Achievement) AchievementDTO {
	return AchievementDTO{
		ID:          int64(a.ID),
		Type:        string(a.Scope),
		Name:        a.Name,
		Description: a.Description,
		Icon:        a.Icon,
		Threshold:   a.Threshold,
		Tier:        string(a.Tier),
	}
}

func toAchievementDTOs(as []ledger.Achievement) []AchievementDTO {
	out := make([]AchievementDTO, len(as))
	for i, a := range as {
		out[i] = toAchievementDTO(a)
	}
	return out
}

func toAwardResponse(r *rewards.AwardResult, scope ledger.Scope) AwardResponse {
	resp := AwardResponse{
		Transaction: toTransactionDTO(r.Entry),
		NewAchievements: NewAchievementsDTO{
			Team: toAchievementDTOs(r.TeamAchievements),
		},
	}
	if scope == ledger.ScopeUser {
		resp.NewAchievements.User = toAchievementDTOs(r.UserAchievements)
	}
	return resp
}

func toPageDTO(p ledger.Page) PageDTO {
	return PageDTO{
		Total:  p.Total,
		Page:   p.Page,
		Pages:  p.Pages,
		Limit:  p.Limit,
		Offset: p.Offset,
	}
}

func toUserLeaderboard(p ledger.Page) UserLeaderboardResponse {
	resp := UserLeaderboardResponse{
		Users:   make([]UserStandingDTO, len(p.Entries)),
		PageDTO: toPageDTO(p),
	}
	for i, e := range p.Entries {
		resp.Users[i] = UserStandingDTO{
			Rank:             e.Rank,
			ID:               e.ID,
			Name:             e.Name,
			Email:            e.Email,
			TeamID:           int64(e.TeamID),
			TeamName:         e.TeamName,
			TeamColor:        e.TeamColor,
			TotalCoins:       e.TotalCoins,
			AchievementCount: e.AchievementCount,
			LastActivity:     e.LastActivity,
		}
	}
	return resp
}

func toTeamLeaderboard(p ledger.Page) TeamLeaderboardResponse {
	resp := TeamLeaderboardResponse{
		Teams:   make([]TeamStandingDTO, len(p.Entries)),
		PageDTO: toPageDTO(p),
	}
	for i, e := range p.Entries {
		resp.Teams[i] = TeamStandingDTO{
			Rank:             e.Rank,
			ID:               e.ID,
			Name:             e.Name,
			Description:      e.Description,
			Color:            e.Color,
			MemberCount:      e.MemberCount,
			TotalCoins:       e.TotalCoins,
			AverageCoins:     rewards.AverageCoins(e.TotalCoins, e.MemberCount),
			AchievementCount: e.AchievementCount,
			LastActivity:     e.LastActivity,
		}
	}
	return resp
}

func toHistoryResponse(h *rewards.History) HistoryResponse {
	resp := HistoryResponse{
		Period: h.Period.String(),
		Data:   make([]HistoryPointDTO, len(h.Points)),
	}
	id := h.Entity.ID
	if h.Entity.Scope == ledger.ScopeUser {
		resp.UserID = &id
	} else {
		resp.TeamID = &id
	}
	for i, p := range h.Points {
		resp.Data[i] = HistoryPointDTO{
			Date:            p.Date.Format("2006-01-02"),
			DailyCoins:      p.DailyCoins,
			CumulativeCoins: p.CumulativeCoins,
		}
	}
	return resp
}

func toProgressResponse(p *rewards.Progress) EntityAchievementsResponse {
	resp := EntityAchievementsResponse{
		Unlocked: make([]AchievementDTO, len(p.Unlocked)),
		Locked:   toAchievementDTOs(p.Locked),
	}
	for i, u := range p.Unlocked {
		dto := toAchievementDTO(u.Achievement)
		at := u.UnlockedAt
		dto.UnlockedAt = &at
		resp.Unlocked[i] = dto
	}
	if p.Next != nil {
		resp.Progress = &ProgressDTO{
			NextAchievement: toAchievementDTO(p.Next.Achievement),
			CurrentCoins:    p.Next.CurrentCoins,
			NeededCoins:     p.Next.NeededCoins,
		}
	}
	return resp
}
