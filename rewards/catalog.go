package rewards

import "github.com/warp/coinboard/ledger"

// DefaultIcon is used for catalog entries created without an icon.
const DefaultIcon = "🏆"

// DefaultCatalog is the achievement catalog seeded into an empty database.
func DefaultCatalog() []ledger.Achievement {
	user := func(name, desc, icon string, threshold int64, tier ledger.Tier) ledger.Achievement {
		return ledger.Achievement{Scope: ledger.ScopeUser, Name: name, Description: desc, Icon: icon, Threshold: threshold, Tier: tier}
	}
	team := func(name, desc, icon string, threshold int64, tier ledger.Tier) ledger.Achievement {
		return ledger.Achievement{Scope: ledger.ScopeTeam, Name: name, Description: desc, Icon: icon, Threshold: threshold, Tier: tier}
	}

	return []ledger.Achievement{
		user("First Llama", "Earned your first llama coin!", "🦙", 1, ledger.TierBronze),
		user("Coin Collector", "Earned 10 llama coins", "🪙", 10, ledger.TierBronze),
		user("Half Century", "Reached 50 llama coins", "⭐", 50, ledger.TierBronze),
		user("Century Club", "100 llama coins earned!", "💯", 100, ledger.TierSilver),
		user("Quarter Master", "Accumulated 250 llama coins", "🌟", 250, ledger.TierSilver),
		user("Llama Legend", "Reached 500 llama coins!", "🏆", 500, ledger.TierGold),
		user("Coin Titan", "1000 llama coins milestone", "👑", 1000, ledger.TierGold),
		user("Mega Llama", "2500 llama coins achieved!", "💎", 2500, ledger.TierPlatinum),
		user("Llama Emperor", "5000 llama coins mastery!", "🔥", 5000, ledger.TierPlatinum),

		team("Team Starter", "Team earned first 100 coins", "🎯", 100, ledger.TierBronze),
		team("Team Player", "Team reached 500 coins", "🤝", 500, ledger.TierSilver),
		team("Dream Team", "Team accumulated 1000 coins", "🏅", 1000, ledger.TierGold),
		team("Elite Squad", "Team achieved 2500 coins", "🌈", 2500, ledger.TierPlatinum),
		team("Unstoppable Force", "Team reached 5000 coins!", "🚀", 5000, ledger.TierPlatinum),
	}
}
