package points

// Tier is a named reputation band over total points. MaxScore < 0 marks an
// unbounded top band.
type Tier struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Description string `json:"description"`
	MinScore    int    `json:"minScore"`
	MaxScore    int    `json:"maxScore"`
}

// Tiers is the ordered list of reputation bands, lowest first. Bands are
// contiguous and non-overlapping, covering [0, +inf).
var Tiers = []Tier{
	{Name: "Newcomer", MinScore: 0, MaxScore: 99, Color: "#6b7280", Icon: "🌱", Description: "Just getting started"},
	{Name: "Explorer", MinScore: 100, MaxScore: 249, Color: "#059669", Icon: "🔍", Description: "Actively exploring opportunities"},
	{Name: "Contributor", MinScore: 250, MaxScore: 499, Color: "#0284c7", Icon: "💡", Description: "Making meaningful contributions"},
	{Name: "Achiever", MinScore: 500, MaxScore: 999, Color: "#7c3aed", Icon: "🏆", Description: "Consistent high performer"},
	{Name: "Expert", MinScore: 1000, MaxScore: 1999, Color: "#dc2626", Icon: "⭐", Description: "Platform expert & mentor"},
	{Name: "Legend", MinScore: 2000, MaxScore: -1, Color: "#ea580c", Icon: "👑", Description: "Community legend"},
}

// Contains reports whether totalPoints falls inside the tier's band.
func (t Tier) Contains(totalPoints int) bool {
	if totalPoints < t.MinScore {
		return false
	}
	return t.MaxScore < 0 || totalPoints <= t.MaxScore
}

// TierFor resolves the reputation tier for a point total, scanning from the
// highest band down. Coverage is contiguous, so the lowest-tier fallback is
// unreachable in practice.
func TierFor(totalPoints int) Tier {
	for i := len(Tiers) - 1; i >= 0; i-- {
		if Tiers[i].Contains(totalPoints) {
			return Tiers[i]
		}
	}
	return Tiers[0]
}

// LowestTier returns the default tier for a brand-new summary.
func LowestTier() Tier {
	return Tiers[0]
}
