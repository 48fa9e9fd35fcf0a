package points

// BadgeStats is the snapshot of counters a badge predicate may inspect. All
// fields are monotonically non-decreasing, so an earned badge can never be
// un-earned by a later evaluation.
type BadgeStats struct {
	CurrentStreak          int
	HackathonsParticipated int
	HackathonsWon          int
	InternshipsCompleted   int
	EventsAttended         int
	ProjectsSubmitted      int
	ProfileCompletion      int
}

// BadgeDef is a catalog entry for an unlockable achievement.
type BadgeDef struct {
	Name        string
	Icon        string
	Description string
	Points      int
	Unlocked    func(BadgeStats) bool
}

// BadgeCatalog lists every badge in evaluation order; newly unlocked badges are
// appended to a summary in this order.
var BadgeCatalog = []BadgeDef{
	{
		Name:        "Week Warrior",
		Icon:        "🔥",
		Description: "7-day login streak",
		Points:      50,
		Unlocked:    func(s BadgeStats) bool { return s.CurrentStreak >= 7 },
	},
	{
		Name:        "Month Master",
		Icon:        "⚡",
		Description: "30-day login streak",
		Points:      200,
		Unlocked:    func(s BadgeStats) bool { return s.CurrentStreak >= 30 },
	},
	{
		Name:        "Hackathon Hunter",
		Icon:        "🎯",
		Description: "Participated in 5 hackathons",
		Points:      100,
		Unlocked:    func(s BadgeStats) bool { return s.HackathonsParticipated >= 5 },
	},
	{
		Name:        "Hackathon Champion",
		Icon:        "🏆",
		Description: "Won 3 hackathons",
		Points:      300,
		Unlocked:    func(s BadgeStats) bool { return s.HackathonsWon >= 3 },
	},
	{
		Name:        "Intern Pro",
		Icon:        "💼",
		Description: "Completed 2 internships",
		Points:      200,
		Unlocked:    func(s BadgeStats) bool { return s.InternshipsCompleted >= 2 },
	},
	{
		Name:        "Event Enthusiast",
		Icon:        "🎪",
		Description: "Attended 10 events",
		Points:      100,
		Unlocked:    func(s BadgeStats) bool { return s.EventsAttended >= 10 },
	},
	{
		Name:        "Profile Perfectionist",
		Icon:        "✨",
		Description: "100% profile completion",
		Points:      100,
		Unlocked:    func(s BadgeStats) bool { return s.ProfileCompletion >= 100 },
	},
	{
		Name:        "Project Builder",
		Icon:        "🛠️",
		Description: "Submitted 5 projects",
		Points:      150,
		Unlocked:    func(s BadgeStats) bool { return s.ProjectsSubmitted >= 5 },
	},
}

// EvaluateBadges returns the badges newly unlocked by the given stats, skipping
// names already earned. Multiple badges may unlock in one evaluation; they come
// back in catalog order.
func EvaluateBadges(stats BadgeStats, earnedNames []string) []BadgeDef {
	earned := make(map[string]struct{}, len(earnedNames))
	for _, name := range earnedNames {
		earned[name] = struct{}{}
	}

	var unlocked []BadgeDef
	for _, badge := range BadgeCatalog {
		if _, already := earned[badge.Name]; already {
			continue
		}
		if badge.Unlocked(stats) {
			unlocked = append(unlocked, badge)
		}
	}
	return unlocked
}
