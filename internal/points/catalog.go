// Package points holds the static gamification catalog: activity definitions,
// reputation tiers, badge rules, and streak arithmetic. Everything here is pure
// configuration and side-effect-free functions; persistence lives in the
// repositories package.
package points

// ActivityType identifies a point-earning action a user can take.
type ActivityType string

// The closed set of recognized activity types.
const (
	// Hackathon activities (high value - competitive achievements)
	HackathonApplied      ActivityType = "HACKATHON_APPLIED"
	HackathonParticipated ActivityType = "HACKATHON_PARTICIPATED"
	HackathonWon          ActivityType = "HACKATHON_WON"

	// Internship activities (high value - professional growth)
	InternshipApplied   ActivityType = "INTERNSHIP_APPLIED"
	InternshipAccepted  ActivityType = "INTERNSHIP_ACCEPTED"
	InternshipCompleted ActivityType = "INTERNSHIP_COMPLETED"

	// Event activities (medium value - learning & networking)
	EventRegistered ActivityType = "EVENT_REGISTERED"
	EventAttended   ActivityType = "EVENT_ATTENDED"

	// Profile activities (medium value - completeness matters)
	ProfileCompleted ActivityType = "PROFILE_COMPLETED"
	ProfileUpdated   ActivityType = "PROFILE_UPDATED"
	SkillAdded       ActivityType = "SKILL_ADDED"
	SkillVerified    ActivityType = "SKILL_VERIFIED"
	AchievementAdded ActivityType = "ACHIEVEMENT_ADDED"

	// Social activities (low value - engagement)
	ProfileViewed  ActivityType = "PROFILE_VIEWED"
	ConnectionMade ActivityType = "CONNECTION_MADE"

	// Platform engagement (low-medium value - consistency)
	DailyLogin  ActivityType = "DAILY_LOGIN"
	LoginStreak ActivityType = "LOGIN_STREAK"
	BadgeEarned ActivityType = "BADGE_EARNED"

	// Project activities (high value - tangible output)
	ProjectSubmitted   ActivityType = "PROJECT_SUBMITTED"
	ProjectVerified    ActivityType = "PROJECT_VERIFIED"
	CertificationAdded ActivityType = "CERTIFICATION_ADDED"
)

// Category is a points-breakdown bucket on the user summary.
type Category string

// Breakdown categories. The set is fixed; every activity type maps to exactly one.
const (
	CategoryHackathons  Category = "hackathons"
	CategoryInternships Category = "internships"
	CategoryEvents      Category = "events"
	CategoryProfile     Category = "profile"
	CategorySocial      Category = "social"
	CategoryEngagement  Category = "engagement"
	CategoryProjects    Category = "projects"
)

// StatCounter names an activity-statistics counter on the user summary.
type StatCounter string

// Stat counters incremented by specific activity types.
const (
	StatHackathonsParticipated StatCounter = "hackathons_participated"
	StatHackathonsWon          StatCounter = "hackathons_won"
	StatInternshipsCompleted   StatCounter = "internships_completed"
	StatEventsAttended         StatCounter = "events_attended"
	StatProjectsSubmitted      StatCounter = "projects_submitted"
)

// Definition carries everything the aggregator needs to know about an
// activity type: its point value, its breakdown category, the stat counter it
// bumps (if any), and whether it is a one-shot action subject to the
// duplicate-suppression window.
type Definition struct {
	Type     ActivityType
	Points   int
	Category Category
	Stat     StatCounter // empty when the type drives no counter
	OneShot  bool        // second report for the same related entity within the window awards nothing
}

// catalog is the single source of truth for activity semantics. An activity
// type absent from this table is invalid and must be rejected before any write.
var catalog = map[ActivityType]Definition{
	HackathonApplied:      {Type: HackathonApplied, Points: 10, Category: CategoryHackathons, OneShot: true},
	HackathonParticipated: {Type: HackathonParticipated, Points: 50, Category: CategoryHackathons, Stat: StatHackathonsParticipated, OneShot: true},
	HackathonWon:          {Type: HackathonWon, Points: 200, Category: CategoryHackathons, Stat: StatHackathonsWon, OneShot: true},

	InternshipApplied:   {Type: InternshipApplied, Points: 15, Category: CategoryInternships, OneShot: true},
	InternshipAccepted:  {Type: InternshipAccepted, Points: 100, Category: CategoryInternships, OneShot: true},
	InternshipCompleted: {Type: InternshipCompleted, Points: 250, Category: CategoryInternships, Stat: StatInternshipsCompleted, OneShot: true},

	EventRegistered: {Type: EventRegistered, Points: 5, Category: CategoryEvents, OneShot: true},
	EventAttended:   {Type: EventAttended, Points: 30, Category: CategoryEvents, Stat: StatEventsAttended, OneShot: true},

	ProfileCompleted: {Type: ProfileCompleted, Points: 100, Category: CategoryProfile},
	ProfileUpdated:   {Type: ProfileUpdated, Points: 10, Category: CategoryProfile},
	SkillAdded:       {Type: SkillAdded, Points: 5, Category: CategoryProfile},
	SkillVerified:    {Type: SkillVerified, Points: 25, Category: CategoryProfile},
	AchievementAdded: {Type: AchievementAdded, Points: 20, Category: CategoryProfile},

	ProfileViewed:  {Type: ProfileViewed, Points: 1, Category: CategorySocial},
	ConnectionMade: {Type: ConnectionMade, Points: 8, Category: CategorySocial},

	DailyLogin:  {Type: DailyLogin, Points: 5, Category: CategoryEngagement},
	LoginStreak: {Type: LoginStreak, Points: 10, Category: CategoryEngagement},
	BadgeEarned: {Type: BadgeEarned, Points: 50, Category: CategoryEngagement},

	ProjectSubmitted:   {Type: ProjectSubmitted, Points: 40, Category: CategoryProjects, Stat: StatProjectsSubmitted, OneShot: true},
	ProjectVerified:    {Type: ProjectVerified, Points: 100, Category: CategoryProjects, OneShot: true},
	CertificationAdded: {Type: CertificationAdded, Points: 30, Category: CategoryProfile},
}

// Lookup resolves an activity type against the catalog. The second return is
// false for unrecognized types.
func Lookup(t ActivityType) (Definition, bool) {
	def, ok := catalog[t]
	return def, ok
}

// IsValid reports whether t is a recognized activity type.
func IsValid(t ActivityType) bool {
	_, ok := catalog[t]
	return ok
}

// Categories returns the fixed set of breakdown categories.
func Categories() []Category {
	return []Category{
		CategoryHackathons,
		CategoryInternships,
		CategoryEvents,
		CategoryProfile,
		CategorySocial,
		CategoryEngagement,
		CategoryProjects,
	}
}

// IsCategory reports whether s names a breakdown category.
func IsCategory(s string) bool {
	for _, c := range Categories() {
		if string(c) == s {
			return true
		}
	}
	return false
}
