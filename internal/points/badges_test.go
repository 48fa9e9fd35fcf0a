package points

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateBadgesUnlocks(t *testing.T) {
	stats := BadgeStats{CurrentStreak: 7}
	unlocked := EvaluateBadges(stats, nil)

	require.Len(t, unlocked, 1)
	assert.Equal(t, "Week Warrior", unlocked[0].Name)
	assert.Equal(t, 50, unlocked[0].Points)
}

func TestEvaluateBadgesNeverReemits(t *testing.T) {
	stats := BadgeStats{CurrentStreak: 10}

	// Predicate still holds, but the badge is already earned.
	unlocked := EvaluateBadges(stats, []string{"Week Warrior"})
	assert.Empty(t, unlocked)
}

func TestEvaluateBadgesMultipleInCatalogOrder(t *testing.T) {
	stats := BadgeStats{
		CurrentStreak:          30,
		HackathonsParticipated: 5,
	}
	unlocked := EvaluateBadges(stats, nil)

	require.Len(t, unlocked, 3)
	assert.Equal(t, "Week Warrior", unlocked[0].Name)
	assert.Equal(t, "Month Master", unlocked[1].Name)
	assert.Equal(t, "Hackathon Hunter", unlocked[2].Name)
}

func TestEvaluateBadgesThresholds(t *testing.T) {
	tests := []struct {
		name  string
		stats BadgeStats
		want  string
	}{
		{"hackathon champion", BadgeStats{HackathonsWon: 3}, "Hackathon Champion"},
		{"intern pro", BadgeStats{InternshipsCompleted: 2}, "Intern Pro"},
		{"event enthusiast", BadgeStats{EventsAttended: 10}, "Event Enthusiast"},
		{"profile perfectionist", BadgeStats{ProfileCompletion: 100}, "Profile Perfectionist"},
		{"project builder", BadgeStats{ProjectsSubmitted: 5}, "Project Builder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unlocked := EvaluateBadges(tt.stats, nil)
			require.Len(t, unlocked, 1)
			assert.Equal(t, tt.want, unlocked[0].Name)
		})
	}
}

func TestEvaluateBadgesBelowThreshold(t *testing.T) {
	stats := BadgeStats{
		CurrentStreak:          6,
		HackathonsParticipated: 4,
		HackathonsWon:          2,
		InternshipsCompleted:   1,
		EventsAttended:         9,
		ProjectsSubmitted:      4,
		ProfileCompletion:      99,
	}
	assert.Empty(t, EvaluateBadges(stats, nil))
}
