package services

import (
	"testing"
	"time"

	"artistry-nu-platform/models"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestProjectTournamentPhase(t *testing.T) {
	regStart := ts("2026-01-01T00:00:00Z")
	regEnd := ts("2026-02-01T00:00:00Z")
	deadline := ts("2026-03-01T00:00:00Z")

	cases := []struct {
		name string
		now  time.Time
		want string
	}{
		{"before registration", regStart.Add(-time.Hour), models.TournamentPhaseComingSoon},
		{"registration opens", *regStart, models.TournamentPhaseOpen},
		{"mid registration", regStart.Add(24 * time.Hour), models.TournamentPhaseOpen},
		{"registration end is inclusive", *regEnd, models.TournamentPhaseOpen},
		{"one tick past registration end", regEnd.Add(time.Millisecond), models.TournamentPhaseSubmissionPeriod},
		{"deadline is inclusive", *deadline, models.TournamentPhaseSubmissionPeriod},
		{"past deadline", deadline.Add(time.Millisecond), models.TournamentPhaseClosed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ProjectTournamentPhase(tc.now, regStart, regEnd, deadline)
			if got != tc.want {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestProjectTournamentPhaseMissingTimestamps(t *testing.T) {
	now := time.Now()
	full := ts("2026-01-01T00:00:00Z")

	cases := []struct {
		name                      string
		regStart, regEnd, deadline *time.Time
	}{
		{"all missing", nil, nil, nil},
		{"missing registration start", nil, full, full},
		{"missing registration end", full, nil, full},
		{"missing deadline", full, full, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ProjectTournamentPhase(now, tc.regStart, tc.regEnd, tc.deadline)
			if got != models.TournamentPhaseInvalid {
				t.Fatalf("want invalid, got %s", got)
			}
		})
	}
}

func TestApplyPhase(t *testing.T) {
	tournament := models.Tournament{
		RegistrationStart:  ts("2026-01-01T00:00:00Z"),
		RegistrationEnd:    ts("2026-02-01T00:00:00Z"),
		SubmissionDeadline: ts("2026-03-01T00:00:00Z"),
	}
	ApplyPhase(&tournament, *ts("2026-02-15T00:00:00Z"))
	if tournament.Phase != models.TournamentPhaseSubmissionPeriod {
		t.Fatalf("want submission_period, got %s", tournament.Phase)
	}
}
