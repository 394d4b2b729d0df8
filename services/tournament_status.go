// services/tournament_status.go
package services

import (
	"time"

	"artistry-nu-platform/models"
)

// ProjectTournamentPhase derives a tournament's lifecycle phase from its
// three schedule timestamps. Pure function, consumed on every read path.
//
// Branch order matters: the bounds of open and submission_period are
// inclusive on both written sides, so evaluating coming_soon → open →
// submission_period → closed in that order resolves the boundary instants
// unambiguously (now == registration_end is open, one tick later is
// submission_period).
//
// A tournament with any missing timestamp has no well-defined phase and
// projects to invalid rather than defaulting through a nil comparison.
func ProjectTournamentPhase(now time.Time, regStart, regEnd, deadline *time.Time) string {
	if regStart == nil || regEnd == nil || deadline == nil {
		return models.TournamentPhaseInvalid
	}
	if now.Before(*regStart) {
		return models.TournamentPhaseComingSoon
	}
	if !now.After(*regEnd) {
		return models.TournamentPhaseOpen
	}
	if !now.After(*deadline) {
		return models.TournamentPhaseSubmissionPeriod
	}
	return models.TournamentPhaseClosed
}

// ApplyPhase stamps the projected phase onto a tournament record in place.
func ApplyPhase(t *models.Tournament, now time.Time) {
	t.Phase = ProjectTournamentPhase(now, t.RegistrationStart, t.RegistrationEnd, t.SubmissionDeadline)
}
