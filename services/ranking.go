// services/ranking.go
package services

import (
	"sort"

	"artistry-nu-platform/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// RankSubmissions orders scored submissions and assigns competition ranks.
// Pure function: callers persist the assigned ranks themselves.
//
// Ordering: score descending, then date of birth ascending (compared only
// when both sides carry one), then locale-aware applicant name ascending.
// Rank sharing is decided by score equality alone, so entries that tie on
// score but differ on the secondary keys still share a rank, and the next
// distinct score takes its 1-based sort position (ranks can jump: 1,1,3).
//
// Every input must carry a non-nil Score — unscored entries are filtered at
// the query level before this is called.
func RankSubmissions(submissions []models.Submission) []models.Submission {
	if len(submissions) == 0 {
		return []models.Submission{}
	}

	ranked := make([]models.Submission, len(submissions))
	copy(ranked, submissions)

	col := collate.New(language.English)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]

		if *a.Score != *b.Score {
			return *a.Score > *b.Score
		}

		// Earlier birth date ranks higher, but only when both are present.
		if a.DateOfBirth != nil && b.DateOfBirth != nil && !a.DateOfBirth.Equal(*b.DateOfBirth) {
			return a.DateOfBirth.Before(*b.DateOfBirth)
		}

		// Empty name compares as the empty string (lowest).
		return col.CompareString(a.ApplicantName, b.ApplicantName) < 0
	})

	for i := range ranked {
		if i == 0 {
			ranked[i].Rank = 1
			continue
		}
		if *ranked[i].Score == *ranked[i-1].Score {
			ranked[i].Rank = ranked[i-1].Rank
		} else {
			ranked[i].Rank = i + 1
		}
	}

	return ranked
}
