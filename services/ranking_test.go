package services

import (
	"reflect"
	"testing"
	"time"

	"artistry-nu-platform/models"
)

func scorePtr(v float64) *float64 { return &v }

func dob(year, month, day int) *time.Time {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

func sub(id string, score float64, birth *time.Time, name string) models.Submission {
	return models.Submission{
		ID:            id,
		Score:         scorePtr(score),
		DateOfBirth:   birth,
		ApplicantName: name,
	}
}

func ranksOf(ranked []models.Submission) map[string]int {
	out := make(map[string]int, len(ranked))
	for _, s := range ranked {
		out[s.ID] = s.Rank
	}
	return out
}

func TestRankSubmissionsEmptyInput(t *testing.T) {
	got := RankSubmissions(nil)
	if len(got) != 0 {
		t.Fatalf("expected empty output, got %d entries", len(got))
	}
}

func TestRankSubmissionsScoreDescending(t *testing.T) {
	ranked := RankSubmissions([]models.Submission{
		sub("low", 3.5, nil, "Ann"),
		sub("high", 9.0, nil, "Bea"),
		sub("mid", 7.25, nil, "Cleo"),
	})
	wantOrder := []string{"high", "mid", "low"}
	for i, id := range wantOrder {
		if ranked[i].ID != id {
			t.Fatalf("position %d: want %s, got %s", i, id, ranked[i].ID)
		}
		if ranked[i].Rank != i+1 {
			t.Fatalf("%s: want rank %d, got %d", id, i+1, ranked[i].Rank)
		}
	}
}

// Equal scores share a rank even when the secondary sort keys differ, and
// the next distinct score takes its 1-based position — ranks jump (1,1,3).
func TestRankDenseByScoreNotPosition(t *testing.T) {
	ranked := RankSubmissions([]models.Submission{
		sub("A", 9.5, dob(2000, 1, 1), "Alice"),
		sub("B", 9.5, dob(1999, 1, 1), "Bob"),
		sub("C", 8.0, nil, "Carol"),
	})

	// Earlier birth date sorts B before A, but both keep rank 1.
	if ranked[0].ID != "B" || ranked[1].ID != "A" || ranked[2].ID != "C" {
		t.Fatalf("unexpected order: %s, %s, %s", ranked[0].ID, ranked[1].ID, ranked[2].ID)
	}

	got := ranksOf(ranked)
	want := map[string]int{"A": 1, "B": 1, "C": 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranks: want %v, got %v", want, got)
	}
}

func TestRankSubmissionsTieDensity(t *testing.T) {
	ranked := RankSubmissions([]models.Submission{
		sub("a", 9.0, nil, "A"),
		sub("b", 9.0, nil, "B"),
		sub("c", 9.0, nil, "C"),
		sub("d", 7.0, nil, "D"),
		sub("e", 7.0, nil, "E"),
		sub("f", 5.0, nil, "F"),
	})
	got := ranksOf(ranked)
	want := map[string]int{"a": 1, "b": 1, "c": 1, "d": 4, "e": 4, "f": 6}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranks: want %v, got %v", want, got)
	}
}

func TestRankSubmissionsBirthDateOnlyComparedWhenBothPresent(t *testing.T) {
	// "Zed" has the earlier name-agnostic dob but the tie-break must fall
	// through to name comparison because "Ann" has no dob at all.
	ranked := RankSubmissions([]models.Submission{
		sub("zed", 8.0, dob(1990, 6, 15), "Zed"),
		sub("ann", 8.0, nil, "Ann"),
	})
	if ranked[0].ID != "ann" {
		t.Fatalf("expected name tie-break (Ann first), got %s first", ranked[0].ID)
	}
	if ranked[0].Rank != 1 || ranked[1].Rank != 1 {
		t.Fatalf("equal scores must share rank 1, got %d and %d", ranked[0].Rank, ranked[1].Rank)
	}
}

func TestRankSubmissionsEmptyNameSortsFirst(t *testing.T) {
	ranked := RankSubmissions([]models.Submission{
		sub("named", 6.0, nil, "Maria"),
		sub("anon", 6.0, nil, ""),
	})
	if ranked[0].ID != "anon" {
		t.Fatalf("empty name must sort as lowest string, got %s first", ranked[0].ID)
	}
}

func TestRankSubmissionsDeterministic(t *testing.T) {
	input := []models.Submission{
		sub("1", 9.5, dob(2001, 3, 2), "Nina"),
		sub("2", 9.5, dob(2001, 3, 2), "Nina"),
		sub("3", 8.75, nil, "Otto"),
		sub("4", 8.75, dob(1998, 12, 31), "Pia"),
		sub("5", 10.0, nil, ""),
	}
	first := RankSubmissions(input)
	second := RankSubmissions(input)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("ranking is not deterministic:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestRankSubmissionsDoesNotMutateInput(t *testing.T) {
	input := []models.Submission{
		sub("x", 4.0, nil, "X"),
		sub("y", 6.0, nil, "Y"),
	}
	RankSubmissions(input)
	if input[0].ID != "x" || input[0].Rank != 0 {
		t.Fatalf("input slice was mutated: %+v", input[0])
	}
}
