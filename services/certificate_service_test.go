package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"artistry-nu-platform/models"
)

type mockRenderer struct {
	mu       sync.Mutex
	rendered []CertificateData
	failFor  map[string]bool // keyed by recipient name
}

func (m *mockRenderer) Render(ctx context.Context, data CertificateData) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[data.RecipientName] {
		return nil, errors.New("render service boom")
	}
	m.rendered = append(m.rendered, data)
	return []byte("%PDF-1.7 " + data.CertificateNumber), nil
}

type mockArtifactStore struct {
	mu      sync.Mutex
	keys    []string
	failAll bool
}

func (m *mockArtifactStore) Put(ctx context.Context, data []byte, key, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return "", errors.New("storage unreachable")
	}
	m.keys = append(m.keys, key)
	return "https://cdn.test/" + key, nil
}

func (m *mockArtifactStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.keys {
		if k == key {
			return true, nil
		}
	}
	return false, nil
}

type mockIssuanceStore struct {
	tournament  *models.Tournament
	submissions []models.Submission

	fetchErr     error
	failCommits  int // fail the first N CommitIssuance calls
	commits      [][]IssuancePair
	markedAt     *time.Time
}

func (m *mockIssuanceStore) Tournament(ctx context.Context, id string) (*models.Tournament, error) {
	if m.tournament == nil || m.tournament.ID != id {
		return nil, ErrTournamentNotFound
	}
	return m.tournament, nil
}

func (m *mockIssuanceStore) ScoredSubmissions(ctx context.Context, tournamentID string) ([]models.Submission, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make([]models.Submission, len(m.submissions))
	copy(out, m.submissions)
	return out, nil
}

func (m *mockIssuanceStore) CommitIssuance(ctx context.Context, pairs []IssuancePair) error {
	if m.failCommits > 0 {
		m.failCommits--
		return errors.New("transaction aborted")
	}
	m.commits = append(m.commits, pairs)
	for _, pair := range pairs {
		for i := range m.submissions {
			if m.submissions[i].ID == pair.Submission.ID {
				m.submissions[i].CertificateGenerated = true
				m.submissions[i].CertificateURL = pair.Submission.CertificateURL
				m.submissions[i].CertificateGeneratedAt = pair.Submission.CertificateGeneratedAt
			}
		}
	}
	return nil
}

func (m *mockIssuanceStore) MarkCertificatesGenerated(ctx context.Context, tournamentID string, at time.Time) error {
	m.markedAt = &at
	return nil
}

func (m *mockIssuanceStore) committedCount() int {
	n := 0
	for _, chunk := range m.commits {
		n += len(chunk)
	}
	return n
}

func newTestCertificateService(store *mockIssuanceStore, renderer *mockRenderer, artifacts *mockArtifactStore) *CertificateService {
	return &CertificateService{
		Store:           store,
		Renderer:        renderer,
		Artifacts:       artifacts,
		MintConcurrency: 2,
		MintTimeout:     5 * time.Second,
		CommitChunkSize: defaultCommitChunkSize,
	}
}

func rankedTournament(id string) *models.Tournament {
	at := time.Now()
	return &models.Tournament{
		ID:              id,
		Title:           "Spring Salon",
		RankGenerated:   true,
		RankGeneratedAt: &at,
	}
}

func rankedSub(id, name string, score float64, rank int) models.Submission {
	return models.Submission{
		ID:            id,
		TournamentID:  "t-1",
		UserID:        "u-" + id,
		ApplicantName: name,
		Score:         scorePtr(score),
		Rank:          rank,
	}
}

func TestBuildCertificateNumber(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 4, 5, 0, time.UTC)
	got := BuildCertificateNumber(now, "abcdef-ghijkl", 7)
	want := "ANU260829-GHIJKL0007"
	if got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
}

func TestBuildCertificateNumberShortTournamentID(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	got := BuildCertificateNumber(now, "abc", 1)
	if got != "ANU260102-ABC0001" {
		t.Fatalf("unexpected number: %s", got)
	}
}

func TestCertificateObjectKey(t *testing.T) {
	key := CertificateObjectKey("t-1", "s-9")
	if key != "certificates/t-1/s-9.pdf" {
		t.Fatalf("unexpected key: %s", key)
	}
}

func TestIssueCertificatesIdempotent(t *testing.T) {
	store := &mockIssuanceStore{
		tournament: rankedTournament("t-1"),
		submissions: []models.Submission{
			rankedSub("s-1", "Alice", 9.5, 1),
			rankedSub("s-2", "Bob", 9.5, 1),
			rankedSub("s-3", "Carol", 8.0, 3),
		},
	}
	svc := newTestCertificateService(store, &mockRenderer{}, &mockArtifactStore{})

	first, err := svc.IssueCertificates(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if !first.Success || first.GeneratedCount != 3 || first.ExistingCount != 0 || first.FailedCount != 0 {
		t.Fatalf("first run: want 3/0/0, got %d/%d/%d", first.GeneratedCount, first.ExistingCount, first.FailedCount)
	}
	if store.committedCount() != 3 {
		t.Fatalf("want 3 committed pairs, got %d", store.committedCount())
	}
	if store.markedAt == nil {
		t.Fatal("tournament was not marked certificates_generated")
	}

	second, err := svc.IssueCertificates(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.GeneratedCount != 0 || second.ExistingCount != 3 || second.FailedCount != 0 {
		t.Fatalf("second run: want 0/3/0, got %d/%d/%d", second.GeneratedCount, second.ExistingCount, second.FailedCount)
	}
	if store.committedCount() != 3 {
		t.Fatalf("re-run minted duplicates: %d committed pairs", store.committedCount())
	}
}

func TestIssueCertificatesPartialFailureIsolated(t *testing.T) {
	store := &mockIssuanceStore{
		tournament: rankedTournament("t-1"),
		submissions: []models.Submission{
			rankedSub("s-1", "Alice", 9.0, 1),
			rankedSub("s-2", "Bob", 8.0, 2),
			rankedSub("s-3", "Carol", 7.0, 3),
		},
	}
	renderer := &mockRenderer{failFor: map[string]bool{"Bob": true}}
	svc := newTestCertificateService(store, renderer, &mockArtifactStore{})

	result, err := svc.IssueCertificates(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("batch must not abort on a per-item failure: %v", err)
	}
	if result.GeneratedCount != 2 || result.FailedCount != 1 {
		t.Fatalf("want 2 created / 1 failed, got %d/%d", result.GeneratedCount, result.FailedCount)
	}
	for _, pair := range store.commits[0] {
		if pair.Submission.ID == "s-2" {
			t.Fatal("failed submission must not be committed")
		}
	}
	var failedOutcome *MintOutcome
	for i := range result.Results {
		if result.Results[i].Status == "failed" {
			failedOutcome = &result.Results[i]
		}
	}
	if failedOutcome == nil || failedOutcome.SubmissionID != "s-2" {
		t.Fatalf("expected failed outcome for s-2, got %+v", failedOutcome)
	}
	if !strings.Contains(failedOutcome.Message, "render failed") {
		t.Fatalf("failure message should name the render step: %q", failedOutcome.Message)
	}
}

func TestIssueCertificatesUploadFailure(t *testing.T) {
	store := &mockIssuanceStore{
		tournament:  rankedTournament("t-1"),
		submissions: []models.Submission{rankedSub("s-1", "Alice", 9.0, 1)},
	}
	svc := newTestCertificateService(store, &mockRenderer{}, &mockArtifactStore{failAll: true})

	result, err := svc.IssueCertificates(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if result.FailedCount != 1 || result.GeneratedCount != 0 {
		t.Fatalf("want 0 created / 1 failed, got %d/%d", result.GeneratedCount, result.FailedCount)
	}
	if store.committedCount() != 0 {
		t.Fatal("nothing may be committed when the artifact upload fails")
	}
	if store.markedAt != nil {
		t.Fatal("tournament must not be marked after a fully failed run")
	}
}

func TestIssueCertificatesCommitChunkFailure(t *testing.T) {
	store := &mockIssuanceStore{
		tournament: rankedTournament("t-1"),
		submissions: []models.Submission{
			rankedSub("s-1", "Alice", 9.0, 1),
			rankedSub("s-2", "Bob", 8.0, 2),
		},
		failCommits: 1,
	}
	svc := newTestCertificateService(store, &mockRenderer{}, &mockArtifactStore{})
	svc.CommitChunkSize = 1
	svc.MintConcurrency = 1 // keep chunk ordering deterministic for the assert

	result, err := svc.IssueCertificates(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("chunk failure must not be fatal: %v", err)
	}
	if result.GeneratedCount != 1 || result.FailedCount != 1 {
		t.Fatalf("want 1 created / 1 failed, got %d/%d", result.GeneratedCount, result.FailedCount)
	}
	if store.committedCount() != 1 {
		t.Fatalf("want exactly the surviving chunk committed, got %d pairs", store.committedCount())
	}
}

func TestIssueCertificatesRequiresRanks(t *testing.T) {
	tournament := rankedTournament("t-1")
	tournament.RankGenerated = false
	store := &mockIssuanceStore{
		tournament:  tournament,
		submissions: []models.Submission{rankedSub("s-1", "Alice", 9.0, 0)},
	}
	svc := newTestCertificateService(store, &mockRenderer{}, &mockArtifactStore{})

	result, err := svc.IssueCertificates(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("guard violation is an input error, not fatal: %v", err)
	}
	if result.Success {
		t.Fatal("issuance must refuse to run before ranks are generated")
	}
	if store.committedCount() != 0 {
		t.Fatal("no writes may happen on a guard refusal")
	}
}

func TestIssueCertificatesNoScoredSubmissions(t *testing.T) {
	store := &mockIssuanceStore{tournament: rankedTournament("t-1")}
	svc := newTestCertificateService(store, &mockRenderer{}, &mockArtifactStore{})

	result, err := svc.IssueCertificates(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("empty pool is an input error, not fatal: %v", err)
	}
	if result.Success {
		t.Fatal("want success=false for a tournament without scored submissions")
	}
}

func TestIssueCertificatesFetchFailureIsFatal(t *testing.T) {
	store := &mockIssuanceStore{
		tournament: rankedTournament("t-1"),
		fetchErr:   fmt.Errorf("connection refused"),
	}
	svc := newTestCertificateService(store, &mockRenderer{}, &mockArtifactStore{})

	if _, err := svc.IssueCertificates(context.Background(), "t-1"); err == nil {
		t.Fatal("failure to fetch the submission set must surface as a fatal error")
	}
}

func TestIssueCertificatesTournamentNotFound(t *testing.T) {
	svc := newTestCertificateService(&mockIssuanceStore{}, &mockRenderer{}, &mockArtifactStore{})
	_, err := svc.IssueCertificates(context.Background(), "nope")
	if !errors.Is(err, ErrTournamentNotFound) {
		t.Fatalf("want ErrTournamentNotFound, got %v", err)
	}
}

func TestMintOneRendersFallbacks(t *testing.T) {
	renderer := &mockRenderer{}
	svc := newTestCertificateService(&mockIssuanceStore{}, renderer, &mockArtifactStore{})

	sub := models.Submission{ID: "s-1", TournamentID: "t-1"} // no name, score, or rank
	tournament := &models.Tournament{ID: "t-1"}              // no title

	cert, outcome := svc.mintOne(context.Background(), sub, tournament)
	if outcome.Status != "created" {
		t.Fatalf("mint failed: %s", outcome.Message)
	}
	data := renderer.rendered[0]
	if data.RecipientName != "Participant" {
		t.Fatalf("want recipient fallback Participant, got %q", data.RecipientName)
	}
	if data.Score != "0.00" {
		t.Fatalf("want score fallback 0.00, got %q", data.Score)
	}
	if data.Rank != "0" {
		t.Fatalf("want rank fallback 0, got %q", data.Rank)
	}
	if data.TournamentTitle != "Tournament" {
		t.Fatalf("want title fallback Tournament, got %q", data.TournamentTitle)
	}
	if cert.FilePath != "certificates/t-1/s-1.pdf" {
		t.Fatalf("unexpected artifact path: %s", cert.FilePath)
	}
}
