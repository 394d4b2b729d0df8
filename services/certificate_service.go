// services/certificate_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"artistry-nu-platform/models"
	"artistry-nu-platform/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const certificateNumberPrefix = "ANU"

// Defaults for the issuance batch. Minting is independent per submission,
// so we fan out with a bound to avoid overwhelming the render service, and
// commit staged writes in chunks to stay under the store's batch limits.
const (
	defaultMintConcurrency = 4
	defaultMintTimeout     = 45 * time.Second
	defaultCommitChunkSize = 100
)

// ErrTournamentNotFound distinguishes input errors from infrastructure errors.
var ErrTournamentNotFound = errors.New("tournament not found")

// ArtifactStore persists rendered certificate bytes at a key and returns a
// durable retrieval URL. Re-putting the same key must overwrite in place.
type ArtifactStore interface {
	Put(ctx context.Context, data []byte, key, contentType string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// IssuanceStore is the persistence surface the coordinator drives.
// CommitIssuance must apply each call atomically: every certificate row and
// its submission update land together, or none of them do.
type IssuanceStore interface {
	Tournament(ctx context.Context, id string) (*models.Tournament, error)
	ScoredSubmissions(ctx context.Context, tournamentID string) ([]models.Submission, error)
	CommitIssuance(ctx context.Context, pairs []IssuancePair) error
	MarkCertificatesGenerated(ctx context.Context, tournamentID string, at time.Time) error
}

// IssuancePair stages one certificate creation together with the submission
// fields that record it.
type IssuancePair struct {
	Certificate models.Certificate
	Submission  models.Submission // carries the new certificate fields
}

// MintOutcome is the per-submission result surfaced to the admin UI.
type MintOutcome struct {
	SubmissionID      string `json:"submission_id"`
	Status            string `json:"status"` // created | exists | failed
	CertificateNumber string `json:"certificate_number,omitempty"`
	FileURL           string `json:"file_url,omitempty"`
	Message           string `json:"message,omitempty"`
}

// BatchResult aggregates one issuance run.
type BatchResult struct {
	Success        bool          `json:"success"`
	GeneratedCount int           `json:"generated_count"`
	ExistingCount  int           `json:"existing_count"`
	FailedCount    int           `json:"failed_count"`
	Results        []MintOutcome `json:"results"`
	Message        string        `json:"message"`
}

type CertificateService struct {
	DB        *gorm.DB
	Store     IssuanceStore
	Renderer  CertificateRenderer
	Artifacts ArtifactStore

	MintConcurrency int
	MintTimeout     time.Duration
	CommitChunkSize int
}

func NewCertificateService(db *gorm.DB, renderer CertificateRenderer) *CertificateService {
	return &CertificateService{
		DB:              db,
		Store:           &gormIssuanceStore{db: db},
		Renderer:        renderer,
		Artifacts:       r2ArtifactStore{},
		MintConcurrency: defaultMintConcurrency,
		MintTimeout:     defaultMintTimeout,
		CommitChunkSize: defaultCommitChunkSize,
	}
}

// BuildCertificateNumber builds the human-readable certificate label:
// prefix, YYMMDD of the generation day, last 6 chars of the tournament id
// (uppercased), and the rank zero-padded to 4 digits. Unique per
// (tournament, rank) per day only — never treat it as a primary key.
func BuildCertificateNumber(now time.Time, tournamentID string, rank int) string {
	return fmt.Sprintf("%s%s-%s%s",
		certificateNumberPrefix,
		now.Format("060102"),
		utils.ShortID(tournamentID, 6),
		utils.PadNumber(rank, 4),
	)
}

// CertificateObjectKey is the content address of a submission's certificate.
// Keyed by tournament and submission id so a retry overwrites rather than
// duplicates.
func CertificateObjectKey(tournamentID, submissionID string) string {
	return fmt.Sprintf("certificates/%s/%s.pdf", tournamentID, submissionID)
}

// mintOne renders, stores, and assembles one certificate. Write-then-link:
// the artifact is fully uploaded before the returned row references it, so
// a committed record never points at a partial file. Any failure is folded
// into a `failed` outcome for this submission alone.
func (s *CertificateService) mintOne(ctx context.Context, sub models.Submission, tournament *models.Tournament) (models.Certificate, MintOutcome) {
	mintCtx, cancel := context.WithTimeout(ctx, s.MintTimeout)
	defer cancel()

	now := time.Now()
	number := BuildCertificateNumber(now, tournament.ID, sub.Rank)

	recipient := sub.ApplicantName
	if recipient == "" {
		recipient = "Participant"
	}
	title := tournament.Title
	if title == "" {
		title = "Tournament"
	}

	docBytes, err := s.Renderer.Render(mintCtx, CertificateData{
		RecipientName:     recipient,
		Score:             utils.FormatScore(sub.Score),
		Rank:              utils.FormatRank(sub.Rank),
		TournamentTitle:   title,
		CertificateNumber: number,
		IssueDate:         now.Format("2006-01-02"),
	})
	if err != nil {
		return models.Certificate{}, MintOutcome{
			SubmissionID: sub.ID,
			Status:       "failed",
			Message:      fmt.Sprintf("render failed: %v", err),
		}
	}

	key := CertificateObjectKey(tournament.ID, sub.ID)
	fileURL, err := s.Artifacts.Put(mintCtx, docBytes, key, "application/pdf")
	if err != nil {
		return models.Certificate{}, MintOutcome{
			SubmissionID: sub.ID,
			Status:       "failed",
			Message:      fmt.Sprintf("artifact upload failed: %v", err),
		}
	}

	score := 0.0
	if sub.Score != nil {
		score = *sub.Score
	}
	cert := models.Certificate{
		ID:                uuid.NewString(),
		SubmissionID:      sub.ID,
		TournamentID:      tournament.ID,
		UserID:            sub.UserID,
		CertificateNumber: number,
		FilePath:          key,
		FileURL:           fileURL,
		IssueDate:         now,
		RecipientName:     recipient,
		Score:             score,
		Rank:              sub.Rank,
		Status:            models.CertificateStatusActive,
	}
	return cert, MintOutcome{
		SubmissionID:      sub.ID,
		Status:            "created",
		CertificateNumber: number,
		FileURL:           fileURL,
	}
}

// IssueCertificates drives the minter across every scored submission of a
// tournament. Per-submission failures are isolated and reported; a failure
// to fetch the submission set is fatal and returned as an error.
func (s *CertificateService) IssueCertificates(ctx context.Context, tournamentID string) (*BatchResult, error) {
	tournament, err := s.Store.Tournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !tournament.RankGenerated {
		return &BatchResult{
			Success: false,
			Results: []MintOutcome{},
			Message: "ranks have not been generated for this tournament yet",
		}, nil
	}

	submissions, err := s.Store.ScoredSubmissions(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}
	if len(submissions) == 0 {
		return &BatchResult{
			Success: false,
			Results: []MintOutcome{},
			Message: "no scored submissions for this tournament",
		}, nil
	}

	results := make([]MintOutcome, 0, len(submissions))
	var toMint []models.Submission
	for _, sub := range submissions {
		// Idempotency guard: the flag is written in the same transaction as
		// the certificate row, so trusting it is safe across re-runs.
		if sub.CertificateGenerated {
			results = append(results, MintOutcome{
				SubmissionID: sub.ID,
				Status:       "exists",
				FileURL:      sub.CertificateURL,
				Message:      "certificate already issued",
			})
			continue
		}
		toMint = append(toMint, sub)
	}

	var mu sync.Mutex
	var staged []IssuancePair
	var failed []MintOutcome

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.MintConcurrency)
	generatedAt := time.Now()

	for _, sub := range toMint {
		sub := sub
		g.Go(func() error {
			cert, outcome := s.mintOne(gctx, sub, tournament)
			mu.Lock()
			defer mu.Unlock()
			if outcome.Status != "created" {
				log.Printf("⚠️ [ISSUANCE] mint failed for submission %s: %s", sub.ID, outcome.Message)
				failed = append(failed, outcome)
				return nil // per-item failures never abort the batch
			}
			at := generatedAt
			sub.CertificateURL = cert.FileURL
			sub.CertificateGenerated = true
			sub.CertificateGeneratedAt = &at
			staged = append(staged, IssuancePair{Certificate: cert, Submission: sub})
			return nil
		})
	}
	_ = g.Wait() // workers only return nil; errors are folded into outcomes

	// Commit staged pairs in chunks. Each chunk is one atomic multi-record
	// write; a chunk that fails to commit fails only its own submissions.
	var created []MintOutcome
	for start := 0; start < len(staged); start += s.CommitChunkSize {
		end := start + s.CommitChunkSize
		if end > len(staged) {
			end = len(staged)
		}
		chunk := staged[start:end]
		if err := s.Store.CommitIssuance(ctx, chunk); err != nil {
			log.Printf("❌ [ISSUANCE] commit failed for %d submission(s) in tournament %s: %v", len(chunk), tournamentID, err)
			for _, pair := range chunk {
				failed = append(failed, MintOutcome{
					SubmissionID: pair.Submission.ID,
					Status:       "failed",
					Message:      fmt.Sprintf("commit failed: %v", err),
				})
			}
			continue
		}
		for _, pair := range chunk {
			created = append(created, MintOutcome{
				SubmissionID:      pair.Submission.ID,
				Status:            "created",
				CertificateNumber: pair.Certificate.CertificateNumber,
				FileURL:           pair.Certificate.FileURL,
			})
		}
	}

	results = append(results, created...)
	results = append(results, failed...)

	result := &BatchResult{
		Success:        true,
		GeneratedCount: len(created),
		ExistingCount:  len(results) - len(created) - len(failed),
		FailedCount:    len(failed),
		Results:        results,
		Message: fmt.Sprintf("certificates: %d generated, %d already existed, %d failed",
			len(created), len(results)-len(created)-len(failed), len(failed)),
	}

	if result.GeneratedCount > 0 {
		if err := s.Store.MarkCertificatesGenerated(ctx, tournamentID, generatedAt); err != nil {
			// The certificates themselves are committed; the tournament flag
			// is advisory and the next run will re-derive state per submission.
			log.Printf("⚠️ [ISSUANCE] failed to mark tournament %s certificates_generated: %v", tournamentID, err)
		}
	}
	return result, nil
}

// GenerateCertificatesForTournament is the admin endpoint driving the batch.
func (s *CertificateService) GenerateCertificatesForTournament(c *fiber.Ctx) error {
	tournamentID := c.Params("id")
	if tournamentID == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "tournament id required in URL"})
	}

	result, err := s.IssueCertificates(c.Context(), tournamentID)
	if err != nil {
		if errors.Is(err, ErrTournamentNotFound) {
			return c.Status(404).JSON(fiber.Map{"success": false, "message": "tournament not found"})
		}
		log.Printf("❌ [ISSUANCE] fatal error for tournament %s: %v", tournamentID, err)
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "certificate issuance failed"})
	}
	if !result.Success {
		return c.Status(400).JSON(result)
	}
	return c.JSON(result)
}

// GetTournamentCertificates lists issued certificates for a tournament.
func (s *CertificateService) GetTournamentCertificates(c *fiber.Ctx) error {
	tournamentID := c.Params("id")
	var certs []models.Certificate
	if err := s.DB.Where("tournament_id = ?", tournamentID).
		Order("rank ASC").
		Find(&certs).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch certificates"})
	}
	return c.JSON(certs)
}

// GetSubmissionCertificate returns the certificate for one submission.
func (s *CertificateService) GetSubmissionCertificate(c *fiber.Ctx) error {
	submissionID := c.Params("id")
	var cert models.Certificate
	if err := s.DB.Where("submission_id = ?", submissionID).First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "certificate not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(cert)
}

// VerifyCertificateArtifact checks that a certificate's stored document is
// still present in the artifact store (admin audit action). The record can
// outlive its file if the bucket is pruned out of band.
func (s *CertificateService) VerifyCertificateArtifact(c *fiber.Ctx) error {
	id := c.Params("id")
	var cert models.Certificate
	if err := s.DB.First(&cert, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "certificate not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	exists, err := s.Artifacts.Exists(c.Context(), cert.FilePath)
	if err != nil {
		log.Printf("⚠️ [ISSUANCE] artifact check failed for certificate %s: %v", id, err)
		return c.Status(502).JSON(fiber.Map{"error": "artifact store unreachable"})
	}
	return c.JSON(fiber.Map{
		"certificate_id":     cert.ID,
		"certificate_number": cert.CertificateNumber,
		"file_path":          cert.FilePath,
		"artifact_present":   exists,
	})
}

// RevokeCertificate marks a certificate revoked (admin action). The stored
// artifact and the submission linkage are left intact for audit.
func (s *CertificateService) RevokeCertificate(c *fiber.Ctx) error {
	id := c.Params("id")
	type Req struct {
		Reason string `json:"reason"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	var cert models.Certificate
	if err := s.DB.First(&cert, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "certificate not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if cert.Status == models.CertificateStatusRevoked {
		return c.Status(400).JSON(fiber.Map{"error": "certificate already revoked"})
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":         models.CertificateStatusRevoked,
		"revoked_at":     &now,
		"revoked_reason": req.Reason,
	}
	if err := s.DB.Model(&cert).Updates(updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "revoke failed"})
	}
	return c.JSON(fiber.Map{"message": "certificate revoked", "certificate": cert})
}

// --- gorm-backed stores ---

type r2ArtifactStore struct{}

func (r2ArtifactStore) Put(ctx context.Context, data []byte, key, contentType string) (string, error) {
	if !utils.R2Enabled() {
		// Same fallback as artwork uploads: local uploads dir served at /uploads
		if err := utils.SaveBytes(data, utils.GetUploadPath(key)); err != nil {
			return "", err
		}
		return "/uploads/" + key, nil
	}
	return utils.UploadBytesToR2(ctx, data, key, contentType)
}

func (r2ArtifactStore) Exists(ctx context.Context, key string) (bool, error) {
	if !utils.R2Enabled() {
		_, err := os.Stat(utils.GetUploadPath(key))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	}
	return utils.ObjectExistsInR2(ctx, key)
}

type gormIssuanceStore struct {
	db *gorm.DB
}

func (g *gormIssuanceStore) Tournament(ctx context.Context, id string) (*models.Tournament, error) {
	var tournament models.Tournament
	if err := g.db.WithContext(ctx).First(&tournament, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return &tournament, nil
}

func (g *gormIssuanceStore) ScoredSubmissions(ctx context.Context, tournamentID string) ([]models.Submission, error) {
	var subs []models.Submission
	err := g.db.WithContext(ctx).
		Where("tournament_id = ? AND score IS NOT NULL", tournamentID).
		Order("score DESC").
		Find(&subs).Error
	return subs, err
}

// CommitIssuance writes each certificate row and its submission update in a
// single transaction: all pairs in the call land together or none do.
func (g *gormIssuanceStore) CommitIssuance(ctx context.Context, pairs []IssuancePair) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, pair := range pairs {
			if err := tx.Create(&pair.Certificate).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Submission{}).
				Where("id = ?", pair.Submission.ID).
				Updates(map[string]interface{}{
					"certificate_url":          pair.Submission.CertificateURL,
					"certificate_generated":    true,
					"certificate_generated_at": pair.Submission.CertificateGeneratedAt,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (g *gormIssuanceStore) MarkCertificatesGenerated(ctx context.Context, tournamentID string, at time.Time) error {
	return g.db.WithContext(ctx).Model(&models.Tournament{}).
		Where("id = ?", tournamentID).
		Updates(map[string]interface{}{
			"certificates_generated":    true,
			"certificates_generated_at": at,
		}).Error
}
