// workers/applicant_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"artistry-nu-platform/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplicantFromProfile matches the JSON response from the profile service.
type ApplicantFromProfile struct {
	ID          string     `json:"id"`
	ExternalID  string     `json:"external_id"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Country     *string    `json:"country,omitempty"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// GetApplicantChangesResponse is the top-level structure of the profile
// service response.
type GetApplicantChangesResponse struct {
	Profiles []ApplicantFromProfile `json:"profiles"`
}

type ApplicantSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8500"
	endpointPath string // e.g., "/api/v1/public/profiles"
	serviceToken string
	httpClient   *http.Client
}

func NewApplicantSyncWorker(db *gorm.DB, profileServiceBaseURL, endpointPath, serviceToken string) *ApplicantSyncWorker {
	return &ApplicantSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      profileServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *ApplicantSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Applicant Sync Worker (profile-service → applicant_mirrors)…")
	go w.run(ctx)
}

func (w *ApplicantSyncWorker) run(ctx context.Context) {
	// Initial sync (backfill if needed) — sync from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial applicant sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	lastSync := time.Now().UTC()
	for {
		select {
		case <-ctx.Done():
			log.Println("Applicant sync worker stopped.")
			return
		case <-ticker.C:
			batchStart := time.Now().UTC()
			if err := w.syncBatch(ctx, lastSync); err != nil {
				log.Printf("⚠️ Applicant sync failed: %v", err)
				continue // retry same window next tick
			}
			lastSync = batchStart
		}
	}
}

func (w *ApplicantSyncWorker) fetchChanges(ctx context.Context, since time.Time) ([]ApplicantFromProfile, error) {
	u, err := url.Parse(fmt.Sprintf("%s%s", w.baseURL, w.endpointPath))
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile service URL: %w", err)
	}
	q := u.Query()
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call profile service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("profile service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response GetApplicantChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode profile service response: %w", err)
	}
	return response.Profiles, nil
}

func (w *ApplicantSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	profiles, err := w.fetchChanges(ctx, since)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		return nil
	}

	mirrors := make([]models.ApplicantMirror, 0, len(profiles))
	for _, p := range profiles {
		if p.ExternalID == "" {
			continue
		}
		mirrors = append(mirrors, models.ApplicantMirror{
			ExternalUserID: p.ExternalID,
			FullName:       p.FullName,
			Email:          p.Email,
			DateOfBirth:    p.DateOfBirth,
			Country:        p.Country,
			AvatarURL:      p.AvatarURL,
		})
	}
	if len(mirrors) == 0 {
		return nil
	}

	// Bulk upsert keyed on the external user id (one statement on Postgres)
	if err := w.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "external_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"full_name",
				"email",
				"date_of_birth",
				"country",
				"avatar_url",
				"updated_at",
			}),
		},
	).Create(&mirrors).Error; err != nil {
		return fmt.Errorf("failed to upsert %d applicant(s): %w", len(mirrors), err)
	}

	log.Printf("✅ Synced %d applicant profile(s) into applicant_mirrors.", len(mirrors))
	return nil
}
