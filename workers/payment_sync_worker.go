package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"artistry-nu-platform/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentSyncClient polls the payment service for order changes.
// Order creation and signature verification live in the payment service;
// this side only mirrors settled state and reconciles submissions.
type PaymentSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewPaymentSyncClient(db *gorm.DB) *PaymentSyncClient {
	baseURL := os.Getenv("PAYMENT_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("PAYMENT_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("COMPETITION_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("COMPETITION_SERVICE_TOKEN environment variable is required for payment sync")
	}

	return &PaymentSyncClient{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *PaymentSyncClient) GetChangedOrders(ctx context.Context, since time.Time) ([]models.PaymentMirror, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/orders", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call payment service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("payment service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Orders []models.PaymentMirror `json:"orders"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode payment service response: %w", err)
	}
	return response.Orders, nil
}

// PollPayments mirrors changed payment orders and flips the matching
// submissions from unpaid to paid once their order settles.
func PollPayments(ctx context.Context, client *PaymentSyncClient, pollInterval time.Duration) {
	log.Println("Starting payment polling (DB-backed)...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Payment polling stopped.")
			return
		case <-ticker.C:
			batchStart := time.Now().UTC()

			orders, err := client.GetChangedOrders(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling payment orders: %v", err)
				continue
			}
			if len(orders) == 0 {
				continue
			}

			if err := client.DB.Clauses(
				clause.OnConflict{
					Columns: []clause.Column{{Name: "order_id"}},
					DoUpdates: clause.AssignmentColumns([]string{
						"user_id",
						"submission_id",
						"amount",
						"currency",
						"status",
						"settled_at",
						"created_at",
						"updated_at",
					}),
				},
			).Create(&orders).Error; err != nil {
				log.Printf("❌ Failed to upsert %d payment order(s): %v", len(orders), err)
				// Do NOT advance lastSyncTime on failure — retry same window next tick
				continue
			}

			reconciled := 0
			for _, order := range orders {
				if order.Status != "settled" || order.SubmissionID == "" {
					continue
				}
				result := client.DB.Model(&models.Submission{}).
					Where("id = ? AND payment_status = ?", order.SubmissionID, models.PaymentStatusUnpaid).
					Updates(map[string]interface{}{
						"payment_id":     order.OrderID,
						"payment_amount": order.Amount,
						"payment_status": models.PaymentStatusPaid,
						"payment_at":     order.SettledAt,
					})
				if result.Error != nil {
					log.Printf("❌ Failed to reconcile submission %s for order %s: %v", order.SubmissionID, order.OrderID, result.Error)
					continue
				}
				reconciled += int(result.RowsAffected)
			}

			lastSyncTime = batchStart
			log.Printf("✅ Upserted %d payment order(s), reconciled %d submission(s).", len(orders), reconciled)
		}
	}
}
