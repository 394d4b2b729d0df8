// services/renderer.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"artistry-nu-platform/utils"
)

// CertificateData is everything the render service needs to lay out one
// certificate document. Layout and PDF generation live in the render
// service; from here it is an opaque bytes-in-bytes-out capability.
type CertificateData struct {
	RecipientName     string `json:"recipient_name"`
	Score             string `json:"score"`
	Rank              string `json:"rank"`
	TournamentTitle   string `json:"tournament_title"`
	CertificateNumber string `json:"certificate_number"`
	IssueDate         string `json:"issue_date"`
}

// CertificateRenderer renders one certificate document to raw bytes.
type CertificateRenderer interface {
	Render(ctx context.Context, data CertificateData) ([]byte, error)
}

// RenderServiceClient calls the external certificate render service.
type RenderServiceClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewRenderServiceClient() *RenderServiceClient {
	baseURL := os.Getenv("RENDER_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("RENDER_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("COMPETITION_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("COMPETITION_SERVICE_TOKEN environment variable is required for render service")
	}
	return &RenderServiceClient{
		BaseURL: baseURL,
		Token:   token,
		Client:  utils.HTTPClient,
	}
}

// Render calls /render/certificate and returns the document bytes (PDF).
func (c *RenderServiceClient) Render(ctx context.Context, data CertificateData) ([]byte, error) {
	url := fmt.Sprintf("%s/render/certificate", c.BaseURL)

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode render payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render service unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read render response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("RenderService /render/certificate returned %d: %.200s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("render failed: %d", resp.StatusCode)
	}

	if len(body) == 0 {
		return nil, fmt.Errorf("render service returned empty document")
	}
	return body, nil
}
