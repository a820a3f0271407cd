package clinicplans

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pet-discharge-portal/internal/platform/httpclient"
)

var (
	ErrPlansNotConfigured = errors.New("clinic-plans client not configured")
	ErrPlansUnauthorized  = errors.New("clinic-plans unauthorized")
	ErrPlansUpstream      = errors.New("clinic-plans upstream error")
)

type Config struct {
	BaseURL string
	APIKey  string

	APIKeyHeader string
	Timeout      time.Duration
}

type Client struct {
	apiKey       string
	apiKeyHeader string
	http         *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		http:         hc,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// FeaturesResponse es el mapa de features habilitadas por el plan de la clínica.
// Ejemplo: {"reports:export": true, "patients:analytics": true}
type FeaturesResponse struct {
	Features map[string]bool `json:"features"`
}

// GetFeatures trae las features habilitadas para una clínica.
func (c *Client) GetFeatures(ctx context.Context, clinicID string) (FeaturesResponse, error) {
	if !c.IsConfigured() {
		return FeaturesResponse{}, ErrPlansNotConfigured
	}
	clinicID = strings.TrimSpace(clinicID)
	if clinicID == "" {
		return FeaturesResponse{}, errors.New("clinicID required")
	}

	path := "/v1/features?clinic_id=" + url.QueryEscape(clinicID)

	var out FeaturesResponse
	err := c.http.DoJSON(ctx, http.MethodGet, path,
		map[string]string{c.apiKeyHeader: c.apiKey},
		nil,
		&out,
	)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			switch httpErr.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return FeaturesResponse{}, ErrPlansUnauthorized
			}
			return FeaturesResponse{}, fmt.Errorf("%w: status=%d", ErrPlansUpstream, httpErr.StatusCode)
		}
		return FeaturesResponse{}, fmt.Errorf("%w: %v", ErrPlansUpstream, err)
	}

	if out.Features == nil {
		out.Features = map[string]bool{}
	}
	return out, nil
}
