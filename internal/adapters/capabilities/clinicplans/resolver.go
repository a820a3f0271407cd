package clinicplans

import (
	"context"
	"errors"
	"os"
	"strings"

	"pet-discharge-portal/internal/ports/capabilities"
)

// Resolver implementa capabilities.CapabilitiesResolver contra el servicio
// de planes comerciales. Con ALLOW_ALL_FEATURES=true (env) todo da true,
// para desarrollo local sin upstream.
type Resolver struct {
	client   *Client
	allowAll bool
}

var _ capabilities.CapabilitiesResolver = (*Resolver)(nil)

func NewResolver(client *Client) *Resolver {
	allowAll := strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_ALL_FEATURES")), "true")
	return &Resolver{
		client:   client,
		allowAll: allowAll,
	}
}

func (r *Resolver) HasFeature(ctx context.Context, in capabilities.CapabilityCheck) (bool, error) {
	feature := strings.TrimSpace(in.Feature)
	if feature == "" {
		return false, errors.New("feature required")
	}

	if r != nil && r.allowAll {
		return true, nil
	}

	if r == nil || r.client == nil || !r.client.IsConfigured() {
		// Preferimos fallar explícito en vez de "permitir" sin control.
		return false, ErrPlansNotConfigured
	}

	resp, err := r.client.GetFeatures(ctx, in.ClinicID)
	if err != nil {
		return false, err
	}

	return resp.Features[feature], nil
}
