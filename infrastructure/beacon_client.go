package infrastructure

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"drawhouse/domain/interfaces"
)

// BeaconClient talks to an external randomness beacon over HTTP. The
// beacon advances a slot counter and resolves requested values a few
// slots after they are seeded, which gives the commit/reveal flow its
// freshness guarantees.
type BeaconClient struct {
	baseURL string
	client  *http.Client
}

// NewBeaconClient creates a client for the given beacon base URL
func NewBeaconClient(baseURL string) *BeaconClient {
	return &BeaconClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type tipResponse struct {
	Slot int64 `json:"slot"`
}

type requestResponse struct {
	Reference string `json:"reference"`
	SeedSlot  int64  `json:"seed_slot"`
	Resolved  bool   `json:"resolved"`
	Value     string `json:"value,omitempty"` // hex-encoded once resolved
}

// CurrentSlot returns the beacon's current slot
func (c *BeaconClient) CurrentSlot(ctx context.Context) (int64, error) {
	var tip tipResponse
	if err := c.get(ctx, "/v1/chain/tip", &tip); err != nil {
		return 0, fmt.Errorf("failed to fetch beacon tip: %w", err)
	}
	return tip.Slot, nil
}

// RequestRandomness seeds a new randomness request at the beacon's
// current slot and returns a source handle for it.
func (c *BeaconClient) RequestRandomness(ctx context.Context) (interfaces.RandomnessSource, error) {
	ref := uuid.New().String()

	body := fmt.Sprintf(`{"reference":%q}`, ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/requests", strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build beacon request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to seed randomness request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("beacon returned status %d seeding request", resp.StatusCode)
	}

	var created requestResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode beacon response: %w", err)
	}

	log.WithFields(log.Fields{
		"reference": created.Reference,
		"seedSlot":  created.SeedSlot,
	}).Info("Seeded randomness request at beacon")

	return &beaconRequest{client: c, ref: created.Reference}, nil
}

// Lookup returns a source handle for an existing randomness request,
// used when a reveal resumes after a restart.
func (c *BeaconClient) Lookup(ref string) interfaces.RandomnessSource {
	return &beaconRequest{client: c, ref: ref}
}

func (c *BeaconClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("beacon returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// beaconRequest is one randomness request tracked by the beacon
type beaconRequest struct {
	client *BeaconClient
	ref    string
}

func (r *beaconRequest) Reference() string {
	return r.ref
}

func (r *beaconRequest) fetch(ctx context.Context) (*requestResponse, error) {
	var state requestResponse
	if err := r.client.get(ctx, "/v1/requests/"+r.ref, &state); err != nil {
		return nil, fmt.Errorf("failed to fetch randomness request %s: %w", r.ref, err)
	}
	return &state, nil
}

func (r *beaconRequest) SeedSlot(ctx context.Context) (int64, error) {
	state, err := r.fetch(ctx)
	if err != nil {
		return 0, err
	}
	return state.SeedSlot, nil
}

func (r *beaconRequest) Resolved(ctx context.Context) (bool, error) {
	state, err := r.fetch(ctx)
	if err != nil {
		return false, err
	}
	return state.Resolved, nil
}

func (r *beaconRequest) Value(ctx context.Context) ([]byte, error) {
	state, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if !state.Resolved {
		return nil, fmt.Errorf("randomness request %s is not resolved yet", r.ref)
	}

	value, err := hex.DecodeString(state.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode randomness value: %w", err)
	}
	return value, nil
}
