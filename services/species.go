package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Sk4rKr0w/wildlife-spotter-sub000/models"
)

// SpeciesClient calls an external species-identification API. The lookup
// is enrichment only: every failure path falls back to the caller-provided
// species so a slow or broken identifier never fails a sighting.
type SpeciesClient struct {
	baseURL string
	client  *http.Client
}

func NewSpeciesClient(baseURL string, timeout time.Duration) *SpeciesClient {
	return &SpeciesClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Identify asks the API to classify the image behind imageID. On any
// failure the fallback is returned, with an "Unknown" label if the
// fallback has none.
func (sc *SpeciesClient) Identify(ctx context.Context, imageID string, fallback models.Species) models.Species {
	if fallback.Taxonomy == nil {
		fallback.Taxonomy = map[string]*string{}
	}
	if fallback.Label == "" {
		fallback.Label = "Unknown"
	}

	body, err := json.Marshal(map[string]string{"image_id": imageID})
	if err != nil {
		return fallback
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sc.baseURL+"/identify", bytes.NewReader(body))
	if err != nil {
		return fallback
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := sc.client.Do(req)
	if err != nil {
		log.Printf("species: identify call failed: %v", err)
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("species: identify returned status %d", resp.StatusCode)
		return fallback
	}

	var result models.Species
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.Label == "" {
		return fallback
	}
	if result.Taxonomy == nil {
		result.Taxonomy = map[string]*string{}
	}
	return result
}
