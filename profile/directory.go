package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"quadrangle.org/core/models"
)

// ErrNotFound is returned by directories when the backend has no
// profile for an identifier. Callers cache the Unknown sentinel in
// response rather than retrying.
var ErrNotFound = fmt.Errorf("profile not found")

// Directory resolves a user identifier to a displayable profile.
type Directory interface {
	Lookup(ctx context.Context, userID string) (models.Profile, error)
}

// HTTPDirectory looks profiles up against the backend's REST surface.
type HTTPDirectory struct {
	host   string
	client *http.Client
}

func NewHTTPDirectory(host string) *HTTPDirectory {
	return &HTTPDirectory{
		host: host,
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				IdleConnTimeout: time.Second,
				MaxIdleConns:    100,
			},
		},
	}
}

func (d *HTTPDirectory) Lookup(ctx context.Context, userID string) (models.Profile, error) {
	u := fmt.Sprintf("%s/v1/profiles/%s", d.host, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.Profile{}, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return models.Profile{}, fmt.Errorf("profile lookup: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.Profile{}, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return models.Profile{}, fmt.Errorf("profile lookup: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Name     string `json:"name"`
		PhotoURL string `json:"photoURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Profile{}, fmt.Errorf("profile lookup: %w", err)
	}

	return models.Profile{
		ID:          userID,
		DisplayName: body.Name,
		AvatarURL:   body.PhotoURL,
	}, nil
}
