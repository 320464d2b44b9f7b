package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	oauth2google "golang.org/x/oauth2/google"

	"github.com/bookline/calsync/internal/core/ports/driven"
)

// Ensure Refresher implements the interface.
var _ driven.TokenRefresher = (*Refresher)(nil)

// defaultTokenURL is Google's OAuth2 token endpoint.
var defaultTokenURL = oauth2google.Endpoint.TokenURL

// Refresher performs the refresh-token grant against Google's OAuth2 token
// endpoint. Google does not rotate refresh tokens on refresh.
type Refresher struct {
	tokenURL string
	client   *http.Client
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithTokenURL overrides the token endpoint, mainly for tests.
func WithTokenURL(tokenURL string) RefresherOption {
	return func(r *Refresher) { r.tokenURL = tokenURL }
}

// WithRefresherHTTPClient overrides the HTTP client.
func WithRefresherHTTPClient(c *http.Client) RefresherOption {
	return func(r *Refresher) { r.client = c }
}

// NewRefresher creates a Google token refresher.
func NewRefresher(opts ...RefresherOption) *Refresher {
	r := &Refresher{
		tokenURL: defaultTokenURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh exchanges a refresh token for a new access token.
func (r *Refresher) Refresh(
	ctx context.Context, clientID, clientSecret, refreshToken string,
) (*driven.TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", clientID)
	data.Set("client_secret", clientSecret)
	data.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token refresh request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token refresh failed with status %d", resp.StatusCode)
	}

	var tokenResp driven.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	if tokenResp.ExpiresIn > 0 {
		tokenResp.Expiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}

	return &tokenResp, nil
}
