package microsoft

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/microsoft"

	"github.com/bookline/calsync/internal/core/ports/driven"
)

// Ensure Refresher implements the interface.
var _ driven.TokenRefresher = (*Refresher)(nil)

// defaultTokenURL is the common-tenant v2.0 token endpoint.
var defaultTokenURL = microsoft.AzureADEndpoint("common").TokenURL

// Refresher performs the refresh-token grant against the Microsoft identity
// platform.
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

// NewRefresher creates a Microsoft token refresher.
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
// Microsoft may rotate the refresh token; callers must keep the old one when
// the response carries none.
func (r *Refresher) Refresh(
	ctx context.Context, clientID, clientSecret, refreshToken string,
) (*driven.TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", clientID)
	if clientSecret != "" {
		data.Set("client_secret", clientSecret)
	}
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
