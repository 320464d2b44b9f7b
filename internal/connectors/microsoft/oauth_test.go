package microsoft

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresher_Refresh(t *testing.T) {
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "new-access",
			"refresh_token": "rotated-refresh",
			"token_type": "Bearer",
			"expires_in": 3600
		}`))
	}))
	defer srv.Close()

	r := NewRefresher(WithTokenURL(srv.URL))

	resp, err := r.Refresh(context.Background(), "client-id", "client-secret", "old-refresh")

	require.NoError(t, err)
	assert.Equal(t, "new-access", resp.AccessToken)
	assert.Equal(t, "rotated-refresh", resp.RefreshToken)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.Expiry, 5*time.Second)

	assert.Equal(t, []string{"refresh_token"}, gotForm["grant_type"])
	assert.Equal(t, []string{"client-id"}, gotForm["client_id"])
	assert.Equal(t, []string{"client-secret"}, gotForm["client_secret"])
	assert.Equal(t, []string{"old-refresh"}, gotForm["refresh_token"])
}

func TestRefresher_Refresh_PublicClientOmitsSecret(t *testing.T) {
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		_, _ = w.Write([]byte(`{"access_token": "new-access"}`))
	}))
	defer srv.Close()

	r := NewRefresher(WithTokenURL(srv.URL))

	_, err := r.Refresh(context.Background(), "client-id", "", "old-refresh")

	require.NoError(t, err)
	assert.NotContains(t, gotForm, "client_secret")
}

func TestRefresher_Refresh_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	defer srv.Close()

	r := NewRefresher(WithTokenURL(srv.URL))

	_, err := r.Refresh(context.Background(), "client-id", "client-secret", "revoked")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestDefaultTokenURL(t *testing.T) {
	assert.Equal(t, "https://login.microsoftonline.com/common/oauth2/v2.0/token", defaultTokenURL)
}
