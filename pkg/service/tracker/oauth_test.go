package tracker_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/teamsense-lab/argus/pkg/service/tracker"
)

func TestAuthorizationURL(t *testing.T) {
	oauth := tracker.NewOAuth("client-1", "secret-1", "https://app.example.com/callback")

	t.Run("with PKCE challenge", func(t *testing.T) {
		raw := oauth.AuthorizationURL("state-abc", "challenge-xyz")

		u := gt.R1(url.Parse(raw)).NoError(t)
		q := u.Query()
		gt.Value(t, q.Get("client_id")).Equal("client-1")
		gt.Value(t, q.Get("redirect_uri")).Equal("https://app.example.com/callback")
		gt.Value(t, q.Get("response_type")).Equal("code")
		gt.Value(t, q.Get("scope")).Equal("read")
		gt.Value(t, q.Get("state")).Equal("state-abc")
		gt.Value(t, q.Get("code_challenge")).Equal("challenge-xyz")
		gt.Value(t, q.Get("code_challenge_method")).Equal("S256")
	})

	t.Run("without PKCE challenge omits the parameters", func(t *testing.T) {
		raw := oauth.AuthorizationURL("state-abc", "")

		u := gt.R1(url.Parse(raw)).NoError(t)
		q := u.Query()
		gt.Bool(t, q.Has("code_challenge")).False()
		gt.Bool(t, q.Has("code_challenge_method")).False()
		gt.Value(t, q.Get("response_type")).Equal("code")
	})
}

func TestExchange(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotForm url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.NoError(t, r.ParseForm())
			gotForm = r.PostForm
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","expires_in":3600}`))
		}))
		defer srv.Close()

		oauth := tracker.NewOAuth("client-1", "secret-1", "https://app.example.com/callback",
			tracker.WithTokenURL(srv.URL))

		tokens := gt.R1(oauth.Exchange(context.Background(), "code-1", "verifier-1")).NoError(t)
		gt.Value(t, tokens.AccessToken).Equal("at-1")
		gt.Value(t, tokens.RefreshToken).Equal("rt-1")
		gt.Number(t, tokens.ExpiresIn).Equal(3600)

		gt.Value(t, gotForm.Get("grant_type")).Equal("authorization_code")
		gt.Value(t, gotForm.Get("code")).Equal("code-1")
		gt.Value(t, gotForm.Get("code_verifier")).Equal("verifier-1")
		gt.Value(t, gotForm.Get("client_id")).Equal("client-1")
		gt.Value(t, gotForm.Get("client_secret")).Equal("secret-1")
	})

	t.Run("missing expires_in falls back to the default lifetime", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1"}`))
		}))
		defer srv.Close()

		oauth := tracker.NewOAuth("client-1", "secret-1", "https://app.example.com/callback",
			tracker.WithTokenURL(srv.URL))

		tokens := gt.R1(oauth.Exchange(context.Background(), "code-1", "")).NoError(t)
		gt.Number(t, tokens.ExpiresIn).Equal(86400)
	})

	t.Run("without verifier omits the parameter", func(t *testing.T) {
		var gotForm url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.NoError(t, r.ParseForm())
			gotForm = r.PostForm
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"at-1","expires_in":3600}`))
		}))
		defer srv.Close()

		oauth := tracker.NewOAuth("client-1", "secret-1", "https://app.example.com/callback",
			tracker.WithTokenURL(srv.URL))

		gt.R1(oauth.Exchange(context.Background(), "code-1", "")).NoError(t)
		gt.Bool(t, gotForm.Has("code_verifier")).False()
	})

	t.Run("invalid_grant maps to sentinel", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"code already used"}`))
		}))
		defer srv.Close()

		oauth := tracker.NewOAuth("client-1", "secret-1", "https://app.example.com/callback",
			tracker.WithTokenURL(srv.URL))

		_, err := oauth.Exchange(context.Background(), "code-1", "verifier-1")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, tracker.ErrInvalidGrant)).True()
	})

	t.Run("other errors are not the sentinel", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
		}))
		defer srv.Close()

		oauth := tracker.NewOAuth("client-1", "secret-1", "https://app.example.com/callback",
			tracker.WithTokenURL(srv.URL))

		_, err := oauth.Exchange(context.Background(), "code-1", "verifier-1")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, tracker.ErrInvalidGrant)).False()
	})
}

func TestRefresh(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotForm url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.NoError(t, r.ParseForm())
			gotForm = r.PostForm
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"at-2","refresh_token":"rt-2","expires_in":7200}`))
		}))
		defer srv.Close()

		oauth := tracker.NewOAuth("client-1", "secret-1", "https://app.example.com/callback",
			tracker.WithTokenURL(srv.URL))

		tokens := gt.R1(oauth.Refresh(context.Background(), "rt-1")).NoError(t)
		gt.Value(t, tokens.AccessToken).Equal("at-2")
		gt.Value(t, tokens.RefreshToken).Equal("rt-2")

		gt.Value(t, gotForm.Get("grant_type")).Equal("refresh_token")
		gt.Value(t, gotForm.Get("refresh_token")).Equal("rt-1")
	})

	t.Run("revoked refresh token maps to sentinel", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		}))
		defer srv.Close()

		oauth := tracker.NewOAuth("client-1", "secret-1", "https://app.example.com/callback",
			tracker.WithTokenURL(srv.URL))

		_, err := oauth.Refresh(context.Background(), "rt-1")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, tracker.ErrInvalidGrant)).True()
	})
}
