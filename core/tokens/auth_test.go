package tokens

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"Sonicbar/model"
)

type memStore struct {
	ts      *model.TokenSet
	cleared int
}

func (m *memStore) Load(context.Context) (*model.TokenSet, error) {
	if m.ts == nil {
		return nil, ErrNoTokens
	}
	cp := *m.ts
	return &cp, nil
}

func (m *memStore) Save(_ context.Context, ts *model.TokenSet) error {
	cp := *ts
	m.ts = &cp
	return nil
}

func (m *memStore) Clear(context.Context) error {
	m.ts = nil
	m.cleared++
	return nil
}

func tokenServer(t *testing.T, handle func(form url.Values) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "client" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		status, body := handle(r.PostForm)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthCodeURL(t *testing.T) {
	a := NewAuthenticator("client", "secret", "http://localhost:3000/callback",
		"https://accounts.example.com/authorize", "https://accounts.example.com/api/token", &memStore{})

	u, err := url.Parse(a.AuthCodeURL("xyz"))
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("show_dialog") != "true" || q.Get("response_type") != "code" || q.Get("state") != "xyz" {
		t.Errorf("unexpected query %v", q)
	}
	if q.Get("client_id") != "client" || q.Get("redirect_uri") != "http://localhost:3000/callback" {
		t.Errorf("unexpected client params %v", q)
	}
	if scope := q.Get("scope"); !strings.Contains(scope, "streaming") || !strings.Contains(scope, "user-library-modify") {
		t.Errorf("missing scopes in %q", scope)
	}
}

func TestExchangeStoresTokens(t *testing.T) {
	srv := tokenServer(t, func(form url.Values) (int, string) {
		if form.Get("grant_type") != "authorization_code" || form.Get("code") != "the-code" {
			return http.StatusBadRequest, `{"error":"invalid_grant"}`
		}
		return http.StatusOK, `{"access_token":"A1","refresh_token":"R1","token_type":"Bearer","expires_in":3600,"scope":"streaming"}`
	})
	store := &memStore{}
	a := NewAuthenticator("client", "secret", "http://localhost/cb", srv.URL+"/authorize", srv.URL+"/token", store)

	ts, err := a.Exchange(context.Background(), "the-code")
	if err != nil {
		t.Fatal(err)
	}
	if ts.AccessToken != "A1" || ts.RefreshToken != "R1" || ts.Scope != "streaming" || ts.Expiry.IsZero() {
		t.Errorf("unexpected tokens %+v", ts)
	}
	if store.ts == nil || store.ts.AccessToken != "A1" {
		t.Error("tokens were not persisted")
	}

	if _, err := a.Exchange(context.Background(), "bad"); err == nil {
		t.Error("expected error for rejected code")
	}
}

func TestRefreshKeepsRefreshToken(t *testing.T) {
	srv := tokenServer(t, func(form url.Values) (int, string) {
		if form.Get("grant_type") != "refresh_token" || form.Get("refresh_token") != "R1" {
			return http.StatusBadRequest, `{"error":"invalid_grant"}`
		}
		return http.StatusOK, `{"access_token":"A2","token_type":"Bearer","expires_in":3600}`
	})
	store := &memStore{ts: &model.TokenSet{AccessToken: "A1", RefreshToken: "R1", Scope: "streaming"}}
	a := NewAuthenticator("client", "secret", "", srv.URL+"/authorize", srv.URL+"/token", store)

	ts, err := a.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ts.AccessToken != "A2" || ts.RefreshToken != "R1" || ts.Scope != "streaming" {
		t.Errorf("unexpected refreshed tokens %+v", ts)
	}
	if store.ts.AccessToken != "A2" || store.ts.RefreshToken != "R1" {
		t.Errorf("store not updated: %+v", store.ts)
	}
}

func TestRefreshFailureClearsTokens(t *testing.T) {
	srv := tokenServer(t, func(url.Values) (int, string) {
		return http.StatusBadRequest, `{"error":"invalid_grant"}`
	})
	store := &memStore{ts: &model.TokenSet{AccessToken: "A1", RefreshToken: "revoked"}}
	a := NewAuthenticator("client", "secret", "", srv.URL+"/authorize", srv.URL+"/token", store)

	if _, err := a.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if store.ts != nil || store.cleared != 1 {
		t.Errorf("tokens should be cleared, store=%+v cleared=%d", store.ts, store.cleared)
	}
}

func TestRefreshWithoutRefreshToken(t *testing.T) {
	a := NewAuthenticator("client", "secret", "", "http://unused/a", "http://unused/t", &memStore{})
	if _, err := a.Refresh(context.Background()); !errors.Is(err, ErrNoRefreshToken) {
		t.Errorf("expected ErrNoRefreshToken, got %v", err)
	}

	a = NewAuthenticator("client", "secret", "", "http://unused/a", "http://unused/t",
		&memStore{ts: &model.TokenSet{AccessToken: "only-access"}})
	if _, err := a.Refresh(context.Background()); !errors.Is(err, ErrNoRefreshToken) {
		t.Errorf("expected ErrNoRefreshToken, got %v", err)
	}
}
