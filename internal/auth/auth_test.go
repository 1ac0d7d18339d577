package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func testConfig() Config {
	return Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		RedirectURL:  "http://127.0.0.1:8888/callback",
	}
}

func TestNew(t *testing.T) {
	a, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if a.addr != "127.0.0.1:8888" {
		t.Errorf("addr = %q, want 127.0.0.1:8888", a.addr)
	}
	if a.path != "/callback" {
		t.Errorf("path = %q, want /callback", a.path)
	}
}

func TestNew_InvalidRedirect(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"no host", "/callback"},
		{"unparseable", "http://[::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.RedirectURL = tt.url
			if _, err := New(cfg); err == nil {
				t.Errorf("New(%q) expected error", tt.url)
			}
		})
	}
}

func TestNewSpotifyAuth_Scopes(t *testing.T) {
	authURL, err := url.Parse(NewSpotifyAuth(testConfig()).AuthURL("state-1"))
	if err != nil {
		t.Fatalf("parsing auth URL: %v", err)
	}

	q := authURL.Query()
	if q.Get("state") != "state-1" {
		t.Errorf("state = %q, want state-1", q.Get("state"))
	}
	if q.Get("client_id") != "test-client-id" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}

	granted := strings.Fields(q.Get("scope"))
	for _, want := range Scopes {
		found := false
		for _, s := range granted {
			if s == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("scope %q missing from %v", want, granted)
		}
	}
}

func TestGenerateState(t *testing.T) {
	state1, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}

	state2, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}

	if len(state1) != 32 {
		t.Errorf("State length = %d, want 32", len(state1))
	}
	if state1 == state2 {
		t.Error("GenerateState() returned same value twice")
	}
}

func TestHandleCallback_Errors(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr error
	}{
		{"state mismatch", "state=wrong&code=abc", ErrStateMismatch},
		{"provider error", "state=expected&error=access_denied", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(testConfig())
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			tokenCh := make(chan *oauth2.Token, 1)
			errCh := make(chan error, 1)
			req := httptest.NewRequest(http.MethodGet, "/callback?"+tt.query, nil)
			w := httptest.NewRecorder()

			a.handleCallback(w, req, "expected", tokenCh, errCh)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}

			select {
			case got := <-errCh:
				if tt.wantErr != nil && !errors.Is(got, tt.wantErr) {
					t.Errorf("error = %v, want %v", got, tt.wantErr)
				}
			default:
				t.Fatal("no error sent")
			}
			if len(tokenCh) != 0 {
				t.Error("token sent despite failed callback")
			}
		})
	}
}

func TestAuthenticate_ContextCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.RedirectURL = "http://127.0.0.1:0/callback"
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	a.out = &strings.Builder{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.Authenticate(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Authenticate() error = %v, want context.Canceled", err)
	}
}
