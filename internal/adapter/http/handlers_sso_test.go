package adapthttp_test

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	adapthttp "blueprint/internal/adapter/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"golang.org/x/oauth2"
)

// fakeIssuer is an identity provider whose token endpoint answers with an
// RS256 ID token built from the claims set before each exchange.
type fakeIssuer struct {
	srv    *httptest.Server
	signer jose.Signer
	key    *rsa.PrivateKey

	mu     sync.Mutex
	claims map[string]any
}

func (f *fakeIssuer) setClaims(c map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claims = c
}

func newFakeIssuer(t *testing.T) *fakeIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: key}, (&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		t.Fatal(err)
	}

	f := &fakeIssuer{signer: signer, key: key}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" {
			http.NotFound(w, r)
			return
		}
		f.mu.Lock()
		claims := f.claims
		f.mu.Unlock()
		raw, err := jwt.Signed(f.signer).Claims(claims).Serialize()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "provider-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     raw,
		})
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeIssuer) sso() *adapthttp.SSO {
	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&f.key.PublicKey}}
	return &adapthttp.SSO{
		OAuth2Config: &oauth2.Config{
			ClientID:     "blueprint",
			ClientSecret: "secret",
			RedirectURL:  "http://localhost:8001/api/auth/sso/callback",
			Endpoint: oauth2.Endpoint{
				AuthURL:   f.srv.URL + "/auth",
				TokenURL:  f.srv.URL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		Verifier: oidc.NewVerifier(f.srv.URL, keys, &oidc.Config{ClientID: "blueprint"}),
	}
}

func (f *fakeIssuer) identity(email string, verified any) map[string]any {
	c := map[string]any{
		"iss":   f.srv.URL,
		"aud":   "blueprint",
		"sub":   "idp|" + email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
		"email": email,
		"name":  "Idp User",
	}
	if verified != nil {
		c["email_verified"] = verified
	}
	return c
}

func callback(t *testing.T, h http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/sso/callback?state=s1&code=abc", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "s1"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSSOCallback(t *testing.T) {
	idp := newFakeIssuer(t)
	h := newTestServer(t, adapthttp.WithSSO(idp.sso()))
	register(t, h, "owner@example.com")

	tests := []struct {
		name     string
		email    string
		verified any
		code     int
	}{
		{"verified new identity", "sso@example.com", true, http.StatusOK},
		{"claim missing for existing account", "owner@example.com", nil, http.StatusForbidden},
		{"unverified existing account", "owner@example.com", false, http.StatusForbidden},
		{"claim missing for new identity", "fresh@example.com", nil, http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			idp.setClaims(idp.identity(tc.email, tc.verified))
			w := callback(t, h)
			if w.Code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, w.Code, w.Body.String())
			}
			body := decode(t, w)
			if tc.code != http.StatusOK {
				if _, ok := body["access_token"]; ok {
					t.Fatalf("session issued on rejected callback: %s", w.Body.String())
				}
				return
			}

			token, _ := body["access_token"].(string)
			profile := decode(t, do(t, h, http.MethodGet, "/api/user/profile", token, nil))
			if profile["email"] != tc.email {
				t.Errorf("expected profile for %s, got %v", tc.email, profile)
			}
		})
	}
}
