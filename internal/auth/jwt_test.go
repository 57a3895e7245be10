package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainError(w http.ResponseWriter, status int, message string) {
	http.Error(w, message, status)
}

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret")
	tok, err := m.GenerateJWT(models.User{ID: 7, Username: "alice"})
	require.NoError(t, err)

	claims, err := m.ValidateJWT(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestValidate_WrongSecret(t *testing.T) {
	tok, err := NewManager("a").GenerateJWT(models.User{ID: 1})
	require.NoError(t, err)

	_, err = NewManager("b").ValidateJWT(tok)
	assert.Error(t, err)
}

func TestValidate_Expired(t *testing.T) {
	m := NewManager("secret")
	m.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	tok, err := m.GenerateJWT(models.User{ID: 1})
	require.NoError(t, err)

	_, err = NewManager("secret").ValidateJWT(tok)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	m := NewManager("secret")
	tok, err := m.GenerateJWT(models.User{ID: 3, Username: "bob"})
	require.NoError(t, err)

	var seen *Claims
	h := m.Middleware(plainError)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, err = ClaimsFromContext(r.Context())
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: tok}) }, http.StatusOK},
		{"query", func(r *http.Request) { r.URL.RawQuery = "token=" + tok }, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, int64(3), seen.UserID)
			}
		})
	}
}

func TestClaimsFromContext_Missing(t *testing.T) {
	_, err := ClaimsFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.Error(t, err)
}
