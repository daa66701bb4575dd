package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokens() *auth.SessionTokens {
	return auth.NewSessionTokens("test-secret-key-for-testing-purposes", time.Hour)
}

func captureSession(captured *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = GetSessionID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

type roles map[string]identity.Role

func (r roles) Role(sessionID string) (identity.Role, bool) {
	role, ok := r[sessionID]
	return role, ok
}

// ============================================
// Session Middleware Tests
// ============================================

func TestSession_IssuesCookieWhenMissing(t *testing.T) {
	tokens := newTestTokens()
	var got string

	rec := httptest.NewRecorder()
	Session(tokens, false)(captureSession(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, got)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	id, err := tokens.Validate(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, got, id)
}

func TestSession_ReusesValidCookie(t *testing.T) {
	tokens := newTestTokens()
	token, _, err := tokens.Sign("session-123")
	require.NoError(t, err)
	var got string

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	Session(tokens, false)(captureSession(&got)).ServeHTTP(rec, req)

	assert.Equal(t, "session-123", got)
	assert.Empty(t, rec.Result().Cookies())
}

func TestSession_AcceptsBearerHeader(t *testing.T) {
	tokens := newTestTokens()
	token, _, err := tokens.Sign("session-456")
	require.NoError(t, err)
	var got string

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	Session(tokens, false)(captureSession(&got)).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "session-456", got)
}

func TestSession_ReplacesForgedToken(t *testing.T) {
	forged, _, err := auth.NewSessionTokens("another-secret-key-of-enough-length", time.Hour).Sign("victim")
	require.NoError(t, err)
	var got string

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: forged})
	rec := httptest.NewRecorder()
	Session(newTestTokens(), false)(captureSession(&got)).ServeHTTP(rec, req)

	assert.NotEqual(t, "victim", got)
	assert.Len(t, rec.Result().Cookies(), 1)
}

// ============================================
// RequireRole Tests
// ============================================

func TestRequireRole(t *testing.T) {
	source := roles{"admin-session": identity.RoleAdmin, "customer-session": identity.RoleCustomer}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := RequireRole(source, identity.RoleAdmin)(ok)

	tests := []struct {
		name     string
		session  string
		expected int
	}{
		{"admin", "admin-session", http.StatusOK},
		{"customer", "customer-session", http.StatusForbidden},
		{"logged out", "guest", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
			req = req.WithContext(WithSessionID(req.Context(), tt.session))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

// ============================================
// Rate Limit Tests
// ============================================

func TestRateLimiter_PerSession(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := rl.Handler(ok)

	call := func(session string) int {
		req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
		req = req.WithContext(WithSessionID(req.Context(), session))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("a"))
	assert.Equal(t, http.StatusOK, call("a"))
	assert.Equal(t, http.StatusTooManyRequests, call("a"))
	assert.Equal(t, http.StatusOK, call("b"))
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_PruneKeepsBusyBuckets(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	rl.getLimiter("idle")
	rl.getLimiter("busy").Allow()

	pruned := rl.Prune()

	assert.Equal(t, 1, pruned)
	assert.Equal(t, 1, rl.Len())
}

func TestSession_MarksNewSessions(t *testing.T) {
	tokens := newTestTokens()
	var isNew bool
	handler := Session(tokens, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isNew = IsNewSession(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/catalog", nil))
	assert.True(t, isNew)

	_, token, _, err := tokens.NewSession()
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, isNew)
}

func TestRateLimiter_CookielessRequestsShareAddressBucket(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := Session(newTestTokens(), false)(rl.Handler(ok))

	call := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:2222"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:3333"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1111"))
	assert.Equal(t, 2, rl.Len())
}
