package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, claims TokenClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func validClaims(role string) TokenClaims {
	return TokenClaims{
		UserID: "user-1",
		Email:  "user@example.com",
		Name:   "Test User",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerifyTokenRoundTrip(t *testing.T) {
	verifier, err := NewHMACVerifier(testSecret, "")
	require.NoError(t, err)

	claims, err := verifier.VerifyToken(signToken(t, validClaims("vendor")))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "vendor", claims.Role)
}

func TestVerifyTokenExpired(t *testing.T) {
	verifier, err := NewHMACVerifier(testSecret, "")
	require.NoError(t, err)

	expired := validClaims("vendor")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	_, err = verifier.VerifyToken(signToken(t, expired))
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	verifier, err := NewHMACVerifier("other-secret", "")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(signToken(t, validClaims("vendor")))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyTokenSubjectFallback(t *testing.T) {
	verifier, err := NewHMACVerifier(testSecret, "")
	require.NoError(t, err)

	claims := TokenClaims{
		Role: "procurement",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-2",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	parsed, err := verifier.VerifyToken(signToken(t, claims))
	require.NoError(t, err)
	assert.Equal(t, "user-2", parsed.UserID)
}

func TestVerifyTokenIssuerMismatch(t *testing.T) {
	verifier, err := NewHMACVerifier(testSecret, "foodchainx")
	require.NoError(t, err)

	claims := validClaims("vendor")
	claims.Issuer = "someone-else"
	_, err = verifier.VerifyToken(signToken(t, claims))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func newTestHandler(captured **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFromContext(r.Context())
		*captured = identity
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	verifier, err := NewHMACVerifier(testSecret, "")
	require.NoError(t, err)
	authenticator := NewAuthenticator(verifier)

	var captured *Identity
	handler := authenticator.RequireAuth()(newTestHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims("Procurement")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "procurement", captured.Role)
	assert.True(t, captured.HasRole(RoleProcurement))
}

func TestRequireAuthMissingHeader(t *testing.T) {
	verifier, err := NewHMACVerifier(testSecret, "")
	require.NoError(t, err)
	authenticator := NewAuthenticator(verifier)

	var captured *Identity
	handler := authenticator.RequireAuth()(newTestHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

func TestRequireAuthRoleRestriction(t *testing.T) {
	verifier, err := NewHMACVerifier(testSecret, "")
	require.NoError(t, err)
	authenticator := NewAuthenticator(verifier)

	var captured *Identity
	handler := authenticator.RequireAuth(RoleVendor)(newTestHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/vendor/products", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims("procurement")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

func TestRequireAuthFallbackRole(t *testing.T) {
	verifier, err := NewHMACVerifier(testSecret, "")
	require.NoError(t, err)
	authenticator := NewAuthenticator(verifier, WithFallbackRole(RoleProcurement))

	var captured *Identity
	handler := authenticator.RequireAuth()(newTestHandler(&captured))

	claims := validClaims("")
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, claims))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, RoleProcurement, captured.Role)
}
