package jwt

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"event-social/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-for-unit-tests",
		ExpireTime: time.Hour,
		Issuer:     "event-social",
	})
}

func TestGenerateAndValidate(t *testing.T) {
	s := newTestService()

	token, err := s.GenerateUserToken("user123", "alice")
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user123", claims.Subject)
	assert.Equal(t, "alice", claims.Username())
}

func TestGenerateToken_RequiresUserID(t *testing.T) {
	_, err := newTestService().GenerateToken("", nil)
	assert.Error(t, err)
}

func TestValidateToken_Rejects(t *testing.T) {
	s := newTestService()

	_, err := s.ValidateToken("")
	assert.ErrorIs(t, err, ErrEmptyToken)

	_, err = s.ValidateToken("not.a.token")
	assert.Error(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret", ExpireTime: time.Hour, Issuer: "event-social"})
	token, err := other.GenerateUserToken("user123", "alice")
	require.NoError(t, err)
	_, err = s.ValidateToken(token)
	assert.Error(t, err, "wrong secret")

	wrongIssuer := NewJWTService(config.JWTConfig{Secret: "test-secret-key-for-unit-tests", ExpireTime: time.Hour, Issuer: "someone-else"})
	token, err = wrongIssuer.GenerateUserToken("user123", "alice")
	require.NoError(t, err)
	_, err = s.ValidateToken(token)
	assert.Error(t, err, "wrong issuer")
}

func TestValidateToken_Expired(t *testing.T) {
	s := newTestService()
	issued := time.Now().Add(-2 * time.Hour)
	s.now = func() time.Time { return issued }
	token, err := s.GenerateUserToken("user123", "alice")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ValidateToken(token)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newTestService()
	token, err := s.GenerateUserToken("user123", "alice")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", s.AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "username": GetUsername(c)})
	})

	cases := []struct {
		name   string
		header string
		query  string
		wantID string
	}{
		{name: "bearer header", header: "Bearer " + token, wantID: "user123"},
		{name: "query token", query: "?token=" + token, wantID: "user123"},
		{name: "missing"},
		{name: "bad scheme", header: "Token " + token},
		{name: "garbage", header: "Bearer abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tc.wantID != "" {
				assert.Equal(t, tc.wantID, body["id"])
				assert.Equal(t, "alice", body["username"])
			} else {
				assert.EqualValues(t, 401, body["code"])
			}
		})
	}
}
