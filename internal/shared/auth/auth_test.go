package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_SignVerify(t *testing.T) {
	j := JWT{Secret: []byte("s3cret"), TokenTTL: time.Hour}

	tok, exp, err := j.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := j.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Caller())
	assert.Equal(t, issuer, c.Issuer)
}

func TestJWT_RejectsWrongSecretAndExpired(t *testing.T) {
	j := JWT{Secret: []byte("s3cret"), TokenTTL: time.Hour}
	other := JWT{Secret: []byte("outro"), TokenTTL: time.Hour}

	tok, err := other.SignFor("alice")
	require.NoError(t, err)
	_, err = j.Verify(tok)
	assert.Error(t, err)

	past := jwt.NewNumericDate(time.Now().Add(-time.Minute))
	tok, _, err = j.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ExpiresAt: past}})
	require.NoError(t, err)
	_, err = j.Verify(tok)
	assert.Error(t, err)
}

func TestJWT_RequiresSubject(t *testing.T) {
	j := JWT{Secret: []byte("s3cret"), TokenTTL: time.Hour}
	tok, _, err := j.Sign(Claims{})
	require.NoError(t, err)
	_, err = j.Verify(tok)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	j := JWT{Secret: []byte("s3cret"), TokenTTL: time.Hour}
	h := Middleware(j)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(CallerFromContext(r.Context())))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer lixo")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := j.SignFor("bob")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob", rec.Body.String())
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "", bearerToken(""))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "abc", bearerToken("  Bearer   abc "))
}
