package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/hospital-api/internal/apperr"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.False(t, CheckPasswordHash("s3cret!", ""))
}

func TestRandomDigits(t *testing.T) {
	code, err := RandomDigits(6)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9]{6}$`, code)

	pw, err := RandomPassword(10)
	require.NoError(t, err)
	assert.Len(t, pw, 10)
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, err := m.GenerateJWT("64f1c2a9e1b2c3d4e5f60718")
	require.NoError(t, err)

	sub, err := m.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "64f1c2a9e1b2c3d4e5f60718", sub)
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour).GenerateJWT("abc")
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).ValidateJWT(token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.GenerateJWT("abc")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateJWT(token)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestTokenMissingSecret(t *testing.T) {
	_, err := NewTokenManager("", time.Hour).GenerateJWT("abc")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestNewPageDefaults(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: 10}, NewPage("", ""))
	assert.Equal(t, Page{Page: 1, Limit: 10}, NewPage("abc", "-4"))
	assert.Equal(t, Page{Page: 3, Limit: 100}, NewPage("3", "500"))
	assert.Equal(t, int64(40), NewPage("3", "20").Skip())
}

func TestNewMeta(t *testing.T) {
	meta, err := NewMeta(Page{Page: 2, Limit: 10}, 21)
	require.NoError(t, err)
	assert.Equal(t, int64(3), meta.LastPage)
	assert.Equal(t, int64(21), meta.Total)

	_, err = NewMeta(Page{Page: 4, Limit: 10}, 21)
	assert.ErrorIs(t, err, apperr.ErrPageOutOfRange)

	meta, err = NewMeta(Page{Page: 5, Limit: 10}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), meta.LastPage)
}

func TestParseSort(t *testing.T) {
	field, desc, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, "createdAt", field)
	assert.True(t, desc)

	field, desc, err = ParseSort("time")
	require.NoError(t, err)
	assert.Equal(t, "time", field)
	assert.False(t, desc)

	_, _, err = ParseSort("-$where")
	assert.ErrorIs(t, err, apperr.Validation(""))
}
