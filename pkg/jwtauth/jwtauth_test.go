package jwtauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr string
	}{
		{name: "60 seconds", input: "60s", want: 60 * time.Second},
		{name: "5 minutes", input: "5m", want: 5 * time.Minute},
		{name: "24 hours", input: "24h", want: 24 * time.Hour},
		{name: "1 day", input: "1d", want: 24 * time.Hour},
		{name: "3 weeks", input: "3w", want: 3 * 7 * 24 * time.Hour},
		{name: "half hour", input: "0.5h", want: 30 * time.Minute},
		{name: "empty string", input: "", wantErr: "empty duration string"},
		{name: "invalid unit", input: "10x", wantErr: "unknown unit in duration"},
		{name: "no unit", input: "10", wantErr: "invalid duration format"},
		{name: "no number", input: "abcdefh", wantErr: "invalid duration format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDuration(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJWT_DefaultExpiration(t *testing.T) {
	j, err := NewJWT("test-secret-key", "", "")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, j.Expiration())

	_, err = NewJWT("", "24h", "7d")
	assert.ErrorIs(t, err, ErrEmptySigningKey)
}

func TestJWT_GenerateAndParse(t *testing.T) {
	j, err := NewJWT("test-secret-key", "24h", "7d")
	require.NoError(t, err)

	pair, err := j.GenerateToken(123, "test-user")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := j.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(123), claims.UserID)
	assert.Equal(t, "test-user", claims.Username)
	assert.Equal(t, AccessTokenType, claims.Type)

	_, err = j.ParseAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWT_Expired(t *testing.T) {
	j, err := NewJWT("test-secret-key", "1h", "7d")
	require.NoError(t, err)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return issued }

	pair, err := j.GenerateToken(1, "alice")
	require.NoError(t, err)

	j.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = j.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// refresh token 仍有效
	refreshed, err := j.RefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	claims, err := j.ParseToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), claims.UserID)
}

func TestJWT_WrongKey(t *testing.T) {
	a, _ := NewJWT("key-a", "24h", "7d")
	b, _ := NewJWT("key-b", "24h", "7d")

	pair, err := a.GenerateToken(1, "alice")
	require.NoError(t, err)

	_, err = b.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = a.RefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrNotRefreshToken)
}

func TestExtractBearer(t *testing.T) {
	tok, ok := ExtractBearer("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	_, ok = ExtractBearer("Basic xyz")
	assert.False(t, ok)
	_, ok = ExtractBearer("Bearer ")
	assert.False(t, ok)
}
