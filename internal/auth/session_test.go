package auth

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndAuthenticate(t *testing.T) {
	iss, err := NewIssuer(time.Hour)
	require.NoError(t, err)

	seat := Seat{GameID: uuid.New(), PlayerID: uuid.New()}
	token, err := iss.Issue(seat)
	require.NoError(t, err)

	got, err := iss.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, seat, got)
}

func TestAuthenticateRejects(t *testing.T) {
	iss, err := NewIssuer(time.Hour)
	require.NoError(t, err)
	other, err := NewIssuer(time.Hour)
	require.NoError(t, err)

	seat := Seat{GameID: uuid.New(), PlayerID: uuid.New()}
	foreign, err := other.Issue(seat)
	require.NoError(t, err)

	hmac := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": seat.PlayerID.String(), "gid": seat.GameID.String()})
	hmacToken, err := hmac.SignedString([]byte("secret"))
	require.NoError(t, err)

	badSub := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.MapClaims{"sub": "nobody", "gid": seat.GameID.String()})
	badSubToken, err := badSub.SignedString(iss.privateKey)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"other key", foreign},
		{"hmac", hmacToken},
		{"bad subject", badSubToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := iss.Authenticate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenExpiry(t *testing.T) {
	iss, err := NewIssuer(time.Minute)
	require.NoError(t, err)
	start := time.Now()
	iss.now = func() time.Time { return start }

	token, err := iss.Issue(Seat{GameID: uuid.New(), PlayerID: uuid.New()})
	require.NoError(t, err)
	_, err = iss.Authenticate(token)
	require.NoError(t, err)

	iss.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = iss.Authenticate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewIssuerFromPath(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, priv, 0o600))

	iss, err := NewIssuerFromPath(path, 0)
	require.NoError(t, err)
	token, err := iss.Issue(Seat{GameID: uuid.New(), PlayerID: uuid.New()})
	require.NoError(t, err)
	_, err = iss.Authenticate(token)
	assert.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("short"), 0o600))
	_, err = NewIssuerFromPath(path, 0)
	assert.Error(t, err)
}
