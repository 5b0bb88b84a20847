// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Seat identifies a caller as one player of one game.
type Seat struct {
	GameID   uuid.UUID
	PlayerID uuid.UUID
}

// SeatClaims are the JWT claims of a seat token: "sub" is the player, "gid" the game.
type SeatClaims struct {
	GameID string `json:"gid"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies seat tokens with an ed25519 key pair.
type Issuer struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	ttl        time.Duration
	now        func() time.Time
}

// NewIssuer generates a fresh key pair. A zero ttl issues tokens without expiry.
func NewIssuer(ttl time.Duration) (*Issuer, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return &Issuer{privateKey: priv, publicKey: pub, ttl: ttl, now: time.Now}, nil
}

// NewIssuerFromPath reads a raw ed25519 private key from file; the public key is
// derived from it.
func NewIssuerFromPath(privatePath string, ttl time.Duration) (*Issuer, error) {
	data, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	if len(data) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key file has %d bytes, expected %d", len(data), ed25519.PrivateKeySize)
	}
	priv := ed25519.PrivateKey(data)
	return &Issuer{
		privateKey: priv,
		publicKey:  priv.Public().(ed25519.PublicKey),
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

// Issue creates a signed token for seat.
func (i *Issuer) Issue(seat Seat) (string, error) {
	now := i.now()
	claims := SeatClaims{
		GameID: seat.GameID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  seat.PlayerID.String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(i.privateKey)
}

// Authenticate verifies a token string and returns the seat it grants.
func (i *Issuer) Authenticate(tokenString string) (Seat, error) {
	var claims SeatClaims
	t, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.publicKey, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return Seat{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid {
		return Seat{}, ErrInvalidToken
	}

	playerID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Seat{}, fmt.Errorf("%w: bad sub", ErrInvalidToken)
	}
	gameID, err := uuid.Parse(claims.GameID)
	if err != nil {
		return Seat{}, fmt.Errorf("%w: bad gid", ErrInvalidToken)
	}
	return Seat{GameID: gameID, PlayerID: playerID}, nil
}
