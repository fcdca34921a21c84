package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/roomledger/internal/clock"
	"github.com/smallbiznis/roomledger/internal/config"
	"go.uber.org/zap"
)

const issuer = "roomledger"

var ErrInvalidToken = errors.New("invalid_token")

type Claims struct {
	LandlordID string `json:"landlord_id"`
	Username   string `json:"username"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 access tokens for landlords.
type Manager struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewManager(secret []byte, ttl time.Duration, clk clock.Clock) *Manager {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: secret, ttl: ttl, clock: clk}
}

// Provide builds a Manager from config. Outside production an empty secret is
// replaced with a random one, so tokens do not survive a restart.
func Provide(cfg config.Config, clk clock.Clock, log *zap.Logger) (*Manager, error) {
	secret := []byte(cfg.AuthJWTSecret)
	if len(secret) == 0 {
		if cfg.IsProduction() {
			return nil, errors.New("AUTH_JWT_SECRET is required in production")
		}
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		log.Warn("AUTH_JWT_SECRET not set, using an ephemeral signing key")
	}
	return NewManager(secret, cfg.AuthTokenTTL, clk), nil
}

// Issue signs a token for landlordID and returns it with its expiry.
func (m *Manager) Issue(landlordID snowflake.ID, username string) (string, time.Time, error) {
	now := m.clock.Now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		LandlordID: landlordID.String(),
		Username:   username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   landlordID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies raw and returns the landlord id it was issued for.
func (m *Manager) Parse(raw string) (snowflake.ID, *Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil {
		return 0, nil, ErrInvalidToken
	}

	id, err := snowflake.ParseString(claims.Subject)
	if err != nil || id == 0 {
		return 0, nil, ErrInvalidToken
	}
	return id, claims, nil
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}
