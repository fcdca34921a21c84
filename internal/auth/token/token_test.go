package token

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/internal/clock"
	"github.com/smallbiznis/roomledger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIssueAndParse(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	m := NewManager([]byte("test-secret"), time.Hour, clk)

	raw, expiresAt, err := m.Issue(snowflake.ID(42), "asha")
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(time.Hour), expiresAt)

	id, claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(42), id)
	assert.Equal(t, "asha", claims.Username)

	clk.Advance(2 * time.Hour)
	_, _, err = m.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	clk := clock.NewFakeClock(time.Now())
	issuer := NewManager([]byte("one"), time.Hour, clk)
	verifier := NewManager([]byte("two"), time.Hour, clk)

	raw, _, err := issuer.Issue(snowflake.ID(7), "ravi")
	require.NoError(t, err)

	_, _, err = verifier.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = verifier.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestProvideRequiresSecretInProduction(t *testing.T) {
	_, err := Provide(config.Config{Environment: "production"}, clock.SystemClock{}, zap.NewNop())
	assert.Error(t, err)

	m, err := Provide(config.Config{Environment: "development"}, clock.SystemClock{}, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, m.secret, 32)
	assert.Equal(t, 24*time.Hour, m.TTL())
}
