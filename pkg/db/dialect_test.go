package db

import (
	"testing"

	"github.com/smallbiznis/roomledger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDialect(t *testing.T) {
	assert.Equal(t, DialectPostgres, NormalizeDialect(" PostgreSQL "))
	assert.Equal(t, DialectMySQL, NormalizeDialect("mariadb"))
	assert.Equal(t, DialectSQLite, NormalizeDialect("sqlite3"))
	assert.Equal(t, "oracle", NormalizeDialect("Oracle"))
}

func TestDialect(t *testing.T) {
	d, err := Dialect(config.Config{DBType: "sqlite", DBSQLitePath: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = Dialect(config.Config{DBType: "postgres", DBHost: "db", DBPort: "5432"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = Dialect(config.Config{DBType: "oracle"})
	assert.Error(t, err)
}
