package db

import (
	"testing"

	"rewardgate/pkg/config"

	"github.com/stretchr/testify/require"
)

func TestDialect(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Host = "localhost"
	cfg.Database.Port = "5432"
	cfg.Database.DBNAME = "rewards"

	d, err := Dialect(cfg)
	require.NoError(t, err)
	require.Equal(t, "postgres", d.Name())
	require.Equal(t, "rewards", getDBNameFromDialector(d))

	cfg.Database.Type = "mysql"
	d, err = Dialect(cfg)
	require.NoError(t, err)
	require.Equal(t, "mysql", d.Name())
	require.Equal(t, "rewards", getDBNameFromDialector(d))

	cfg.Database.Type = "sqlite"
	cfg.Database.DBNAME = "file::memory:"
	d, err = Dialect(cfg)
	require.NoError(t, err)
	require.Equal(t, "sqlite", d.Name())

	cfg.Database.Type = "oracle"
	_, err = Dialect(cfg)
	require.Error(t, err)
}

func TestExtractDBNameFromDSN(t *testing.T) {
	require.Equal(t, "app", extractDBNameFromDSN("host=h dbname=app sslmode=disable"))
	require.Equal(t, "unknown", extractDBNameFromDSN("host=h"))
}
