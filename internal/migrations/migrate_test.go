package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations_Paired(t *testing.T) {
	entries, err := fs.ReadDir(files, "sql")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	assert.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestEmbeddedMigrations_Source(t *testing.T) {
	source, err := iofs.New(files, "sql")
	require.NoError(t, err)
	defer func() { _ = source.Close() }()

	first, err := source.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	next, err := source.Next(first)
	require.NoError(t, err)
	assert.Equal(t, uint(2), next)
}

func TestSchemaCoversStores(t *testing.T) {
	var all strings.Builder
	entries, err := fs.ReadDir(files, "sql")
	require.NoError(t, err)
	for _, e := range entries {
		data, err := fs.ReadFile(files, "sql/"+e.Name())
		require.NoError(t, err)
		all.Write(data)
	}

	for _, table := range []string{"countries", "products", "trade_agreements", "duty_rates", "preferential_rates", "shipping_rates", "exchange_rates"} {
		assert.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, all.String(), "ADD COLUMN IF NOT EXISTS vat_rate")
}
