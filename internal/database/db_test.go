package database

import (
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn := DSN("wardrobe", "p@ss", "db", "3306", "wardrobe")

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "wardrobe", cfg.User)
	assert.Equal(t, "p@ss", cfg.Passwd)
	assert.Equal(t, "db:3306", cfg.Addr)
	assert.Equal(t, "wardrobe", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "UTC", cfg.Loc.String())
}

func TestSchemaOrder(t *testing.T) {
	// every table referenced by a foreign key is created before it is used
	created := map[string]bool{}
	for _, stmt := range schema {
		name := strings.Fields(strings.SplitN(stmt, "EXISTS", 2)[1])[0]
		for _, part := range strings.Split(stmt, "REFERENCES ")[1:] {
			ref := part[:strings.Index(part, "(")]
			assert.True(t, created[ref] || ref == name, "%s references %s before it exists", name, ref)
		}
		created[name] = true
	}
	assert.Len(t, created, 9)
}
