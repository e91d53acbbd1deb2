package database

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestHealthCheckWithStats(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	stats, err := HealthCheckWithStats(db)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.Open, 0)

	// The readiness endpoint serializes the pool stats directly
	raw, err := json.Marshal(stats)
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	for _, key := range []string{"max_open_connections", "open_connections", "in_use", "idle", "wait_count"} {
		assert.Contains(t, payload, key)
	}
}
