package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/ludo/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_Console(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "console"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "trace", Format: "json"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "xml"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_LevelApplied(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.Nil(t, logger.Check(zapcore.DebugLevel, "debug entry"), "debug must be disabled at warn level")
}

func TestConnFields(t *testing.T) {
	assert.Len(t, ConnFields("c1", ""), 1)

	fields := ConnFields("c1", "123456")
	require.Len(t, fields, 2)
	assert.Equal(t, "conn_id", fields[0].Key)
	assert.Equal(t, "room_id", fields[1].Key)
	assert.Equal(t, "123456", fields[1].String)

	fields = ConnFields("c1", "", zap.String("event", "roll_dice"))
	require.Len(t, fields, 2)
	assert.Equal(t, "event", fields[1].Key)
}
