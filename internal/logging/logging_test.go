package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf})

	log.With(String("dict", "candidates")).Info(context.Background(), "comparison done",
		Int("topologies", 3), Float("ratio", 1.5), Err(errors.New("boom")))

	entry := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "comparison done", entry["msg"])
	assert.Equal(t, "candidates", entry["dict"])
	assert.Equal(t, 3.0, entry["topologies"])
	assert.Equal(t, 1.5, entry["ratio"])
	assert.Equal(t, "boom", entry["error"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "hidden")
	assert.Zero(t, buf.Len())

	log.Warn(context.Background(), "shown")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("Debug").Level().String())
	assert.Equal(t, "WARN", parseLevel("warning").Level().String())
	assert.Equal(t, "ERROR", parseLevel("error").Level().String())
	assert.Equal(t, "INFO", parseLevel("").Level().String())
	assert.Equal(t, "INFO", parseLevel("verbose").Level().String())
}

func TestErrNil(t *testing.T) {
	assert.Equal(t, Field{Key: "error", Value: nil}, Err(nil))
}

func TestContextLogger(t *testing.T) {
	assert.Equal(t, Noop(), FromContext(context.Background()))

	var buf bytes.Buffer
	log := New(Config{Output: &buf})
	ctx := ContextWithLogger(context.Background(), log)
	FromContext(ctx).Info(ctx, "from context")
	assert.Contains(t, buf.String(), "from context")

	ctx = ContextWithLogger(context.Background(), nil)
	assert.Equal(t, Noop(), FromContext(ctx))
}

func TestNoop(t *testing.T) {
	log := Noop().With(String("k", "v"))
	log.Error(context.Background(), "dropped")
	assert.Equal(t, Noop(), log)
}
