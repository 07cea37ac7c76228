package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/edumetrics/internal/config"
)

func TestSetup_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "edumetrics.log")
	closer := Setup(config.LogConfig{Level: "debug", Format: "json", File: path, MaxSizeMB: 1})
	defer func() {
		_ = closer.Close()
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	}()

	assert.Equal(t, log.DebugLevel, log.GetLevel())
	log.WithField("module_id", 7).Warn("fetch failed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"module_id":7`)
}

func TestParseLevel_Fallback(t *testing.T) {
	assert.Equal(t, log.InfoLevel, parseLevel("loud"))
	assert.Equal(t, log.ErrorLevel, parseLevel(" error "))
}
