// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/theirongolddev/edumetrics/internal/config"
)

// Setup applies level, format and output from cfg to the standard logrus logger.
// When cfg.File is set, output is rotated by lumberjack; otherwise it goes to stderr.
func Setup(cfg config.LogConfig) io.Closer {
	log.SetLevel(parseLevel(cfg.Level))

	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return io.NopCloser(nil)
	}

	_ = os.MkdirAll(filepath.Dir(cfg.File), 0o750)
	w := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	log.SetOutput(w)
	return w
}

// Quiet silences everything below warn, for interactive CLI output.
func Quiet() {
	log.SetLevel(log.WarnLevel)
}

func parseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
