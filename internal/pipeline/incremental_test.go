package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/store"
)

func writeJSONL(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	var data []byte
	for _, l := range lines {
		data = append(data, l...)
		data = append(data, '\n')
	}
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestImport_SkipsUnchangedFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	db, err := store.Open(ctx, store.DriverSQLite, filepath.Join(dir, "db", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	exports := filepath.Join(dir, "exports")
	writeJSONL(t, filepath.Join(exports, "a.jsonl"),
		`{"conversationId":"c1","timestamp":1717236000000,"messageId":"m1","moduleId":10,"tokenCount":5}`,
		`{"conversationId":"c1","timestamp":1717236001000,"messageId":"m2","moduleId":10}`,
		`garbage`,
	)
	writeJSONL(t, filepath.Join(exports, "b.ndjson"),
		`{"conversationId":"c2","timestamp":1717236002000,"moduleId":20}`,
	)

	var progress []int
	res, err := Import(ctx, exports, db, false, func(cur, _ int) { progress = append(progress, cur) })
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalFiles)
	assert.Equal(t, 2, res.ParsedFiles)
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, 1, res.ParseErrors)
	assert.Len(t, progress, 2)

	again, err := Import(ctx, exports, db, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Skipped)
	assert.Zero(t, again.Inserted)

	forced, err := Import(ctx, exports, db, true, nil)
	require.NoError(t, err)
	assert.Zero(t, forced.Skipped)
	assert.Equal(t, 3, forced.Inserted)

	// Touching a file makes it eligible again.
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(exports, "b.ndjson"), later, later))
	touched, err := Import(ctx, exports, db, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, touched.Skipped)
	assert.Equal(t, 1, touched.Inserted)

	events, err := db.QueryEvents(ctx, model.EventQuery{})
	require.NoError(t, err)
	assert.Len(t, events, 3, "re-imports upsert by identity")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeJSONL(t, filepath.Join(dir, "x.jsonl"),
		`{"conversationId":"c1","timestamp":1000,"messageId":"m1"}`,
		`{"conversationId":"c1","timestamp":1000,"messageId":"m1"}`,
	)

	res, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ParsedFiles)
	assert.Len(t, res.Events, 1)
	assert.Equal(t, 1, res.Duplicates)

	empty, err := Load(filepath.Join(dir, "missing"), nil)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalFiles)
}
