package pipeline

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/source"
	"github.com/theirongolddev/edumetrics/internal/store"
)

// ImportSink is the write side of the store used by Import.
type ImportSink interface {
	InsertEvents(ctx context.Context, events []model.ChatMessageEvent) (int, error)
	GetTrackedFiles(ctx context.Context) (map[string]store.FileInfo, error)
	TrackFile(ctx context.Context, path string, fi store.FileInfo) error
}

// ImportResult extends LoadResult with file-tracker metadata.
type ImportResult struct {
	LoadResult
	Skipped  int
	Inserted int
}

// Import parses exports under path and writes their events to sink. Files
// whose mtime and size match the tracker are skipped unless force is set.
// A file is tracked only after all its events are stored.
func Import(ctx context.Context, path string, sink ImportSink, force bool, progressFn ProgressFunc) (*ImportResult, error) {
	files, err := source.ScanPath(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}

	result := &ImportResult{LoadResult: LoadResult{TotalFiles: len(files)}}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := sink.GetTrackedFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading file tracker: %w", err)
	}

	var toParse []source.DiscoveredFile
	for _, f := range files {
		prev, ok := tracked[f.Path]
		if !force && ok && prev.MtimeNs == f.ModTime.UnixNano() && prev.SizeBytes == f.SizeBytes {
			result.Skipped++
			continue
		}
		toParse = append(toParse, f)
	}

	for i, pr := range parseFiles(toParse, result.Skipped, result.TotalFiles, progressFn) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if pr.Err != nil {
			result.FileErrors++
			log.WithError(pr.Err).WithField("file", toParse[i].Path).Warn("import: unreadable file")
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		result.Duplicates += pr.Duplicates

		n, err := sink.InsertEvents(ctx, pr.Events)
		if err != nil {
			return result, fmt.Errorf("storing events from %s: %w", toParse[i].Path, err)
		}
		result.Inserted += n

		fi := store.FileInfo{MtimeNs: toParse[i].ModTime.UnixNano(), SizeBytes: toParse[i].SizeBytes}
		if err := sink.TrackFile(ctx, toParse[i].Path, fi); err != nil {
			return result, fmt.Errorf("tracking %s: %w", toParse[i].Path, err)
		}
		if pr.ParseErrors > 0 {
			log.WithFields(log.Fields{"file": toParse[i].Path, "bad_lines": pr.ParseErrors}).Warn("import: skipped malformed lines")
		}
	}
	return result, nil
}
