package store

import "context"

// FileInfo holds the tracked mtime and size for an imported file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all imported files.
func (s *DB) GetTrackedFiles(ctx context.Context) (map[string]FileInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// TrackFile records a file as imported at the given mtime and size.
func (s *DB) TrackFile(ctx context.Context, path string, fi FileInfo) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO file_tracker (file_path, mtime_ns, size_bytes)
		VALUES (?, ?, ?)
		ON CONFLICT (file_path) DO UPDATE SET mtime_ns = excluded.mtime_ns, size_bytes = excluded.size_bytes`),
		path, fi.MtimeNs, fi.SizeBytes)
	return err
}

// DeleteFileTracker removes a file tracking entry.
func (s *DB) DeleteFileTracker(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM file_tracker WHERE file_path = ?"), path)
	return err
}
