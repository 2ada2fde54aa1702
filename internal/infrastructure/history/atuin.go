package history

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/quickstart-go/internal/domain"
)

const (
	atuinQuery = `SELECT timestamp, duration, command FROM history
		WHERE deleted_at IS NULL AND timestamp >= ?
		ORDER BY timestamp ASC`
	// Databases created before soft deletes existed have no deleted_at column.
	atuinLegacyQuery = `SELECT timestamp, duration, command FROM history
		WHERE timestamp >= ?
		ORDER BY timestamp ASC`
)

// readAtuin queries atuin's history.db read-only. Timestamps and durations are nanoseconds.
func readAtuin(ctx context.Context, path string, cutoff time.Time) ([]domain.HistoryEntry, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	dsn := url.URL{Scheme: "file", Path: path, RawQuery: "mode=ro"}
	db, err := sql.Open("sqlite", dsn.String())
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, atuinQuery, cutoff.UnixNano())
	if err != nil {
		rows, err = db.QueryContext(ctx, atuinLegacyQuery, cutoff.UnixNano())
		if err != nil {
			return nil, err
		}
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var (
			stamp    int64
			duration sql.NullInt64
			command  string
		)
		if err := rows.Scan(&stamp, &duration, &command); err != nil {
			continue
		}
		entry := domain.HistoryEntry{
			Command:   command,
			Timestamp: time.Unix(0, stamp),
		}
		if duration.Valid && duration.Int64 > 0 {
			entry.Duration = time.Duration(duration.Int64)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
