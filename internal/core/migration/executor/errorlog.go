package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/satishbabariya/ctf-migrate/internal/adapters/storage"
)

// ErrorLog appends request failures to errors-<unix-ms>.log. The file name
// is fixed on the first write, so one run produces at most one file.
type ErrorLog struct {
	store storage.Storage
	dir   string
	now   func() time.Time

	mu   sync.Mutex
	path string
}

// NewErrorLog creates an error log writing into dir.
func NewErrorLog(store storage.Storage, dir string, now func() time.Time) *ErrorLog {
	return &ErrorLog{store: store, dir: dir, now: now}
}

// Write appends err under the given intent and returns the log path.
func (l *ErrorLog) Write(ctx context.Context, intent string, err error) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now()
	if l.path == "" {
		l.path = filepath.Join(l.dir, fmt.Sprintf("errors-%d.log", ts.UnixMilli()))
	}

	line := fmt.Sprintf("%s  %s\n%s\n\n", ts.UTC().Format(time.RFC3339), intent, err.Error())
	if werr := l.store.Append(ctx, l.path, []byte(line)); werr != nil {
		return "", fmt.Errorf("failed to write error log: %w", werr)
	}
	return l.store.Resolve(l.path), nil
}

// Path returns the log path, or the empty string if nothing was written.
func (l *ErrorLog) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.path == "" {
		return ""
	}
	return l.store.Resolve(l.path)
}
