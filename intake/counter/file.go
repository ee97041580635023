package counter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/m3rciful/intakebot/core/logger"
)

// FileSource keeps the counter as decimal text in a single file. Writes go through a
// temporary file and a rename so a crash never leaves a torn value. It is safe for one process.
type FileSource struct {
	mu   sync.Mutex
	path string
}

// NewFileSource creates the file with "0" when it does not exist yet.
func NewFileSource(path string) (*FileSource, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("counter dir: %w", err)
		}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeAtomic(path, 0); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("counter stat: %w", err)
	}
	return &FileSource{path: path}, nil
}

func (f *FileSource) Next(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("counter read: %w", err)
	}
	cur, perr := strconv.Atoi(strings.TrimSpace(string(data)))
	if perr != nil || cur < 0 {
		logger.Warn(ctx, "intake.counter", "counter.reset", logger.Err(fmt.Errorf("invalid counter value %q", logger.SanitizeLimit(string(data), 32))))
		cur = 0
	}
	next := cur + 1
	if err := writeAtomic(f.path, next); err != nil {
		return 0, err
	}
	return next, nil
}

func writeAtomic(path string, v int) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("counter temp: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.WriteString(strconv.Itoa(v)); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("counter write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("counter sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("counter close: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("counter rename: %w", err)
	}
	return nil
}
