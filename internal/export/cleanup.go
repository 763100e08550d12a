package export

import (
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/zap"
)

// Only files written by the compiler are eligible for cleanup. The pattern
// also keeps the sweep away from anything mid-write, since temp files
// never match and a renamed export is always complete.
var exportFilePattern = regexp.MustCompile(`^.+_(complete|bill|analysis)_data_\d{8}_\d{6}\.csv$`)

// CleanupOldExports deletes export files whose modification time is older
// than the retention window. Individual delete failures are logged and do
// not abort the sweep. Returns the number of files removed.
func (c *Compiler) CleanupOldExports(retention time.Duration) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !exportFilePattern.MatchString(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			c.logger.Warn("stat export file failed",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(c.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			c.logger.Warn("delete old export failed",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		c.logger.Info("old exports removed", zap.Int("count", removed))
	}
	return removed, nil
}
