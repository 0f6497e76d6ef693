package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// OutputManager handles CSV export of TickStats and Bookmarks, mirroring
// pthm-soup/telemetry.OutputManager's per-file, header-once shape.
type OutputManager struct {
	dir       string
	statsFile *os.File
	bookFile  *os.File

	statsHeaderWritten bool
	bookHeaderWritten  bool
}

// NewOutputManager creates the output directory and opens its CSV files.
// Returns nil, nil if dir is empty (output disabled), the same convention
// the teacher's NewOutputManager uses.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	statsPath := filepath.Join(dir, "stats.csv")
	f, err := os.Create(statsPath)
	if err != nil {
		return nil, fmt.Errorf("creating stats.csv: %w", err)
	}
	om.statsFile = f

	bookPath := filepath.Join(dir, "bookmarks.csv")
	f, err = os.Create(bookPath)
	if err != nil {
		om.statsFile.Close()
		return nil, fmt.Errorf("creating bookmarks.csv: %w", err)
	}
	om.bookFile = f

	return om, nil
}

// WriteStats appends a TickStats record to stats.csv.
func (om *OutputManager) WriteStats(stats TickStats) error {
	if om == nil {
		return nil
	}
	records := []TickStats{stats}
	if !om.statsHeaderWritten {
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		om.statsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// WriteBookmark appends a Bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	records := []Bookmark{b}
	if !om.bookHeaderWritten {
		if err := gocsv.Marshal(records, om.bookFile); err != nil {
			return fmt.Errorf("writing bookmark: %w", err)
		}
		om.bookHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.bookFile); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// Close closes the underlying files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	err1 := om.statsFile.Close()
	err2 := om.bookFile.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
