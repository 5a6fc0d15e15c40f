// Package archive persists daily reports as one JSON file per date.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"diderot/internal/core"

	"github.com/spf13/afero"
)

// ErrInvalidDate is returned for date keys that are not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid report date")

// Archive reads and writes <dir>/YYYY-MM-DD.json.
type Archive struct {
	fs  afero.Fs
	dir string
}

// New creates an archive rooted at dir on the OS filesystem.
func New(dir string) *Archive {
	return NewWithFs(afero.NewOsFs(), dir)
}

// NewWithFs creates an archive on an arbitrary filesystem.
func NewWithFs(fs afero.Fs, dir string) *Archive {
	return &Archive{fs: fs, dir: dir}
}

// Dir returns the archive directory.
func (a *Archive) Dir() string {
	return a.dir
}

// ValidateDate checks that date is a real YYYY-MM-DD calendar date.
func ValidateDate(date string) error {
	if _, err := core.ParseDate(date); err != nil {
		return fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, date)
	}
	return nil
}

// Path returns the file holding the report for date.
func (a *Archive) Path(date string) string {
	return filepath.Join(a.dir, date+".json")
}

// Load returns the stored report for date, or nil, nil when none exists.
func (a *Archive) Load(date string) (*core.DailyReport, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(a.fs, a.Path(date))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read report %s: %v", core.ErrCacheIO, date, err)
	}

	var report core.DailyReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("%w: report %s is corrupt: %v", core.ErrCacheIO, date, err)
	}
	return &report, nil
}

// Save writes report for date, replacing any previous one. The file is written to
// a temporary name and renamed so a failed write never leaves a partial report.
func (a *Archive) Save(date string, report *core.DailyReport) error {
	if err := ValidateDate(date); err != nil {
		return err
	}
	if report == nil {
		return fmt.Errorf("%w: refusing to save empty report for %s", core.ErrCacheIO, date)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode report %s: %v", core.ErrCacheIO, date, err)
	}

	if err := a.fs.MkdirAll(a.dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create report directory: %v", core.ErrCacheIO, err)
	}

	tmp, err := afero.TempFile(a.fs, a.dir, "."+date+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", core.ErrCacheIO, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = a.fs.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: failed to write report %s: %v", core.ErrCacheIO, date, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to write report %s: %v", core.ErrCacheIO, date, err)
	}

	if err := a.fs.Rename(tmpName, a.Path(date)); err != nil {
		return fmt.Errorf("%w: failed to store report %s: %v", core.ErrCacheIO, date, err)
	}
	return nil
}

// List returns the dates with a stored report, newest first.
func (a *Archive) List() ([]string, error) {
	entries, err := afero.ReadDir(a.fs, a.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list reports: %v", core.ErrCacheIO, err)
	}

	dates := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		date := strings.TrimSuffix(e.Name(), ".json")
		if ValidateDate(date) == nil {
			dates = append(dates, date)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}
