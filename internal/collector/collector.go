// Package collector reads raw lead records from collector output files: JSON
// arrays or {"items": [...]} objects, CSV with a header row and XLSX sheets.
package collector

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-engine/internal/model"
)

// Mode selects how CSV files are interpreted.
type Mode int

const (
	// ModeGeneric keeps every CSV column as a raw field.
	ModeGeneric Mode = iota
	// ModeScraper requires Name and Address columns and keeps only name,
	// address, website and phone, lower-cased and trimmed.
	ModeScraper
)

// Extensions handled by ReadFile.
const (
	ExtJSON = ".json"
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
)

// Batch is the result of reading a directory of collector files.
type Batch struct {
	Records []model.RawRecord
	Files   []string
	Skipped []string
}

// ReadFile reads a single collector file, choosing the parser from the file
// extension.
func ReadFile(ctx context.Context, path string, mode Mode) ([]model.RawRecord, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ExtJSON:
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "collector: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return ReadJSON(f)
	case ExtCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "collector: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		if mode == ModeScraper {
			return ParseScraperCSV(f)
		}
		return ReadCSV(ctx, f, CSVOptions{TrimSpace: true})
	case ExtXLSX:
		return ReadXLSXRecords(path, XLSXOptions{})
	}
	return nil, eris.Errorf("collector: unsupported file type %q", ext)
}

// LoadDir reads every *.json and *.csv file in dir (and *.xlsx in generic
// mode) in name order. Files that fail to parse are logged and skipped. A
// positive limit truncates the combined record list.
func LoadDir(ctx context.Context, dir string, mode Mode, limit int) (*Batch, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "collector: create %s", dir)
	}

	patterns := []string{"*" + ExtJSON, "*" + ExtCSV}
	if mode == ModeGeneric {
		patterns = append(patterns, "*"+ExtXLSX)
	}

	var files []string
	for _, p := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, p))
		if err != nil {
			return nil, eris.Wrapf(err, "collector: glob %s", p)
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}

	batch := &Batch{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "collector: context cancelled")
		}
		recs, err := ReadFile(ctx, path, mode)
		if err != nil {
			zap.L().Warn("collector: skipping unreadable file",
				zap.String("path", path),
				zap.Error(err),
			)
			batch.Skipped = append(batch.Skipped, path)
			continue
		}
		batch.Files = append(batch.Files, path)
		batch.Records = append(batch.Records, recs...)
	}

	if limit > 0 && len(batch.Records) > limit {
		batch.Records = batch.Records[:limit]
	}

	zap.L().Debug("collector: loaded directory",
		zap.String("dir", dir),
		zap.Int("files", len(batch.Files)),
		zap.Int("records", len(batch.Records)),
	)
	return batch, nil
}
