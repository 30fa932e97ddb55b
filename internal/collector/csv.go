package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-engine/internal/model"
)

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// headerAliases maps lower-cased CSV column names onto raw record keys.
var headerAliases = map[string]string{
	"site":      "website",
	"url":       "website",
	"telephone": "phone",
	"tel":       "phone",
}

// StreamCSV reads CSV rows and sends them to a channel. Both channels are
// closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := newCSVReader(r, opts)
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			if opts.TrimSpace {
				for i, field := range record {
					record[i] = strings.TrimSpace(field)
				}
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

func newCSVReader(r io.Reader, opts CSVOptions) *csv.Reader {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields
	return reader
}

// ReadCSV reads a CSV file with a header row into raw records. Header names
// are lower-cased and common aliases mapped onto record keys; empty cells are
// omitted.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) ([]model.RawRecord, error) {
	rowCh, errCh := StreamCSV(ctx, r, opts)

	var (
		header []string
		out    []model.RawRecord
	)
	for row := range rowCh {
		if header == nil {
			header = normalizeHeader(row)
			continue
		}
		out = append(out, rowToRecord(header, row))
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeHeader(row []string) []string {
	header := make([]string, len(row))
	for i, h := range row {
		h = strings.ToLower(strings.TrimSpace(h))
		if alias, ok := headerAliases[h]; ok {
			h = alias
		}
		header[i] = h
	}
	return header
}

func rowToRecord(header, row []string) model.RawRecord {
	rec := make(model.RawRecord, len(header))
	for i, key := range header {
		if key == "" || i >= len(row) {
			continue
		}
		if _, dup := rec[key]; dup {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			rec[key] = v
		}
	}
	return rec
}

// ScraperSource is the source recorded for rows read by ParseScraperCSV.
const ScraperSource = "google_maps_csv"

// ErrMissingColumns is returned when a scraper CSV lacks Name or Address.
var ErrMissingColumns = eris.New("csv: must contain at least Name and Address columns")

type scraperRow struct {
	Name    string `csv:"name"`
	Address string `csv:"address"`
	Website string `csv:"website,omitempty"`
	Phone   string `csv:"phone,omitempty"`
}

var scraperColumns = []struct {
	field   string
	aliases []string
}{
	{"name", []string{"name"}},
	{"address", []string{"address"}},
	{"website", []string{"website", "site", "url"}},
	{"phone", []string{"phone", "telephone", "tel"}},
}

// ParseScraperCSV parses map-scraper CSV output. Column names match
// case-insensitively; the first present alias wins for website and phone.
// Values are lower-cased and trimmed, and rows missing a name or address are
// dropped.
func ParseScraperCSV(r io.Reader) ([]model.RawRecord, error) {
	reader := newCSVReader(r, CSVOptions{})
	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingColumns
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}

	index := make(map[string]int, len(first))
	for i, h := range first {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	header := make([]string, len(first))
	for i := range header {
		header[i] = "_col" + strconv.Itoa(i)
	}
	for _, col := range scraperColumns {
		for _, alias := range col.aliases {
			if i, ok := index[alias]; ok {
				header[i] = col.field
				break
			}
		}
	}
	if _, ok := index["name"]; !ok {
		return nil, ErrMissingColumns
	}
	if _, ok := index["address"]; !ok {
		return nil, ErrMissingColumns
	}

	dec, err := csvutil.NewDecoder(&padReader{r: reader, width: len(header)}, header...)
	if err != nil {
		return nil, eris.Wrap(err, "csv: create decoder")
	}

	var out []model.RawRecord
	for {
		var row scraperRow
		err := dec.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: decode row")
		}

		name := lowerTrim(row.Name)
		address := lowerTrim(row.Address)
		if name == "" || address == "" {
			continue
		}
		out = append(out, model.RawRecord{
			"name":    name,
			"address": address,
			"website": lowerTrim(row.Website),
			"phone":   lowerTrim(row.Phone),
			"source":  ScraperSource,
		})
	}
	return out, nil
}

// padReader pads or truncates ragged rows to the header width so the decoder
// sees a rectangular file.
type padReader struct {
	r     *csv.Reader
	width int
}

func (p *padReader) Read() ([]string, error) {
	rec, err := p.r.Read()
	if err != nil {
		return nil, err
	}
	if len(rec) == p.width {
		return rec, nil
	}
	out := make([]string, p.width)
	copy(out, rec)
	return out, nil
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
