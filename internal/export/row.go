package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-engine/internal/model"
)

// Row is the flat, spreadsheet-friendly shape of a lead.
type Row struct {
	ID               string `csv:"id"`
	Name             string `csv:"name"`
	Source           string `csv:"source"`
	Platform         string `csv:"platform"`
	Email            string `csv:"email"`
	Phone            string `csv:"phone"`
	Website          string `csv:"website"`
	Address          string `csv:"address"`
	Location         string `csv:"location"`
	Industry         string `csv:"industry"`
	BusinessType     string `csv:"business_type"`
	TotalScore       int    `csv:"total_score"`
	ScoreCategory    string `csv:"score_category"`
	ScoreLabel       string `csv:"score_label"`
	ScorePriority    int    `csv:"score_priority"`
	DataQualityScore int    `csv:"data_quality_score"`
	EnrichmentScore  int    `csv:"enrichment_score"`
	Followers        string `csv:"followers"`
	EngagementRate   string `csv:"engagement_rate"`
	PainPoints       string `csv:"pain_points"`
	SocialHandles    string `csv:"social_handles"`
	Tags             string `csv:"tags"`
	Verified         bool   `csv:"verified"`
	AutoIntegrated   bool   `csv:"auto_integrated"`
	SourceURL        string `csv:"source_url"`
	CreatedAt        string `csv:"created_at"`
	ScoringUpdatedAt string `csv:"scoring_updated_at"`
	Notes            string `csv:"notes"`
}

// ToRow flattens a lead. Lists are joined with ", " and social handles are
// JSON-encoded.
func ToRow(l *model.Lead) Row {
	r := Row{
		ID:               l.ID,
		Name:             l.Name,
		Source:           l.Source,
		Platform:         l.Platform,
		Email:            model.Deref(l.Email),
		Phone:            model.Deref(l.Phone),
		Website:          model.Deref(l.Website),
		Address:          model.Deref(l.Address),
		Location:         model.Deref(l.Location),
		Industry:         model.Deref(l.Industry),
		BusinessType:     model.Deref(l.BusinessType),
		TotalScore:       l.TotalScore,
		ScoreCategory:    string(l.ScoreCategory),
		ScoreLabel:       l.ScoreLabel,
		ScorePriority:    l.ScorePriority,
		DataQualityScore: l.DataQualityScore,
		EnrichmentScore:  l.EnrichmentScore,
		PainPoints:       strings.Join(l.PainPoints, ", "),
		Tags:             strings.Join(l.Tags, ", "),
		Verified:         l.Verified,
		AutoIntegrated:   l.AutoIntegrated,
		SourceURL:        l.SourceURL,
		Notes:            l.Notes,
	}
	if l.Followers != nil {
		r.Followers = strconv.Itoa(*l.Followers)
	}
	if l.EngagementRate != nil {
		r.EngagementRate = strconv.FormatFloat(*l.EngagementRate, 'f', -1, 64)
	}
	if len(l.SocialHandles) > 0 {
		if b, err := json.Marshal(l.SocialHandles); err == nil {
			r.SocialHandles = string(b)
		}
	}
	if l.CreatedAt != nil {
		r.CreatedAt = l.CreatedAt.String()
	}
	if l.ScoringUpdatedAt != nil {
		r.ScoringUpdatedAt = l.ScoringUpdatedAt.UTC().Format(time.RFC3339)
	}
	return r
}

// recordWriter is the csvutil.Writer contract; both *csv.Writer and
// tableWriter satisfy it.
type recordWriter interface {
	Write(record []string) error
}

// encodeRows writes a header and one record per lead.
func encodeRows(w recordWriter, leads []model.Lead) error {
	enc := csvutil.NewEncoder(w)
	enc.AutoHeader = false
	if err := enc.EncodeHeader(Row{}); err != nil {
		return eris.Wrap(err, "export: encode header")
	}
	for i := range leads {
		if err := enc.Encode(ToRow(&leads[i])); err != nil {
			return eris.Wrapf(err, "export: encode lead %q", leads[i].Name)
		}
	}
	return nil
}

// WriteCSV writes leads as CSV with a header row.
func WriteCSV(out io.Writer, leads []model.Lead) error {
	w := csv.NewWriter(out)
	if err := encodeRows(w, leads); err != nil {
		return err
	}
	w.Flush()
	return eris.Wrap(w.Error(), "export: flush csv")
}

// tableWriter collects encoded records in memory.
type tableWriter struct {
	rows [][]string
}

func (t *tableWriter) Write(record []string) error {
	t.rows = append(t.rows, append([]string(nil), record...))
	return nil
}

// Table returns leads as a header row followed by one row per lead.
func Table(leads []model.Lead) ([][]string, error) {
	var t tableWriter
	if err := encodeRows(&t, leads); err != nil {
		return nil, err
	}
	return t.rows, nil
}
