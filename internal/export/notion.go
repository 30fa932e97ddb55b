package export

import (
	"context"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-engine/internal/model"
	"github.com/sells-group/lead-engine/internal/resilience"
	"github.com/sells-group/lead-engine/pkg/notion"
)

// NotionKeyProperty is the database property that links a page to a lead.
const NotionKeyProperty = "Lead ID"

// NotionExporter upserts leads as pages of a Notion database, matching
// existing pages on NotionKeyProperty.
type NotionExporter struct {
	client     notion.Client
	databaseID string
	retry      resilience.RetryConfig
}

// NewNotionExporter creates a NotionExporter.
func NewNotionExporter(client notion.Client, databaseID string, retry resilience.RetryConfig) *NotionExporter {
	return &NotionExporter{client: client, databaseID: databaseID, retry: retry}
}

// Name implements Exporter.
func (e *NotionExporter) Name() string { return "notion" }

// Export implements Exporter. A page that fails after retries is counted as
// failed and the export continues; only the initial index query is fatal.
func (e *NotionExporter) Export(ctx context.Context, leads []model.Lead) (Result, error) {
	pages, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) ([]notionapi.Page, error) {
		return notion.QueryAll(ctx, e.client, e.databaseID, nil)
	})
	if err != nil {
		return Result{}, eris.Wrap(err, "export: notion index")
	}
	existing := notion.IndexPages(pages, NotionKeyProperty)

	var res Result
	for i := range leads {
		if err := ctx.Err(); err != nil {
			return res, eris.Wrap(err, "export: notion")
		}
		l := &leads[i]
		props := LeadProperties(l)

		if pageID, ok := existing[l.ID]; ok {
			err = resilience.Do(ctx, e.retry, func(ctx context.Context) error {
				_, err := e.client.UpdatePage(ctx, pageID, &notionapi.PageUpdateRequest{Properties: props})
				return err
			})
			if err == nil {
				res.Updated++
			}
		} else {
			err = resilience.Do(ctx, e.retry, func(ctx context.Context) error {
				_, err := e.client.CreatePage(ctx, &notionapi.PageCreateRequest{
					Parent: notionapi.Parent{
						Type:       notionapi.ParentTypeDatabaseID,
						DatabaseID: notionapi.DatabaseID(e.databaseID),
					},
					Properties: props,
				})
				return err
			})
			if err == nil {
				res.Created++
			}
		}
		if err != nil {
			res.Failed++
			zap.L().Warn("export: notion page failed",
				zap.String("lead_id", l.ID),
				zap.String("name", l.Name),
				zap.Error(err),
			)
		}
	}
	res.Exported = res.Created + res.Updated
	return res, nil
}

// LeadProperties maps a lead to Notion database properties. Absent optional
// fields are omitted so existing page values are left alone on update.
func LeadProperties(l *model.Lead) notionapi.Properties {
	props := notionapi.Properties{
		"Name":             notion.Title(l.Name),
		NotionKeyProperty:  notion.Text(l.ID),
		"Score":            notion.Number(float64(l.TotalScore)),
		"Priority":         notion.Number(float64(l.ScorePriority)),
		"Data Quality":     notion.Number(float64(l.DataQualityScore)),
		"Enrichment Score": notion.Number(float64(l.EnrichmentScore)),
		"Verified":         notion.Checkbox(l.Verified),
	}
	if l.ScoreCategory != "" {
		props["Category"] = notion.Select(string(l.ScoreCategory))
	}
	if l.Source != "" {
		props["Source"] = notion.Select(l.Source)
	}
	if l.Platform != "" {
		props["Platform"] = notion.Select(l.Platform)
	}
	if l.Email != nil {
		props["Email"] = notionapi.EmailProperty{Type: notionapi.PropertyTypeEmail, Email: *l.Email}
	}
	if l.Phone != nil {
		props["Phone"] = notionapi.PhoneNumberProperty{Type: notionapi.PropertyTypePhoneNumber, PhoneNumber: *l.Phone}
	}
	if l.Website != nil {
		props["Website"] = notion.URL(*l.Website)
	}
	if l.Address != nil {
		props["Address"] = notion.Text(*l.Address)
	}
	if l.Location != nil {
		props["Location"] = notion.Text(*l.Location)
	}
	if l.Industry != nil {
		props["Industry"] = notion.Select(*l.Industry)
	}
	if len(l.PainPoints) > 0 {
		props["Pain Points"] = notion.MultiSelect(l.PainPoints)
	}
	if l.ScoringUpdatedAt != nil {
		props["Last Scored"] = notion.Date(l.ScoringUpdatedAt.UTC().Truncate(time.Second))
	}
	return props
}
