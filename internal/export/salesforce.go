package export

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-engine/internal/model"
	"github.com/sells-group/lead-engine/internal/resilience"
	"github.com/sells-group/lead-engine/pkg/salesforce"
)

// SalesforceExporter upserts leads as Accounts, matching existing accounts
// by website.
type SalesforceExporter struct {
	client     salesforce.Client
	scoreField string
}

// SalesforceOption configures a SalesforceExporter.
type SalesforceOption func(*SalesforceExporter)

// WithScoreField writes the total score to a custom Account field such as
// Lead_Score__c. The field must exist on the org.
func WithScoreField(name string) SalesforceOption {
	return func(e *SalesforceExporter) { e.scoreField = name }
}

// NewSalesforceExporter creates a SalesforceExporter whose API calls are
// retried with retry.
func NewSalesforceExporter(client salesforce.Client, retry resilience.RetryConfig, opts ...SalesforceOption) *SalesforceExporter {
	e := &SalesforceExporter{client: &retryingClient{next: client, cfg: retry}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements Exporter.
func (e *SalesforceExporter) Name() string { return "salesforce" }

// Export implements Exporter.
func (e *SalesforceExporter) Export(ctx context.Context, leads []model.Lead) (Result, error) {
	if len(leads) == 0 {
		return Result{}, nil
	}
	if e.scoreField != "" {
		missing, err := salesforce.MissingFields(ctx, e.client, salesforce.AccountObject, []string{e.scoreField})
		if err != nil {
			return Result{}, eris.Wrap(err, "export: salesforce describe")
		}
		if len(missing) > 0 {
			return Result{}, eris.Errorf("export: salesforce account is missing fields %s", strings.Join(missing, ", "))
		}
	}

	websites := make([]string, 0, len(leads))
	for i := range leads {
		if leads[i].Website != nil {
			websites = append(websites, *leads[i].Website)
		}
	}
	existing, err := salesforce.FindAccountsByWebsite(ctx, e.client, websites)
	if err != nil {
		return Result{}, eris.Wrap(err, "export: salesforce lookup")
	}

	var (
		inserts []map[string]any
		updates []salesforce.CollectionRecord
	)
	for i := range leads {
		fields := e.AccountFields(&leads[i])
		if id, ok := existing[model.Deref(leads[i].Website)]; ok && leads[i].Website != nil {
			updates = append(updates, salesforce.CollectionRecord{ID: id, Fields: fields})
			continue
		}
		inserts = append(inserts, fields)
	}

	var res Result
	if len(updates) > 0 {
		br, err := salesforce.BulkUpdateAccounts(ctx, e.client, updates)
		res.Updated, res.Failed = br.Succeeded, br.Failed
		logBatchErrors("update", br)
		if err != nil {
			res.Exported = res.Updated
			return res, eris.Wrap(err, "export: salesforce update")
		}
	}
	if len(inserts) > 0 {
		br, err := salesforce.BulkInsertAccounts(ctx, e.client, inserts)
		res.Created = br.Succeeded
		res.Failed += br.Failed
		logBatchErrors("insert", br)
		if err != nil {
			res.Exported = res.Created + res.Updated
			return res, eris.Wrap(err, "export: salesforce insert")
		}
	}
	res.Exported = res.Created + res.Updated
	return res, nil
}

// AccountFields maps a lead to Account fields. Absent optional fields are
// omitted.
func (e *SalesforceExporter) AccountFields(l *model.Lead) map[string]any {
	fields := map[string]any{
		"Name":   l.Name,
		"Rating": accountRating(l.ScoreCategory),
	}
	if l.Website != nil {
		fields["Website"] = *l.Website
	}
	if l.Phone != nil {
		fields["Phone"] = *l.Phone
	}
	if l.Industry != nil {
		fields["Industry"] = *l.Industry
	}
	if l.Address != nil {
		fields["BillingStreet"] = *l.Address
	}
	if l.Location != nil {
		fields["BillingCity"] = *l.Location
	}
	if l.Source != "" {
		fields["AccountSource"] = l.Source
	}
	if desc := accountDescription(l); desc != "" {
		fields["Description"] = desc
	}
	if e.scoreField != "" {
		fields[e.scoreField] = l.TotalScore
	}
	return fields
}

// accountRating maps a tier onto the standard Account rating picklist.
func accountRating(c model.Category) string {
	switch c {
	case model.CategoryHot:
		return "Hot"
	case model.CategoryWarm:
		return "Warm"
	default:
		return "Cold"
	}
}

func accountDescription(l *model.Lead) string {
	var parts []string
	if l.Notes != "" {
		parts = append(parts, l.Notes)
	}
	if len(l.PainPoints) > 0 {
		parts = append(parts, "Pain points: "+strings.Join(l.PainPoints, ", "))
	}
	return strings.Join(parts, "\n")
}

func logBatchErrors(op string, br salesforce.BatchResult) {
	for _, msg := range br.Errors {
		zap.L().Warn("export: salesforce record failed",
			zap.String("op", op),
			zap.String("error", msg),
		)
	}
}

// retryingClient retries reads and updates on transient errors.
type retryingClient struct {
	next salesforce.Client
	cfg  resilience.RetryConfig
}

func (c *retryingClient) Query(ctx context.Context, soql string, out any) error {
	return resilience.Do(ctx, c.cfg, func(ctx context.Context) error {
		return c.next.Query(ctx, soql, out)
	})
}

// InsertCollection is attempted once. A failed request may have committed
// some records, and repeating it would create duplicate accounts.
func (c *retryingClient) InsertCollection(ctx context.Context, sObjectName string, records []map[string]any) ([]salesforce.CollectionResult, error) {
	return c.next.InsertCollection(ctx, sObjectName, records)
}

func (c *retryingClient) UpdateCollection(ctx context.Context, sObjectName string, records []salesforce.CollectionRecord) ([]salesforce.CollectionResult, error) {
	return resilience.DoVal(ctx, c.cfg, func(ctx context.Context) ([]salesforce.CollectionResult, error) {
		return c.next.UpdateCollection(ctx, sObjectName, records)
	})
}

func (c *retryingClient) DescribeSObject(ctx context.Context, name string) (*salesforce.SObjectDescription, error) {
	return resilience.DoVal(ctx, c.cfg, func(ctx context.Context) (*salesforce.SObjectDescription, error) {
		return c.next.DescribeSObject(ctx, name)
	})
}
