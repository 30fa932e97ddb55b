package salesforce

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// MaxBatchSize is the Salesforce Collections API limit per request.
const MaxBatchSize = 200

// AccountObject is the SObject leads are exported to.
const AccountObject = "Account"

// Account is the subset of Account fields used to match existing records.
type Account struct {
	ID      string `json:"Id" salesforce:"Id"`
	Name    string `json:"Name" salesforce:"Name"`
	Website string `json:"Website" salesforce:"Website"`
}

// BatchResult aggregates the outcome of a batched collection call.
type BatchResult struct {
	Succeeded int
	Failed    int
	Errors    []string
	IDs       []string
}

func (b *BatchResult) add(results []CollectionResult) {
	for _, r := range results {
		if r.Success {
			b.Succeeded++
			b.IDs = append(b.IDs, r.ID)
			continue
		}
		b.Failed++
		b.Errors = append(b.Errors, strings.Join(r.Errors, "; "))
	}
}

// FindAccountsByWebsite returns Account IDs keyed by website for every website
// that already exists. Lookups are chunked to keep SOQL under its length limit.
func FindAccountsByWebsite(ctx context.Context, c Client, websites []string) (map[string]string, error) {
	found := make(map[string]string)
	uniq := slices.Compact(slices.Sorted(slices.Values(websites)))
	uniq = slices.DeleteFunc(uniq, func(s string) bool { return s == "" })

	for chunk := range slices.Chunk(uniq, MaxBatchSize) {
		quoted := make([]string, len(chunk))
		for i, w := range chunk {
			quoted[i] = "'" + escapeSoql(w) + "'"
		}
		soql := fmt.Sprintf("SELECT Id, Name, Website FROM Account WHERE Website IN (%s)", strings.Join(quoted, ", "))

		var accounts []Account
		if err := c.Query(ctx, soql, &accounts); err != nil {
			return nil, eris.Wrap(err, "sf: find accounts by website")
		}
		for _, a := range accounts {
			if _, ok := found[a.Website]; !ok {
				found[a.Website] = a.ID
			}
		}
	}
	return found, nil
}

// BulkInsertAccounts creates accounts in batches of MaxBatchSize.
func BulkInsertAccounts(ctx context.Context, c Client, records []map[string]any) (BatchResult, error) {
	var out BatchResult
	for start := 0; start < len(records); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(records))
		results, err := c.InsertCollection(ctx, AccountObject, records[start:end])
		if err != nil {
			return out, eris.Wrapf(err, "sf: bulk insert accounts batch %d-%d", start, end)
		}
		out.add(results)
	}
	return out, nil
}

// BulkUpdateAccounts updates accounts in batches of MaxBatchSize.
func BulkUpdateAccounts(ctx context.Context, c Client, records []CollectionRecord) (BatchResult, error) {
	var out BatchResult
	for start := 0; start < len(records); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(records))
		results, err := c.UpdateCollection(ctx, AccountObject, records[start:end])
		if err != nil {
			return out, eris.Wrapf(err, "sf: bulk update accounts batch %d-%d", start, end)
		}
		out.add(results)
	}
	return out, nil
}

// MissingFields returns the names in required that the SObject does not
// define, so an export can fail before writing anything.
func MissingFields(ctx context.Context, c Client, sObject string, required []string) ([]string, error) {
	desc, err := c.DescribeSObject(ctx, sObject)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(desc.Fields))
	for _, f := range desc.Fields {
		have[strings.ToLower(f.Name)] = true
	}
	var missing []string
	for _, name := range required {
		if !have[strings.ToLower(name)] {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// escapeSoql escapes backslashes and single quotes in SOQL string literals.
func escapeSoql(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}
