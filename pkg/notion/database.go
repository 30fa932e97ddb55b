package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// QueryAll fetches every page of a database, following pagination cursors.
// The next page is requested in the background while the current one is
// collected.
func QueryAll(ctx context.Context, c Client, dbID string, filter *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	type result struct {
		resp *notionapi.DatabaseQueryResponse
		err  error
	}

	newRequest := func(cursor notionapi.Cursor) *notionapi.DatabaseQueryRequest {
		req := &notionapi.DatabaseQueryRequest{StartCursor: cursor}
		if filter != nil {
			req.Filter = filter.Filter
			req.Sorts = filter.Sorts
			req.PageSize = filter.PageSize
		}
		return req
	}

	var (
		all      []notionapi.Page
		prefetch <-chan result
	)
	for {
		var r result
		if prefetch != nil {
			r = <-prefetch
		} else {
			r.resp, r.err = c.QueryDatabase(ctx, dbID, newRequest(""))
		}
		if r.err != nil {
			return nil, eris.Wrap(r.err, "notion: query all")
		}

		all = append(all, r.resp.Results...)
		if !r.resp.HasMore {
			return all, nil
		}

		ch := make(chan result, 1)
		prefetch = ch
		next := newRequest(r.resp.NextCursor)
		go func() {
			resp, err := c.QueryDatabase(ctx, dbID, next)
			ch <- result{resp: resp, err: err}
		}()
	}
}

// IndexPages maps the plain-text value of property to page ID. Pages with an
// empty value are skipped; the first page wins on duplicates.
func IndexPages(pages []notionapi.Page, property string) map[string]string {
	idx := make(map[string]string, len(pages))
	for _, p := range pages {
		key := PlainText(p.Properties[property])
		if key == "" {
			continue
		}
		if _, ok := idx[key]; !ok {
			idx[key] = string(p.ID)
		}
	}
	return idx
}
