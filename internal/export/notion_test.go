package export

import (
	"context"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-engine/internal/resilience"
	"github.com/sells-group/lead-engine/pkg/notion"
)

type mockNotion struct {
	mock.Mock
}

func (m *mockNotion) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	args := m.Called(ctx, dbID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.DatabaseQueryResponse), args.Error(1)
}

func (m *mockNotion) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func (m *mockNotion) UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, pageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
}

func TestNotionExporter_CreatesAndUpdates(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-1", mock.Anything).Return(&notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{
			{ID: "page-a1", Properties: notionapi.Properties{NotionKeyProperty: notion.Text("a1")}},
		},
	}, nil).Once()
	mc.On("UpdatePage", ctx, "page-a1", mock.MatchedBy(func(req *notionapi.PageUpdateRequest) bool {
		return notion.PlainText(req.Properties["Name"]) == "hotel adina"
	})).Return(&notionapi.Page{ID: "page-a1"}, nil).Once()
	mc.On("CreatePage", ctx, mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		return req.Parent.DatabaseID == "db-1"
	})).Return(&notionapi.Page{ID: "page-new"}, nil).Twice()

	e := NewNotionExporter(mc, "db-1", fastRetry())
	assert.Equal(t, "notion", e.Name())

	res, err := e.Export(ctx, sampleLeads())
	require.NoError(t, err)
	assert.Equal(t, Result{Exported: 3, Created: 2, Updated: 1}, res)
	mc.AssertExpectations(t)
}

func TestNotionExporter_RetriesTransientErrors(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()
	throttled := &notionapi.Error{Status: 429, Code: "rate_limited", Message: "slow down"}

	mc.On("QueryDatabase", ctx, "db-1", mock.Anything).
		Return(&notionapi.DatabaseQueryResponse{}, nil).Once()
	mc.On("CreatePage", ctx, mock.Anything).
		Return(nil, resilience.FromStatus(throttled, throttled.Status)).Once()
	mc.On("CreatePage", ctx, mock.Anything).
		Return(&notionapi.Page{ID: "page-new"}, nil).Once()

	e := NewNotionExporter(mc, "db-1", fastRetry())
	res, err := e.Export(ctx, sampleLeads()[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	mc.AssertExpectations(t)
}

func TestNotionExporter_PageFailureContinues(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-1", mock.Anything).
		Return(&notionapi.DatabaseQueryResponse{}, nil).Once()
	mc.On("CreatePage", ctx, mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		return notion.PlainText(req.Properties["Name"]) == "hotel adina"
	})).Return(nil, assert.AnError).Once()
	mc.On("CreatePage", ctx, mock.Anything).
		Return(&notionapi.Page{ID: "page-new"}, nil)

	e := NewNotionExporter(mc, "db-1", fastRetry())
	res, err := e.Export(ctx, sampleLeads())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, res.Exported)
}

func TestNotionExporter_IndexError(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()
	mc.On("QueryDatabase", ctx, "db-1", mock.Anything).Return(nil, assert.AnError).Once()

	e := NewNotionExporter(mc, "db-1", fastRetry())
	_, err := e.Export(ctx, sampleLeads())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export: notion index")
	mc.AssertNotCalled(t, "CreatePage", mock.Anything, mock.Anything)
}

func TestLeadProperties(t *testing.T) {
	leads := sampleLeads()

	full := LeadProperties(&leads[0])
	assert.Equal(t, "hotel adina", notion.PlainText(full["Name"]))
	assert.Equal(t, "a1", notion.PlainText(full[NotionKeyProperty]))
	assert.Equal(t, "https://adina.eu", notion.PlainText(full["Website"]))
	assert.Equal(t, "hot", full["Category"].(notionapi.SelectProperty).Select.Name)
	assert.InDelta(t, 95.0, full["Score"].(notionapi.NumberProperty).Number, 0.001)
	assert.Len(t, full["Pain Points"].(notionapi.MultiSelectProperty).MultiSelect, 2)
	assert.Contains(t, full, "Last Scored")

	sparse := LeadProperties(&leads[2])
	for _, key := range []string{"Email", "Phone", "Website", "Industry", "Pain Points", "Last Scored", "Source"} {
		assert.NotContains(t, sparse, key)
	}
	assert.Contains(t, sparse, "Platform")
}
