package salesforce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	gosf "github.com/k-capehart/go-salesforce/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSFClient creates an sfClient backed by an httptest server.
func newTestSFClient(t *testing.T, handler http.Handler) Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	sf, err := gosf.Init(gosf.Creds{
		AccessToken: "test-token",
		Domain:      ts.URL,
	},
		gosf.WithValidateAuthentication(false),
		gosf.WithRoundTripper(http.DefaultTransport),
	)
	require.NoError(t, err)
	require.NotNil(t, sf)

	return NewClient(sf)
}

func TestSFClient_Query(t *testing.T) {
	client := newTestSFClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/query")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"totalSize": 1,
			"done":      true,
			"records": []map[string]any{
				{
					"attributes": map[string]any{"type": "Account"},
					"Id":         "001xx",
					"Name":       "hotel adina",
					"Website":    "https://adina.eu",
				},
			},
		})
	}))

	var accounts []Account
	err := client.Query(context.Background(), "SELECT Id, Name, Website FROM Account", &accounts)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "001xx", accounts[0].ID)
	assert.Equal(t, "https://adina.eu", accounts[0].Website)
}

func TestSFClient_QueryError(t *testing.T) {
	client := newTestSFClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"message": "invalid SOQL", "errorCode": "MALFORMED_QUERY"},
		})
	}))

	var accounts []Account
	err := client.Query(context.Background(), "INVALID SOQL", &accounts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sf: query")
}

func TestSFClient_InsertCollection(t *testing.T) {
	client := newTestSFClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "hotel adina")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "001a", "success": true, "errors": []any{}},
			{"id": "001b", "success": true, "errors": []any{}},
		})
	}))

	results, err := client.InsertCollection(context.Background(), AccountObject, []map[string]any{
		{"Name": "hotel adina"},
		{"Name": "cafe central"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.Equal(t, "001a", results[0].ID)
	assert.Equal(t, "001b", results[1].ID)
}

func TestSFClient_UpdateCollection(t *testing.T) {
	client := newTestSFClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"Id":"001xx"`)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "001xx", "success": true, "errors": []any{}},
		})
	}))

	results, err := client.UpdateCollection(context.Background(), AccountObject, []CollectionRecord{
		{ID: "001xx", Fields: map[string]any{"Rating": "Hot"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
}

func TestSFClient_UpdateCollectionError(t *testing.T) {
	client := newTestSFClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode([]map[string]any{{"message": "batch error"}})
	}))

	_, err := client.UpdateCollection(context.Background(), AccountObject, []CollectionRecord{
		{ID: "001xx", Fields: map[string]any{"Name": "A"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sf: update collection")
}

func TestSFClient_DescribeSObject(t *testing.T) {
	client := newTestSFClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/sobjects/Account/describe")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":  "Account",
			"label": "Account",
			"fields": []map[string]any{
				{"name": "Id", "label": "Account ID", "type": "id", "length": 18, "updateable": false},
				{"name": "Lead_Score__c", "label": "Lead Score", "type": "double", "updateable": true},
			},
		})
	}))

	desc, err := client.DescribeSObject(context.Background(), AccountObject)
	require.NoError(t, err)
	require.Len(t, desc.Fields, 2)
	assert.Equal(t, "Lead_Score__c", desc.Fields[1].Name)
	assert.True(t, desc.Fields[1].Updateable)
}
