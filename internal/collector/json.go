package collector

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-engine/internal/model"
)

// ReadJSON decodes collector JSON. The document is either an array of objects
// or an object whose "items" key holds that array; anything else yields no
// records. Non-object elements are skipped.
func ReadJSON(r io.Reader) ([]model.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "json: read")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var items []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, eris.Wrap(err, "json: decode array")
		}
	case '{':
		var doc struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, eris.Wrap(err, "json: decode object")
		}
		if len(doc.Items) == 0 || doc.Items[0] != '[' {
			return nil, nil
		}
		if err := json.Unmarshal(doc.Items, &items); err != nil {
			return nil, eris.Wrap(err, "json: decode items")
		}
	default:
		return nil, nil
	}

	out := make([]model.RawRecord, 0, len(items))
	for _, item := range items {
		var rec map[string]any
		if err := json.Unmarshal(item, &rec); err != nil || rec == nil {
			continue
		}
		out = append(out, model.RawRecord(rec))
	}
	return out, nil
}
