// Package bucket splits a state document into the per-collection payloads
// stored by the SQL backends and reassembles them on load.
package bucket

import (
	"encoding/json"
	"fmt"
	"time"

	"poms/pkg/domain"
)

// Meta is the bucket holding document metadata.
const Meta = "meta"

// TimestampLayout renders save and export stamps without a zone offset.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Names lists every bucket in write order. All but Meta carry a collection
// under its document key.
var Names = []string{
	"patients",
	"doctors",
	"rooms",
	"appointments",
	"treatment_plans",
	"diagnosis",
	"billing",
	Meta,
}

type meta struct {
	LastSaved string `json:"lastSaved,omitempty"`
}

// Timestamp formats t for the lastSaved and exportDate fields.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Encode returns one JSON payload per bucket name.
func Encode(doc domain.StateDocument) (map[string][]byte, error) {
	data, err := json.Marshal(doc.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("split snapshot: %w", err)
	}
	out := make(map[string][]byte, len(Names))
	for _, name := range Names {
		if name == Meta {
			m, err := json.Marshal(meta{LastSaved: doc.LastSaved})
			if err != nil {
				return nil, fmt.Errorf("encode meta: %w", err)
			}
			out[name] = m
			continue
		}
		out[name] = raw[name]
	}
	return out, nil
}

// Decode rebuilds a document from bucket payloads. Unknown buckets are
// ignored and missing ones decode as empty collections.
func Decode(payloads map[string][]byte) (domain.StateDocument, error) {
	var doc domain.StateDocument
	raw := make(map[string]json.RawMessage, len(payloads))
	for _, name := range Names {
		payload, ok := payloads[name]
		if !ok || len(payload) == 0 {
			continue
		}
		if name == Meta {
			var m meta
			if err := json.Unmarshal(payload, &m); err != nil {
				return domain.StateDocument{}, fmt.Errorf("decode %s: %w", name, err)
			}
			doc.LastSaved = m.LastSaved
			continue
		}
		if !json.Valid(payload) {
			return domain.StateDocument{}, fmt.Errorf("decode %s: invalid json", name)
		}
		raw[name] = payload
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return domain.StateDocument{}, fmt.Errorf("join buckets: %w", err)
	}
	if err := json.Unmarshal(data, &doc.Snapshot); err != nil {
		return domain.StateDocument{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return doc, nil
}
