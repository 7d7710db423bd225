package extract

import (
	"encoding/json"
	"strconv"

	"github.com/clearscan/doc-extractor/constants"
)

// Wire keys for the metadata fields this layer inspects. Backend-specific
// fields ride along in Extra untouched.
const (
	MetaKeyParsedBy  = "X-Parsed-By"
	MetaKeyPageCount = "page-count"
)

// Metadata is a fixed-shape schema for the keys known at this layer plus a
// pass-through bag for backend-specific fields. It serializes to a flat
// string-keyed map.
type Metadata struct {
	PageCount int
	ParsedBy  constants.ParserID
	Extra     map[string]string
}

// TagProvenance returns a copy of m with ParsedBy set to id. Pure; the input
// is not modified.
func TagProvenance(m Metadata, id constants.ParserID) Metadata {
	m.ParsedBy = id
	return m
}

// SetExtra returns a copy of m with key=value added to the pass-through bag.
func SetExtra(m Metadata, key, value string) Metadata {
	extra := make(map[string]string, len(m.Extra)+1)
	for k, v := range m.Extra {
		extra[k] = v
	}
	extra[key] = value
	m.Extra = extra
	return m
}

// Flatten returns the wire representation: one flat mapping with the known
// keys alongside the pass-through fields.
func (m Metadata) Flatten() map[string]string {
	out := make(map[string]string, len(m.Extra)+2)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.PageCount > 0 {
		out[MetaKeyPageCount] = strconv.Itoa(m.PageCount)
	}
	if m.ParsedBy != "" {
		out[MetaKeyParsedBy] = string(m.ParsedBy)
	}
	return out
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Flatten())
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*m = Metadata{Extra: make(map[string]string)}
	for k, v := range flat {
		switch k {
		case MetaKeyPageCount:
			if n, err := strconv.Atoi(v); err == nil {
				m.PageCount = n
			}
		case MetaKeyParsedBy:
			m.ParsedBy = constants.ParserID(v)
		default:
			m.Extra[k] = v
		}
	}
	if len(m.Extra) == 0 {
		m.Extra = nil
	}
	return nil
}
