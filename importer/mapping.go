package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/assettrack"
)

// Mapping describes a custodian JSON export with JSONPath expressions.
//
// Records selects the list of records in the document. Fields maps a record
// field (date, vault, id, type, amount, currency, quantity, unit, asset, memo,
// item) to a path evaluated against each record. Constants gives fixed values
// for fields the export does not carry. Types translates custodian type names
// into buy, sell, send, receive, feeinasset or feeincurrency.
type Mapping struct {
	Records   string            `json:"records"`
	Fields    map[string]string `json:"fields"`
	Constants map[string]string `json:"constants,omitempty"`
	Types     map[string]string `json:"types,omitempty"`
}

var requiredFields = []string{"date", "id", "type", "quantity", "unit", "asset"}

// LoadMapping reads a mapping from a JSON file.
func LoadMapping(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m := new(Mapping)
	if err := json.NewDecoder(f).Decode(m); err != nil {
		return nil, fmt.Errorf("reading mapping %s: %w", path, err)
	}
	if err := m.check(); err != nil {
		return nil, fmt.Errorf("reading mapping %s: %w", path, err)
	}
	return m, nil
}

func (m *Mapping) check() error {
	if m.Records == "" {
		return fmt.Errorf("%w: mapping has no records path", assettrack.ErrMalformedInput)
	}
	for _, f := range requiredFields {
		if m.Fields[f] == "" && m.Constants[f] == "" {
			return fmt.Errorf("%w: mapping has no path nor constant for %q", assettrack.ErrMalformedInput, f)
		}
	}
	return nil
}

func (m *Mapping) Import(r io.Reader, origin Origin) ([]assettrack.Transaction, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", assettrack.ErrMalformedInput, err)
	}
	val, err := jsonpath.Get(m.Records, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: records %q: %w", assettrack.ErrMalformedInput, m.Records, err)
	}
	list, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: records %q is not a list", assettrack.ErrMalformedInput, m.Records)
	}

	txs := make([]assettrack.Transaction, 0, len(list))
	for i, item := range list {
		rec, err := m.record(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		tx, err := rec.transaction(origin)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (m *Mapping) record(item any) (record, error) {
	get := func(field string) (string, error) {
		path, ok := m.Fields[field]
		if !ok || path == "" {
			return m.Constants[field], nil
		}
		val, err := jsonpath.Get(path, item)
		if err != nil {
			// unknown keys are reported as errors by jsonpath
			if c, ok := m.Constants[field]; ok {
				return c, nil
			}
			return "", fmt.Errorf("%w: %s %q: %w", assettrack.ErrMalformedInput, field, path, err)
		}
		if list, ok := val.([]any); ok {
			if len(list) == 0 {
				return m.Constants[field], nil
			}
			val = list[0]
		}
		return text(val), nil
	}

	var rec record
	targets := []struct {
		field string
		dst   *string
	}{
		{"date", &rec.Date},
		{"vault", &rec.Vault},
		{"id", &rec.ID},
		{"type", &rec.Type},
		{"amount", &rec.Amount},
		{"currency", &rec.Currency},
		{"quantity", &rec.Quantity},
		{"unit", &rec.Unit},
		{"asset", &rec.Asset},
		{"memo", &rec.Memo},
		{"item", &rec.Item},
	}
	for _, t := range targets {
		v, err := get(t.field)
		if err != nil {
			return record{}, err
		}
		*t.dst = v
	}
	if typ, ok := m.Types[rec.Type]; ok {
		rec.Type = typ
	}
	return rec, nil
}

func text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
