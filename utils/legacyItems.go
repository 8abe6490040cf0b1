package utils

import (
	"encoding/json"
	"strconv"
	"strings"
)

// LegacyLine is the canonical shape of a line item recovered from the raw JSON
// stored by older revisions.
type LegacyLine struct {
	ProductID uint
	Name      string
	Quantity  int
	UnitPrice int64
}

func (l LegacyLine) Subtotal() int64 { return int64(l.Quantity) * l.UnitPrice }

// ParseLegacyItems decodes a JSON array of line items whose field names vary
// (price/harga, quantity/qty, id/product_id/item_id) and whose numbers may be
// strings. The array itself may be double-encoded as a JSON string. Entries
// that cannot be normalized are counted in skipped rather than failing the
// whole payload; a payload that is not an array at all counts as one skip.
func ParseLegacyItems(raw string) (lines []LegacyLine, skipped int) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, 0
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		var inner string
		if err := json.Unmarshal([]byte(raw), &inner); err != nil {
			return nil, 1
		}
		if err := json.Unmarshal([]byte(inner), &entries); err != nil {
			return nil, 1
		}
	}

	for _, entry := range entries {
		line, ok := normalizeLegacyEntry(entry)
		if !ok {
			skipped++
			continue
		}
		lines = append(lines, line)
	}
	return lines, skipped
}

func normalizeLegacyEntry(entry json.RawMessage) (LegacyLine, bool) {
	var fields map[string]any
	if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
		return LegacyLine{}, false
	}

	price, ok := firstNumber(fields, "price", "harga", "unit_price")
	if !ok || price < 0 {
		return LegacyLine{}, false
	}
	qty, ok := firstNumber(fields, "quantity", "qty", "jumlah")
	if !ok || qty < 1 || qty != float64(int(qty)) {
		return LegacyLine{}, false
	}

	line := LegacyLine{Quantity: int(qty), UnitPrice: int64(price)}
	if id, ok := firstNumber(fields, "product_id", "item_id", "id"); ok && id > 0 {
		line.ProductID = uint(id)
	}
	for _, key := range []string{"name", "nama", "product_name"} {
		if s, ok := fields[key].(string); ok && s != "" {
			line.Name = s
			break
		}
	}
	return line, true
}

func firstNumber(fields map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		v, present := fields[key]
		if !present {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return 0, false
			}
			return f, true
		default:
			return 0, false
		}
	}
	return 0, false
}
