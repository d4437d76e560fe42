package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf16"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON: object keys sorted by UTF-16
// code units, no HTML escaping, NFC strings, no floats and no nulls.
// Decimals are encoded as strings so no precision is lost.
//
// Sale lines and harness traces are serialized with it so that the same
// data always produces the same bytes.
func MarshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalCanonicalString(val)
	case decimal.Decimal:
		return marshalCanonicalString(val.String())
	case int64:
		return []byte(strconv.FormatInt(val, 10)), nil
	case int:
		return []byte(strconv.Itoa(val)), nil
	case bool:
		return []byte(strconv.FormatBool(val)), nil
	case []any:
		return marshalCanonicalArray(val)
	case map[string]any:
		return marshalCanonicalObject(val)
	case float64, float32:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func marshalCanonicalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := MarshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return compareUTF16(keys[i], keys[j]) < 0
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalCanonicalString(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := MarshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("object[%q]: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func compareUTF16(a, b string) int {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}
			return 1
		}
	}
	return len(ua) - len(ub)
}

// lineRecord is the persisted shape of a SaleLine.
type lineRecord struct {
	ItemID          int64  `json:"item_id"`
	ItemName        string `json:"item_name"`
	QuantitySold    int64  `json:"quantity_sold"`
	UnitPriceAtSale string `json:"unit_price_at_sale"`
}

// EncodeLines serializes sale lines to canonical JSON for storage.
func EncodeLines(lines []SaleLine) ([]byte, error) {
	arr := make([]any, len(lines))
	for i, l := range lines {
		arr[i] = map[string]any{
			"item_id":            l.ItemID,
			"item_name":          l.ItemName,
			"quantity_sold":      l.QuantitySold,
			"unit_price_at_sale": l.UnitPriceAtSale,
		}
	}
	return MarshalCanonical(arr)
}

// DecodeLines parses lines written by EncodeLines.
func DecodeLines(data []byte) ([]SaleLine, error) {
	var records []lineRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode sale lines: %w", err)
	}
	lines := make([]SaleLine, len(records))
	for i, r := range records {
		price, err := decimal.NewFromString(r.UnitPriceAtSale)
		if err != nil {
			return nil, fmt.Errorf("decode sale lines: line %d price: %w", i, err)
		}
		lines[i] = SaleLine{
			ItemID:          r.ItemID,
			ItemName:        r.ItemName,
			QuantitySold:    r.QuantitySold,
			UnitPriceAtSale: price,
		}
	}
	return lines, nil
}
