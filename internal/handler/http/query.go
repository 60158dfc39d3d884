package http

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/filter"
)

// leadingInt reads an optional sign and the digits that follow, after any
// leading whitespace, and ignores the rest: "12.7" is 12, "40usd" is 40.
// It reports false when no digit was found.
func leadingInt(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		n = math.MaxInt64
	}
	if neg {
		n = -n
	}
	return n, true
}

// priceRange turns the filter dialog's min and max inputs into a range.
// Bounds are whole numbers. A missing or unreadable min is 0; a missing,
// unreadable or zero max is the catalog maximum. Inverted results are kept.
func priceRange(minText, maxText string, catalogMax decimal.Decimal) domain.PriceRange {
	r := domain.PriceRange{Min: decimal.Zero, Max: catalogMax}
	if v, ok := leadingInt(minText); ok {
		r.Min = decimal.NewFromInt(v)
	}
	if v, ok := leadingInt(maxText); ok && v != 0 {
		r.Max = decimal.NewFromInt(v)
	}
	return r
}

// criteriaFromQuery reads q, field, min and max. Without min and max the
// range spans the whole catalog.
func criteriaFromQuery(r *http.Request, catalogMax decimal.Decimal) filter.Criteria {
	q := r.URL.Query()
	return filter.Criteria{
		Query: q.Get("q"),
		Field: filter.ParseField(q.Get("field")),
		Range: priceRange(q.Get("min"), q.Get("max"), catalogMax),
	}
}

// hasFilterParams reports whether any filter parameter was given.
func hasFilterParams(r *http.Request) bool {
	q := r.URL.Query()
	for _, k := range []string{"q", "field", "min", "max"} {
		if q.Has(k) {
			return true
		}
	}
	return false
}

// looseNumber accepts a JSON string or number and keeps its text, so form
// inputs can be sent either way.
type looseNumber string

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = looseNumber(s)
		return nil
	}
	var num decimal.Decimal
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = looseNumber(num.Truncate(0).String())
	return nil
}
