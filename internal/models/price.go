package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Price is a monetary amount in minor units with a currency code.
// Listing prices were historically stored as free-form display strings
// ("TSH 2,800,000"); they are normalized to this form at ingestion and the
// display string is derived, never stored.
type Price struct {
	Amount   int64  `bson:"amount" json:"amount"` // minor units
	Currency string `bson:"currency" json:"currency"`
}

// ParsePrice parses either a plain decimal amount ("2800000", "2800000.50")
// or a legacy display string ("TSH 2,800,000") into a Price. When the input
// carries no currency prefix, defaultCurrency is used.
func ParsePrice(s, defaultCurrency string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Price{}, fmt.Errorf("empty price")
	}

	currency := defaultCurrency
	fields := strings.Fields(s)
	numeric := fields[len(fields)-1]
	if len(fields) > 1 {
		currency = strings.ToUpper(strings.Join(fields[:len(fields)-1], ""))
	}

	// Strip thousands separators from the legacy display form.
	numeric = strings.ReplaceAll(numeric, ",", "")

	value, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return Price{}, fmt.Errorf("unparsable price amount %q: %w", numeric, err)
	}
	if value < 0 {
		return Price{}, fmt.Errorf("negative price amount %q", numeric)
	}

	return Price{
		Amount:   int64(value*100 + 0.5),
		Currency: currency,
	}, nil
}

// String renders the price in the marketplace's display form, e.g. "TSH 2,800,000".
func (p Price) String() string {
	major := p.Amount / 100
	minor := p.Amount % 100

	digits := strconv.FormatInt(major, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if minor != 0 {
		return fmt.Sprintf("%s %s.%02d", p.Currency, b.String(), minor)
	}
	return fmt.Sprintf("%s %s", p.Currency, b.String())
}

// ParseAmount parses an order total stored as a decimal string.
// Missing or malformed values count as 0; revenue aggregation must never
// fail because of a bad row.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
