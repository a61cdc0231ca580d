package dto

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

// Envelope wraps every JSON response. Exactly one of Data and Error is set.
type Envelope struct {
	Data  interface{} `json:"data"`
	Error *string     `json:"error"`
}

func OK(data interface{}) Envelope {
	return Envelope{Data: data}
}

func Err(message string) Envelope {
	return Envelope{Error: &message}
}

// Deleted is the body of every successful delete.
type Deleted struct {
	Deleted bool `json:"deleted"`
}

// JoinErrors flattens Validate output into one message, fields sorted by name.
func JoinErrors(errs map[string]string) string {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, errs[field]))
	}
	return strings.Join(parts, "; ")
}

// FormatDate renders a nullable date column as YYYY-MM-DD.
func FormatDate(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}
	s := time.Time(*d).Format(dateLayout)
	return &s
}

// ParseDate reads an optional YYYY-MM-DD value. Empty input clears the date.
func ParseDate(s *string) (*datatypes.Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", *s)
	}
	d := datatypes.Date(t)
	return &d, nil
}

// Money renders a decimal with two places.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// NullMoney renders a nullable decimal with two places.
func NullMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}

// ToNullDecimal converts an optional request amount.
func ToNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
