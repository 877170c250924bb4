// Package money holds ledger amounts as exact minor units (cents) and
// converts them to and from decimal text at the edges.
package money

import (
	"database/sql/driver"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
)

// Scale is the number of fractional digits an amount carries.
const Scale = 2

var (
	maxAmount = decimal.New(math.MaxInt64, -Scale)
	minAmount = decimal.New(math.MinInt64, -Scale)
)

// Amount is a monetary value in minor units. It is stored as a bigint and
// rendered in JSON as a decimal string such as "120.50".
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// Parse converts decimal text ("12", "12.5", "-3.25") into an Amount.
// Text that is not a number, or that carries more than two fractional
// digits, is rejected as invalid input.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("%q is not a valid amount", s))
	}
	return FromDecimal(d)
}

// ParsePositive is Parse restricted to values greater than zero.
func ParsePositive(s string) (Amount, error) {
	a, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if a <= 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	return a, nil
}

// FromDecimal converts an exact decimal into an Amount.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if !d.Equal(d.Truncate(Scale)) {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("amount %s has more than %d decimal places", d.String(), Scale))
	}
	if d.GreaterThan(maxAmount) || d.LessThan(minAmount) {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount is out of range")
	}
	return Amount(d.Shift(Scale).IntPart()), nil
}

// FromCents wraps a minor-unit integer.
func FromCents(cents int64) Amount { return Amount(cents) }

// Cents returns the minor-unit integer.
func (a Amount) Cents() int64 { return int64(a) }

// Decimal returns the exact decimal value.
func (a Amount) Decimal() decimal.Decimal { return decimal.New(int64(a), -Scale) }

// String formats the amount with exactly two fractional digits.
func (a Amount) String() string { return a.Decimal().StringFixed(Scale) }

// Float64 returns a float approximation for presentation (spreadsheets, charts).
func (a Amount) Float64() float64 { return a.Decimal().InexactFloat64() }

// MarshalJSON renders the amount as a quoted decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("%s is not a valid amount", string(b)))
	}
	v, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Value implements driver.Valuer so amounts are stored as integers.
func (a Amount) Value() (driver.Value, error) {
	return int64(a), nil
}

// Scan implements sql.Scanner for integer and numeric aggregate columns.
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = 0
	case int64:
		*a = Amount(v)
	case int32:
		*a = Amount(v)
	case float64:
		*a = Amount(math.Round(v))
	case []byte:
		return a.scanText(string(v))
	case string:
		return a.scanText(v)
	default:
		return fmt.Errorf("money: cannot scan %T into Amount", src)
	}
	return nil
}

// scanText handles drivers that return aggregates as numeric text; the
// stored value is already in minor units.
func (a *Amount) scanText(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("money: cannot scan %q into Amount: %w", s, err)
	}
	*a = Amount(d.Round(0).IntPart())
	return nil
}
