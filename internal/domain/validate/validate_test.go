package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type Inner struct {
	Hours decimal.Decimal `decimal:"$>0&&$<=24"`
}

type sample struct {
	Inner
	Estimate *decimal.Decimal `decimal:"$>=0"`
	Items    []Inner
	Free     decimal.Decimal
}

func TestHandleDecimalFields(t *testing.T) {
	b := NewDecimalBinder()
	neg := decimal.NewFromInt(-1)

	ok := &sample{Inner: Inner{Hours: decimal.NewFromInt(8)}, Free: neg}
	assert.NoError(t, b.handleDecimalFields(ok))

	bad := &sample{
		Inner:    Inner{Hours: decimal.NewFromInt(25)},
		Estimate: &neg,
		Items:    []Inner{{Hours: decimal.Zero}},
	}
	err := b.handleDecimalFields(bad)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "3 errors occurred")
		assert.Contains(t, err.Error(), "field Hours must be less than or equal to 24")
		assert.Contains(t, err.Error(), "field Estimate must be greater than or equal to 0")
	}
}

func TestValidateDecimalFieldBadTag(t *testing.T) {
	type badTag struct {
		V decimal.Decimal `decimal:"between 1 2"`
	}
	assert.Error(t, NewDecimalBinder().handleDecimalFields(&badTag{V: decimal.NewFromInt(1)}))
}
