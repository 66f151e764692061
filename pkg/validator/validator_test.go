package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priced struct {
	Name  string          `json:"name" validate:"required,notblank"`
	Price decimal.Decimal `json:"price" validate:"gt=0"`
	Cost  decimal.Decimal `json:"cost" validate:"gte=0"`
	Stock int             `json:"stock" validate:"gte=0"`
}

func TestValidateStructPasses(t *testing.T) {
	errs := ValidateStruct(&priced{Name: "Widget", Price: decimal.RequireFromString("10.00"), Stock: 1})
	assert.Empty(t, errs)
}

func TestValidateStructBlankName(t *testing.T) {
	errs := ValidateStruct(&priced{Name: "   ", Price: decimal.NewFromInt(1)})
	require.Len(t, errs, 1)
	assert.Equal(t, "name", errs[0].FailedField)
	assert.Equal(t, "notblank", errs[0].Tag)
}

func TestValidateStructDecimalBounds(t *testing.T) {
	errs := ValidateStruct(&priced{Name: "Widget", Price: decimal.Zero, Cost: decimal.RequireFromString("-0.01"), Stock: -1})
	require.Len(t, errs, 3)
	fields := []string{errs[0].FailedField, errs[1].FailedField, errs[2].FailedField}
	assert.ElementsMatch(t, []string{"price", "cost", "stock"}, fields)
	assert.Equal(t, "gt", errs[0].Tag)
	assert.Equal(t, "0", errs[0].Value)
}
