// ABOUTME: Tests for estimate totals and customer labels

package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEstimateTotal(t *testing.T) {
	e := Estimate{Items: []EstimateItem{
		{Price: decimal.NewFromInt(500), Quantity: 1},
		{Price: decimal.NewFromInt(250), Quantity: 2},
	}}
	assert.True(t, e.Total().Equal(decimal.NewFromInt(1000)), "got %s", e.Total())
	assert.Equal(t, 3, e.Quantity())
}

func TestEstimateTotal_Empty(t *testing.T) {
	assert.True(t, Estimate{}.Total().IsZero())
}

func TestEstimateTotal_Fractional(t *testing.T) {
	e := Estimate{Items: []EstimateItem{
		{Price: decimal.RequireFromString("0.10"), Quantity: 3},
	}}
	assert.Equal(t, "0.30", e.Total().StringFixed(2))
}

func TestCustomerLabel(t *testing.T) {
	assert.Equal(t, "#42", Customer{ID: "42", Numeric: true}.Label())
	assert.Equal(t, "Acme Traders", Customer{ID: "u1", Company: "Acme Traders"}.Label())
	assert.Equal(t, "Unknown User", Customer{ID: "u2"}.Label())
	assert.Equal(t, "Unknown User", Customer{}.Label())
}

func TestEstimateItemFallbacks(t *testing.T) {
	item := EstimateItem{}
	assert.Equal(t, "Unknown Product", item.DisplayName())
	assert.Equal(t, "Unknown Category", item.DisplayCategory())
}
