package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToMilliunits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected int64
	}{
		{name: "two decimals", amount: "294.23", expected: 294230},
		{name: "negative", amount: "-294.23", expected: -294230},
		{name: "whole units", amount: "15", expected: 15000},
		{name: "three decimals", amount: "0.001", expected: 1},
		{name: "rounds fourth decimal up", amount: "1.0005", expected: 1001},
		{name: "rounds fourth decimal down", amount: "1.0004", expected: 1000},
		{name: "zero", amount: "0", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToMilliunits(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestFromMilliunits(t *testing.T) {
	assert.True(t, FromMilliunits(-294230).Equal(decimal.RequireFromString("-294.23")))
	assert.Equal(t, "-294.23", FormatMilliunits(-294230))
	assert.Equal(t, "12.50", FormatMilliunits(12500))
}
