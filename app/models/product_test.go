package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func price(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEffectivePrice(t *testing.T) {
	list := price("100.00")

	cases := []struct {
		name string
		sale *decimal.Decimal
		want string
	}{
		{"no sale price", nil, "100.00"},
		{"sale below list applies", ptr(price("79.90")), "79.90"},
		{"sale above list is ignored", ptr(price("150.00")), "100.00"},
		{"sale equal to list is ignored", ptr(price("100.00")), "100.00"},
		{"zero sale is ignored", ptr(decimal.Zero), "100.00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{Price: list, SalePrice: tc.sale}
			assert.True(t, p.EffectivePrice().Equal(price(tc.want)),
				"effective = %s, want %s", p.EffectivePrice(), tc.want)
		})
	}
}

func TestOnSale(t *testing.T) {
	p := Product{Price: price("50.00")}
	assert.False(t, p.OnSale())

	below := price("39.90")
	p.SalePrice = &below
	assert.True(t, p.OnSale())

	above := price("59.90")
	p.SalePrice = &above
	assert.False(t, p.OnSale())
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }
