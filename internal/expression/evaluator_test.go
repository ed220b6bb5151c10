package expression

import (
	"testing"

	"github.com/nulzo/cachekit/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type product struct {
	SKU     string `json:"sku"`
	Price   float64
	Vendor  *vendor
	private string
}

type vendor struct {
	ID int `json:"id"`
}

func TestEvaluate(t *testing.T) {
	e := New()
	bindings := map[string]any{
		"sku":     "ABC",
		"page":    2,
		"product": &product{SKU: "XYZ", Price: 4.25, Vendor: &vendor{ID: 9}},
		"filters": map[string]any{"lang": "en"},
		"missing": nil,
		"ratio":   float32(0.5),
		"count":   uint16(7),
	}

	cases := []struct {
		expr string
		want any
	}{
		{"sku", "ABC"},
		{"#sku", "ABC"},
		{"page", 2},
		{"product.sku", "XYZ"},
		{"product.SKU", "XYZ"},
		{"product.price", 4.25},
		{"product.vendor.id", 9},
		{"filters.lang", "en"},
		{`"product:" + sku`, "product:ABC"},
		{`'v2:' + product.sku + ':' + page`, "v2:XYZ:2"},
		{"1 + 2", int64(3)},
		{`sku + (1 + 2)`, "ABC3"},
		{"page + 1", int64(3)},
		{"1 + 2.5", 3.5},
		{"ratio + page", 2.5},
		{"count + page", int64(9)},
		{"true", true},
		{"missing", nil},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := e.Evaluate(tc.expr, bindings)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	e := New()
	bindings := map[string]any{
		"product": &product{SKU: "XYZ"},
		"ids":     map[int]string{1: "a"},
		"missing": nil,
	}

	cases := map[string]string{
		"malformed":         `sku +`,
		"unterminated":      `"abc`,
		"undefined binding": `sku`,
		"missing field":     `product.color`,
		"unexported field":  `product.private`,
		"nil intermediate":  `product.vendor.id`,
		"non string map":    `ids.one`,
		"non scalar result": `product`,
		"null literal":      `"a" + null`,
		"null binding":      `'v:' + missing`,
	}
	for name, expr := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.Evaluate(expr, bindings)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrExpressionEvaluation)
		})
	}
}

func TestCompile(t *testing.T) {
	e := New()

	assert.NoError(t, e.Compile(`result.sku`))
	assert.NoError(t, e.Compile(`result.sku`), "cached expressions compile again")
	assert.ErrorIs(t, e.Compile(`result..sku`), domain.ErrExpressionEvaluation)
}

func TestString(t *testing.T) {
	// a null key must not collide with the string "null"
	_, err := String(nil)
	assert.Error(t, err)
	_, err = String((*string)(nil))
	assert.Error(t, err)

	value := "null"
	s, err := String(&value)
	require.NoError(t, err)
	assert.Equal(t, "null", s)

	s, err = String(uint8(7))
	require.NoError(t, err)
	assert.Equal(t, "7", s)

	_, err = String([]int{1})
	assert.Error(t, err)
}
