// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package riskapi

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/riskapi-console/internal/namespace"
)

func f64(v float64) *float64 { return &v }

func TestHolding_MarshalJSON(t *testing.T) {
	h := Holding{
		Code:                  "US000324AA15",
		Price:                 f64(101.5),
		Quantity:              10000,
		CurrencyExchangeValue: nil,
		Attributes:            []string{"Bonds", "US"},
		Currency:              "USD",
		PriceFactor:           f64(0.01),
	}
	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `["US000324AA15", 101.5, 10000, null, ["Bonds","US"], "USD", 0.01]`, string(data))

	data, err = json.Marshal(NewHolding("XXX"))
	require.NoError(t, err)
	assert.JSONEq(t, `["XXX", null, 1, null, [], null, null]`, string(data))
}

func TestHolding_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Holding
	}{
		{"code only", `["A"]`, Holding{Code: "A", Quantity: 1, Attributes: []string{}}},
		{"code and quantity", `["A", null, 5]`, Holding{Code: "A", Quantity: 5, Attributes: []string{}}},
		{"full", `["A", 2.5, 3, 1.1, ["x"], "GBP", 100]`,
			Holding{Code: "A", Price: f64(2.5), Quantity: 3, CurrencyExchangeValue: f64(1.1), Attributes: []string{"x"}, Currency: "GBP", PriceFactor: f64(100)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h Holding
			require.NoError(t, json.Unmarshal([]byte(tt.in), &h))
			assert.Equal(t, tt.want, h)
		})
	}

	var h Holding
	assert.Error(t, json.Unmarshal([]byte(`[]`), &h))
	assert.Error(t, json.Unmarshal([]byte(`{"code":"A"}`), &h))
	assert.Error(t, json.Unmarshal([]byte(`["A",1,1,1,[],"x",1,"extra"]`), &h))
	assert.ErrorContains(t, json.Unmarshal([]byte(`[null, 1, 2]`), &h), "code is required")
	assert.ErrorContains(t, json.Unmarshal([]byte(`["  "]`), &h), "code is required")
}

func TestPortfolio_DumpLoad(t *testing.T) {
	pf := NewPortfolio("EUR")
	pf.Outstanding = f64(1e6)
	pf.Add(&Holding{Code: "US0003041052", Quantity: 13000, Attributes: []string{"Equity"}})
	pf.Add(NewHolding("XXX"))

	path := filepath.Join(t.TempDir(), "pf.json")
	require.NoError(t, pf.Dump(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"currency":"EUR","type":"quantities","outstanding":1000000,"coverage_priority":null},
		[["US0003041052",null,13000,null,["Equity"],null,null],["XXX",null,1,null,[],null,null]]
	]`, string(raw))

	loaded, err := LoadPortfolio(path)
	require.NoError(t, err)
	assert.Equal(t, pf, loaded)
}

func TestLoadPortfolio_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadPortfolio(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"type":"quantities"},[]]`), 0600))
	_, err = LoadPortfolio(bad)
	assert.ErrorContains(t, err, "currency is required")
}

func TestPortfolio_Exports(t *testing.T) {
	pf := NewPortfolio("EUR")
	exports := pf.Exports()

	add := exports["add"].(*namespace.Callable)
	got, err := add.Invoke(context.Background(), namespace.NewCall("US0003041052", "56.48", "13000").
		With("attributes", "Equity,US").
		With("currency", "USD"))
	require.NoError(t, err)

	h := got.(*Holding)
	assert.Equal(t, "US0003041052", h.Code)
	assert.Equal(t, f64(56.48), h.Price)
	assert.Equal(t, 13000.0, h.Quantity)
	assert.Equal(t, []string{"Equity", "US"}, h.Attributes)
	assert.Equal(t, "USD", h.Currency)
	require.Len(t, pf.Holdings, 1)

	assert.Len(t, pf.Exports()["holdings"], 1, "exports reflect the current holdings")

	_, err = add.Invoke(context.Background(), namespace.NewCall().With("quantity", "1"))
	assert.Error(t, err, "code is required")

	_, err = add.Invoke(context.Background(), namespace.NewCall("A").With("qty", "1"))
	assert.ErrorContains(t, err, "qty")

	encoded, err := exports["encode"].(*namespace.Callable).Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, encoded, 2)

	path := filepath.Join(t.TempDir(), "out.json")
	_, err = exports["dump"].(*namespace.Callable).Invoke(context.Background(), namespace.NewCall(path))
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestPortfolioFromCall(t *testing.T) {
	pf, err := portfolioFromCall(namespace.NewCall("EUR").With("type", "weights").With("outstanding", "500"))
	require.NoError(t, err)
	assert.Equal(t, "EUR", pf.Currency)
	assert.Equal(t, PortfolioWeights, pf.Type)
	assert.Equal(t, f64(500), pf.Outstanding)

	_, err = portfolioFromCall(namespace.NewCall())
	assert.Error(t, err)

	_, err = portfolioFromCall(namespace.NewCall("EUR").With("type", "notional"))
	assert.Error(t, err)
}

func TestPortfolio_String(t *testing.T) {
	pf := NewPortfolio("EUR")
	pf.Add(NewHolding("A"))
	assert.Equal(t, "Portfolio(EUR, quantities, 1 holdings)", pf.String())
	assert.Equal(t, `Holding("A", null, 1, null, [], null, null)`, pf.Holdings[0].String())
}
