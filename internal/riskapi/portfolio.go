// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package riskapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jeranaias/riskapi-console/internal/namespace"
	"github.com/jeranaias/riskapi-console/internal/util"
)

// Portfolio types understood by the server.
const (
	PortfolioQuantities = "quantities"
	PortfolioWeights    = "weights"
)

// =============================================================================
// HOLDING
// =============================================================================

// Holding is one position of a portfolio. Nil pointers and empty strings
// are sent as JSON null so the server applies its own defaults.
type Holding struct {
	Code                  string
	Price                 *float64
	Quantity              float64
	CurrencyExchangeValue *float64
	Attributes            []string
	Currency              string
	PriceFactor           *float64
}

// NewHolding creates a holding of quantity 1.
func NewHolding(code string) *Holding {
	return &Holding{Code: code, Quantity: 1, Attributes: []string{}}
}

// MarshalJSON encodes the holding as the 7-element array
// [code, price, quantity, currency_exchange_value, attributes, currency, price_factor].
func (h Holding) MarshalJSON() ([]byte, error) {
	attrs := h.Attributes
	if attrs == nil {
		attrs = []string{}
	}
	var currency any
	if h.Currency != "" {
		currency = h.Currency
	}
	return json.Marshal([]any{h.Code, h.Price, h.Quantity, h.CurrencyExchangeValue, attrs, currency, h.PriceFactor})
}

// UnmarshalJSON decodes the array form. Trailing elements may be omitted.
func (h *Holding) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("holding must be a JSON array: %w", err)
	}
	if len(raw) == 0 || len(raw) > 7 {
		return fmt.Errorf("holding must have 1 to 7 elements, got %d", len(raw))
	}

	out := Holding{Quantity: 1, Attributes: []string{}}
	var currency *string
	targets := []any{&out.Code, &out.Price, &out.Quantity, &out.CurrencyExchangeValue, &out.Attributes, &currency, &out.PriceFactor}
	for i, r := range raw {
		if string(r) == "null" && i != 0 {
			continue
		}
		if err := json.Unmarshal(r, targets[i]); err != nil {
			return fmt.Errorf("holding element %d: %w", i, err)
		}
	}
	if strings.TrimSpace(out.Code) == "" {
		return errors.New("holding code is required")
	}
	if currency != nil {
		out.Currency = *currency
	}
	if out.Attributes == nil {
		out.Attributes = []string{}
	}
	*h = out
	return nil
}

func (h *Holding) String() string {
	return fmt.Sprintf("Holding(%q, %s, %s, %s, %q, %s, %s)",
		h.Code, fmtOptional(h.Price), strconv.FormatFloat(h.Quantity, 'f', -1, 64),
		fmtOptional(h.CurrencyExchangeValue), h.Attributes, fmtOptionalString(h.Currency), fmtOptional(h.PriceFactor))
}

func fmtOptional(f *float64) string {
	if f == nil {
		return "null"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func fmtOptionalString(s string) string {
	if s == "" {
		return "null"
	}
	return strconv.Quote(s)
}

// =============================================================================
// PORTFOLIO
// =============================================================================

// Portfolio is a set of holdings valued in one currency.
type Portfolio struct {
	Currency         string
	Type             string
	Outstanding      *float64
	CoveragePriority any
	Holdings         []*Holding
}

// NewPortfolio creates an empty quantities portfolio.
func NewPortfolio(currency string) *Portfolio {
	return &Portfolio{Currency: currency, Type: PortfolioQuantities}
}

// Add appends a holding and returns it.
func (p *Portfolio) Add(h *Holding) *Holding {
	p.Holdings = append(p.Holdings, h)
	return h
}

type portfolioHeader struct {
	Currency         string   `json:"currency"`
	Type             string   `json:"type"`
	Outstanding      *float64 `json:"outstanding"`
	CoveragePriority any      `json:"coverage_priority"`
}

// MarshalJSON encodes the portfolio as [header, [holdings...]].
func (p *Portfolio) MarshalJSON() ([]byte, error) {
	holdings := p.Holdings
	if holdings == nil {
		holdings = []*Holding{}
	}
	header := portfolioHeader{
		Currency:         p.Currency,
		Type:             p.Type,
		Outstanding:      p.Outstanding,
		CoveragePriority: p.CoveragePriority,
	}
	return json.Marshal([]any{header, holdings})
}

// UnmarshalJSON decodes the [header, [holdings...]] form.
func (p *Portfolio) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("portfolio must be a JSON array: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("portfolio must have 2 elements, got %d", len(raw))
	}
	var header portfolioHeader
	if err := json.Unmarshal(raw[0], &header); err != nil {
		return fmt.Errorf("portfolio header: %w", err)
	}
	var holdings []*Holding
	if err := json.Unmarshal(raw[1], &holdings); err != nil {
		return fmt.Errorf("portfolio holdings: %w", err)
	}
	if header.Currency == "" {
		return errors.New("portfolio currency is required")
	}
	if header.Type == "" {
		header.Type = PortfolioQuantities
	}
	*p = Portfolio{
		Currency:         header.Currency,
		Type:             header.Type,
		Outstanding:      header.Outstanding,
		CoveragePriority: header.CoveragePriority,
		Holdings:         holdings,
	}
	return nil
}

// Dump writes the portfolio to path as JSON.
func (p *Portfolio) Dump(path string) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode portfolio: %w", err)
	}
	return util.AtomicWriteFile(path, data, 0644)
}

// LoadPortfolio reads a portfolio previously written by Dump.
func LoadPortfolio(path string) (*Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read portfolio: %w", err)
	}
	p := &Portfolio{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to decode portfolio %s: %w", path, err)
	}
	return p, nil
}

func (p *Portfolio) String() string {
	return fmt.Sprintf("Portfolio(%s, %s, %d holdings)", p.Currency, p.Type, len(p.Holdings))
}

// =============================================================================
// CONSOLE EXPORTS
// =============================================================================

// Exports publishes the portfolio's operations to the console.
func (p *Portfolio) Exports() map[string]any {
	return map[string]any{
		"currency": p.Currency,
		"type":     p.Type,
		"holdings": p.Holdings,
		"add": &namespace.Callable{
			Name:  "add",
			Usage: "add CODE [PRICE] [QUANTITY] [--currency-exchange-value X] [--attributes a,b] [--currency C] [--price-factor F]",
			Doc:   "Add a holding with the given properties to the portfolio and return it. Quantity defaults to 1.",
			Fn: func(_ context.Context, call *namespace.Call) (any, error) {
				h, err := holdingFromCall(call)
				if err != nil {
					return nil, err
				}
				return p.Add(h), nil
			},
		},
		"encode": &namespace.Callable{
			Name:  "encode",
			Usage: "encode",
			Doc:   "Return the structure sent to the server for this portfolio.",
			Fn: func(context.Context, *namespace.Call) (any, error) {
				data, err := json.Marshal(p)
				if err != nil {
					return nil, err
				}
				var out any
				err = json.Unmarshal(data, &out)
				return out, err
			},
		},
		"dump": &namespace.Callable{
			Name:  "dump",
			Usage: "dump PATH",
			Doc:   "Write the portfolio to a JSON file that load_portfolio can read back.",
			Fn: func(_ context.Context, call *namespace.Call) (any, error) {
				path, err := call.Require(0, "path")
				if err != nil {
					return nil, err
				}
				s, ok := path.(string)
				if !ok {
					return nil, fmt.Errorf("path must be a string, got %T", path)
				}
				return nil, p.Dump(s)
			},
		},
	}
}

// holdingFromCall builds a holding from console arguments:
// CODE [PRICE] [QUANTITY] plus keyword options.
func holdingFromCall(call *namespace.Call) (*Holding, error) {
	if err := call.CheckKeywords("code", "price", "quantity", "currency_exchange_value", "attributes", "currency", "price_factor"); err != nil {
		return nil, err
	}
	code, err := call.String(0, "code", "")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, &ClientError{Op: "holding", Err: errors.New("code is required")}
	}
	h := NewHolding(code)

	if h.Price, err = optionalFloat(call, 1, "price"); err != nil {
		return nil, err
	}
	if h.Quantity, err = call.Float(2, "quantity", 1); err != nil {
		return nil, err
	}
	if h.CurrencyExchangeValue, err = optionalFloat(call, 3, "currency_exchange_value"); err != nil {
		return nil, err
	}
	if h.Attributes, err = call.Strings(4, "attributes", []string{}); err != nil {
		return nil, err
	}
	if h.Currency, err = call.String(5, "currency", ""); err != nil {
		return nil, err
	}
	if h.PriceFactor, err = optionalFloat(call, 6, "price_factor"); err != nil {
		return nil, err
	}
	return h, nil
}

// portfolioFromCall builds an empty portfolio from console arguments:
// CURRENCY [--type T] [--outstanding N] [--coverage-priority X].
func portfolioFromCall(call *namespace.Call) (*Portfolio, error) {
	if err := call.CheckKeywords("currency", "type", "outstanding", "coverage_priority"); err != nil {
		return nil, err
	}
	currency, err := call.String(0, "currency", "")
	if err != nil {
		return nil, err
	}
	if currency == "" {
		return nil, &ClientError{Op: "portfolio", Err: errors.New("currency is required")}
	}
	p := NewPortfolio(currency)
	if p.Type, err = call.String(1, "type", PortfolioQuantities); err != nil {
		return nil, err
	}
	if p.Type != PortfolioQuantities && p.Type != PortfolioWeights {
		return nil, &ClientError{Op: "portfolio", Err: fmt.Errorf("type must be %q or %q, got %q", PortfolioQuantities, PortfolioWeights, p.Type)}
	}
	if p.Outstanding, err = optionalFloat(call, 2, "outstanding"); err != nil {
		return nil, err
	}
	if v, ok := call.Value(3, "coverage_priority"); ok {
		p.CoveragePriority = v
	}
	return p, nil
}

func optionalFloat(call *namespace.Call, pos int, key string) (*float64, error) {
	if v, ok := call.Value(pos, key); !ok || v == nil {
		return nil, nil
	}
	f, err := call.Float(pos, key, 0)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
