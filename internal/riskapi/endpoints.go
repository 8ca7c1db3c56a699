// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package riskapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// RiskFunctions lists every risk function the server can compute.
var RiskFunctions = []string{
	"average_potential_upside", "average_var", "diversification",
	"expected_loss", "expected_return", "expected_shortfall",
	"expected_upside", "potential_upside", "var", "volatility",
}

// DecomposableRiskFunctions lists the risk functions that support
// decomposition.
var DecomposableRiskFunctions = []string{
	"expected_shortfall", "expected_upside", "potential_upside", "var", "volatility",
}

// Decomposition defaults.
const (
	DefaultLookbackDays = 730
	DefaultHorizon      = 1
	DefaultFrequency    = 1
)

var errNoPortfolio = errors.New("portfolio is required")

// =============================================================================
// STATICS
// =============================================================================

// Products returns the available products. search limits the result to
// codes or descriptions starting with it (case insensitive). With limit > 0
// a single page is fetched, otherwise every page is collected.
func (c *Client) Products(ctx context.Context, search string, limit int) ([]any, error) {
	query := map[string]string{}
	if search != "" {
		query["query"] = search
	}
	if limit > 0 {
		query["limit"] = strconv.Itoa(limit)
		res, err := c.get(ctx, "statics/products", query)
		if err != nil {
			return nil, err
		}
		obj, _ := res.(map[string]any)
		data, _ := obj["data"].([]any)
		return data, nil
	}
	return c.fetchPaginated(ctx, "statics/products", query)
}

// Product returns the details of one product.
func (c *Client) Product(ctx context.Context, code string) (any, error) {
	if code == "" {
		return nil, &ClientError{Op: "product", Err: errors.New("code is required")}
	}
	return c.get(ctx, "statics/products/"+url.PathEscape(code), nil)
}

// StressTestScenarios lists the available stress test scenarios.
func (c *Client) StressTestScenarios(ctx context.Context) (any, error) {
	return c.get(ctx, "statics/stress-test", nil)
}

// LiquidityRiskScenarios lists the available liquidity risk scenarios.
func (c *Client) LiquidityRiskScenarios(ctx context.Context) (any, error) {
	return c.get(ctx, "statics/liquidity-risk", nil)
}

// PortfolioInfo returns static information about a portfolio.
func (c *Client) PortfolioInfo(ctx context.Context, pf *Portfolio, fields []string) (any, error) {
	if pf == nil {
		return nil, &ClientError{Op: "portfolio_info", Err: errNoPortfolio}
	}
	return c.post(ctx, "statics/portfolio-info", portfolioInfoRequest{Portfolio: pf, Fields: fields})
}

// DataInfo describes the latest loaded dataset.
func (c *Client) DataInfo(ctx context.Context) (any, error) {
	return c.get(ctx, "statics/data-info", nil)
}

// SystemInfo returns the server dashboard.
func (c *Client) SystemInfo(ctx context.Context) (any, error) {
	return c.get(ctx, "system/dashboard", nil)
}

// =============================================================================
// RISK
// =============================================================================

// RiskOptions selects what Risk computes. Empty lists take the defaults:
// every risk function, 730 lookback days, horizon 1, frequency 1.
type RiskOptions struct {
	Percentiles      []float64
	Functions        []string
	LookbackDays     []int
	Horizons         []int
	Frequencies      []int
	ExponentialDecay *float64
}

// Risk computes each risk function for every combination of percentile,
// lookback, horizon and frequency.
func (c *Client) Risk(ctx context.Context, pf *Portfolio, opts RiskOptions) (any, error) {
	if pf == nil {
		return nil, &ClientError{Op: "risk", Err: errNoPortfolio}
	}
	if len(opts.Percentiles) == 0 {
		return nil, &ClientError{Op: "risk", Err: errors.New("at least one percentile is required")}
	}
	req := riskRequest{
		Portfolio:        pf,
		Percentiles:      opts.Percentiles,
		Functions:        orStrings(opts.Functions, RiskFunctions),
		LookbackDays:     orInts(opts.LookbackDays, []int{DefaultLookbackDays}),
		Horizons:         orInts(opts.Horizons, []int{DefaultHorizon}),
		Frequencies:      orInts(opts.Frequencies, []int{DefaultFrequency}),
		ExponentialDecay: opts.ExponentialDecay,
	}
	return c.post(ctx, "risk", req)
}

// DecompositionOptions selects what a risk decomposition computes.
// Zero values take the defaults: every decomposable function, 730 lookback
// days, horizon 1, frequency 1.
type DecompositionOptions struct {
	Percentile   float64
	Functions    []string
	LookbackDays int
	Horizon      int
	Frequency    int
	Fields       []string
}

// RiskDecomposition decomposes risk along the holdings' attributes.
func (c *Client) RiskDecomposition(ctx context.Context, pf *Portfolio, opts DecompositionOptions) (any, error) {
	return c.decompose(ctx, "risk/decomposition", pf, nil, opts)
}

// RelativeRiskDecomposition decomposes risk relative to a benchmark.
func (c *Client) RelativeRiskDecomposition(ctx context.Context, pf, benchmark *Portfolio, opts DecompositionOptions) (any, error) {
	return c.decompose(ctx, "risk/decomposition/relative", pf, benchmark, opts)
}

// MultiLevelRiskDecomposition returns a hierarchy of risk figures following
// the holdings' attributes.
func (c *Client) MultiLevelRiskDecomposition(ctx context.Context, pf *Portfolio, opts DecompositionOptions) (any, error) {
	return c.decompose(ctx, "risk/multi-level-decomposition", pf, nil, opts)
}

// RelativeMultiLevelRiskDecomposition is MultiLevelRiskDecomposition
// relative to a benchmark.
func (c *Client) RelativeMultiLevelRiskDecomposition(ctx context.Context, pf, benchmark *Portfolio, opts DecompositionOptions) (any, error) {
	return c.decompose(ctx, "risk/multi-level-decomposition/relative", pf, benchmark, opts)
}

func (c *Client) decompose(ctx context.Context, resource string, pf, benchmark *Portfolio, opts DecompositionOptions) (any, error) {
	if pf == nil {
		return nil, &ClientError{Op: resource, Err: errNoPortfolio}
	}
	if opts.Percentile <= 0 || opts.Percentile >= 1 {
		return nil, &ClientError{Op: resource, Err: fmt.Errorf("percentile must be between 0 and 1, got %v", opts.Percentile)}
	}
	req := decompositionRequest{
		Portfolio:    pf,
		Benchmark:    benchmark,
		Percentile:   opts.Percentile,
		Functions:    orStrings(opts.Functions, DecomposableRiskFunctions),
		LookbackDays: orInt(opts.LookbackDays, DefaultLookbackDays),
		Horizon:      orInt(opts.Horizon, DefaultHorizon),
		Frequency:    orInt(opts.Frequency, DefaultFrequency),
		Fields:       opts.Fields,
	}
	return c.post(ctx, resource, req)
}

// =============================================================================
// STRESS TEST & LIQUIDITY
// =============================================================================

// StressTest returns the cash gain or loss of each requested scenario.
// Nil codes select every scenario.
func (c *Client) StressTest(ctx context.Context, pf *Portfolio, codes []string) (any, error) {
	return c.stress(ctx, "stress-test", pf, nil, codes)
}

// StressTestDecomposition decomposes stress test results along attributes.
func (c *Client) StressTestDecomposition(ctx context.Context, pf *Portfolio, codes []string) (any, error) {
	return c.stress(ctx, "stress-test/decomposition", pf, nil, codes)
}

// RelativeStressTestDecomposition is StressTestDecomposition relative to a
// benchmark.
func (c *Client) RelativeStressTestDecomposition(ctx context.Context, pf, benchmark *Portfolio, codes []string) (any, error) {
	return c.stress(ctx, "stress-test/decomposition/relative", pf, benchmark, codes)
}

// MultiLevelStressTestDecomposition returns a hierarchy of stress results.
func (c *Client) MultiLevelStressTestDecomposition(ctx context.Context, pf *Portfolio, codes []string) (any, error) {
	return c.stress(ctx, "stress-test/multi-level-decomposition", pf, nil, codes)
}

// RelativeMultiLevelStressTestDecomposition is
// MultiLevelStressTestDecomposition relative to a benchmark.
func (c *Client) RelativeMultiLevelStressTestDecomposition(ctx context.Context, pf, benchmark *Portfolio, codes []string) (any, error) {
	return c.stress(ctx, "stress-test/multi-level-decomposition/relative", pf, benchmark, codes)
}

func (c *Client) stress(ctx context.Context, resource string, pf, benchmark *Portfolio, codes []string) (any, error) {
	if pf == nil {
		return nil, &ClientError{Op: resource, Err: errNoPortfolio}
	}
	return c.post(ctx, resource, stressRequest{Portfolio: pf, Benchmark: benchmark, Codes: codes})
}

// LiquidityRisk applies every liquidity scenario to the portfolio.
func (c *Client) LiquidityRisk(ctx context.Context, pf *Portfolio) (any, error) {
	return c.liquidity(ctx, "liquidity-risk", pf)
}

// LiquidityRiskDecomposition decomposes liquidity risk along attributes.
func (c *Client) LiquidityRiskDecomposition(ctx context.Context, pf *Portfolio) (any, error) {
	return c.liquidity(ctx, "liquidity-risk/decomposition", pf)
}

// MultiLevelLiquidityRiskDecomposition returns a hierarchy of liquidity
// risk figures.
func (c *Client) MultiLevelLiquidityRiskDecomposition(ctx context.Context, pf *Portfolio) (any, error) {
	return c.liquidity(ctx, "liquidity-risk/multi-level-decomposition", pf)
}

func (c *Client) liquidity(ctx context.Context, resource string, pf *Portfolio) (any, error) {
	if pf == nil {
		return nil, &ClientError{Op: resource, Err: errNoPortfolio}
	}
	return c.post(ctx, resource, portfolioRequest{Portfolio: pf})
}

// AussieBondFuturesNPV computes the NPV of an Australian bond future.
func (c *Client) AussieBondFuturesNPV(ctx context.Context, code string, price float64) (any, error) {
	if code == "" {
		return nil, &ClientError{Op: "aussie_bond_futures_npv", Err: errors.New("code is required")}
	}
	return c.post(ctx, "aussie-bond-futures-npv", npvRequest{Code: code, Price: price})
}

// =============================================================================
// WIRE BODIES
// =============================================================================

type portfolioRequest struct {
	Portfolio *Portfolio `json:"portfolio"`
}

type portfolioInfoRequest struct {
	Portfolio *Portfolio `json:"portfolio"`
	Fields    []string   `json:"fields"`
}

type riskRequest struct {
	Portfolio        *Portfolio `json:"portfolio"`
	Percentiles      []float64  `json:"percentiles"`
	Functions        []string   `json:"functions"`
	LookbackDays     []int      `json:"lookback_days"`
	Horizons         []int      `json:"horizons"`
	Frequencies      []int      `json:"frequencies"`
	ExponentialDecay *float64   `json:"exponential_decay"`
}

type decompositionRequest struct {
	Portfolio    *Portfolio `json:"portfolio"`
	Benchmark    *Portfolio `json:"benchmark,omitempty"`
	Percentile   float64    `json:"percentile"`
	Functions    []string   `json:"functions"`
	LookbackDays int        `json:"lookback_days"`
	Horizon      int        `json:"horizon"`
	Frequency    int        `json:"frequency"`
	Fields       []string   `json:"fields"`
}

type stressRequest struct {
	Portfolio *Portfolio `json:"portfolio"`
	Benchmark *Portfolio `json:"benchmark,omitempty"`
	Codes     []string   `json:"stress_test_codes"`
}

type npvRequest struct {
	Code  string  `json:"code"`
	Price float64 `json:"price"`
}

func orStrings(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}

func orInts(v, def []int) []int {
	if len(v) == 0 {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
