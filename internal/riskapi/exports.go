// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// exports.go - Console bindings for Client operations.
//
// Each export adapts console arguments (see namespace.Call) to the typed
// Client method of the same name.

package riskapi

import (
	"context"
	"fmt"

	"github.com/jeranaias/riskapi-console/internal/namespace"
)

// Exports publishes the connection's values and operations to the console.
func (c *Client) Exports() map[string]any {
	exports := map[string]any{
		"host":      c.params.Host,
		"customer":  c.params.Customer,
		"username":  c.params.Username,
		"scheme":    c.params.Scheme,
		"resources": c.Resources(),
	}
	for _, fn := range c.callables() {
		exports[fn.Name] = fn
	}
	return exports
}

func (c *Client) callables() []*namespace.Callable {
	return []*namespace.Callable{
		{
			Name:  "products",
			Usage: "products [SEARCH] [--limit N]",
			Doc: "Return the list of available products. SEARCH restricts the result to products whose code or " +
				"description starts with it (case insensitive). Without --limit every page is fetched.",
			Fn: func(ctx context.Context, call *namespace.Call) (any, error) {
				if err := call.CheckKeywords("search", "limit"); err != nil {
					return nil, err
				}
				search, err := call.String(0, "search", "")
				if err != nil {
					return nil, err
				}
				limit, err := call.Int(1, "limit", 0)
				if err != nil {
					return nil, err
				}
				return c.Products(ctx, search, limit)
			},
		},
		{
			Name:  "product",
			Usage: "product CODE",
			Doc:   "Return the details of a single product.",
			Fn: func(ctx context.Context, call *namespace.Call) (any, error) {
				code, err := call.String(0, "code", "")
				if err != nil {
					return nil, err
				}
				return c.Product(ctx, code)
			},
		},
		{
			Name:  "available_stress_test_scenarios",
			Usage: "available_stress_test_scenarios",
			Doc:   "Return the stress test scenarios known to the server.",
			Fn: func(ctx context.Context, _ *namespace.Call) (any, error) {
				return c.StressTestScenarios(ctx)
			},
		},
		{
			Name:  "available_liquidity_risk_scenarios",
			Usage: "available_liquidity_risk_scenarios",
			Doc:   "Return the liquidity risk scenarios known to the server.",
			Fn: func(ctx context.Context, _ *namespace.Call) (any, error) {
				return c.LiquidityRiskScenarios(ctx)
			},
		},
		{
			Name:  "portfolio_info",
			Usage: "portfolio_info $PF [--fields a,b]",
			Doc:   "Return static information about the portfolio, such as size and exposure.",
			Fn: func(ctx context.Context, call *namespace.Call) (any, error) {
				pf, err := portfolioArg(call, 0, "portfolio")
				if err != nil {
					return nil, err
				}
				fields, err := call.Strings(1, "fields", nil)
				if err != nil {
					return nil, err
				}
				return c.PortfolioInfo(ctx, pf, fields)
			},
		},
		{
			Name:  "data_info",
			Usage: "data_info",
			Doc:   "Return information about the latest loaded dataset.",
			Fn: func(ctx context.Context, _ *namespace.Call) (any, error) {
				return c.DataInfo(ctx)
			},
		},
		{
			Name: "risk",
			Usage: "risk $PF PERCENTILES [--functions f,g] [--lookback-days 730] [--horizons 1] " +
				"[--frequencies 1] [--exponential-decay X]",
			Doc: "Compute the risk functions on the portfolio for each combination of percentiles, " +
				"lookback days, horizons and frequencies. Functions default to RISK_FUNCTIONS.",
			Fn: func(ctx context.Context, call *namespace.Call) (any, error) {
				if err := call.CheckKeywords("portfolio", "percentiles", "functions", "lookback_days", "horizons", "frequencies", "exponential_decay"); err != nil {
					return nil, err
				}
				pf, err := portfolioArg(call, 0, "portfolio")
				if err != nil {
					return nil, err
				}
				var opts RiskOptions
				if opts.Percentiles, err = call.Floats(1, "percentiles", nil); err != nil {
					return nil, err
				}
				if opts.Functions, err = call.Strings(2, "functions", nil); err != nil {
					return nil, err
				}
				if opts.LookbackDays, err = call.Ints(3, "lookback_days", nil); err != nil {
					return nil, err
				}
				if opts.Horizons, err = call.Ints(4, "horizons", nil); err != nil {
					return nil, err
				}
				if opts.Frequencies, err = call.Ints(5, "frequencies", nil); err != nil {
					return nil, err
				}
				if opts.ExponentialDecay, err = optionalFloat(call, 6, "exponential_decay"); err != nil {
					return nil, err
				}
				return c.Risk(ctx, pf, opts)
			},
		},
		{
			Name:  "stress_test",
			Usage: "stress_test $PF [--codes a,b]",
			Doc:   "Return the cash loss or gain of each requested stress test scenario. All scenarios when no codes are given.",
			Fn: c.stressFn(false, func(ctx context.Context, pf, _ *Portfolio, codes []string) (any, error) {
				return c.StressTest(ctx, pf, codes)
			}),
		},
		{
			Name:  "liquidity_risk",
			Usage: "liquidity_risk $PF",
			Doc:   "Return the cash loss or gain of each available liquidity scenario.",
			Fn:    c.liquidityFn(c.LiquidityRisk),
		},
		{
			Name:  "risk_decomposition",
			Usage: "risk_decomposition $PF PERCENTILE [--functions f,g] [--lookback-days 730] [--horizon 1] [--frequency 1] [--fields a,b]",
			Doc:   "Decompose the risk functions along the holdings' attributes. Functions default to DECOMPOSABLE_RISK_FUNCTIONS.",
			Fn: c.decompositionFn(false, func(ctx context.Context, pf, _ *Portfolio, opts DecompositionOptions) (any, error) {
				return c.RiskDecomposition(ctx, pf, opts)
			}),
		},
		{
			Name:  "relative_risk_decomposition",
			Usage: "relative_risk_decomposition $PF $BENCHMARK PERCENTILE [options as risk_decomposition]",
			Doc:   "Decompose the risk functions relative to a benchmark portfolio.",
			Fn:    c.decompositionFn(true, c.RelativeRiskDecomposition),
		},
		{
			Name:  "multi_level_risk_decomposition",
			Usage: "multi_level_risk_decomposition $PF PERCENTILE [options as risk_decomposition]",
			Doc:   "Return a hierarchy of risk figures following the holdings' attributes.",
			Fn: c.decompositionFn(false, func(ctx context.Context, pf, _ *Portfolio, opts DecompositionOptions) (any, error) {
				return c.MultiLevelRiskDecomposition(ctx, pf, opts)
			}),
		},
		{
			Name:  "relative_multi_level_risk_decomposition",
			Usage: "relative_multi_level_risk_decomposition $PF $BENCHMARK PERCENTILE [options as risk_decomposition]",
			Doc:   "Multi-level risk decomposition relative to a benchmark portfolio.",
			Fn:    c.decompositionFn(true, c.RelativeMultiLevelRiskDecomposition),
		},
		{
			Name:  "stress_test_decomposition",
			Usage: "stress_test_decomposition $PF [--codes a,b]",
			Doc:   "Decompose the requested stress test scenarios along the holdings' attributes.",
			Fn: c.stressFn(false, func(ctx context.Context, pf, _ *Portfolio, codes []string) (any, error) {
				return c.StressTestDecomposition(ctx, pf, codes)
			}),
		},
		{
			Name:  "relative_stress_test_decomposition",
			Usage: "relative_stress_test_decomposition $PF $BENCHMARK [--codes a,b]",
			Doc:   "Stress test decomposition relative to a benchmark portfolio.",
			Fn:    c.stressFn(true, c.RelativeStressTestDecomposition),
		},
		{
			Name:  "multi_level_stress_test_decomposition",
			Usage: "multi_level_stress_test_decomposition $PF [--codes a,b]",
			Doc:   "Return a hierarchy of stress test results following the holdings' attributes.",
			Fn: c.stressFn(false, func(ctx context.Context, pf, _ *Portfolio, codes []string) (any, error) {
				return c.MultiLevelStressTestDecomposition(ctx, pf, codes)
			}),
		},
		{
			Name:  "relative_multi_level_stress_test_decomposition",
			Usage: "relative_multi_level_stress_test_decomposition $PF $BENCHMARK [--codes a,b]",
			Doc:   "Multi-level stress test decomposition relative to a benchmark portfolio.",
			Fn:    c.stressFn(true, c.RelativeMultiLevelStressTestDecomposition),
		},
		{
			Name:  "liquidity_risk_decomposition",
			Usage: "liquidity_risk_decomposition $PF",
			Doc:   "Decompose every liquidity scenario along the holdings' attributes.",
			Fn:    c.liquidityFn(c.LiquidityRiskDecomposition),
		},
		{
			Name:  "multi_level_liquidity_risk_decomposition",
			Usage: "multi_level_liquidity_risk_decomposition $PF",
			Doc:   "Return a hierarchy of liquidity risk figures following the holdings' attributes.",
			Fn:    c.liquidityFn(c.MultiLevelLiquidityRiskDecomposition),
		},
		{
			Name:  "aussie_bond_futures_npv",
			Usage: "aussie_bond_futures_npv CODE PRICE",
			Doc:   "Compute the NPV of an Australian bond future.",
			Fn: func(ctx context.Context, call *namespace.Call) (any, error) {
				code, err := call.String(0, "code", "")
				if err != nil {
					return nil, err
				}
				if _, err := call.Require(1, "price"); err != nil {
					return nil, err
				}
				price, err := call.Float(1, "price", 0)
				if err != nil {
					return nil, err
				}
				return c.AussieBondFuturesNPV(ctx, code, price)
			},
		},
		{
			Name:  "system_info",
			Usage: "system_info",
			Doc:   "Return the server dashboard.",
			Fn: func(ctx context.Context, _ *namespace.Call) (any, error) {
				return c.SystemInfo(ctx)
			},
		},
		{
			Name:  "close",
			Usage: "close",
			Doc:   "Release idle connections to the server.",
			Fn: func(context.Context, *namespace.Call) (any, error) {
				c.Close()
				return nil, nil
			},
		},
	}
}

// =============================================================================
// ARGUMENT ADAPTERS
// =============================================================================

type decomposeFunc func(ctx context.Context, pf, benchmark *Portfolio, opts DecompositionOptions) (any, error)

// decompositionFn reads $PF [$BENCHMARK] PERCENTILE and keyword options.
func (c *Client) decompositionFn(relative bool, fn decomposeFunc) namespace.Func {
	return func(ctx context.Context, call *namespace.Call) (any, error) {
		if err := call.CheckKeywords("portfolio", "benchmark", "percentile", "functions", "lookback_days", "horizon", "frequency", "fields"); err != nil {
			return nil, err
		}
		pf, benchmark, next, err := portfolioPair(call, relative)
		if err != nil {
			return nil, err
		}
		if _, err := call.Require(next, "percentile"); err != nil {
			return nil, err
		}
		var opts DecompositionOptions
		if opts.Percentile, err = call.Float(next, "percentile", 0); err != nil {
			return nil, err
		}
		if opts.Functions, err = call.Strings(next+1, "functions", nil); err != nil {
			return nil, err
		}
		if opts.LookbackDays, err = call.Int(next+2, "lookback_days", 0); err != nil {
			return nil, err
		}
		if opts.Horizon, err = call.Int(next+3, "horizon", 0); err != nil {
			return nil, err
		}
		if opts.Frequency, err = call.Int(next+4, "frequency", 0); err != nil {
			return nil, err
		}
		if opts.Fields, err = call.Strings(next+5, "fields", nil); err != nil {
			return nil, err
		}
		return fn(ctx, pf, benchmark, opts)
	}
}

type stressFunc func(ctx context.Context, pf, benchmark *Portfolio, codes []string) (any, error)

// stressFn reads $PF [$BENCHMARK] [CODES].
func (c *Client) stressFn(relative bool, fn stressFunc) namespace.Func {
	return func(ctx context.Context, call *namespace.Call) (any, error) {
		if err := call.CheckKeywords("portfolio", "benchmark", "codes"); err != nil {
			return nil, err
		}
		pf, benchmark, next, err := portfolioPair(call, relative)
		if err != nil {
			return nil, err
		}
		codes, err := call.Strings(next, "codes", nil)
		if err != nil {
			return nil, err
		}
		return fn(ctx, pf, benchmark, codes)
	}
}

// liquidityFn reads $PF.
func (c *Client) liquidityFn(fn func(context.Context, *Portfolio) (any, error)) namespace.Func {
	return func(ctx context.Context, call *namespace.Call) (any, error) {
		pf, err := portfolioArg(call, 0, "portfolio")
		if err != nil {
			return nil, err
		}
		return fn(ctx, pf)
	}
}

// portfolioPair reads the portfolio and, for relative operations, the
// benchmark. It returns the position of the next positional argument.
func portfolioPair(call *namespace.Call, relative bool) (pf, benchmark *Portfolio, next int, err error) {
	if pf, err = portfolioArg(call, 0, "portfolio"); err != nil {
		return nil, nil, 0, err
	}
	if !relative {
		return pf, nil, 1, nil
	}
	if benchmark, err = portfolioArg(call, 1, "benchmark"); err != nil {
		return nil, nil, 0, err
	}
	return pf, benchmark, 2, nil
}

// portfolioArg accepts a *Portfolio value or the path of a dumped portfolio.
func portfolioArg(call *namespace.Call, pos int, key string) (*Portfolio, error) {
	v, err := call.Require(pos, key)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case *Portfolio:
		return x, nil
	case string:
		return LoadPortfolio(x)
	}
	return nil, fmt.Errorf("argument %q must be a portfolio, got %T", key, v)
}
