// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package riskapi is a client for the RiskAPI risk analytics service.
//
// Requests are JSON over HTTP(S) with optional Basic authentication. Every
// request is attempted once; errors are returned to the caller as
// *HTTPError (the server answered with a status other than 200) or
// *ClientError (anything else).
//
// Library holds the module-level operations (connection factories and
// portfolio constructors), Client the per-connection ones. Both implement
// namespace.Exporter so the console can publish them.
package riskapi

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/riskapi-console/internal/config"
	"github.com/jeranaias/riskapi-console/internal/logger"
	"github.com/jeranaias/riskapi-console/internal/namespace"
)

// Library creates connections using a loaded configuration.
type Library struct {
	cfg *config.Config
	log *logger.Logger
}

// NewLibrary creates a library. A nil cfg uses built-in defaults and a nil
// log discards output.
func NewLibrary(cfg *config.Config, log *logger.Logger) *Library {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Library{cfg: cfg, log: log}
}

// GetParams fills the empty fields of p from the configuration and the
// built-in defaults and sets the scheme from p.Secure.
func (l *Library) GetParams(p Params) (Params, error) {
	return resolveParams(l.cfg, p)
}

// Connect opens a connection with already resolved parameters and checks it
// by fetching the server's resource listing.
func (l *Library) Connect(ctx context.Context, p Params) (*Client, error) {
	if p.Scheme == "" {
		p.Scheme = SchemeFor(p.Secure)
	}
	client, err := NewClient(p, l.clientOptions())
	if err != nil {
		return nil, err
	}

	l.log.Info().
		Str("host", p.Host).
		Str("customer", p.Customer).
		Str("username", p.Username).
		Str("scheme", p.Scheme).
		Msg("connecting")

	if err := client.Ping(ctx); err != nil {
		l.log.Warn().Err(err).Str("host", p.Host).Msg("connection failed")
		client.Close()
		return nil, err
	}
	return client, nil
}

// LocalParams returns the parameters of the development server: the
// configured local host, no customer, no credentials, plain http.
func (l *Library) LocalParams() Params {
	return Params{
		Host:   l.cfg.Local.Host,
		Secure: false,
		Scheme: SchemeFor(false),
	}
}

// ConnectLocal connects to the development server. Credentials from the
// configuration and the environment are not used.
func (l *Library) ConnectLocal(ctx context.Context) (*Client, error) {
	return l.Connect(ctx, l.LocalParams())
}

func (l *Library) clientOptions() ClientOptions {
	return ClientOptions{
		Timeout:           time.Duration(l.cfg.Transport.TimeoutSecs) * time.Second,
		RequestsPerSecond: l.cfg.Transport.RequestsPerSecond,
		PageSize:          l.cfg.Transport.PageSize,
		Logger:            l.log,
	}
}

// =============================================================================
// CONSOLE EXPORTS
// =============================================================================

// Exports publishes the module-level values and operations to the console.
func (l *Library) Exports() map[string]any {
	exports := map[string]any{
		"DEFAULT_HOST":                config.DefaultHost,
		"DEFAULT_LOCAL_HOST":          l.cfg.Local.Host,
		"RISK_FUNCTIONS":              append([]string(nil), RiskFunctions...),
		"DECOMPOSABLE_RISK_FUNCTIONS": append([]string(nil), DecomposableRiskFunctions...),
	}
	for _, fn := range l.callables() {
		exports[fn.Name] = fn
	}
	return exports
}

func (l *Library) callables() []*namespace.Callable {
	return []*namespace.Callable{
		{
			Name:  "portfolio",
			Usage: "portfolio CURRENCY [--type quantities|weights] [--outstanding N] [--coverage-priority X]",
			Doc:   "Create an empty portfolio. Add holdings with $pf.add.",
			Fn: func(_ context.Context, call *namespace.Call) (any, error) {
				return portfolioFromCall(call)
			},
		},
		{
			Name:  "holding",
			Usage: "holding CODE [PRICE] [QUANTITY] [--currency-exchange-value X] [--attributes a,b] [--currency C] [--price-factor F]",
			Doc:   "Create a standalone holding. Quantity defaults to 1.",
			Fn: func(_ context.Context, call *namespace.Call) (any, error) {
				return holdingFromCall(call)
			},
		},
		{
			Name:  "load_portfolio",
			Usage: "load_portfolio PATH",
			Doc:   "Load a portfolio previously written with $pf.dump.",
			Fn: func(_ context.Context, call *namespace.Call) (any, error) {
				path, err := call.String(0, "path", "")
				if err != nil {
					return nil, err
				}
				if path == "" {
					return nil, &ClientError{Op: "load_portfolio", Err: fmt.Errorf("path is required")}
				}
				return LoadPortfolio(path)
			},
		},
		{
			Name:  "get_params",
			Usage: "get_params [--host H] [--customer C] [--username U] [--insecure]",
			Doc:   "Resolve connection parameters from the arguments, the configuration file and the defaults.",
			Fn: func(_ context.Context, call *namespace.Call) (any, error) {
				p, err := paramsFromCall(call)
				if err != nil {
					return nil, err
				}
				return l.GetParams(p)
			},
		},
		{
			Name:  "connect",
			Usage: "connect [--host H] [--customer C] [--username U] [--password P] [--insecure]",
			Doc: "Open a new connection. Missing parameters are taken from the configuration file and the " +
				"defaults. Bind the result to use it, e.g. prod = connect --host api.example.com",
			Fn: func(ctx context.Context, call *namespace.Call) (any, error) {
				p, err := paramsFromCall(call)
				if err != nil {
					return nil, err
				}
				if p, err = l.GetParams(p); err != nil {
					return nil, err
				}
				return l.Connect(ctx, p)
			},
		},
		{
			Name:  "connect_local",
			Usage: "connect_local",
			Doc:   "Open a connection to the local development server over plain http, without credentials.",
			Fn: func(ctx context.Context, _ *namespace.Call) (any, error) {
				return l.ConnectLocal(ctx)
			},
		},
	}
}

func paramsFromCall(call *namespace.Call) (Params, error) {
	if err := call.CheckKeywords("host", "customer", "username", "password", "insecure"); err != nil {
		return Params{}, err
	}
	var p Params
	var err error
	if p.Host, err = call.String(-1, "host", ""); err != nil {
		return Params{}, err
	}
	if p.Customer, err = call.String(-1, "customer", ""); err != nil {
		return Params{}, err
	}
	if p.Username, err = call.String(-1, "username", ""); err != nil {
		return Params{}, err
	}
	if p.Password, err = call.String(-1, "password", ""); err != nil {
		return Params{}, err
	}
	insecure, err := call.Bool(-1, "insecure", false)
	if err != nil {
		return Params{}, err
	}
	p.Secure = !insecure
	return p, nil
}
