// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package riskapi

import (
	"fmt"

	"dario.cat/mergo"

	"github.com/jeranaias/riskapi-console/internal/config"
)

// Params are the connection parameters of a RiskAPI client. Empty strings
// mean "not supplied".
type Params struct {
	Host     string `json:"host"`
	Customer string `json:"customer"`
	Username string `json:"username"`
	Password string `json:"-"`
	Secure   bool   `json:"secure"`
	// Scheme is derived from Secure by resolveParams.
	Scheme string `json:"scheme"`
}

// BaseURL returns scheme://host.
func (p Params) BaseURL() string {
	return p.Scheme + "://" + p.Host
}

// SchemeFor returns "https" for secure connections and "http" otherwise.
func SchemeFor(secure bool) string {
	if secure {
		return "https"
	}
	return "http"
}

// resolveParams fills every empty field of p from the [client] section of
// cfg, then from the library defaults, and derives the scheme.
func resolveParams(cfg *config.Config, p Params) (Params, error) {
	fromConfig := Params{
		Host:     cfg.Client.Host,
		Customer: cfg.Client.Customer,
		Username: cfg.Client.User,
		Password: cfg.Client.Password,
	}
	defaults := Params{
		Host:     config.DefaultHost,
		Customer: config.DefaultCustomer,
	}

	resolved := p
	for _, src := range []Params{fromConfig, defaults} {
		if err := mergo.Merge(&resolved, src); err != nil {
			return Params{}, fmt.Errorf("error merging connection params: %w", err)
		}
	}
	resolved.Scheme = SchemeFor(resolved.Secure)
	return resolved, nil
}
