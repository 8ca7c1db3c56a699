// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// launcher.go - Connects to RiskAPI and starts the interactive session.

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/riskapi-console/internal/logger"
	"github.com/jeranaias/riskapi-console/internal/namespace"
	"github.com/jeranaias/riskapi-console/internal/riskapi"
)

// ConnName is the namespace variable holding the active connection.
const ConnName = "conn"

// UsageHint is printed under the banner.
const UsageHint = "Type help for the available names, help NAME for details, " +
	"dir conn for the connection's operations. Ctrl-D or exit to quit."

// Library is what the launcher needs from the client library.
type Library interface {
	namespace.Exporter
	ConnectLocal(ctx context.Context) (namespace.Exporter, error)
	GetParams(p riskapi.Params) (riskapi.Params, error)
	Connect(ctx context.Context, p riskapi.Params) (namespace.Exporter, error)
}

// Options are the connection flags of the root command.
type Options struct {
	Host     string
	Customer string
	Username string
	Password string
	Insecure bool
	Local    bool
}

// Params converts the flags to unresolved connection parameters.
func (o Options) Params() riskapi.Params {
	return riskapi.Params{
		Host:     o.Host,
		Customer: o.Customer,
		Username: o.Username,
		Password: o.Password,
		Secure:   !o.Insecure,
	}
}

// Launcher wires a library, a password source and a shell together.
type Launcher struct {
	Lib       Library
	Passwords PasswordReader
	Shell     Shell
}

// Run connects as directed by opts and blocks in the shell until the
// session ends. Connection failures are returned as *FatalError. Events
// go to the logger attached to ctx.
func (l *Launcher) Run(ctx context.Context, opts Options) error {
	log := logger.FromContext(ctx).Child("launcher")

	conn, err := l.connect(ctx, opts)
	if err != nil {
		log.Error().Err(err).Bool("local", opts.Local).Msg("connection failed")
		return fatal(err)
	}
	if closer, ok := conn.(interface{ Close() }); ok {
		defer closer.Close()
	}

	ns := namespace.Build(l.Lib, ConnName, conn)
	log.Info().Int("names", ns.Len()).Msg("namespace ready")

	return l.Shell.Run(ctx, ns, Greeting{
		Banner: Banner(conn),
		Hint:   UsageHint,
	})
}

// connect opens the connection. The local path never resolves parameters
// and never prompts.
func (l *Launcher) connect(ctx context.Context, opts Options) (namespace.Exporter, error) {
	if opts.Local {
		return l.Lib.ConnectLocal(ctx)
	}

	params, err := l.Lib.GetParams(opts.Params())
	if err != nil {
		return nil, err
	}

	if params.Password == "" {
		if l.Passwords == nil {
			return nil, fmt.Errorf("no password for %s and no way to ask for one", params.Username)
		}
		password, err := l.Passwords.ReadPassword(PasswordPrompt(params.Username))
		if err != nil {
			return nil, err
		}
		params.Password = password
	}

	return l.Lib.Connect(ctx, params)
}

// PasswordPrompt is the masked prompt shown for username.
func PasswordPrompt(username string) string {
	return fmt.Sprintf("Password for %s: ", username)
}

// Banner greets the user with the connection's endpoint.
func Banner(conn namespace.Exporter) string {
	if s, ok := conn.(fmt.Stringer); ok {
		return "RiskAPI console: " + s.String()
	}
	return "RiskAPI console"
}

// =============================================================================
// RISKAPI ADAPTER
// =============================================================================

// libraryAdapter exposes *riskapi.Library through the Library interface.
type libraryAdapter struct {
	*riskapi.Library
}

// NewLibrary adapts lib for the launcher.
func NewLibrary(lib *riskapi.Library) Library {
	return libraryAdapter{Library: lib}
}

func (a libraryAdapter) ConnectLocal(ctx context.Context) (namespace.Exporter, error) {
	c, err := a.Library.ConnectLocal(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (a libraryAdapter) Connect(ctx context.Context, p riskapi.Params) (namespace.Exporter, error) {
	c, err := a.Library.Connect(ctx, p)
	if err != nil {
		return nil, err
	}
	return c, nil
}
