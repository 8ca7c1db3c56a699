// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// shell.go - The interactive console session.
//
// USABILITY: readline-style editing, persistent history and tab completion
// of bound names via liner. Ctrl-C clears the current line or cancels the
// running call; Ctrl-D ends the session.

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"

	"github.com/jeranaias/riskapi-console/internal/logger"
	"github.com/jeranaias/riskapi-console/internal/namespace"
	"github.com/jeranaias/riskapi-console/internal/util"
)

// DefaultPrompt is shown before every input line.
const DefaultPrompt = "riskapi> "

// builtins are handled by the shell before evaluation.
var builtins = []string{"help", "dir", "exit", "quit"}

// Greeting is printed once when the session starts.
type Greeting struct {
	Banner string
	Hint   string
}

// Shell runs an interactive session over a namespace.
type Shell interface {
	Run(ctx context.Context, ns *namespace.Namespace, greeting Greeting) error
}

// LineReader is the line editor used by the shell. *liner.State
// implements it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// historyIO is implemented by line editors that can persist history.
type historyIO interface {
	ReadHistory(r io.Reader) (int, error)
	WriteHistory(w io.Writer) (int, error)
}

// ShellOptions configures a Console.
type ShellOptions struct {
	// Prompt defaults to DefaultPrompt.
	Prompt string
	// HistoryFile is loaded at start and rewritten at exit. Empty disables
	// persistence.
	HistoryFile string
	// Out receives results, Err receives error messages.
	Out io.Writer
	Err io.Writer
	// Colors enables styling, JSON highlighting and markdown rendering.
	Colors bool
	// Width is the terminal width; zero means detect.
	Width  int
	Logger *logger.Logger
	// NewReader creates the line editor; nil uses liner.
	NewReader func(complete func(line string) []string) LineReader
	// Interrupts delivers Ctrl-C for the whole session; nil subscribes to
	// os.Interrupt.
	Interrupts <-chan os.Signal
}

// Console is the liner-backed Shell.
type Console struct {
	opts     ShellOptions
	theme    *Theme
	errTheme *Theme
	printer  *Printer
	markdown *glamour.TermRenderer
	log      *logger.Logger
	calls    callGuard
}

// callGuard holds the cancel function of the call in progress, if any.
type callGuard struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func (g *callGuard) begin(ctx context.Context) (context.Context, func()) {
	callCtx, cancel := context.WithCancel(ctx)
	g.mu.Lock()
	g.cancel = cancel
	g.mu.Unlock()
	return callCtx, func() {
		g.mu.Lock()
		g.cancel = nil
		g.mu.Unlock()
		cancel()
	}
}

// interrupt cancels the running call and reports whether there was one.
func (g *callGuard) interrupt() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel == nil {
		return false
	}
	g.cancel()
	return true
}

// NewConsole creates a console with the given options.
func NewConsole(opts ShellOptions) *Console {
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Width <= 0 {
		opts.Width = GetTerminalWidth()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.NewReader == nil {
		opts.NewReader = newLinerReader
	}

	c := &Console{
		opts:     opts,
		theme:    NewTheme(opts.Out, opts.Colors),
		errTheme: NewTheme(opts.Err, opts.Colors),
		printer:  NewPrinter(opts.Out, opts.Colors),
		log:      opts.Logger.Child("shell"),
	}
	if opts.Colors {
		// Fall back to plain markdown if the renderer cannot be built.
		if r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(opts.Width),
		); err == nil {
			c.markdown = r
		}
	}
	return c
}

func newLinerReader(complete func(line string) []string) LineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(complete)
	return line
}

// Run prints the greeting and reads statements until exit, Ctrl-D or ctx
// is cancelled.
func (c *Console) Run(ctx context.Context, ns *namespace.Namespace, greeting Greeting) error {
	reader := c.opts.NewReader(namespace.NewCompleter(ns, builtins...).Complete)
	c.loadHistory(reader)
	defer func() {
		c.saveHistory(reader)
		reader.Close()
	}()

	if greeting.Banner != "" {
		fmt.Fprintln(c.opts.Out, c.theme.Title.Render(greeting.Banner))
	}
	if greeting.Hint != "" {
		fmt.Fprintln(c.opts.Out, c.theme.Hint.Render(greeting.Hint))
	}

	stop := c.watchInterrupts()
	defer stop()

	eval := namespace.NewEvaluator(ns)
	c.log.Info().Int("names", ns.Len()).Msg("session started")
	defer func() { c.log.Info().Msg("session ended") }()

	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := reader.Prompt(c.opts.Prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(c.opts.Out)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		reader.AppendHistory(input)

		if done := c.handle(ctx, eval, input); done {
			return nil
		}
	}
}

// watchInterrupts routes SIGINT to the running call for the rest of the
// session. Outside a call it is ignored, so the process is never killed
// before history is saved.
func (c *Console) watchInterrupts() (stop func()) {
	sigs := c.opts.Interrupts
	unsubscribe := func() {}
	if sigs == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		sigs = ch
		unsubscribe = func() { signal.Stop(ch) }
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-sigs:
				if c.calls.interrupt() {
					c.log.Debug().Msg("call interrupted")
				}
			}
		}
	}()
	return func() {
		unsubscribe()
		close(done)
	}
}

// handle executes one line and reports whether the session should end.
func (c *Console) handle(ctx context.Context, eval *namespace.Evaluator, input string) bool {
	fields := strings.Fields(input)
	ns := eval.Namespace()

	switch fields[0] {
	case "exit", "quit":
		if len(fields) == 1 {
			return true
		}
	case "help":
		switch len(fields) {
		case 1:
			c.printHelp(ns)
			return false
		case 2:
			c.printDescription(ns, fields[1])
			return false
		}
	case "dir":
		switch len(fields) {
		case 1:
			c.printColumns(ns.Names())
			return false
		case 2:
			c.printDir(ns, fields[1])
			return false
		}
	}

	callCtx, done := c.calls.begin(ctx)
	defer done()

	// SECURITY: only the first word is logged, arguments can hold secrets.
	c.log.Debug().Str("command", fields[0]).Msg("eval")
	res, err := eval.Eval(callCtx, input)
	if err != nil {
		if callCtx.Err() != nil && ctx.Err() == nil {
			err = fmt.Errorf("interrupted: %w", err)
		}
		c.log.Debug().Str("command", fields[0]).Err(err).Msg("eval failed")
		c.printError(err)
		return false
	}
	if res.Assigned != "" {
		return false
	}
	if err := c.printer.Print(res.Value); err != nil {
		c.printError(err)
	}
	return false
}

// =============================================================================
// BUILT-INS
// =============================================================================

func (c *Console) printHelp(ns *namespace.Namespace) {
	names := ns.Names()
	width := 0
	for _, name := range names {
		if w := util.StringWidth(name); w > width {
			width = w
		}
	}
	if width > 40 {
		width = 40
	}

	for _, name := range names {
		v, _ := ns.Get(name)
		summary := util.TruncateWidth(util.FirstLine(namespace.Summary(v)), c.opts.Width-width-2)
		fmt.Fprintf(c.opts.Out, "%s  %s\n",
			c.theme.Name.Render(util.PadRight(util.TruncateWidth(name, width), width)),
			c.theme.Value.Render(summary))
	}
	fmt.Fprintln(c.opts.Out, c.theme.Hint.Render("Type help NAME for details on one name."))
}

func (c *Console) printDescription(ns *namespace.Namespace, path string) {
	doc, err := ns.Describe(strings.TrimPrefix(path, "$"))
	if err != nil {
		c.printError(err)
		return
	}
	if c.markdown != nil {
		if rendered, err := c.markdown.Render(doc); err == nil {
			doc = rendered
		}
	}
	fmt.Fprint(c.opts.Out, doc)
	if !strings.HasSuffix(doc, "\n") {
		fmt.Fprintln(c.opts.Out)
	}
}

func (c *Console) printDir(ns *namespace.Namespace, path string) {
	path = strings.TrimPrefix(path, "$")
	v, err := ns.Lookup(path)
	if err != nil {
		c.printError(err)
		return
	}
	attrs := namespace.Attributes(v)
	if attrs == nil {
		c.printError(fmt.Errorf("%s (%T) has no attributes", path, v))
		return
	}
	c.printColumns(attrs)
}

// printColumns lays names out in as many columns as fit the terminal.
func (c *Console) printColumns(names []string) {
	if len(names) == 0 {
		return
	}
	width := 0
	for _, name := range names {
		if w := util.StringWidth(name); w > width {
			width = w
		}
	}
	cols := c.opts.Width / (width + 2)
	if cols < 1 {
		cols = 1
	}

	var line bytes.Buffer
	for i, name := range names {
		cell := name
		if (i+1)%cols != 0 && i != len(names)-1 {
			cell = util.PadRight(name, width+2)
		}
		line.WriteString(cell)
		if (i+1)%cols == 0 || i == len(names)-1 {
			fmt.Fprintln(c.opts.Out, c.theme.Name.Render(strings.TrimRight(line.String(), " ")))
			line.Reset()
		}
	}
}

func (c *Console) printError(err error) {
	fmt.Fprintf(c.opts.Err, "%s %v\n", c.errTheme.Error.Render("[Error]"), err)
}

// =============================================================================
// HISTORY
// SECURITY: the history file is private to the user (0600)
// =============================================================================

func (c *Console) loadHistory(reader LineReader) {
	h, ok := reader.(historyIO)
	if !ok || c.opts.HistoryFile == "" {
		return
	}
	f, err := os.Open(c.opts.HistoryFile)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := h.ReadHistory(f); err != nil {
		c.log.Warn().Err(err).Str("path", c.opts.HistoryFile).Msg("history not loaded")
	}
}

func (c *Console) saveHistory(reader LineReader) {
	h, ok := reader.(historyIO)
	if !ok || c.opts.HistoryFile == "" {
		return
	}
	var buf bytes.Buffer
	if _, err := h.WriteHistory(&buf); err != nil {
		c.log.Warn().Err(err).Msg("history not written")
		return
	}
	if err := util.AtomicWriteFile(c.opts.HistoryFile, buf.Bytes(), 0600); err != nil {
		c.log.Warn().Err(err).Str("path", c.opts.HistoryFile).Msg("history not saved")
	}
}
