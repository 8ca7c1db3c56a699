// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/riskapi-console/internal/namespace"
)

// =============================================================================
// SCRIPTED LINE READER
// =============================================================================

type scriptLine struct {
	text string
	err  error
}

type scriptReader struct {
	lines    []scriptLine
	pos      int
	history  []string
	loaded   []string
	closed   bool
	complete func(string) []string
}

func (r *scriptReader) Prompt(string) (string, error) {
	if r.pos >= len(r.lines) {
		return "", io.EOF
	}
	l := r.lines[r.pos]
	r.pos++
	return l.text, l.err
}

func (r *scriptReader) AppendHistory(item string) { r.history = append(r.history, item) }
func (r *scriptReader) Close() error              { r.closed = true; return nil }

func (r *scriptReader) ReadHistory(in io.Reader) (int, error) {
	s := bufio.NewScanner(in)
	for s.Scan() {
		r.loaded = append(r.loaded, s.Text())
	}
	return len(r.loaded), s.Err()
}

func (r *scriptReader) WriteHistory(w io.Writer) (int, error) {
	for _, h := range append(append([]string(nil), r.loaded...), r.history...) {
		fmt.Fprintln(w, h)
	}
	return len(r.history), nil
}

func lines(texts ...string) []scriptLine {
	out := make([]scriptLine, len(texts))
	for i, t := range texts {
		out[i] = scriptLine{text: t}
	}
	return out
}

type shellHarness struct {
	reader *scriptReader
	out    *bytes.Buffer
	errOut *bytes.Buffer
	shell  *Console
}

func newShellHarness(script []scriptLine, history string) *shellHarness {
	h := &shellHarness{
		reader: &scriptReader{lines: script},
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
	}
	h.shell = NewConsole(ShellOptions{
		HistoryFile: history,
		Out:         h.out,
		Err:         h.errOut,
		Width:       80,
		NewReader: func(complete func(string) []string) LineReader {
			h.reader.complete = complete
			return h.reader
		},
	})
	return h
}

type connExports map[string]any

func (c connExports) Exports() map[string]any { return c }

func testNamespace() *namespace.Namespace {
	module := connExports{
		"greeting": "hello",
		"answer": &namespace.Callable{
			Name:  "answer",
			Usage: "answer",
			Doc:   "Return the answer. It is always the same.",
			Fn: func(context.Context, *namespace.Call) (any, error) {
				return map[string]any{"answer": 42}, nil
			},
		},
		"fail": &namespace.Callable{
			Name: "fail",
			Doc:  "Always fails.",
			Fn: func(context.Context, *namespace.Call) (any, error) {
				return nil, errors.New("HTTP 500: boom")
			},
		},
	}
	conn := connExports{
		"products": &namespace.Callable{
			Name: "products",
			Doc:  "List products.",
			Fn: func(context.Context, *namespace.Call) (any, error) {
				return []any{"A", "B"}, nil
			},
		},
		"host": "api.example.com",
	}
	return namespace.Build(module, ConnName, conn)
}

// =============================================================================
// SESSION
// =============================================================================

func TestConsole_GreetingAndResults(t *testing.T) {
	h := newShellHarness(lines("greeting", "answer", "conn.products", "host"), "")

	err := h.shell.Run(context.Background(), testNamespace(), Greeting{Banner: "Welcome", Hint: "Type help"})
	require.NoError(t, err)

	out := h.out.String()
	assert.True(t, strings.HasPrefix(out, "Welcome\nType help\n"))
	assert.Contains(t, out, "hello\n")
	assert.Contains(t, out, "{\n  \"answer\": 42\n}\n")
	assert.Contains(t, out, "[\n  \"A\",\n  \"B\"\n]\n")
	assert.Contains(t, out, "api.example.com\n")
	assert.Empty(t, h.errOut.String())
	assert.True(t, h.reader.closed)
	assert.Equal(t, []string{"greeting", "answer", "conn.products", "host"}, h.reader.history)
}

func TestConsole_ErrorsDoNotEndSession(t *testing.T) {
	h := newShellHarness(lines("fail", "nosuchname", "greeting"), "")

	require.NoError(t, h.shell.Run(context.Background(), testNamespace(), Greeting{}))

	assert.Contains(t, h.errOut.String(), "[Error] HTTP 500: boom\n")
	assert.Contains(t, h.errOut.String(), "[Error] ")
	assert.Equal(t, 2, strings.Count(h.errOut.String(), "[Error]"))
	assert.Contains(t, h.out.String(), "hello\n", "session continues after errors")
}

func TestConsole_AssignmentPrintsNothing(t *testing.T) {
	ns := testNamespace()
	h := newShellHarness(lines("a = answer", "a"), "")

	require.NoError(t, h.shell.Run(context.Background(), ns, Greeting{}))

	assert.Equal(t, 1, strings.Count(h.out.String(), "\"answer\": 42"))
	v, ok := ns.Get("a")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"answer": 42}, v)
}

func TestConsole_ExitAndInterrupt(t *testing.T) {
	tests := []struct {
		name     string
		script   []scriptLine
		wantRead int
		wantErr  bool
	}{
		{"exit stops reading", lines("greeting", "exit", "greeting"), 2, false},
		{"quit stops reading", lines("quit", "greeting"), 1, false},
		{"ctrl-c clears the line", []scriptLine{{err: liner.ErrPromptAborted}, {text: "greeting"}}, 3, false},
		{"ctrl-d ends the session", []scriptLine{{err: io.EOF}, {text: "greeting"}}, 1, false},
		{"blank lines are skipped", lines("", "   ", "exit"), 3, false},
		{"read errors are returned", []scriptLine{{err: errors.New("tty lost")}}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newShellHarness(tt.script, "")
			err := h.shell.Run(context.Background(), testNamespace(), Greeting{})
			if tt.wantErr {
				assert.ErrorContains(t, err, "tty lost")
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantRead, h.reader.pos)
		})
	}
}

func TestConsole_CancelledContextEndsSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := newShellHarness(lines("greeting"), "")

	require.NoError(t, h.shell.Run(ctx, testNamespace(), Greeting{}))
	assert.Equal(t, 0, h.reader.pos)
}

func TestConsole_InterruptCancelsOnlyTheRunningCall(t *testing.T) {
	ns := testNamespace()
	started := make(chan struct{})
	ns.Set("wait", &namespace.Callable{
		Name: "wait",
		Fn: func(ctx context.Context, _ *namespace.Call) (any, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})

	sigs := make(chan os.Signal, 1)
	h := newShellHarness(lines("wait", "greeting"), "")
	h.shell.opts.Interrupts = sigs
	go func() {
		<-started
		sigs <- os.Interrupt
	}()

	require.NoError(t, h.shell.Run(context.Background(), ns, Greeting{}))
	assert.Contains(t, h.errOut.String(), "[Error] interrupted")
	assert.Contains(t, h.out.String(), "hello\n", "session continues after an interrupted call")
	assert.Equal(t, 2, h.reader.pos)
}

func TestCallGuard(t *testing.T) {
	var g callGuard
	assert.False(t, g.interrupt(), "nothing to cancel between calls")

	ctx, done := g.begin(context.Background())
	assert.True(t, g.interrupt())
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	done()

	assert.False(t, g.interrupt())
}

// =============================================================================
// BUILT-INS
// =============================================================================

func TestConsole_Help(t *testing.T) {
	h := newShellHarness(lines("help"), "")
	require.NoError(t, h.shell.Run(context.Background(), testNamespace(), Greeting{}))

	out := h.out.String()
	for _, name := range []string{"answer", "conn", "fail", "greeting", "host", "products"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "Return the answer.")
	assert.NotContains(t, out, "It is always the same.", "only the first sentence is listed")
}

func TestConsole_HelpName(t *testing.T) {
	h := newShellHarness(lines("help answer", "help conn", "help missing"), "")
	require.NoError(t, h.shell.Run(context.Background(), testNamespace(), Greeting{}))

	out := h.out.String()
	assert.Contains(t, out, "## answer")
	assert.Contains(t, out, "Return the answer. It is always the same.")
	assert.Contains(t, out, "## conn")
	assert.Contains(t, out, "`products`")
	assert.Contains(t, h.errOut.String(), "[Error]")
}

func TestConsole_Dir(t *testing.T) {
	h := newShellHarness(lines("dir", "dir conn", "dir greeting"), "")
	require.NoError(t, h.shell.Run(context.Background(), testNamespace(), Greeting{}))

	out := h.out.String()
	assert.Contains(t, out, "answer    conn      fail      greeting  host      products\n")
	assert.Contains(t, out, "host      products\n")
	assert.Contains(t, h.errOut.String(), "greeting (string) has no attributes")
}

func TestConsole_Completion(t *testing.T) {
	h := newShellHarness(nil, "")
	require.NoError(t, h.shell.Run(context.Background(), testNamespace(), Greeting{}))

	require.NotNil(t, h.reader.complete)
	assert.Equal(t, []string{"conn.products"}, h.reader.complete("conn.pro"))
	assert.Contains(t, h.reader.complete("he"), "help")
}

// =============================================================================
// HISTORY
// =============================================================================

func TestConsole_HistoryPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history")

	h := newShellHarness(lines("greeting", "answer"), path)
	require.NoError(t, h.shell.Run(context.Background(), testNamespace(), Greeting{}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	h2 := newShellHarness(lines("host"), path)
	require.NoError(t, h2.shell.Run(context.Background(), testNamespace(), Greeting{}))
	assert.Equal(t, []string{"greeting", "answer"}, h2.reader.loaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "greeting\nanswer\nhost\n", string(data))
}
