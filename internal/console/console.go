// Package console is a keyboard control surface for the delay. Keys edit
// the parameter store and a store subscription redraws a status line, so
// edits from other writers (preset loads) show up as well.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/term"

	"github.com/cwbudde/algo-delay/dsp/param"
	"github.com/cwbudde/algo-delay/dsp/tempo"
)

// Console reads single keys from in and writes status updates to out.
type Console struct {
	store *param.Store
	in    io.Reader
	out   io.Writer
	fd    int
	tempo tempo.Source

	mu  sync.Mutex
	log *slog.Logger
}

// New creates a console. fd is the terminal file descriptor of in; it is
// switched to raw mode while Run is active. Pass -1 when in is not a
// terminal.
func New(store *param.Store, in io.Reader, out io.Writer, fd int) *Console {
	return &Console{
		store: store,
		in:    in,
		out:   out,
		fd:    fd,
		tempo: func() tempo.Tempo { return tempo.None },
		log:   slog.Default().With("component", "console"),
	}
}

// SetTempo sets the tempo shown in the status line.
func (c *Console) SetTempo(src tempo.Source) {
	if src != nil {
		c.tempo = src
	}
}

// Run processes keys until the quit key, end of input, or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	if c.fd >= 0 && term.IsTerminal(c.fd) {
		state, err := term.MakeRaw(c.fd)
		if err != nil {
			return fmt.Errorf("console: raw mode: %w", err)
		}
		defer func() {
			if err := term.Restore(c.fd, state); err != nil {
				c.log.Warn("restoring terminal", "err", err)
			}
		}()
	}

	cancel := c.store.Subscribe(func(param.ID, float64) { c.redraw() })
	defer cancel()

	c.print(Help() + "\r\n")
	c.redraw()

	done := make(chan struct{})
	defer close(done)
	keys := make(chan byte)
	errs := make(chan error, 1)
	go c.readKeys(done, keys, errs)

	for {
		select {
		case <-ctx.Done():
			c.print("\r\n")
			return ctx.Err()
		case err := <-errs:
			c.print("\r\n")
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("console: read: %w", err)
		case key := <-keys:
			if IsQuit(key) {
				c.print("\r\n")
				return nil
			}
			if !Apply(c.store, key) {
				c.log.Debug("unbound key", "key", key)
				c.redraw()
			}
		}
	}
}

func (c *Console) readKeys(done <-chan struct{}, keys chan<- byte, errs chan<- error) {
	buf := make([]byte, 1)
	for {
		n, err := c.in.Read(buf)
		if n > 0 {
			select {
			case keys <- buf[0]:
			case <-done:
				return
			}
		}
		if err != nil {
			errs <- err
			return
		}
	}
}

func (c *Console) redraw() {
	c.print("\r\x1b[K" + Status(c.store, c.tempo()))
}

func (c *Console) print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := io.WriteString(c.out, s); err != nil {
		c.log.Debug("console write", "err", err)
	}
}
