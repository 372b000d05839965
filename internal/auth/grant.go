package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/joshsymonds/recentmail/internal/credstore"
)

// Exchanger is the slice of *oauth2.Config used by the grant.
type Exchanger interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// Prompter shows the authorization URL and returns the code the user pastes.
type Prompter interface {
	Prompt(ctx context.Context, authURL string) (string, error)
}

// Grant runs a single offline authorization-code exchange.
type Grant struct {
	Exchanger Exchanger
	Prompter  Prompter
	Store     credstore.Store
	Key       string
	State     func() string
}

// Run prompts for a code, exchanges it, attaches the token to session and
// stores it under g.Key. Nothing is stored when the exchange fails.
func (g *Grant) Run(ctx context.Context, session *Session) error {
	state := uuid.NewString
	if g.State != nil {
		state = g.State
	}
	authURL := g.Exchanger.AuthCodeURL(state(), oauth2.AccessTypeOffline)

	code, err := g.Prompter.Prompt(ctx, authURL)
	if err != nil {
		return fmt.Errorf("%w: read authorization code: %w", ErrAuthExchange, err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("%w: empty authorization code", ErrAuthExchange)
	}

	tok, err := g.Exchanger.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthExchange, err)
	}
	session.Token = tok
	if err := g.Store.Store(ctx, g.Key, tok); err != nil {
		return fmt.Errorf("%w: save token: %w", ErrTokenStore, err)
	}
	return nil
}

// ConsolePrompter prints the URL to Out and reads one line from In.
//
// An In that is not a *bufio.Reader is wrapped per call, which may consume
// input past the line; pass a *bufio.Reader to prompt more than once from the
// same stream. A canceled Prompt leaves its read pending on In until In
// returns, so In should be closed or owned by the process (os.Stdin).
type ConsolePrompter struct {
	In  io.Reader
	Out io.Writer
}

// Prompt blocks until a line is read or ctx is canceled.
func (p ConsolePrompter) Prompt(ctx context.Context, authURL string) (string, error) {
	if _, err := fmt.Fprintf(p.Out, "Authorize this app by visiting this url: %s\n", authURL); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	if _, err := io.WriteString(p.Out, "Enter the code from that page here: "); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}

	type result struct {
		line string
		err  error
	}
	reader, ok := p.In.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(p.In)
	}
	done := make(chan result, 1)
	go func() {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) && line != "" {
			err = nil
		}
		done <- result{line: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.line, r.err
	}
}

var _ Prompter = ConsolePrompter{}
