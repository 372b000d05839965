// Package report renders fetched messages for the operator.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshsymonds/recentmail/internal/gmail"
)

const snippetDisplayLimit = 80

// PrintSummary writes one line per message: id, thread id and snippet.
func PrintSummary(msgs []gmail.Message, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}
	var builder strings.Builder
	fmt.Fprintf(&builder, "recentmail — %d messages\n", len(msgs))
	for _, m := range msgs {
		fmt.Fprintf(
			&builder,
			"  %-18s %-18s %s\n",
			m.ID,
			m.ThreadID,
			truncate(oneLine(m.Snippet), snippetDisplayLimit),
		)
	}
	if _, err := io.WriteString(w, builder.String()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// EncodeJSON writes the provider payloads as an indented JSON array.
func EncodeJSON(msgs []gmail.Message, w io.Writer) error {
	payloads := make([]json.RawMessage, 0, len(msgs))
	for _, m := range msgs {
		raw := m.Raw
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		payloads = append(payloads, raw)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payloads); err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}
	return nil
}

// WriteJSON serializes the messages to a path relative to the working directory.
func WriteJSON(msgs []gmail.Message, path string) error {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return fmt.Errorf("path must not be empty")
	}
	clean = filepath.Clean(clean)
	if filepath.IsAbs(clean) {
		return fmt.Errorf("output path must be relative, got %s", clean)
	}
	if strings.HasPrefix(clean, "..") {
		return fmt.Errorf("output path %s escapes working directory", clean)
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	abs := filepath.Join(wd, clean)
	f, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return fmt.Errorf("create %s: %w", abs, err)
	}
	defer func() { _ = f.Close() }()
	return EncodeJSON(msgs, f)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
