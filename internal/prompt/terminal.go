// Package prompt implements the human-decision collaborator used when a
// payee cannot be resolved automatically.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"pepedou/budget-nanny/internal/matcher"

	"github.com/fatih/color"
)

const (
	// DefaultSuggestCutoff is the minimum score for a fuzzy suggestion.
	DefaultSuggestCutoff = 90
	// DefaultSuggestLimit caps the number of suggestions shown.
	DefaultSuggestLimit = 10
)

var (
	questionColor = color.New(color.FgCyan, color.Bold)
	optionColor   = color.New(color.FgGreen)
	hintColor     = color.New(color.Faint)
	warnColor     = color.New(color.FgYellow)
)

type line struct {
	text string
	err  error
}

// Terminal is a line-based prompter over a reader and a writer.
// Reads honour context cancellation.
type Terminal struct {
	in      io.Reader
	out     io.Writer
	matcher *matcher.Matcher
	cutoff  int
	limit   int

	once      sync.Once
	closeOnce sync.Once
	lines     chan line
	done      chan struct{}
	stopped   chan struct{}
}

// ErrClosed is returned by prompts on a closed Terminal.
var ErrClosed = errors.New("terminal prompter closed")

// NewTerminal creates a Terminal prompter. Suggestions in Choose are ranked with m.
func NewTerminal(in io.Reader, out io.Writer, m *matcher.Matcher) *Terminal {
	if m == nil {
		m = matcher.New()
	}
	return &Terminal{
		in:      in,
		out:     out,
		matcher: m,
		cutoff:  DefaultSuggestCutoff,
		limit:   DefaultSuggestLimit,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Close stops the input reader. A reader blocked on an unread line exits
// immediately; one blocked inside Read exits after that read returns.
func (t *Terminal) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}

func (t *Terminal) start() {
	t.lines = make(chan line)
	go func() {
		defer close(t.stopped)
		defer close(t.lines)
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			if !t.send(line{text: scanner.Text()}) {
				return
			}
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		t.send(line{err: err})
	}()
}

func (t *Terminal) send(l line) bool {
	select {
	case t.lines <- l:
		return true
	case <-t.done:
		return false
	}
}

func (t *Terminal) readLine(ctx context.Context) (string, error) {
	select {
	case <-t.done:
		return "", ErrClosed
	default:
	}
	t.once.Do(t.start)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-t.done:
		return "", ErrClosed
	case l, ok := <-t.lines:
		if !ok {
			return "", io.EOF
		}
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}

// Confirm asks a yes/no question; an empty answer means no.
func (t *Terminal) Confirm(ctx context.Context, question string) (bool, error) {
	for {
		questionColor.Fprint(t.out, question)
		hintColor.Fprint(t.out, " [y/N]: ")
		answer, err := t.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}
		warnColor.Fprintln(t.out, "Please answer y or n.")
	}
}

// Choose runs a search-and-pick loop over options. An empty search declines.
func (t *Terminal) Choose(ctx context.Context, prompt string, options []string) (string, bool, error) {
	questionColor.Fprintln(t.out, prompt)
	for {
		hintColor.Fprint(t.out, "Search known payees (empty to type a new name): ")
		query, err := t.readLine(ctx)
		if err != nil {
			return "", false, err
		}
		if query == "" {
			return "", false, nil
		}

		suggestions := Suggest(t.matcher, query, options, t.cutoff, t.limit)
		if len(suggestions) == 0 {
			warnColor.Fprintf(t.out, "No payee matches %q.\n", query)
			continue
		}
		for i, s := range suggestions {
			optionColor.Fprintf(t.out, "  %2d) %s\n", i+1, s)
		}

		hintColor.Fprint(t.out, "Number to select (empty to search again): ")
		pick, err := t.readLine(ctx)
		if err != nil {
			return "", false, err
		}
		if pick == "" {
			continue
		}
		n, convErr := strconv.Atoi(pick)
		if convErr != nil || n < 1 || n > len(suggestions) {
			warnColor.Fprintf(t.out, "%q is not one of the listed numbers.\n", pick)
			continue
		}
		return suggestions[n-1], true, nil
	}
}

// Ask reads a free-text answer.
func (t *Terminal) Ask(ctx context.Context, prompt string) (string, error) {
	questionColor.Fprint(t.out, prompt)
	fmt.Fprint(t.out, ": ")
	return t.readLine(ctx)
}

// Suggest lists options for a search query: options containing the query
// (ignoring case) in their original order, followed by fuzzy matches scoring
// at least cutoff. At most limit names are returned.
func Suggest(m *matcher.Matcher, query string, options []string, cutoff, limit int) []string {
	lowered := strings.ToLower(query)
	seen := make(map[string]bool)
	var out []string
	for _, opt := range options {
		if strings.Contains(strings.ToLower(opt), lowered) && !seen[opt] {
			seen[opt] = true
			out = append(out, opt)
		}
	}
	for _, c := range m.Rank(query, options, cutoff, 0) {
		if !seen[c.Name] {
			seen[c.Name] = true
			out = append(out, c.Name)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
