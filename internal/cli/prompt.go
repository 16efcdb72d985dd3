package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"debts/internal/core"
)

// Prompter asks questions on out and reads one answer per line from in.
// Every method returns io.EOF once the input is exhausted.
type Prompter struct {
	in     *bufio.Scanner
	out    io.Writer
	roster core.Roster
}

func NewPrompter(in io.Reader, out io.Writer, roster core.Roster) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out, roster: roster}
}

// Line prints prompt and returns the next trimmed input line.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		// Terminate the dangling prompt.
		fmt.Fprintln(p.out)
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// Person asks until the answer names a roster member.
func (p *Prompter) Person(prompt string) (core.Participant, error) {
	for {
		s, err := p.Line(prompt)
		if err != nil {
			return "", err
		}
		who, err := p.roster.Parse(s)
		if err == nil {
			return who, nil
		}
		fmt.Fprintf(p.out, "❌ Invalid name. Use %s.\n", p.roster)
	}
}

// Amount asks until the answer is a positive euro amount.
func (p *Prompter) Amount(prompt string) (core.Money, error) {
	for {
		s, err := p.Line(prompt)
		if err != nil {
			return core.Money{}, err
		}
		m, err := core.ParseAmount(s)
		if err == nil {
			return m, nil
		}
		switch {
		case errors.Is(err, core.ErrAmountTooLarge):
			fmt.Fprintf(p.out, "❌ Amount too large, the maximum is %s.\n", core.MaxAmount)
		case isNumber(s):
			fmt.Fprintln(p.out, "❌ Amount must be positive.")
		default:
			fmt.Fprintln(p.out, "❌ Invalid number, try like 12.34")
		}
	}
}

// Confirm reports whether the answer is "y".
func (p *Prompter) Confirm(prompt string) (bool, error) {
	s, err := p.Line(prompt)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(s, "y"), nil
}

// isNumber tells a well-formed but non-positive amount from garbage.
func isNumber(s string) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	if s == "" {
		return false
	}
	dot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case (r == '.' || r == ',') && !dot:
			dot = true
		default:
			return false
		}
	}
	return true
}
