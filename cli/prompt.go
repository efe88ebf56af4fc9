package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kjk/records/recordstore"
)

// ErrBadInput is returned for input that can't be parsed, e.g. a number
// that is not a number. The menu reports it and keeps going.
var ErrBadInput = errors.New("invalid input")

// Prompt reads answers one line at a time and writes prompts and results
type Prompt struct {
	r   *bufio.Reader
	Out io.Writer
}

func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		r:   bufio.NewReader(in),
		Out: out,
	}
}

func (p *Prompt) Printf(format string, args ...any) {
	fmt.Fprintf(p.Out, format, args...)
}

// Line prints label and reads one line, without the newline.
// Returns io.EOF when there's no more input.
func (p *Prompt) Line(label string) (string, error) {
	if label != "" {
		p.Printf("%s", label)
	}
	s, err := p.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && s != "" {
			return strings.TrimSpace(s), nil
		}
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// LineDefault is like Line but returns def for an empty answer
func (p *Prompt) LineDefault(label string, def string) (string, error) {
	if def != "" {
		label = fmt.Sprintf("%s[%s] ", label, def)
	}
	s, err := p.Line(label)
	if err != nil {
		return "", err
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

func (p *Prompt) Int(label string) (int, error) {
	s, err := p.Line(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: '%s' is not a number", ErrBadInput, s)
	}
	return n, nil
}

// Position asks for a 1-based position as shown in listings and returns
// the zero-based index. Range is checked by the store.
func (p *Prompt) Position(label string) (int, error) {
	n, err := p.Int(label)
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}

// Confirm returns true for "y" or "yes"
func (p *Prompt) Confirm(label string) (bool, error) {
	s, err := p.Line(label + " (y/n) ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(s) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Fields asks for a value of every named field. Empty answers are left
// out so that update only changes what was typed.
func (p *Prompt) Fields(names []string) (recordstore.Fields, error) {
	res := recordstore.Fields{}
	for _, name := range names {
		s, err := p.Line(fieldLabel(name) + ": ")
		if err != nil {
			return nil, err
		}
		if s != "" {
			res[name] = s
		}
	}
	return res, nil
}

// "daily_rate" => "Daily rate"
func fieldLabel(name string) string {
	s := strings.ReplaceAll(name, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
