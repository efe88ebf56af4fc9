package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert"
)

func runMenu(t *testing.T, m *Menu, input string) string {
	var out strings.Builder
	p := NewPrompt(strings.NewReader(input), &out)
	err := m.Run(p)
	assert.NoError(t, err)
	return out.String()
}

func TestMenuQuitAndEOF(t *testing.T) {
	calls := 0
	m := &Menu{
		Title: "Test",
		Actions: []Action{
			{Name: "Count", Run: func(p *Prompt) error {
				calls++
				return nil
			}},
		},
	}
	for _, input := range []string{"0\n", "q\n", "", "1\n1", "1\n\n1\nquit\n"} {
		calls = 0
		out := runMenu(t, m, input)
		assert.True(t, strings.Contains(out, "1. Count"), "out: %s", out)
		assert.True(t, strings.Contains(out, "0. Quit"), "out: %s", out)
		exp := strings.Count(input, "1")
		assert.Equal(t, exp, calls, "input: %q", input)
	}
}

func TestMenuInvalidChoice(t *testing.T) {
	m := &Menu{
		Title: "Test",
		Actions: []Action{
			{Name: "Nothing", Run: func(p *Prompt) error { return nil }},
		},
	}
	out := runMenu(t, m, "abc\n7\n-1\n00\n0\n")
	for _, s := range []string{"abc", "7", "-1"} {
		assert.True(t, strings.Contains(out, "Invalid choice '"+s+"'"), "out: %s", out)
	}
}

func TestMenuActionError(t *testing.T) {
	var failed []string
	m := &Menu{
		Title: "Test",
		Actions: []Action{
			{Name: "Fail", Run: func(p *Prompt) error { return errors.New("boom") }},
			{Name: "Ask", Run: func(p *Prompt) error {
				_, err := p.Int("Number: ")
				return err
			}},
		},
		OnError: func(action string, err error) {
			failed = append(failed, action)
		},
	}
	out := runMenu(t, m, "1\n2\nten\n2\n10\n0\n")
	assert.True(t, strings.Contains(out, "Error: boom"), "out: %s", out)
	assert.True(t, strings.Contains(out, "Error: invalid input: 'ten' is not a number"), "out: %s", out)
	assert.Equal(t, []string{"Fail", "Ask"}, failed)
}

func TestMenuEOFInsideAction(t *testing.T) {
	m := &Menu{
		Title: "Test",
		Actions: []Action{
			{Name: "Ask", Run: func(p *Prompt) error {
				_, err := p.Line("Name: ")
				return err
			}},
		},
	}
	out := runMenu(t, m, "1\n")
	assert.False(t, strings.Contains(out, "Error"), "out: %s", out)
}

func TestPrompt(t *testing.T) {
	var out strings.Builder
	p := NewPrompt(strings.NewReader("  hello \n\n3\nyes\nno\nlast"), &out)

	s, err := p.Line("Say: ")
	assert.NoError(t, err)
	assert.Equal(t, "hello", s)

	s, err = p.LineDefault("File: ", "cars.json")
	assert.NoError(t, err)
	assert.Equal(t, "cars.json", s)
	assert.True(t, strings.Contains(out.String(), "File: [cars.json] "))

	idx, err := p.Position("Number: ")
	assert.NoError(t, err)
	assert.Equal(t, 2, idx)

	ok, err := p.Confirm("Sure?")
	assert.NoError(t, err)
	assert.True(t, ok)
	ok, err = p.Confirm("Sure?")
	assert.NoError(t, err)
	assert.False(t, ok)

	// last line without a newline
	s, err = p.Line("")
	assert.NoError(t, err)
	assert.Equal(t, "last", s)

	_, err = p.Line("")
	assert.Error(t, err)
}

func TestFieldLabel(t *testing.T) {
	assert.Equal(t, "Daily rate", fieldLabel("daily_rate"))
	assert.Equal(t, "Make", fieldLabel("make"))
	assert.Equal(t, "", fieldLabel(""))
}
