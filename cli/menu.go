package cli

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Action is one numbered menu entry
type Action struct {
	Name string
	Run  func(p *Prompt) error
}

type Menu struct {
	Title   string
	Actions []Action
	// called with every error returned by an action, after it was shown
	OnError func(action string, err error)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func (m *Menu) render(p *Prompt) {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(titleStyle.Render(m.Title))
	sb.WriteString("\n")
	for i, a := range m.Actions {
		sb.WriteString(dimStyle.Render(strconv.Itoa(i+1) + "."))
		sb.WriteString(" " + a.Name + "\n")
	}
	sb.WriteString(dimStyle.Render("0."))
	sb.WriteString(" Quit\n")
	p.Printf("%s", sb.String())
}

// Run shows the menu and runs selected actions until the user quits or
// input ends. Errors from actions are printed and the loop continues.
func (m *Menu) Run(p *Prompt) error {
	for {
		m.render(p)
		s, err := p.Line("Choice: ")
		if errors.Is(err, io.EOF) {
			p.Printf("\n")
			return nil
		}
		if err != nil {
			return err
		}
		if s == "" {
			continue
		}
		if isQuit(s) {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > len(m.Actions) {
			p.Printf("%s\n", errorStyle.Render("Invalid choice '"+s+"', pick a number between 0 and "+strconv.Itoa(len(m.Actions))))
			continue
		}
		a := m.Actions[n-1]
		err = a.Run(p)
		if errors.Is(err, io.EOF) {
			p.Printf("\n")
			return nil
		}
		if err != nil {
			p.Printf("%s\n", errorStyle.Render("Error: "+err.Error()))
			if m.OnError != nil {
				m.OnError(a.Name, err)
			}
		}
	}
}

func isQuit(s string) bool {
	switch strings.ToLower(s) {
	case "0", "q", "quit", "exit":
		return true
	}
	return false
}
