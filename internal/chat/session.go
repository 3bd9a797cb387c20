package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	userLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00D4AA"))
	botLabel  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

// Session is the read-reply loop.
type Session struct {
	assistant Assistant
	in        io.Reader
	out       io.Writer
}

// NewSession creates a Session reading from in and writing to out.
func NewSession(assistant Assistant, in io.Reader, out io.Writer) *Session {
	return &Session{assistant: assistant, in: in, out: out}
}

// Run loops until exit, quit, end of input or ctx cancellation. Assistant
// errors are printed and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Chatbot ready. Type 'exit' to quit.")
	fmt.Fprintln(s.out)

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(s.out, userLabel.Render("You:")+" ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		switch strings.ToLower(message) {
		case "exit", "quit":
			return nil
		}

		reply, err := s.assistant.Reply(ctx, message)
		if err != nil {
			fmt.Fprintf(s.out, "%s %s\n\n", botLabel.Render("Bot:"), errStyle.Render("Error: "+err.Error()))
			continue
		}
		fmt.Fprintf(s.out, "%s %s\n\n", botLabel.Render("Bot:"), reply)
	}
}
