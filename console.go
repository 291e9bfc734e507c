package geminstall

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Console is the injectable interaction surface for the uninstaller.
// Automated callers supply programmatic answers; interactive callers use
// TerminalConsole.
type Console interface {
	// Confirm asks a yes/no question. Only an affirmative answer returns
	// true; anything else, including an empty line, is a decline.
	Confirm(prompt string) (bool, error)

	// Choose presents an enumerated list and returns the zero-based index
	// of the selection. Out-of-range or non-numeric input returns a
	// *SelectionError.
	Choose(prompt string, choices []string) (int, error)
}

// TerminalConsole reads line answers from In and writes prompts to Out.
type TerminalConsole struct {
	out io.Writer
	in  *bufio.Reader
}

var _ Console = (*TerminalConsole)(nil)

func NewTerminalConsole(in io.Reader, out io.Writer) *TerminalConsole {
	return &TerminalConsole{out: out, in: bufio.NewReader(in)}
}

func (c *TerminalConsole) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm implements Console.
func (c *TerminalConsole) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(c.out, "%s [yN]  ", prompt)

	answer, err := c.readLine()
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Choose implements Console.
func (c *TerminalConsole) Choose(prompt string, choices []string) (int, error) {
	fmt.Fprintln(c.out, prompt)
	for i, choice := range choices {
		fmt.Fprintf(c.out, " %d. %s\n", i+1, choice)
	}
	fmt.Fprint(c.out, "> ")

	answer, err := c.readLine()
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(choices) {
		return 0, &SelectionError{Input: answer}
	}

	return n - 1, nil
}
