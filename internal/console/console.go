// Package console handles interactive terminal input: yes/no confirmations
// and masked secret entry.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/quipucords/quipucordsctl/internal/logging"
)

// Terminal state saved while a masked read has echo disabled, so an
// interrupt handler can put the operator's terminal back.
var (
	terminalMu    sync.Mutex
	terminalFD    int
	terminalState *term.State
)

func saveTerminalState(fd int) {
	state, err := term.GetState(fd)
	if err != nil {
		return
	}
	terminalMu.Lock()
	terminalFD = fd
	terminalState = state
	terminalMu.Unlock()
}

func clearTerminalState() {
	terminalMu.Lock()
	terminalState = nil
	terminalMu.Unlock()
}

// RestoreTerminal undoes a masked read's terminal changes. It is a no-op
// unless a masked read is in progress, and is safe to call from a signal
// handler goroutine.
func RestoreTerminal() {
	terminalMu.Lock()
	defer terminalMu.Unlock()
	if terminalState != nil {
		_ = term.Restore(terminalFD, terminalState)
		terminalState = nil
	}
}

// Console prompts the operator for confirmations and secret values.
// Quiet mode refuses all input; AssumeYes answers confirmations with yes.
type Console struct {
	logger    *logging.Logger
	in        *bufio.Reader
	out       io.Writer
	quiet     bool
	assumeYes bool

	// readPassword is swappable in tests; the default reads from the
	// terminal with echo disabled.
	readPassword func(prompt string) (string, error)
}

// New creates a console bound to stdin/stdout.
func New(logger *logging.Logger, quiet, assumeYes bool) *Console {
	c := &Console{
		logger:    logger,
		in:        bufio.NewReader(os.Stdin),
		out:       os.Stdout,
		quiet:     quiet,
		assumeYes: assumeYes,
	}
	c.readPassword = c.readPasswordFromTerminal
	return c
}

// NewWithStreams creates a console with injected streams and a plain-text
// password reader, for tests.
func NewWithStreams(logger *logging.Logger, in io.Reader, out io.Writer, quiet, assumeYes bool) *Console {
	c := &Console{
		logger:    logger,
		in:        bufio.NewReader(in),
		out:       out,
		quiet:     quiet,
		assumeYes: assumeYes,
	}
	c.readPassword = func(prompt string) (string, error) {
		fmt.Fprint(c.out, prompt)
		return c.readLine()
	}
	return c
}

// Confirm presents a [y/n] prompt and returns the operator's answer.
// AssumeYes short-circuits to true; quiet mode cannot ask and returns false.
func (c *Console) Confirm(question string) (bool, error) {
	if c.assumeYes {
		return true, nil
	}
	if c.quiet {
		return false, nil
	}
	if question == "" {
		question = "Do you want to continue?"
	}

	for {
		fmt.Fprintf(c.out, "%s [y/n] ", question)
		answer, err := c.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		default:
			fmt.Fprintln(c.out, "Please answer with 'y' or 'n'.")
		}
	}
}

// PromptSecret performs a masked double-entry prompt. It returns the entered
// value, or empty if quiet mode prevented input or the two entries differed.
func (c *Console) PromptSecret(enterPrompt, confirmPrompt, noMatchMessage string) (string, error) {
	if c.quiet {
		return "", nil
	}
	if enterPrompt == "" {
		enterPrompt = "Enter new secret value: "
	}
	if confirmPrompt == "" {
		confirmPrompt = "Confirm new secret value: "
	}

	newSecret, err := c.readPassword(enterPrompt)
	if err != nil {
		return "", err
	}
	confirmSecret, err := c.readPassword(confirmPrompt)
	if err != nil {
		return "", err
	}
	if newSecret != confirmSecret {
		if noMatchMessage == "" {
			noMatchMessage = "Your inputs do not match."
		}
		c.logger.Error("%s", noMatchMessage)
		return "", nil
	}
	return newSecret, nil
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) readPasswordFromTerminal(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		// Piped input: fall back to a plain line read.
		return c.readLine()
	}
	saveTerminalState(fd)
	defer clearTerminalState()
	value, err := term.ReadPassword(fd)
	fmt.Fprintln(c.out)
	if err != nil {
		return "", err
	}
	return string(value), nil
}
