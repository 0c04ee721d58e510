package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"golang.org/x/term"
)

// ErrAborted is returned when the user closes input or interrupts a prompt.
var ErrAborted = errors.New("input aborted")

// Prompter asks the user questions.
type Prompter interface {
	// Confirm asks a yes/no question.
	Confirm(message string) (bool, error)
	// Select returns the index of the chosen option.
	Select(message string, options []string, def int) (int, error)
	// Input asks for a line of text; an empty answer yields def.
	Input(message, def string) (string, error)
}

// NewPrompter returns an interactive prompter when stdin and stdout are
// terminals, and a plain line reader otherwise.
func NewPrompter() Prompter {
	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		return SurveyPrompter{}
	}
	return NewLinePrompter(os.Stdin, os.Stdout)
}

// IsAffirmative reports whether answer means yes.
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// SurveyPrompter uses survey's terminal widgets.
type SurveyPrompter struct{}

func (SurveyPrompter) Confirm(message string) (bool, error) {
	var ok bool
	if err := survey.AskOne(&survey.Confirm{Message: message}, &ok); err != nil {
		return false, surveyErr(err)
	}
	return ok, nil
}

func (SurveyPrompter) Select(message string, options []string, def int) (int, error) {
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 15,
	}
	if def >= 0 && def < len(options) {
		prompt.Default = options[def]
	}

	var idx int
	if err := survey.AskOne(prompt, &idx); err != nil {
		return 0, surveyErr(err)
	}
	return idx, nil
}

func (SurveyPrompter) Input(message, def string) (string, error) {
	var answer string
	if err := survey.AskOne(&survey.Input{Message: message, Default: def}, &answer); err != nil {
		return "", surveyErr(err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func surveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
		return ErrAborted
	}
	return err
}

// LinePrompter reads answers one line at a time. It is used when input is
// piped or the terminal is not interactive.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a line prompter over in and out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *LinePrompter) Confirm(message string) (bool, error) {
	fmt.Fprintf(p.out, "%s (y/n) ", message)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	return IsAffirmative(answer), nil
}

func (p *LinePrompter) Select(message string, options []string, def int) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("no options to choose from")
	}

	for {
		fmt.Fprintln(p.out, message)
		for i, opt := range options {
			fmt.Fprintf(p.out, "  %d. %s\n", i+1, opt)
		}
		if def >= 0 && def < len(options) {
			fmt.Fprintf(p.out, "Choice [%d]: ", def+1)
		} else {
			fmt.Fprint(p.out, "Choice: ")
		}

		answer, err := p.readLine()
		if err != nil {
			return 0, err
		}
		if answer == "" && def >= 0 && def < len(options) {
			return def, nil
		}

		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "Please enter a number between 1 and %d.\n", len(options))
	}
}

func (p *LinePrompter) Input(message, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", message, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", message)
	}
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}
