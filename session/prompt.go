package session

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompt is the one decision channel the session owns. It only knows what
// was asked and what came back; rendering and parsing live behind it.
type Prompt interface {
	Say(text string)
	Ask(question string) (string, error)
	AskInt(question string) (int, error)
	AskYesNo(question string) (bool, error)
}

// ConsolePrompt reads line-oriented answers from a terminal. Invalid numeric
// or yes/no answers re-prompt in place rather than bubbling up.
type ConsolePrompt struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsolePrompt(in io.Reader, out io.Writer) *ConsolePrompt {
	return &ConsolePrompt{in: bufio.NewReader(in), out: out}
}

func (p *ConsolePrompt) Say(text string) {
	fmt.Fprintln(p.out, text)
}

func (p *ConsolePrompt) Ask(question string) (string, error) {
	fmt.Fprintln(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *ConsolePrompt) AskInt(question string) (int, error) {
	for {
		answer, err := p.Ask(question)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err != nil {
			p.Say("[!] Please enter a valid input")
			continue
		}
		return n, nil
	}
}

func (p *ConsolePrompt) AskYesNo(question string) (bool, error) {
	for {
		answer, err := p.Ask(question)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		p.Say("[!] Please answer y or n")
	}
}
