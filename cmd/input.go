package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// errAborted is returned when the user leaves a prompt with Ctrl+C or Ctrl+D.
var errAborted = errors.New("aborted")

var stdinReader = bufio.NewReader(os.Stdin)

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// askLine asks for a visible value, using promptui on a terminal.
func askLine(label string) (string, error) {
	if !interactive() {
		return readLine(stdinReader)
	}

	p := promptui.Prompt{Label: label}
	value, err := p.Run()
	if err != nil {
		return "", promptErr(err)
	}
	return strings.TrimSpace(value), nil
}

// askSecret reads a value without echo when stdin is a terminal.
func askSecret(label string) (string, error) {
	if !interactive() {
		return readLine(stdinReader)
	}

	fmt.Fprintf(os.Stderr, "%s: ", label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return string(raw), nil
}

// confirm asks a yes/no question. Non-interactive sessions never confirm.
func confirm(label string) bool {
	if !interactive() {
		return false
	}

	p := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := p.Run()
	return err == nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if errors.Is(err, io.EOF) && line == "" {
		return "", errAborted
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func promptErr(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return errAborted
	}
	return err
}
