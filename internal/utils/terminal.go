package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Confirm writes prompt to out and reads a yes/no answer from in.
// Only "y" and "yes" (any case) confirm; EOF counts as no. A cancelled
// context returns its error without waiting for the answer.
func Confirm(ctx context.Context, in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)

	answer, err := readLine(ctx, in)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// WaitForEnter writes prompt to out and blocks until a line (or EOF) is read
// from in, or ctx is cancelled.
func WaitForEnter(ctx context.Context, in io.Reader, out io.Writer, prompt string) error {
	fmt.Fprint(out, prompt)

	_, err := readLine(ctx, in)
	return err
}

// readLine reads one line from in. Pass the same *bufio.Reader to successive
// prompts so that buffered input is not lost between them.
func readLine(ctx context.Context, in io.Reader) (string, error) {
	type line struct {
		text string
		err  error
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	reader := bufio.NewReader(in)
	done := make(chan line, 1)
	go func() {
		text, err := reader.ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		done <- line{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-done:
		if l.err != nil {
			return "", fmt.Errorf("failed to read input: %w", l.err)
		}
		return l.text, nil
	}
}
