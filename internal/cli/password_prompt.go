package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var ErrPasswordMismatch = errors.New("passwords do not match")

// PromptPassword reads a new password twice from the terminal without echo.
func PromptPassword(stdin *os.File, out io.Writer) (string, error) {
	fmt.Fprint(out, "New password: ")
	first, err := readPasswordNoEcho(stdin)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(out, "Repeat password: ")
	second, err := readPasswordNoEcho(stdin)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", ErrPasswordMismatch
	}
	return string(first), nil
}
