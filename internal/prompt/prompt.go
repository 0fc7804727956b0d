// Package prompt asks the user simple questions on the console.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotInteractive is returned when stdin cannot answer a question.
var ErrNotInteractive = errors.New("stdin is not a terminal")

// isTerminal reports whether a reader is a TTY.
var isTerminal = defaultIsTerminal

func defaultIsTerminal(r io.Reader) bool {
	if file, ok := r.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}

// Interactive reports whether r is a terminal a user can answer from.
func Interactive(r io.Reader) bool {
	return isTerminal(r)
}

// readLine reads a line from the reader, trimming line endings.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return strings.TrimRight(line, "\r\n"), io.EOF
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// YesNo prompts for a yes/no response with a default.
func YesNo(in io.Reader, out io.Writer, label string, defaultYes bool) (bool, error) {
	reader, ok := in.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(in)
	}
	suffix := "y/N"
	if defaultYes {
		suffix = "Y/n"
	}
	for {
		fmt.Fprintf(out, "%s [%s]: ", label, suffix)
		line, err := readLine(reader)
		if err != nil && err != io.EOF {
			return false, err
		}
		line = strings.TrimSpace(strings.ToLower(line))
		if line == "" {
			return defaultYes, nil
		}
		switch line {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			if err == io.EOF {
				return false, fmt.Errorf("invalid response %q", line)
			}
			fmt.Fprintln(out, "Please answer yes or no.")
		}
	}
}

// Confirm decides a yes/no question for a command. assumeYes answers yes
// without asking; otherwise a non-interactive stdin yields
// ErrNotInteractive.
func Confirm(in io.Reader, out io.Writer, label string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if !Interactive(in) {
		return false, ErrNotInteractive
	}
	return YesNo(in, out, label, false)
}
