package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/lifetrack/internal/common"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single trimmed line from
// reader. A final line without newline is returned as is.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword reads a password from the terminal without echo.
// The caller should wipe the returned slice.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetMultiline reads lines until an empty one and joins them with '\n'.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// optional returns nil for an empty answer.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseTags splits a comma-separated list, dropping blanks.
func parseTags(s string) []string {
	out := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// editTags reads a tag answer of an edit prompt: empty keeps the tags,
// "-" clears them.
func editTags(s string) []string {
	switch s {
	case "":
		return nil
	case "-":
		return []string{}
	default:
		return parseTags(s)
	}
}

// parseIndexes reads a comma-separated list of zero-based image indexes.
func parseIndexes(s string) ([]int, error) {
	var out []int
	for _, f := range parseTags(s) {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", common.ErrInvalidIndex, f)
		}
		out = append(out, n)
	}
	return out, nil
}

// parseOptionalInt returns nil for an empty answer.
func parseOptionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", s)
	}
	return &n, nil
}

// parseYesNo maps y/yes and n/no to a bool; empty is nil.
func parseYesNo(s string) (*bool, error) {
	switch strings.ToLower(s) {
	case "":
		return nil, nil
	case "y", "yes":
		v := true
		return &v, nil
	case "n", "no":
		v := false
		return &v, nil
	}
	return nil, fmt.Errorf("answer y or n, got %q", s)
}
