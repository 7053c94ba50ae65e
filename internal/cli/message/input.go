// Package message holds the offline commands that work on template bodies
// without a database: extract, render and bulk.
package message

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// readBody returns the inline body when set, otherwise the contents of path.
// A path of "-" reads standard input.
func readBody(in io.Reader, path, inline string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if path == "" {
		return "", fmt.Errorf("either --file or --body is required")
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// parsePairs splits name=value flags. Later pairs override earlier ones.
func parsePairs(flag string, pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --%s %q, expected name=value", flag, p)
		}
		out[name] = value
	}
	return out, nil
}
