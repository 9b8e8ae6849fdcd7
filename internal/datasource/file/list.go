package file

import (
	"bufio"
	"context"
	"strings"
)

// ReadList reads one entry per line. Blank lines and lines starting with '#'
// are skipped, surrounding whitespace is trimmed, and repeated entries are
// kept only once, in first-seen order.
func ReadList(ctx context.Context, path string) ([]string, error) {
	rc, err := NewLocal(path).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var out []string
	seen := make(map[string]struct{})
	sc := bufio.NewScanner(rc)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
