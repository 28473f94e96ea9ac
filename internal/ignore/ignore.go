package ignore

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type rule struct {
	pattern string
	negate  bool
	dirOnly bool
}

// Rules is a parsed ignore file.
type Rules struct {
	rules []rule
}

// Parse reads rules from gitignore-formatted content.
func Parse(content []byte) *Rules {
	r := &Rules{}
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var ru rule
		if strings.HasPrefix(line, "!") {
			ru.negate = true
			line = line[1:]
		}
		if strings.HasPrefix(line, `\#`) || strings.HasPrefix(line, `\!`) {
			line = line[1:]
		}
		if strings.HasSuffix(line, "/") {
			ru.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		if line == "" {
			continue
		}

		anchored := strings.Contains(line, "/")
		line = strings.TrimPrefix(line, "/")
		if !anchored && !strings.HasPrefix(line, "**") {
			line = "**/" + line
		}
		ru.pattern = line
		r.rules = append(r.rules, ru)
	}
	return r
}

// Load parses the ignore file at filePath. A missing file yields no rules.
func Load(filePath string) (*Rules, error) {
	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return &Rules{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	return Parse(data), nil
}

// Matches reports whether relPath (slash separated, relative to the
// directory holding the ignore file) is excluded.
func (r *Rules) Matches(relPath string) bool {
	relPath = strings.TrimPrefix(path.Clean(relPath), "/")

	// a path is excluded when it or any parent directory is
	candidates := []struct {
		path  string
		isDir bool
	}{{relPath, false}}
	for dir := path.Dir(relPath); dir != "." && dir != "/"; dir = path.Dir(dir) {
		candidates = append(candidates, struct {
			path  string
			isDir bool
		}{dir, true})
	}

	for _, c := range candidates {
		if r.matchOne(c.path, c.isDir) {
			return true
		}
	}
	return false
}

func (r *Rules) matchOne(p string, isDir bool) bool {
	matched := false
	for _, ru := range r.rules {
		if ru.dirOnly && !isDir {
			continue
		}
		ok, err := doublestar.Match(ru.pattern, p)
		if err != nil || !ok {
			continue
		}
		matched = !ru.negate
	}
	return matched
}

// EscapePattern turns a literal path into an ignore line that matches only
// that path.
func EscapePattern(relPath string) string {
	var b strings.Builder
	for i, ch := range relPath {
		switch {
		case ch == '*' || ch == '?' || ch == '[' || ch == '\\':
			b.WriteByte('\\')
		case i == 0 && (ch == '#' || ch == '!'):
			b.WriteByte('\\')
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// Ensure appends a line for every entry in relPaths that the ignore file at
// filePath does not already exclude. It returns the lines it appended.
func Ensure(filePath string, relPaths ...string) ([]string, error) {
	existing, err := os.ReadFile(filePath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}

	rules := Parse(existing)
	var added []string
	for _, p := range relPaths {
		if rules.Matches(p) {
			continue
		}
		line := EscapePattern(p)
		added = append(added, line)
		rules = Parse(append(existing, []byte("\n"+strings.Join(added, "\n"))...))
	}
	if len(added) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}
	for _, line := range added {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("appending to %s: %w", filePath, err)
	}
	return added, nil
}
