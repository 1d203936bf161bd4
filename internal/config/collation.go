package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

// LoadCollationAllowList reads the collation allow-list file: one collation
// identifier per line, blank lines and '#' comments ignored.
func LoadCollationAllowList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, zetuperrors.NewParseError(path, 0, err)
	}
	defer f.Close()

	var collations []string
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		collations = append(collations, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, zetuperrors.NewParseError(path, line, err)
	}

	return collations, nil
}

// CheckCollation verifies the configured collation appears verbatim in the
// allow-list. The run aborts before any installation step when it does not.
func CheckCollation(collation string, allowed []string) error {
	for _, c := range allowed {
		if c == collation {
			return nil
		}
	}
	return zetuperrors.NewPreconditionError("collation",
		fmt.Sprintf("collation %q is not in the allow-list", collation), nil)
}
