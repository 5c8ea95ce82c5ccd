// assets/embed.go
//
// Embedded static data shipped with the binary:
//   - symbols.txt: the default symbol set (one glyph per line).
//   - sql/*.sql:   leaderboard schema migrations, applied in lexical order.
package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
)

//go:embed symbols.txt sql/*.sql
var FS embed.FS

// readLines returns the trimmed, non-empty, non-comment lines of an embedded file.
func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// SymbolList returns the default symbol set.
func SymbolList() ([]string, error) {
	return readLines("symbols.txt")
}

// Migrations exposes the sql/ directory as its own filesystem root.
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "sql")
}
