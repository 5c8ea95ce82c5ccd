// internal/deck/symbols.go
//
// Symbol lists: the embedded default set and optional files with one
// symbol per line (# comments and blank lines skipped).
package deck

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/robalobadob/minimal-match/assets"
)

// fallbackSymbols is used if the embedded list cannot be read.
var fallbackSymbols = []Symbol{"✦", "◆", "✿", "✸", "☾", "✺", "✷", "✱"}

// DefaultSymbols returns the embedded 8-symbol set (a 4x4 board).
func DefaultSymbols() []Symbol {
	lines, err := assets.SymbolList()
	if err != nil || len(lines) == 0 {
		return append([]Symbol(nil), fallbackSymbols...)
	}
	return toSymbols(lines)
}

// LoadSymbols reads one symbol per line from path. Blank lines and lines
// starting with '#' are skipped. The result is not checked for duplicates;
// Generate does that.
func LoadSymbols(path string) ([]Symbol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		lines = append(lines, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read symbols %s: %w", path, err)
	}
	return toSymbols(lines), nil
}

func toSymbols(lines []string) []Symbol {
	out := make([]Symbol, len(lines))
	for i, l := range lines {
		out[i] = Symbol(l)
	}
	return out
}
