package currency

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

const DefaultSeparator = "\t"

//go:embed symbols.txt
var defaultSymbols string

// SymbolTable maps informal currency symbols such as "$" or "Kč" to the codes
// they may stand for. It is read only once loaded.
type SymbolTable struct {
	symbols map[string][]string
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: map[string][]string{}}
}

// LoadSymbolTable reads one "symbol<sep>code" record per line. A malformed
// record fails the whole load with ErrSymbolFormat. Records whose code is
// rejected by known are skipped; a nil known accepts every code.
func LoadSymbolTable(r io.Reader, sep string, known func(string) bool) (*SymbolTable, error) {
	if sep == "" {
		sep = DefaultSeparator
	}
	table := NewSymbolTable()

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Split(line, sep)
		if len(fields) != 2 {
			return nil, ErrSymbolFormat.Wrapf("line %d: want 2 fields, got %d", lineNo, len(fields))
		}
		symbol := strings.TrimSpace(fields[0])
		code := strings.TrimSpace(fields[1])
		if symbol == "" {
			return nil, ErrSymbolFormat.Wrapf("line %d: empty symbol", lineNo)
		}
		if utf8.RuneCountInString(code) != 3 {
			return nil, ErrSymbolFormat.Wrapf("line %d: currency code %q is not 3 characters", lineNo, code)
		}
		if known != nil && !known(code) {
			continue
		}
		table.add(symbol, code)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read symbols: %w", err)
	}

	return table, nil
}

// LoadSymbolFile loads the table at path. A missing file yields an empty
// table.
func LoadSymbolFile(path, sep string, known func(string) bool) (*SymbolTable, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewSymbolTable(), nil
		}
		return nil, fmt.Errorf("failed to open symbols file %s: %w", path, err)
	}
	defer f.Close()

	return LoadSymbolTable(f, sep, known)
}

// LoadDefaultSymbolTable loads the tab separated table shipped with the
// module.
func LoadDefaultSymbolTable(known func(string) bool) (*SymbolTable, error) {
	return LoadSymbolTable(strings.NewReader(defaultSymbols), DefaultSeparator, known)
}

func (t *SymbolTable) add(symbol, code string) {
	for _, existing := range t.symbols[symbol] {
		if existing == code {
			return
		}
	}
	t.symbols[symbol] = append(t.symbols[symbol], code)
}

// Lookup returns the codes recorded for symbol in insertion order.
func (t *SymbolTable) Lookup(symbol string) ([]string, bool) {
	codes, ok := t.symbols[symbol]
	if !ok {
		return nil, false
	}
	result := make([]string, len(codes))
	copy(result, codes)
	return result, true
}

func (t *SymbolTable) Len() int {
	return len(t.symbols)
}
