package tabletext

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/JonMunkholm/gridtable/internal/grid"
)

// ParseFunc converts one raw field into a cell value.
type ParseFunc func(s string) (grid.Value, error)

// Parser converts the raw text of a field into a typed cell value. Each
// column of a load has exactly one Parser.
type Parser struct {
	Name  string    // registry key: "string", "double", ...
	Kind  grid.Kind // kind produced on success
	parse ParseFunc
}

// NewParser builds a Parser around fn. Errors returned by fn are reported
// as grid.ErrValueConversion.
func NewParser(name string, kind grid.Kind, fn ParseFunc) Parser {
	return Parser{Name: name, Kind: kind, parse: fn}
}

// Parse converts s. Failures are *grid.ConversionError values without a
// position; Load fills in the row and column.
func (p Parser) Parse(s string) (grid.Value, error) {
	if p.parse == nil {
		return grid.Text(s), nil
	}
	v, err := p.parse(s)
	if err == nil {
		return v, nil
	}

	var ce *grid.ConversionError
	if errors.As(err, &ce) {
		return grid.Empty, ce
	}

	// Keep only the reason; the text is already part of the error.
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		err = ne.Err
	}
	return grid.Empty, &grid.ConversionError{
		From:   grid.KindText,
		To:     p.Kind,
		Text:   s,
		Row:    -1,
		Column: -1,
		Err:    err,
	}
}

func (p Parser) String() string {
	return p.Name
}

// Built-in parsers.
var (
	// String passes the field through as text.
	String = NewParser("string", grid.KindText, func(s string) (grid.Value, error) {
		return grid.Text(s), nil
	})

	// Double parses a 64-bit float. Surrounding whitespace is tolerated.
	Double = NewParser("double", grid.KindDouble, func(s string) (grid.Value, error) {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return grid.Empty, err
		}
		return grid.Double(f), nil
	})

	// Integer parses a base-10 32-bit signed integer.
	Integer = NewParser("integer", grid.KindInt, func(s string) (grid.Value, error) {
		i, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return grid.Empty, err
		}
		return grid.Int(int32(i)), nil
	})

	// Long parses a base-10 64-bit signed integer.
	Long = NewParser("long", grid.KindLong, func(s string) (grid.Value, error) {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return grid.Empty, err
		}
		return grid.Long(i), nil
	})

	// Boolean parses the forms accepted by strconv.ParseBool.
	Boolean = NewParser("boolean", grid.KindBool, func(s string) (grid.Value, error) {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return grid.Empty, err
		}
		return grid.Bool(b), nil
	})
)

var (
	registry   = make(map[string]Parser)
	registryMu sync.RWMutex
)

func init() {
	for _, p := range []Parser{String, Double, Integer, Long, Boolean} {
		Register(p)
	}
	registerAlias("text", String)
	registerAlias("int", Integer)
	registerAlias("bool", Boolean)
}

// Register adds a parser to the registry.
// Panics if a parser with the same name is already registered.
func Register(p Parser) {
	registryMu.Lock()
	defer registryMu.Unlock()

	key := strings.ToLower(p.Name)
	if _, exists := registry[key]; exists {
		panic(fmt.Sprintf("parser already registered: %s", p.Name))
	}
	registry[key] = p
}

func registerAlias(alias string, p Parser) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[alias] = p
}

// ParserByName returns a registered parser. Lookup is case-insensitive.
func ParserByName(name string) (Parser, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	p, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// ParserNames returns every registered name, aliases included, sorted.
func ParserNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseSchema turns a comma-separated list of parser names, such as
// "integer,double,string", into one parser per column.
func ParseSchema(schema string) ([]Parser, error) {
	if strings.TrimSpace(schema) == "" {
		return nil, fmt.Errorf("%w: empty schema", grid.ErrInvalidArgument)
	}

	parts := strings.Split(schema, ",")
	parsers := make([]Parser, len(parts))
	for i, part := range parts {
		p, ok := ParserByName(part)
		if !ok {
			return nil, fmt.Errorf("%w: unknown parser %q for column %d", grid.ErrInvalidArgument, strings.TrimSpace(part), i)
		}
		parsers[i] = p
	}
	return parsers, nil
}

// SchemaString is the inverse of ParseSchema.
func SchemaString(parsers []Parser) string {
	names := make([]string, len(parsers))
	for i, p := range parsers {
		names[i] = p.Name
	}
	return strings.Join(names, ",")
}

// Repeat returns n copies of p, for single-typed schemas.
func Repeat(p Parser, n int) []Parser {
	out := make([]Parser, n)
	for i := range out {
		out[i] = p
	}
	return out
}
