package dict

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NumberPattern matches integer, float and scientific literals as they appear
// in OpenFOAM dictionaries (e.g. 300, 0.5, 1e-5, -2.3e+4).
const NumberPattern = `[+-]?[0-9]+[.]?[0-9]*[e]?[+-]?[0-9]*`

// VectorPattern matches a parenthesized 3-vector literal, e.g. "(0 0 9.8)".
var VectorPattern = fmt.Sprintf(`\(\s*(%s)\s+(%s)\s+(%s)\s*\)`,
	NumberPattern, NumberPattern, NumberPattern)

var (
	numberRe = regexp.MustCompile(`^` + NumberPattern + `$`)
	vectorRe = regexp.MustCompile(`^` + VectorPattern + `$`)
)

// Kind discriminates the value forms a dictionary entry can carry.
type Kind int

const (
	// Scalar is a single numeric literal.
	Scalar Kind = iota
	// Symbol is an unresolved token ($ref, word) preserved verbatim.
	Symbol
	// Vector is a numeric 3-vector literal.
	Vector
	// SymbolVector is a 3-vector with at least one non-numeric component.
	SymbolVector
)

// Value is one parsed dictionary value. Raw holds the exact source token when
// the value came from a file; it is reused on re-serialization so that
// untouched entries round-trip byte-identically, and is empty for values set
// programmatically.
type Value struct {
	Kind   Kind
	Num    float64
	Sym    string
	Vec    [3]float64
	VecSym [3]string
	Raw    string
}

// ScalarValue builds a numeric scalar Value.
func ScalarValue(v float64) Value {
	return Value{Kind: Scalar, Num: v}
}

// SymbolValue builds a symbolic Value preserved verbatim.
func SymbolValue(s string) Value {
	return Value{Kind: Symbol, Sym: s}
}

// VectorValue builds a numeric 3-vector Value.
func VectorValue(x, y, z float64) Value {
	return Value{Kind: Vector, Vec: [3]float64{x, y, z}}
}

// ParseToken parses a single value token: a number, a bare symbol, or a
// parenthesized 3-vector. Symbols (including $-references) are kept verbatim.
func ParseToken(tok string) Value {
	tok = strings.TrimSpace(tok)
	if m := vectorRe.FindStringSubmatch(tok); m != nil {
		v := Value{Kind: Vector, Raw: tok}
		for i := 0; i < 3; i++ {
			f, err := strconv.ParseFloat(m[i+1], 64)
			if err != nil {
				v.Kind = SymbolVector
				break
			}
			v.Vec[i] = f
		}
		if v.Kind == SymbolVector {
			copy(v.VecSym[:], m[1:4])
		}
		return v
	}
	if numberRe.MatchString(tok) {
		if f, err := strconv.ParseFloat(tok, 64); err == nil {
			return Value{Kind: Scalar, Num: f, Raw: tok}
		}
	}
	return Value{Kind: Symbol, Sym: tok, Raw: tok}
}

// FormatFloat renders a float the way dictionary files carry them: shortest
// representation that survives a round trip.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// String renders the value as dictionary text. The original source token is
// reused when present so parsed files re-serialize without reformatting.
func (v Value) String() string {
	if v.Raw != "" {
		return v.Raw
	}
	switch v.Kind {
	case Scalar:
		return FormatFloat(v.Num)
	case Symbol:
		return v.Sym
	case Vector:
		return fmt.Sprintf("(%s %s %s)",
			FormatFloat(v.Vec[0]), FormatFloat(v.Vec[1]), FormatFloat(v.Vec[2]))
	case SymbolVector:
		return fmt.Sprintf("(%s %s %s)", v.VecSym[0], v.VecSym[1], v.VecSym[2])
	}
	return ""
}

// Equal reports whether two values carry the same payload, ignoring Raw.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Scalar:
		return v.Num == o.Num
	case Symbol:
		return v.Sym == o.Sym
	case Vector:
		return v.Vec == o.Vec
	case SymbolVector:
		return v.VecSym == o.VecSym
	}
	return false
}

// MeanOf collapses an inline fixed-length list of numeric literals into its
// arithmetic mean. This is the deliberately lossy in-memory representation of
// inline lists.
func MeanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// ParseInlineList parses the body of an inline fixed-length list such as
// "(1 2 3 4)" with an expected element count, returning the element values.
func ParseInlineList(body string, n int) ([]float64, error) {
	body = strings.TrimSpace(body)
	body = strings.TrimPrefix(body, "(")
	body = strings.TrimSuffix(body, ")")
	fields := strings.Fields(body)
	if len(fields) != n {
		return nil, fmt.Errorf("inline list declares %d elements, found %d", n, len(fields))
	}
	vals := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("inline list element %q: %v", f, err)
		}
		vals[i] = v
	}
	return vals, nil
}
