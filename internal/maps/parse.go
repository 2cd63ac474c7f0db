package maps

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// builtins maps expression names to their transformations.
var builtins = map[string]func() Transformation{
	"identity":   Identity,
	"exp":        Exp,
	"log":        Log,
	"reciprocal": Reciprocal,
}

// Names returns the builtin transformation names in sorted order.
// scale(<factor>) is accepted in addition to these.
func Names() []string {
	names := make([]string, 0, len(builtins)+1)
	for name := range builtins {
		names = append(names, name)
	}
	names = append(names, "scale(<factor>)")
	sort.Strings(names)
	return names
}

// Parse builds a Transformation from an expression such as
// "reciprocal * exp" or "scale(2) * identity".
//
// Terms are composed right to left: "a * b * c" is a ∘ (b ∘ c), so c is
// applied to the model first. Parse(t.String()) rebuilds an equivalent t.
func Parse(expr string) (Transformation, error) {
	terms := strings.Split(expr, "*")
	var result Transformation
	for i := len(terms) - 1; i >= 0; i-- {
		term := strings.TrimSpace(terms[i])
		if term == "" {
			return nil, fmt.Errorf("parse %q: empty term at position %d", expr, i)
		}
		t, err := parseTerm(term)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", expr, err)
		}
		if result == nil {
			result = t
			continue
		}
		result = Compose(t, result)
	}
	return result, nil
}

func parseTerm(term string) (Transformation, error) {
	if ctor, ok := builtins[term]; ok {
		return ctor(), nil
	}
	if strings.HasPrefix(term, "scale(") && strings.HasSuffix(term, ")") {
		arg := strings.TrimSpace(term[len("scale(") : len(term)-1])
		factor, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("scale factor %q: %w", arg, err)
		}
		return Scale(factor), nil
	}
	return nil, fmt.Errorf("unknown transformation %q (known: %s)", term, strings.Join(Names(), ", "))
}
