package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/physprop/internal/ir"
)

// LinkWarning describes a declaration that is valid but cannot resolve the
// way its author probably intends.
//
// Warnings are not errors because the gaps may be intentional:
//   - Quantities that are only ever assigned directly
//   - Reciprocal pairs seeded by the caller before any read
type LinkWarning struct {
	Path    []string `json:"path"`    // Derivation path: ["rho", "sigma", "model"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning" or "info"
}

// AnalyzeLinks performs static resolution analysis on a schema.
//
// It builds the derivation graph (quantity → reciprocal, invertible quantity
// → model) and reports every quantity that cannot reach the model and has no
// default to fall back on, plus reciprocal pairs whose two defaults compete.
//
// A schema where every quantity reaches the model or a default returns an
// empty warning list. Warnings follow declaration order.
func AnalyzeLinks(spec *ir.SchemaSpec) []LinkWarning {
	graph := buildDerivationGraph(spec)
	warnings := []LinkWarning{}

	reported := make(map[string]bool)
	for _, pair := range spec.ReciprocalPairs() {
		a, _ := spec.Quantity(pair[0])
		b, ok := spec.Quantity(pair[1])
		if !ok {
			continue
		}
		reported[a.Name], reported[b.Name] = true, true

		if a.Default != nil && b.Default != nil {
			warnings = append(warnings, LinkWarning{
				Path:    []string{a.Name, b.Name},
				Message: fmt.Sprintf("both %s and %s declare a default; every instance starts with two explicit values that may disagree", a.Name, b.Name),
				Level:   "warning",
			})
			continue
		}
		if !reachesModel(a.Name, graph) && a.Default == nil && b.Default == nil {
			warnings = append(warnings, LinkWarning{
				Path:    []string{a.Name, b.Name},
				Message: fmt.Sprintf("reciprocal pair %s ↔ %s has no mapping and no default; reads fail until one side is assigned", a.Name, b.Name),
				Level:   "warning",
			})
		}
	}

	for _, q := range spec.Quantities {
		if reported[q.Name] || q.Invertible || q.Default != nil {
			continue
		}
		warnings = append(warnings, LinkWarning{
			Path:    []string{q.Name},
			Message: fmt.Sprintf("quantity %s has no mapping, reciprocal or default; it reads absent until assigned", q.Name),
			Level:   "info",
		})
	}

	return warnings
}

// modelNode is the sink of the derivation graph.
const modelNode = "model"

// derivationGraph maps quantity → nodes it can derive its value from.
type derivationGraph map[string][]string

// buildDerivationGraph constructs the derivation graph.
//
// For each quantity:
//   - An invertible quantity derives from the model through its mapping
//   - A linked quantity derives from its reciprocal
func buildDerivationGraph(spec *ir.SchemaSpec) derivationGraph {
	graph := make(derivationGraph)
	for _, q := range spec.Quantities {
		if graph[q.Name] == nil {
			graph[q.Name] = []string{}
		}
		if q.Invertible {
			graph[q.Name] = append(graph[q.Name], modelNode)
		}
	}
	for _, pair := range spec.ReciprocalPairs() {
		graph[pair[0]] = append(graph[pair[0]], pair[1])
		graph[pair[1]] = append(graph[pair[1]], pair[0])
	}
	return graph
}

// reachesModel reports whether start can derive its value from the model.
func reachesModel(start string, graph derivationGraph) bool {
	return len(derivationPath(start, graph)) > 0
}

// derivationPath returns the shortest path from start to the model, or nil
// if the model is unreachable.
func derivationPath(start string, graph derivationGraph) []string {
	prev := map[string]string{start: ""}
	queue := []string{start}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node == modelNode {
			var path []string
			for n := node; n != ""; n = prev[n] {
				path = append([]string{n}, path...)
			}
			return path
		}
		for _, next := range graph[node] {
			if _, seen := prev[next]; !seen {
				prev[next] = node
				queue = append(queue, next)
			}
		}
	}
	return nil
}

// DescribeDerivation renders how name resolves from the model, e.g.
// "rho → sigma → model", or "" when it cannot.
func DescribeDerivation(spec *ir.SchemaSpec, name string) string {
	return strings.Join(derivationPath(name, buildDerivationGraph(spec)), " → ")
}
