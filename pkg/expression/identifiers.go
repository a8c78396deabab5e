package expression

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

type identVisitor struct {
	idents  []*ast.IdentifierNode
	callees map[*ast.IdentifierNode]bool
}

func (v *identVisitor) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		v.idents = append(v.idents, n)
	case *ast.CallNode:
		if id, ok := n.Callee.(*ast.IdentifierNode); ok {
			v.callees[id] = true
		}
	}
}

// Identifiers returns the sorted, distinct variable names an expression reads.
// Function names are not included.
func Identifiers(expression string) ([]string, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expression: %w", err)
	}

	v := &identVisitor{callees: make(map[*ast.IdentifierNode]bool)}
	ast.Walk(&tree.Node, v)

	seen := make(map[string]bool)
	names := make([]string, 0, len(v.idents))
	for _, id := range v.idents {
		if v.callees[id] || seen[id.Value] {
			continue
		}
		seen[id.Value] = true
		names = append(names, id.Value)
	}
	sort.Strings(names)
	return names, nil
}
