package ast_test

import (
	"testing"

	"github.com/thomasrohde/fncall/pkg/ast"
)

func TestNodeKinds(t *testing.T) {
	nodes := []ast.Node{
		&ast.IntLiteral{Value: 42},
		&ast.FloatLiteral{Value: 3.14},
		&ast.BoolLiteral{Value: true},
		&ast.StrLiteral{Value: "hello"},
		&ast.NullLiteral{},
		&ast.IdentPath{Parts: []string{"a", "b"}},
		&ast.ListExpr{},
		&ast.KeywordArg{Key: "k"},
		&ast.CallExpr{Name: "f"},
	}

	expected := []string{
		"IntLiteral", "FloatLiteral", "BoolLiteral", "StrLiteral",
		"NullLiteral", "IdentPath", "ListExpr", "KeywordArg", "CallExpr",
	}

	for i, node := range nodes {
		if got := node.Kind(); got != expected[i] {
			t.Errorf("node %d: got Kind() = %q, want %q", i, got, expected[i])
		}
	}
}

func TestCallFullName(t *testing.T) {
	if got := (&ast.CallExpr{Name: "f"}).FullName(); got != "f" {
		t.Errorf("got %q, want %q", got, "f")
	}
	if got := (&ast.CallExpr{Sigil: '@', Name: "f"}).FullName(); got != "@f" {
		t.Errorf("got %q, want %q", got, "@f")
	}
}

func TestSpanShift(t *testing.T) {
	s := ast.Span{StartLine: 1, StartCol: 2, EndLine: 1, EndCol: 5}.Shift(3)
	if s.StartCol != 5 || s.EndCol != 8 {
		t.Errorf("got %+v", s)
	}
}
