// Package ast defines the node types of the function-call literal grammar.
package ast

// Span represents a source location range. Columns are 1-based byte offsets
// into the original call string.
type Span struct {
	File      string `json:"file,omitempty"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Shift returns the span moved right by n columns on its first line.
func (s Span) Shift(n int) Span {
	if s.StartLine <= 1 {
		s.StartCol += n
	}
	if s.EndLine <= 1 {
		s.EndCol += n
	}
	return s
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// --- Expr is the interface for all literal expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Literal Expressions ---

type IntLiteral struct {
	Span  Span
	Value int64
}

func (n *IntLiteral) Kind() string   { return "IntLiteral" }
func (n *IntLiteral) NodeSpan() Span { return n.Span }
func (n *IntLiteral) exprNode()      {}

type FloatLiteral struct {
	Span  Span
	Value float64
}

func (n *FloatLiteral) Kind() string   { return "FloatLiteral" }
func (n *FloatLiteral) NodeSpan() Span { return n.Span }
func (n *FloatLiteral) exprNode()      {}

type BoolLiteral struct {
	Span  Span
	Value bool
}

func (n *BoolLiteral) Kind() string   { return "BoolLiteral" }
func (n *BoolLiteral) NodeSpan() Span { return n.Span }
func (n *BoolLiteral) exprNode()      {}

type StrLiteral struct {
	Span  Span
	Value string
}

func (n *StrLiteral) Kind() string   { return "StrLiteral" }
func (n *StrLiteral) NodeSpan() Span { return n.Span }
func (n *StrLiteral) exprNode()      {}

type NullLiteral struct {
	Span Span
}

func (n *NullLiteral) Kind() string   { return "NullLiteral" }
func (n *NullLiteral) NodeSpan() Span { return n.Span }
func (n *NullLiteral) exprNode()      {}

// --- Identifiers ---

// IdentPath is a dotted reference such as a.b.c. A single-part path is never
// produced by the parser as a value; bare identifiers are not literals.
type IdentPath struct {
	Span  Span
	Parts []string
}

func (n *IdentPath) Kind() string   { return "IdentPath" }
func (n *IdentPath) NodeSpan() Span { return n.Span }
func (n *IdentPath) exprNode()      {}

// --- Collections ---

type ListExpr struct {
	Span     Span
	Elements []Expr
}

func (n *ListExpr) Kind() string   { return "ListExpr" }
func (n *ListExpr) NodeSpan() Span { return n.Span }
func (n *ListExpr) exprNode()      {}

// --- Call ---

// KeywordArg is a key=value argument.
type KeywordArg struct {
	Span  Span
	Key   string
	Value Expr
}

func (n *KeywordArg) Kind() string   { return "KeywordArg" }
func (n *KeywordArg) NodeSpan() Span { return n.Span }

// CallExpr is the root node: name(args..., key=value...).
// Name excludes the sigil; Sigil is 0 when absent.
type CallExpr struct {
	Span   Span
	Sigil  byte
	Name   string
	Args   []Expr
	Kwargs []*KeywordArg
}

func (n *CallExpr) Kind() string   { return "CallExpr" }
func (n *CallExpr) NodeSpan() Span { return n.Span }

// FullName returns the name with its sigil re-attached.
func (n *CallExpr) FullName() string {
	if n.Sigil == 0 {
		return n.Name
	}
	return string(n.Sigil) + n.Name
}
