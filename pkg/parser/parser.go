// Package parser turns a function-call string such as
//
//	myfunc("test", 123, value=123, name=xxx)
//
// into a name, positional arguments and keyword arguments.
//
// Arguments are read as literals only: numbers, strings, booleans, null,
// lists and dotted references. Nothing in the input is ever evaluated. When
// auto-quoting is enabled, arguments that are not literals but are plain
// tokens (xxx, 12a) are coerced to strings; anything that looks like a
// nested call or a statement is rejected.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thomasrohde/fncall/pkg/ast"
	"github.com/thomasrohde/fncall/pkg/diagnostics"
	"github.com/thomasrohde/fncall/pkg/lexer"
	"github.com/thomasrohde/fncall/pkg/value"
)

// Parse parses input with auto-quoting enabled.
func Parse(input string) (*Call, error) {
	return ParseFuncStr(input, true)
}

// ParseFuncStr parses input as a single function call. Every failure is a
// *ParseError. The result does not share memory with any other call.
func ParseFuncStr(input string, autoQuote bool) (*Call, error) {
	expr, quoted, err := parseExpr(input, autoQuote)
	if err != nil {
		return nil, err
	}
	call := buildCall(expr)
	call.autoQuoted = quoted
	return call, nil
}

// ParseExpr is ParseFuncStr but returns the syntax tree.
func ParseExpr(input string, autoQuote bool) (*ast.CallExpr, error) {
	expr, _, err := parseExpr(input, autoQuote)
	if err != nil {
		return nil, err
	}
	return expr, nil
}

// parseExpr also reports whether the auto-quote tier produced the result.
func parseExpr(input string, autoQuote bool) (*ast.CallExpr, bool, *ParseError) {
	env, perr := scanEnvelope(input)
	if perr != nil {
		return nil, false, perr
	}

	expr, strictErr := parseArgList(input, env.inner, env.innerStart)
	if strictErr == nil {
		return env.attach(expr), false, nil
	}
	if !autoQuote {
		return nil, false, strictErr
	}

	quoted, qerr := autoQuoteArgs(input, env.inner, env.innerStart)
	if qerr != nil {
		qerr.cause = strictErr
		return nil, true, qerr
	}

	expr, err := parseArgList(input, quoted, -1)
	if err != nil {
		err.Diag.Message = "invalid argument syntax after auto-quoting: " + err.Diag.Message
		err.cause = strictErr
		return nil, true, err
	}
	return env.attach(expr), true, nil
}

func (e *envelope) attach(expr *ast.CallExpr) *ast.CallExpr {
	expr.Sigil = e.sigil
	expr.Name = e.name
	return expr
}

type parser struct {
	input  string
	tokens []lexer.Token
	pos    int
	// offset shifts token columns into input coordinates; -1 drops spans
	// because the tokens come from rewritten text.
	offset int
	diags  []diagnostics.Diagnostic
}

// parseArgList runs the strict tier over an argument list.
func parseArgList(input, args string, offset int) (*ast.CallExpr, *ParseError) {
	tokens, err := lexer.Tokenize(args)
	if err != nil {
		le, ok := err.(*lexer.LexError)
		if !ok {
			return nil, newError(input, diagnostics.ELex, err.Error(), nil, "")
		}
		diag := le.Diag
		diag.Span = shiftSpan(diag.Span, offset)
		return nil, &ParseError{Input: input, Diag: diag}
	}

	p := &parser{input: input, tokens: tokens, offset: offset}
	expr := p.parseArgs()
	if len(p.diags) > 0 {
		return nil, &ParseError{Input: input, Diag: p.diags[0]}
	}
	return expr, nil
}

func shiftSpan(span *ast.Span, offset int) *ast.Span {
	if span == nil || offset < 0 {
		return nil
	}
	s := span.Shift(offset)
	return &s
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) peekAt(offset int) lexer.TokenType {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return lexer.TokEOF
	}
	return p.tokens[idx].Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) addError(msg string, span ast.Span, hint string) {
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.EArgSyntax, msg, shiftSpan(&span, p.offset), hint))
}

func (p *parser) spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

func tokenDesc(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokEOF:
		return "end of arguments"
	case lexer.TokStringLit:
		return strconv.Quote(tok.Value)
	default:
		return "'" + tok.Value + "'"
	}
}

// --- Argument list ---

func (p *parser) parseArgs() *ast.CallExpr {
	start := p.current().Span
	call := &ast.CallExpr{}

	for p.peek() != lexer.TokEOF {
		if p.peek() == lexer.TokIdent && p.peekAt(1) == lexer.TokEquals {
			kw := p.parseKeywordArg()
			if kw == nil {
				return nil
			}
			call.Kwargs = append(call.Kwargs, kw)
		} else {
			if len(call.Kwargs) > 0 {
				tok := p.current()
				p.addError("positional argument follows keyword argument", tok.Span, "")
				return nil
			}
			arg := p.parseLiteral()
			if arg == nil {
				return nil
			}
			call.Args = append(call.Args, arg)
		}

		switch p.peek() {
		case lexer.TokComma:
			p.advance()
		case lexer.TokEOF:
		default:
			tok := p.current()
			p.addError(fmt.Sprintf("expected ',' between arguments, got %s", tokenDesc(tok)), tok.Span, "")
			return nil
		}
	}

	call.Span = p.spanFromTo(start, p.current().Span)
	return call
}

func (p *parser) parseKeywordArg() *ast.KeywordArg {
	keyTok := p.advance()
	p.advance() // consume '='

	val := p.parseLiteral()
	if val == nil {
		return nil
	}
	return &ast.KeywordArg{
		Span:  p.spanFromTo(keyTok.Span, val.NodeSpan()),
		Key:   keyTok.Value,
		Value: val,
	}
}

// --- Literals ---

func (p *parser) parseLiteral() ast.Expr {
	switch p.peek() {
	case lexer.TokIntLit, lexer.TokFloatLit:
		return p.parseNumber("", p.current().Span)

	case lexer.TokPlus, lexer.TokMinus:
		sign := p.advance()
		if t := p.peek(); t != lexer.TokIntLit && t != lexer.TokFloatLit {
			p.addError(fmt.Sprintf("operator '%s' is only allowed before a number", sign.Value), sign.Span, "")
			return nil
		}
		prefix := ""
		if sign.Type == lexer.TokMinus {
			prefix = "-"
		}
		return p.parseNumber(prefix, sign.Span)

	case lexer.TokStringLit:
		tok := p.advance()
		return &ast.StrLiteral{Span: tok.Span, Value: tok.Value}

	case lexer.TokTrue:
		tok := p.advance()
		return &ast.BoolLiteral{Span: tok.Span, Value: true}

	case lexer.TokFalse:
		tok := p.advance()
		return &ast.BoolLiteral{Span: tok.Span, Value: false}

	case lexer.TokNull:
		tok := p.advance()
		return &ast.NullLiteral{Span: tok.Span}

	case lexer.TokLBracket:
		return p.parseList()

	case lexer.TokIdent:
		return p.parseRef()

	case lexer.TokLParen:
		tok := p.current()
		p.addError("parenthesized expressions are not allowed in arguments", tok.Span, "")
		return nil

	default:
		tok := p.current()
		p.addError(fmt.Sprintf("unexpected %s", tokenDesc(tok)), tok.Span, "")
		return nil
	}
}

func (p *parser) parseNumber(sign string, start ast.Span) ast.Expr {
	tok := p.advance()
	span := p.spanFromTo(start, tok.Span)
	text := sign + tok.Value

	if tok.Type == lexer.TokFloatLit {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.addError(fmt.Sprintf("invalid float literal %q", text), span, "")
			return nil
		}
		return &ast.FloatLiteral{Span: span, Value: f}
	}

	base := 10
	if len(tok.Value) > 1 && tok.Value[0] == '0' && strings.ContainsAny(tok.Value[1:2], "xXoObB") {
		base = 0
	}
	n, err := strconv.ParseInt(text, base, 64)
	if err != nil {
		p.addError(fmt.Sprintf("invalid integer literal %q", text), span, "")
		return nil
	}
	return &ast.IntLiteral{Span: span, Value: n}
}

func (p *parser) parseList() ast.Expr {
	start := p.advance() // consume '['

	var elements []ast.Expr
	for p.peek() != lexer.TokRBracket {
		if p.peek() == lexer.TokEOF {
			p.addError("unterminated list", start.Span, "close the list with ']'")
			return nil
		}
		elem := p.parseLiteral()
		if elem == nil {
			return nil
		}
		elements = append(elements, elem)

		switch p.peek() {
		case lexer.TokComma:
			p.advance()
		case lexer.TokRBracket:
		case lexer.TokEOF:
			p.addError("unterminated list", start.Span, "close the list with ']'")
			return nil
		default:
			tok := p.current()
			p.addError(fmt.Sprintf("expected ',' or ']' in list, got %s", tokenDesc(tok)), tok.Span, "")
			return nil
		}
	}
	end := p.advance()

	return &ast.ListExpr{
		Span:     p.spanFromTo(start.Span, end.Span),
		Elements: elements,
	}
}

// parseRef accepts a dotted reference. Bare identifiers and anything
// followed by '(' are rejected.
func (p *parser) parseRef() ast.Expr {
	tok := p.advance()
	parts := []string{tok.Value}
	endSpan := tok.Span

	for p.peek() == lexer.TokDot {
		p.advance() // consume '.'
		next := p.current()
		if next.Type != lexer.TokIdent {
			p.addError(fmt.Sprintf("expected identifier after '.', got %s", tokenDesc(next)), next.Span, "")
			return nil
		}
		p.advance()
		parts = append(parts, next.Value)
		endSpan = next.Span
	}

	span := p.spanFromTo(tok.Span, endSpan)
	path := strings.Join(parts, ".")

	if p.peek() == lexer.TokLParen {
		p.addError(fmt.Sprintf("calls are not allowed in arguments: %s(...)", path), span, "")
		return nil
	}
	if len(parts) == 1 {
		p.addError(fmt.Sprintf("bare identifier %q is not a literal", path), span, "quote it or enable auto-quoting")
		return nil
	}

	return &ast.IdentPath{Span: span, Parts: parts}
}

// --- Evaluation of literal nodes ---

func buildCall(expr *ast.CallExpr) *Call {
	call := &Call{
		Name:   expr.FullName(),
		Args:   make([]value.Value, 0, len(expr.Args)),
		Kwargs: make(map[string]value.Value, len(expr.Kwargs)),
	}
	for _, a := range expr.Args {
		call.Args = append(call.Args, literalValue(a))
	}
	// Later duplicates overwrite earlier ones.
	for _, kw := range expr.Kwargs {
		call.Kwargs[kw.Key] = literalValue(kw.Value)
	}
	return call
}

func literalValue(e ast.Expr) value.Value {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return value.NewInt(n.Value)
	case *ast.FloatLiteral:
		return value.NewFloat(n.Value)
	case *ast.StrLiteral:
		return value.NewString(n.Value)
	case *ast.BoolLiteral:
		return value.NewBool(n.Value)
	case *ast.NullLiteral:
		return value.NewNull()
	case *ast.IdentPath:
		return value.NewRef(strings.Join(n.Parts, "."))
	case *ast.ListExpr:
		items := make([]value.Value, len(n.Elements))
		for i, el := range n.Elements {
			items[i] = literalValue(el)
		}
		return value.NewList(items)
	}
	return value.NewNull()
}
