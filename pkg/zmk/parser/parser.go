// Package parser builds a devicetree AST from DTSI source.
//
// The parser is a hand-written recursive descent over the lexer's token
// stream. It offers a fail-fast surface (Parse) and an accumulate-and-
// continue surface (ParseSafe) that synchronizes on ';', '}' or EOF after
// an error and always returns a (possibly partial) AST.
package parser

import (
	"strconv"
	"strings"

	"github.com/sambeau/zmklayout/pkg/zmk/ast"
	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
	"github.com/sambeau/zmklayout/pkg/zmk/lexer"
)

// maxDepth caps node nesting to keep pathological input bounded.
const maxDepth = 256

// commentAttachWindow is how close (in source lines) a comment must be to a
// node or property to be attached to it.
const commentAttachWindow = 5

// Parser represents the devicetree parser
type Parser struct {
	l      *lexer.Lexer
	source string

	curToken  lexer.Token
	peekToken lexer.Token

	errors  []*zmkerrors.LayoutError
	pending []*ast.Comment // comments waiting to attach to the next item
	spilled []*ast.Comment // comments that belong to the enclosing scope
	depth   int
}

// New creates a new parser reading from the given lexer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Parse parses the source and fails on the first error.
func Parse(source string) (*ast.Document, error) {
	doc, errs := ParseSafe(source)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return doc, nil
}

// ParseSafe parses the source, collecting errors and synchronizing after
// each one. The returned document is complete for all well-formed input and
// partial otherwise.
func ParseSafe(source string) (*ast.Document, []*zmkerrors.LayoutError) {
	p := &Parser{l: lexer.New(source), source: source}
	p.nextToken()
	p.nextToken()
	doc := p.ParseDocument()
	return doc, p.errors
}

// Errors returns the errors collected so far.
func (p *Parser) Errors() []*zmkerrors.LayoutError {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()

	// Lex errors are recorded here and the bad token skipped, so the
	// cursor stays monotonic and parsing continues.
	for p.peekToken.Type == lexer.ILLEGAL {
		err := zmkerrors.NewSimple(zmkerrors.ClassLex, p.peekToken.Literal)
		err = err.WithPosition(p.peekToken.Line, p.peekToken.Column)
		if p.source != "" {
			err = err.WithContext(p.source)
		}
		p.errors = append(p.errors, err)
		p.peekToken = p.l.NextToken()
	}
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) addError(code string, tok lexer.Token, data map[string]any) {
	err := zmkerrors.NewWithPosition(code, tok.Line, tok.Column, data)
	if p.source != "" {
		err = err.WithContext(p.source)
	}
	p.errors = append(p.errors, err)
}

// ParseDocument parses the whole token stream into a document.
func (p *Parser) ParseDocument() *ast.Document {
	doc := &ast.Document{}

	for !p.curTokenIs(lexer.EOF) {
		switch p.curToken.Type {
		case lexer.LINE_COMMENT, lexer.BLOCK_COMMENT:
			p.bufferComment()
		case lexer.PREPROCESSOR:
			doc.Conditionals = append(doc.Conditionals, p.parseConditional())
		case lexer.SEMICOLON:
			p.nextToken() // stray semicolons are harmless
		case lexer.IDENT, lexer.SLASH, lexer.REFERENCE:
			if node := p.parseNode(); node != nil {
				doc.Nodes = append(doc.Nodes, node)
			}
		default:
			p.addError("PARSE-0002", p.curToken, map[string]any{"Token": p.curToken.Literal})
			p.nextToken()
		}
		doc.Comments = append(doc.Comments, p.drainSpill()...)
	}

	doc.Comments = append(doc.Comments, p.flushComments()...)
	return doc
}

// bufferComment stores the current comment token for later attachment.
func (p *Parser) bufferComment() {
	p.pending = append(p.pending, &ast.Comment{
		Text:    p.curToken.Literal,
		IsBlock: p.curToken.Type == lexer.BLOCK_COMMENT,
		Line:    p.curToken.Line,
		Column:  p.curToken.Column,
	})
	p.nextToken()
}

// takeComments removes and returns pending comments close enough to the
// given line to attach. Comments further away stay pending.
func (p *Parser) takeComments(line int) []*ast.Comment {
	var attached, kept []*ast.Comment
	for _, c := range p.pending {
		if line-c.Line <= commentAttachWindow {
			attached = append(attached, c)
		} else {
			kept = append(kept, c)
		}
	}
	p.pending = kept
	return attached
}

func (p *Parser) flushComments() []*ast.Comment {
	out := p.pending
	p.pending = nil
	return out
}

func (p *Parser) drainSpill() []*ast.Comment {
	out := p.spilled
	p.spilled = nil
	return out
}

// parseConditional turns a PREPROCESSOR token into a Conditional record.
func (p *Parser) parseConditional() *ast.Conditional {
	raw := p.curToken.Literal
	cond := &ast.Conditional{
		Raw:    raw,
		Line:   p.curToken.Line,
		Column: p.curToken.Column,
	}

	rest := strings.TrimPrefix(raw, "#")
	rest = strings.TrimLeft(rest, " \t")
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		cond.Directive = rest[:i]
		cond.Condition = strings.TrimSpace(rest[i+1:])
	} else {
		cond.Directive = rest
	}

	p.nextToken()
	return cond
}

// parseNode parses 'label: name@addr { ... };'. Returns nil after an error
// (recovery has already happened).
func (p *Parser) parseNode() *ast.Node {
	if p.depth >= maxDepth {
		p.addError("PARSE-0005", p.curToken, map[string]any{"Limit": maxDepth})
		p.sync()
		return nil
	}

	node := &ast.Node{Line: p.curToken.Line, Column: p.curToken.Column}
	node.Comments = p.takeComments(p.curToken.Line)
	// Comments too far above the node belong to the enclosing scope.
	p.spilled = append(p.spilled, p.flushComments()...)

	// label: name
	if p.curTokenIs(lexer.IDENT) && p.peekTokenIs(lexer.COLON) {
		node.Label = p.curToken.Literal
		p.nextToken() // move to ':'
		p.nextToken() // move to name
	}

	switch p.curToken.Type {
	case lexer.IDENT:
		node.Name = p.curToken.Literal
	case lexer.SLASH:
		node.Name = "/"
	case lexer.REFERENCE:
		// reference override of an existing node: '&kscan0 { ... };'
		node.Name = "&" + p.curToken.Literal
	default:
		p.addError("PARSE-0002", p.curToken, map[string]any{"Token": p.curToken.Literal})
		p.sync()
		return nil
	}
	p.nextToken()

	if p.curTokenIs(lexer.AT) {
		p.nextToken()
		if p.curTokenIs(lexer.IDENT) || p.curTokenIs(lexer.NUMBER) {
			node.UnitAddress = p.curToken.Literal
			p.nextToken()
		} else {
			p.addError("PARSE-0001", p.curToken, map[string]any{"Expected": "unit address", "Got": p.curToken.Literal})
			p.sync()
			return nil
		}
	}

	// A bare 'name;' with no '=' and no body is a boolean property, not a
	// node. Callers that can take properties handle this before calling.
	if !p.curTokenIs(lexer.LBRACE) {
		p.addError("PARSE-0001", p.curToken, map[string]any{"Expected": "'{'", "Got": p.curToken.Literal})
		p.sync()
		return nil
	}
	p.nextToken() // past '{'

	p.depth++
	p.parseNodeBody(node)
	p.depth--

	return node
}

// parseNodeBody parses items until '}' and consumes the trailing '};'.
func (p *Parser) parseNodeBody(node *ast.Node) {
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		switch p.curToken.Type {
		case lexer.LINE_COMMENT, lexer.BLOCK_COMMENT:
			p.bufferComment()
		case lexer.PREPROCESSOR:
			node.Conditionals = append(node.Conditionals, p.parseConditional())
		case lexer.SEMICOLON:
			p.nextToken()
		case lexer.IDENT, lexer.SLASH, lexer.REFERENCE:
			p.parseItem(node)
		default:
			p.addError("PARSE-0002", p.curToken, map[string]any{"Token": p.curToken.Literal})
			p.sync()
		}
		node.Comments = append(node.Comments, p.drainSpill()...)
	}

	if p.curTokenIs(lexer.EOF) {
		p.addError("PARSE-0004", p.curToken, map[string]any{"Node": node.Name})
		node.Comments = append(node.Comments, p.flushComments()...)
		return
	}

	p.nextToken() // past '}'
	if p.curTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	node.Comments = append(node.Comments, p.flushComments()...)
}

// parseItem disambiguates a child node from a property inside a node body.
func (p *Parser) parseItem(parent *ast.Node) {
	// node: 'name {', 'label: name {', 'name@addr {', '&ref {'
	if p.curTokenIs(lexer.SLASH) || p.curTokenIs(lexer.REFERENCE) || p.peekTokenIs(lexer.LBRACE) || p.peekTokenIs(lexer.COLON) || p.peekTokenIs(lexer.AT) {
		if child := p.parseNode(); child != nil {
			parent.Children = append(parent.Children, child)
		}
		return
	}

	if prop := p.parseProperty(); prop != nil {
		parent.Properties = append(parent.Properties, prop)
	}
}

// parseProperty parses 'name = value, value;' or the boolean form 'name;'.
func (p *Parser) parseProperty() *ast.Property {
	prop := &ast.Property{
		Name:   p.curToken.Literal,
		Line:   p.curToken.Line,
		Column: p.curToken.Column,
	}
	prop.Comments = p.takeComments(p.curToken.Line)
	p.nextToken()

	switch p.curToken.Type {
	case lexer.SEMICOLON:
		// boolean property
		semiLine := p.curToken.Line
		p.nextToken()
		p.attachTrailingComment(prop, semiLine)
		return prop
	case lexer.EQUALS:
		p.nextToken()
	default:
		p.addError("PARSE-0001", p.curToken, map[string]any{"Expected": "'=' or ';'", "Got": p.curToken.Literal})
		p.sync()
		return nil
	}

	if p.curTokenIs(lexer.SEMICOLON) {
		p.addError("PARSE-0003", p.curToken, map[string]any{"Property": prop.Name})
		p.nextToken()
		return nil
	}

	for {
		val := p.parseValue()
		if val == nil {
			p.sync()
			return nil
		}
		prop.Values = append(prop.Values, val)

		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.curTokenIs(lexer.SEMICOLON) {
		p.addError("PARSE-0001", p.curToken, map[string]any{"Expected": "';'", "Got": p.curToken.Literal})
		p.sync()
		return nil
	}
	semiLine := p.curToken.Line
	p.nextToken()
	p.attachTrailingComment(prop, semiLine)
	return prop
}

// attachTrailingComment attaches a same-line comment following ';'.
func (p *Parser) attachTrailingComment(prop *ast.Property, semiLine int) {
	if (p.curTokenIs(lexer.LINE_COMMENT) || p.curTokenIs(lexer.BLOCK_COMMENT)) && p.curToken.Line == semiLine {
		prop.Comments = append(prop.Comments, &ast.Comment{
			Text:    p.curToken.Literal,
			IsBlock: p.curTokenIs(lexer.BLOCK_COMMENT),
			Line:    p.curToken.Line,
			Column:  p.curToken.Column,
		})
		p.nextToken()
	}
}

// parseValue parses one property value.
func (p *Parser) parseValue() ast.Value {
	switch p.curToken.Type {
	case lexer.STRING:
		v := &ast.StringValue{Value: p.curToken.Literal}
		p.nextToken()
		return v
	case lexer.NUMBER:
		return p.parseNumber()
	case lexer.REFERENCE:
		v := &ast.RefValue{Name: p.curToken.Literal}
		p.nextToken()
		return v
	case lexer.ANGLE_OPEN:
		return p.parseArray()
	case lexer.IDENT:
		if p.peekTokenIs(lexer.LPAREN) {
			return p.parseCall()
		}
		name := p.curToken.Literal
		p.nextToken()
		if name == "true" || name == "false" {
			return &ast.BoolValue{Value: name == "true"}
		}
		return &ast.IdentValue{Name: name}
	default:
		p.addError("PARSE-0002", p.curToken, map[string]any{"Token": p.curToken.Literal})
		return nil
	}
}

// parseNumber parses an integer token, preserving hex formatting.
func (p *Parser) parseNumber() ast.Value {
	lit := p.curToken.Literal
	tok := p.curToken
	p.nextToken()

	neg := false
	digits := lit
	if strings.HasPrefix(digits, "-") {
		neg = true
		digits = digits[1:]
	}

	var val int64
	var err error
	hex := false
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		hex = true
		val, err = strconv.ParseInt(digits[2:], 16, 64)
	} else {
		val, err = strconv.ParseInt(digits, 10, 64)
	}
	if err != nil {
		p.addError("PARSE-0002", tok, map[string]any{"Token": lit})
		return &ast.RawValue{Text: lit}
	}
	if neg {
		val = -val
	}
	return &ast.IntValue{Value: val, Hex: hex}
}

// parseArray parses '<' elements '>' where each element is a number,
// reference, identifier, string or function call.
func (p *Parser) parseArray() ast.Value {
	open := p.curToken
	arr := &ast.ArrayValue{}
	p.nextToken() // past '<'

	for !p.curTokenIs(lexer.ANGLE_CLOSE) {
		switch p.curToken.Type {
		case lexer.EOF, lexer.SEMICOLON, lexer.RBRACE:
			p.addError("PARSE-0006", open, nil)
			return nil
		case lexer.NUMBER:
			arr.Elements = append(arr.Elements, p.parseNumber())
		case lexer.REFERENCE:
			arr.Elements = append(arr.Elements, &ast.RefValue{Name: p.curToken.Literal})
			p.nextToken()
		case lexer.STRING:
			arr.Elements = append(arr.Elements, &ast.StringValue{Value: p.curToken.Literal})
			p.nextToken()
		case lexer.IDENT:
			if p.peekTokenIs(lexer.LPAREN) {
				call := p.parseCall()
				if call == nil {
					return nil
				}
				arr.Elements = append(arr.Elements, call)
			} else {
				arr.Elements = append(arr.Elements, &ast.IdentValue{Name: p.curToken.Literal})
				p.nextToken()
			}
		case lexer.LPAREN:
			// parenthesized cell arithmetic is preserved raw
			arr.Elements = append(arr.Elements, p.parseRawParens())
		default:
			p.addError("PARSE-0002", p.curToken, map[string]any{"Token": p.curToken.Literal})
			return nil
		}
	}

	p.nextToken() // past '>'
	return arr
}

// parseCall parses 'NAME(arg, arg)' with nested calls allowed.
func (p *Parser) parseCall() ast.Value {
	call := &ast.CallValue{Name: p.curToken.Literal}
	p.nextToken() // move to '('
	p.nextToken() // past '('

	for !p.curTokenIs(lexer.RPAREN) {
		if p.curTokenIs(lexer.EOF) {
			p.addError("PARSE-0001", p.curToken, map[string]any{"Expected": "')'", "Got": "end of input"})
			return nil
		}
		arg := p.parseValue()
		if arg == nil {
			return nil
		}
		call.Args = append(call.Args, arg)
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}

	p.nextToken() // past ')'
	return call
}

// parseRawParens swallows a balanced parenthesized expression verbatim,
// as used by modifier masks like (MOD_LSFT|MOD_RSFT).
func (p *Parser) parseRawParens() ast.Value {
	var sb strings.Builder
	depth := 0
	for {
		switch p.curToken.Type {
		case lexer.LPAREN:
			depth++
			sb.WriteString("(")
		case lexer.RPAREN:
			depth--
			sb.WriteString(")")
		case lexer.PIPE:
			sb.WriteString("|")
		case lexer.EOF:
			return &ast.RawValue{Text: sb.String()}
		default:
			sb.WriteString(p.curToken.Literal)
		}
		p.nextToken()
		if depth == 0 {
			return &ast.RawValue{Text: sb.String()}
		}
	}
}

// sync skips tokens until just past a ';', or up to a '}' or EOF, so that
// parsing can resume. It consumes nothing when the current token is
// already '}' or EOF, and at least one token otherwise.
func (p *Parser) sync() {
	if p.curTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		return
	}
	if p.curTokenIs(lexer.RBRACE) || p.curTokenIs(lexer.EOF) {
		return
	}
	for {
		p.nextToken()
		switch p.curToken.Type {
		case lexer.SEMICOLON:
			p.nextToken()
			return
		case lexer.RBRACE, lexer.EOF:
			return
		}
	}
}
