// Package binding parses and formats ZMK binding strings such as
// '&kp A', '&mt LCTRL ESC' and '&kp LC(LA(DEL))'.
package binding

import (
	"strings"

	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
)

// Param is one parameter of a binding. Parameters nest to represent
// modifier functions: LC(LA(DEL)) is a Param with one Param with one Param.
type Param struct {
	Value  string  `json:"value"`
	Params []Param `json:"params,omitempty"`
}

// String renders the parameter in canonical form.
func (p Param) String() string {
	if len(p.Params) == 0 {
		return p.Value
	}
	parts := make([]string, len(p.Params))
	for i, sub := range p.Params {
		parts[i] = sub.String()
	}
	return p.Value + "(" + strings.Join(parts, " ") + ")"
}

// Binding is a behavior invocation: a '&name' head plus parameters.
type Binding struct {
	Value  string  `json:"value"`
	Params []Param `json:"params,omitempty"`
}

// Behavior returns the behavior name without the leading ampersand.
func (b Binding) Behavior() string {
	return strings.TrimPrefix(b.Value, "&")
}

// IsTransparent reports whether the binding is '&trans'.
func (b Binding) IsTransparent() bool {
	return b.Value == "&trans"
}

// String renders the binding in canonical form: the head, one space
// between top-level params, arguments joined by a single space inside
// parentheses.
func (b Binding) String() string {
	if len(b.Params) == 0 {
		return b.Value
	}
	parts := make([]string, len(b.Params)+1)
	parts[0] = b.Value
	for i, p := range b.Params {
		parts[i+1] = p.String()
	}
	return strings.Join(parts, " ")
}

// Transparent returns the '&trans' binding used to pad layers.
func Transparent() Binding {
	return Binding{Value: "&trans"}
}

// New builds a binding from a behavior head and flat string parameters.
func New(value string, params ...string) Binding {
	b := Binding{Value: value}
	for _, p := range params {
		b.Params = append(b.Params, Param{Value: p})
	}
	return b
}

// Parse parses a binding string. The input must begin with '&' followed by
// an identifier; everything after it becomes parameters, with parentheses
// introducing nested parameter lists attached to the preceding token.
func Parse(input string) (Binding, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Binding{}, invalid(1, "empty binding")
	}
	if s[0] != '&' {
		return Binding{}, invalid(1, "binding must start with '&'")
	}

	sc := &scanner{input: s}
	head := sc.token()
	if len(head) < 2 {
		return Binding{}, invalid(1, "binding must start with '&' followed by a behavior name")
	}

	b := Binding{Value: head}
	for {
		sc.skipSpaces()
		if sc.done() {
			break
		}
		if sc.peek() == ')' || sc.peek() == ',' {
			return Binding{}, invalid(sc.pos+1, "unbalanced parentheses")
		}
		p, err := sc.param()
		if err != nil {
			return Binding{}, err
		}
		b.Params = append(b.Params, p)
	}
	return b, nil
}

// MustParse parses a binding string and panics on failure. Intended for
// tests and compile-time-constant bindings.
func MustParse(input string) Binding {
	b, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return b
}

func invalid(position int, reason string) *zmkerrors.LayoutError {
	err := zmkerrors.New("BIND-0001", map[string]any{"Reason": reason})
	err.Line = 1
	err.Column = position
	return err
}

type scanner struct {
	input string
	pos   int
}

func (s *scanner) done() bool {
	return s.pos >= len(s.input)
}

func (s *scanner) peek() byte {
	return s.input[s.pos]
}

func (s *scanner) skipSpaces() {
	for !s.done() && (s.peek() == ' ' || s.peek() == '\t') {
		s.pos++
	}
}

// token reads up to the next space, paren or comma.
func (s *scanner) token() string {
	start := s.pos
	for !s.done() {
		switch s.peek() {
		case ' ', '\t', '(', ')', ',':
			return s.input[start:s.pos]
		}
		s.pos++
	}
	return s.input[start:s.pos]
}

// param reads one parameter, recursing into a parenthesized argument list
// when the token is immediately followed by '('.
func (s *scanner) param() (Param, error) {
	tok := s.token()
	if tok == "" {
		return Param{}, invalid(s.pos+1, "expected parameter")
	}
	p := Param{Value: tok}

	if !s.done() && s.peek() == '(' {
		s.pos++ // past '('
		for {
			s.skipSpaces()
			if s.done() {
				return Param{}, invalid(s.pos, "unbalanced parentheses")
			}
			if s.peek() == ')' {
				s.pos++
				break
			}
			if s.peek() == ',' {
				s.pos++
				continue
			}
			arg, err := s.param()
			if err != nil {
				return Param{}, err
			}
			p.Params = append(p.Params, arg)
		}
	}
	return p, nil
}
