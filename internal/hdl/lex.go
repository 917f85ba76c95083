// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hdl

import (
	"bufio"
	"io"
	"strconv"
	"unicode"
)

// Type is a token type.
type Type int

// Tokens
const (
	EOF Type = iota
	Raw
	Ident
	ParenOpen
	ParenClose
	Comma
	Semicolon
	Equal
	Invalid
)

var typeNames = [...]string{
	EOF:        "end of input",
	Raw:        "character",
	Ident:      "identifier",
	ParenOpen:  "'('",
	ParenClose: "')'",
	Comma:      "','",
	Semicolon:  "';'",
	Equal:      "'='",
	Invalid:    "invalid",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
	return typeNames[t]
}

// Pos is a position in the input.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

// Item is a lexed token.
type Item struct {
	Type  Type
	Pos   Pos
	Value string
}

func (i Item) String() string {
	switch i.Type {
	case EOF, Invalid:
		return i.Type.String()
	case Ident:
		return "identifier " + strconv.Quote(i.Value)
	}
	return strconv.Quote(i.Value)
}

// Comment styles recognized by a Lexer.
const (
	SlashComments = 1 << iota // "//" and "/* */"
	HashComments              // "#" up to end of line
)

const eof = -1

// stateFn is a lexer state. It returns the next state, nil for the initial
// state.
type stateFn func(l *Lexer) stateFn

// Lexer is a simple state machine lexer for netlist files.
type Lexer struct {
	r        *bufio.Reader
	comments int
	items    []Item
	state    stateFn

	cur   rune
	pos   Pos // position of cur
	next  Pos
	start Pos // start of the current token
	back  bool
	err   error
}

// NewLexer returns a new lexer reading from r.
func NewLexer(r io.Reader, comments int) *Lexer {
	return &Lexer{
		r:        bufio.NewReader(r),
		comments: comments,
		next:     Pos{1, 1},
	}
}

// Lex returns the next token.
func (l *Lexer) Lex() Item {
	for len(l.items) == 0 {
		if l.state == nil {
			l.state = lexInit
		}
		l.state = l.state(l)
	}
	i := l.items[0]
	l.items = l.items[1:]
	return i
}

// Next returns the next rune in the input, or eof.
func (l *Lexer) Next() rune {
	if l.back {
		l.back = false
		return l.cur
	}
	if l.cur == eof && l.err != nil {
		return eof
	}
	r, _, err := l.r.ReadRune()
	if err != nil {
		if err != io.EOF {
			l.err = err
		} else {
			l.err = io.EOF
		}
		l.cur = eof
		l.pos = l.next
		return eof
	}
	l.cur, l.pos = r, l.next
	if r == '\n' {
		l.next = Pos{l.next.Line + 1, 1}
	} else {
		l.next.Col++
	}
	return r
}

// Backup pushes back the last rune read by Next. It can only be called once
// per call to Next.
func (l *Lexer) Backup() {
	l.back = true
}

// Current returns the last rune read by Next.
func (l *Lexer) Current() rune {
	return l.cur
}

// Emit emits a token starting at the current token start.
func (l *Lexer) Emit(t Type, value string) {
	l.items = append(l.items, Item{Type: t, Pos: l.start, Value: value})
}

func lexInit(l *Lexer) stateFn {
	r := l.Next()
	l.start = l.pos
	switch {
	case r == eof:
		if l.err != nil && l.err != io.EOF {
			l.Emit(Invalid, l.err.Error())
		}
		return lexEOF
	case unicode.IsSpace(r):
		return nil
	case isIdentStart(r):
		return lexIdent
	case r == '\\':
		return lexEscaped
	case r == '(':
		l.Emit(ParenOpen, "(")
	case r == ')':
		l.Emit(ParenClose, ")")
	case r == ',':
		l.Emit(Comma, ",")
	case r == ';':
		l.Emit(Semicolon, ";")
	case r == '=':
		l.Emit(Equal, "=")
	case r == '#' && l.comments&HashComments != 0:
		return lexLineComment
	case r == '/' && l.comments&SlashComments != 0:
		switch l.Next() {
		case '/':
			return lexLineComment
		case '*':
			return lexBlockComment
		}
		l.Backup()
		l.Emit(Raw, "/")
	default:
		l.Emit(Raw, string(r))
	}
	return nil
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isIdent(r rune) bool {
	return isIdentStart(r) || r == '$' || r == '.' || r == '[' || r == ']'
}

func lexIdent(l *Lexer) stateFn {
	buf := []rune{l.Current()}
	for r := l.Next(); isIdent(r); r = l.Next() {
		buf = append(buf, r)
	}
	l.Backup()
	l.Emit(Ident, string(buf))
	return nil
}

// lexEscaped lexes a Verilog escaped identifier: a backslash followed by any
// non-blank characters.
func lexEscaped(l *Lexer) stateFn {
	var buf []rune
	for r := l.Next(); r != eof && !unicode.IsSpace(r); r = l.Next() {
		buf = append(buf, r)
	}
	l.Backup()
	if len(buf) == 0 {
		l.Emit(Raw, "\\")
		return nil
	}
	l.Emit(Ident, string(buf))
	return nil
}

func lexLineComment(l *Lexer) stateFn {
	for r := l.Next(); r != eof && r != '\n'; r = l.Next() {
	}
	return nil
}

func lexBlockComment(l *Lexer) stateFn {
	for r := l.Next(); r != eof; r = l.Next() {
		if r == '*' {
			if l.Next() == '/' {
				return nil
			}
			l.Backup()
		}
	}
	l.Emit(Invalid, "unterminated comment")
	return lexEOF
}

// lexEOF places the lexer in End-Of-File state.
// Once in this state, the lexer will only emit EOF.
func lexEOF(l *Lexer) stateFn {
	l.start = l.pos
	l.Emit(EOF, "")
	return lexEOF
}
