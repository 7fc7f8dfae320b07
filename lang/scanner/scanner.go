// Package scanner tokenizes the surface syntax for lang/parser. It is
// adapted from the teacher's go/scanner-based ErrorList idiom, shrunk to the
// much smaller grammar the temporal assignment engine needs (spec §1:
// lexing is out of core scope, but a runnable program still needs one).
package scanner

import (
	"go/scanner"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mna/multiverse/lang/token"
)

type (
	// Error and ErrorList are the teacher's own choice of stdlib error
	// collection (go/scanner), reused rather than rolling a bespoke one.
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

// Value carries the literal payload of a token that has one (IDENT, INT,
// ATOM): the raw text, the resolved offset suffix of a variable reference,
// and the numeric/string value.
type Value struct {
	Pos token.Pos

	Ident string // IDENT

	Int int64 // INT

	Atom string // ATOM, already unescaped

	// HasOffset/Offset are filled when an IDENT is immediately
	// followed by a ':'-offset suffix (name:+n, name:-n, name:0).
	HasOffset bool
	Offset    int
}

// Scanner tokenizes one source file for the parser to consume.
type Scanner struct {
	file *token.File
	src  []byte
	err  func(pos token.Position, msg string)

	off  int  // byte offset of cur
	roff int  // byte offset just after cur
	cur  rune // current rune, or utf8.RuneError at EOF
	line int
	col  int
}

// Init prepares s to scan src, reporting file as the source name in errors
// and positions.
func (s *Scanner) Init(file *token.File, src []byte, errHandler func(token.Position, string)) {
	s.file = file
	s.src = src
	s.err = errHandler
	s.off = 0
	s.roff = 0
	s.line = 1
	s.col = 0
	s.next()
}

func (s *Scanner) next() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = utf8.RuneError
		return
	}
	s.off = s.roff
	r, w := utf8.DecodeRune(s.src[s.roff:])
	s.cur = r
	s.roff += w
	if s.cur == '\n' {
		s.line++
		s.col = 0
	} else {
		s.col++
	}
}

func (s *Scanner) pos() token.Pos {
	line, col := s.line, s.col
	if col == 0 {
		col = 1
	}
	return token.MakePos(line, col)
}

func (s *Scanner) error(pos token.Pos, msg string) {
	s.err(s.file.Position(pos), msg)
}

var commentMarkers = []string{"//", "--", "※"} // ※

func (s *Scanner) atEOF() bool { return s.off >= len(s.src) }

func (s *Scanner) skipSpaceAndComments() {
	for {
		for !s.atEOF() && unicode.IsSpace(s.cur) {
			s.next()
		}
		if s.atEOF() {
			return
		}
		isComment := false
		for _, m := range commentMarkers {
			if strings.HasPrefix(string(s.src[s.off:]), m) {
				isComment = true
				break
			}
		}
		if !isComment {
			return
		}
		for !s.atEOF() && s.cur != '\n' {
			s.next()
		}
	}
}

// Scan returns the next token, filling val with its literal payload when
// applicable.
func (s *Scanner) Scan(val *Value) token.Token {
	s.skipSpaceAndComments()
	startPos := s.pos()
	*val = Value{Pos: startPos}

	if s.atEOF() {
		return token.EOF
	}

	ch := s.cur
	switch {
	case isIdentStart(ch):
		return s.scanIdent(val, startPos)
	case unicode.IsDigit(ch):
		return s.scanInt(val, startPos)
	case ch == '"':
		return s.scanAtom(val, startPos)
	}

	s.next()
	switch ch {
	case '+':
		return token.PLUS
	case '-':
		return token.MINUS
	case '*':
		return token.STAR
	case '/':
		return token.SLASH
	case '%':
		return token.PERCENT
	case '.':
		return token.DOT
	case '#':
		return token.HASH
	case ',':
		return token.COMMA
	case ':':
		return token.COLON
	case '(':
		return token.LPAREN
	case ')':
		return token.RPAREN
	case '[':
		return token.LBRACK
	case ']':
		return token.RBRACK
	case ';':
		return token.SEMI
	case '=':
		if s.cur == '=' {
			s.next()
			return token.EQL
		}
		return token.EQ
	case '!':
		if s.cur == '=' {
			s.next()
			return token.NEQ
		}
		s.error(startPos, "illegal character '!', expected '!='")
		return token.ILLEGAL
	case '<':
		if s.cur == '=' {
			s.next()
			return token.LE
		}
		return token.LT
	case '>':
		if s.cur == '=' {
			s.next()
			return token.GE
		}
		return token.GT
	default:
		s.error(startPos, "illegal character "+strconv.QuoteRune(ch))
		return token.ILLEGAL
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (s *Scanner) scanIdent(val *Value, startPos token.Pos) token.Token {
	start := s.off
	for !s.atEOF() && isIdentCont(s.cur) {
		s.next()
	}
	word := string(s.src[start:s.off])

	if tok, ok := token.Keywords[word]; ok {
		return tok
	}

	val.Ident = word

	// Optional offset suffix: ':' followed by '+'/'-'digits, or a run of '0'.
	if !s.atEOF() && s.cur == ':' {
		save := *s
		s.next()
		switch {
		case s.cur == '+' || s.cur == '-':
			neg := s.cur == '-'
			s.next()
			digStart := s.off
			for !s.atEOF() && unicode.IsDigit(s.cur) {
				s.next()
			}
			if s.off == digStart {
				*s = save // no digits: ':' is not part of this reference
				break
			}
			n, _ := strconv.Atoi(string(s.src[digStart:s.off]))
			if neg {
				n = -n
			}
			val.HasOffset = true
			val.Offset = n
		case s.cur == '0':
			for !s.atEOF() && s.cur == '0' {
				s.next()
			}
			val.HasOffset = true
			val.Offset = 0
		default:
			*s = save
		}
	}

	return token.IDENT
}

func (s *Scanner) scanInt(val *Value, startPos token.Pos) token.Token {
	start := s.off
	for !s.atEOF() && unicode.IsDigit(s.cur) {
		s.next()
	}
	text := string(s.src[start:s.off])
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		s.error(startPos, "invalid integer literal "+strconv.Quote(text))
		return token.ILLEGAL
	}
	val.Int = n
	return token.INT
}

var escapes = map[rune]rune{
	'\\': '\\',
	'"':  '"',
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'e':  '\x1b',
}

func (s *Scanner) scanAtom(val *Value, startPos token.Pos) token.Token {
	s.next() // opening quote
	var b strings.Builder
	for {
		if s.atEOF() {
			s.error(startPos, "unterminated atom literal")
			return token.ILLEGAL
		}
		if s.cur == '"' {
			s.next()
			break
		}
		if s.cur == '\\' {
			s.next()
			if s.atEOF() {
				s.error(startPos, "unterminated atom literal")
				return token.ILLEGAL
			}
			repl, ok := escapes[s.cur]
			if !ok {
				s.error(startPos, "invalid escape sequence in atom literal")
				return token.ILLEGAL
			}
			b.WriteRune(repl)
			s.next()
			continue
		}
		b.WriteRune(s.cur)
		s.next()
	}
	val.Atom = b.String()
	return token.ATOM
}
