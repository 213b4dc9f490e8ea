package lex

import (
	"github.com/relex/jsondom/internal/kinds"
)

// Options controls the lexer's RFC 8259 superset extensions (spec §6).
type Options struct {
	AllowComments          bool
	AllowSingleQuotes      bool
	AllowNonfiniteNumbers  bool
	AllowUnescapedControls bool
	AllowLeadingBOM        bool
	ValidateUTF8           bool
	UTF8Mode               UTF8Mode
}

// Lexer tokenizes a borrowed byte buffer (spec §4.2). It never copies the
// input; Token.StringBody and Token.Lexeme are the only per-token copies it
// makes.
type Lexer struct {
	buf []byte
	off int
	pos Position
	opt Options
}

// New returns a Lexer over buf, skipping a leading UTF-8 BOM when
// opt.AllowLeadingBOM is set and one is present (spec §4.2 construction).
func New(buf []byte, opt Options) *Lexer {
	l := &Lexer{
		buf: buf,
		pos: Position{Offset: 0, Line: 1, Col: 1},
		opt: opt,
	}
	if opt.AllowLeadingBOM && len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		l.off = 3
		l.pos = Position{Offset: 3, Line: 1, Col: 4}
	}
	return l
}

// Offset returns the lexer's current byte offset, used by the parser to
// track total bytes consumed.
func (l *Lexer) Offset() int {
	return l.off
}

func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		c := l.buf[l.off+i]
		if c == '\n' {
			l.pos.Line++
			l.pos.Col = 1
		} else {
			l.pos.Col++
		}
	}
	l.off += n
	l.pos.Offset = l.off
}

func (l *Lexer) badToken(msg string) *Error {
	return &Error{Kind: kinds.EBadToken, Pos: l.pos, Msg: msg}
}

// skipWhitespaceAndComments implements spec §4.2 steps 1-2: whitespace is
// skipped unconditionally; `//` and `/* */` comments are skipped only when
// AllowComments is set, and after any comment we rewind to whitespace
// skipping again.
func (l *Lexer) skipWhitespaceAndComments() *Error {
	for {
		skippedWS := false
		for l.off < len(l.buf) {
			switch l.buf[l.off] {
			case ' ', '\t', '\r', '\n':
				l.advance(1)
				skippedWS = true
			default:
				goto doneWS
			}
		}
	doneWS:
		_ = skippedWS

		if !l.opt.AllowComments || l.off >= len(l.buf) || l.buf[l.off] != '/' {
			return nil
		}
		if l.off+1 >= len(l.buf) {
			return nil
		}

		switch l.buf[l.off+1] {
		case '/':
			l.advance(2)
			for l.off < len(l.buf) && l.buf[l.off] != '\n' {
				l.advance(1)
			}
			// leave the terminating \n, if any, for the whitespace loop
		case '*':
			l.advance(2)
			closed := false
			for l.off+1 < len(l.buf) {
				if l.buf[l.off] == '*' && l.buf[l.off+1] == '/' {
					l.advance(2)
					closed = true
					break
				}
				l.advance(1)
			}
			if !closed {
				return &Error{Kind: kinds.EBadToken, Pos: l.pos, Msg: "unterminated block comment"}
			}
		default:
			return nil
		}
	}
}

// NextToken extracts the next token, per the dispatch table in spec §4.2.
func (l *Lexer) NextToken() (Token, *Error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	start := l.pos
	if l.off >= len(l.buf) {
		return Token{Kind: EOF, Pos: start}, nil
	}

	c := l.buf[l.off]

	switch c {
	case '{':
		l.advance(1)
		return Token{Kind: LBrace, Pos: start, Len: 1}, nil
	case '}':
		l.advance(1)
		return Token{Kind: RBrace, Pos: start, Len: 1}, nil
	case '[':
		l.advance(1)
		return Token{Kind: LBracket, Pos: start, Len: 1}, nil
	case ']':
		l.advance(1)
		return Token{Kind: RBracket, Pos: start, Len: 1}, nil
	case ':':
		l.advance(1)
		return Token{Kind: Colon, Pos: start, Len: 1}, nil
	case ',':
		l.advance(1)
		return Token{Kind: Comma, Pos: start, Len: 1}, nil
	case '"':
		return l.lexString(start, '"')
	}

	if c == '\'' && l.opt.AllowSingleQuotes {
		return l.lexString(start, '\'')
	}

	if c == '-' && l.matchesAt(l.off+1, "Infinity") {
		if !l.opt.AllowNonfiniteNumbers {
			return Token{}, &Error{Kind: kinds.ENonfinite, Pos: l.pos, Msg: "non-finite number not allowed"}
		}
		l.advance(1 + len("Infinity"))
		return Token{Kind: NegInfinity, Pos: start, Len: 9, Lexeme: "-Infinity", Views: NonfiniteViews(NegInfinity)}, nil
	}

	if c == '-' || (c >= '0' && c <= '9') {
		return l.lexNumber(start)
	}

	if isIdentStart(c) {
		return l.lexKeyword(start)
	}

	return Token{}, l.badToken("unexpected character")
}

func (l *Lexer) matchesAt(off int, s string) bool {
	if off+len(s) > len(l.buf) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if l.buf[off+i] != s[i] {
			return false
		}
	}
	return true
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func (l *Lexer) lexString(start Position, quote byte) (Token, *Error) {
	l.advance(1) // opening quote
	rawStart := l.off

	for {
		if l.off >= len(l.buf) {
			return Token{}, &Error{Kind: kinds.EBadToken, Pos: l.pos, Msg: "unterminated string"}
		}
		c := l.buf[l.off]
		if c == quote {
			break
		}
		if c == '\\' {
			l.advance(1)
			if l.off >= len(l.buf) {
				return Token{}, &Error{Kind: kinds.EBadEscape, Pos: l.pos, Msg: "unterminated escape sequence"}
			}
			l.advance(1)
			continue
		}
		l.advance(1)
	}

	rawEnd := l.off
	l.advance(1) // closing quote

	decoded, noEscapes, decErr := DecodeString(l.buf[rawStart:rawEnd], quote, DecodeOptions{
		AllowUnescapedControls: l.opt.AllowUnescapedControls,
		ValidateUTF8:           l.opt.ValidateUTF8,
		UTF8Mode:               l.opt.UTF8Mode,
	})
	if decErr != nil {
		decErr.Pos = start
		return Token{}, decErr
	}

	return Token{
		Kind:       String,
		Pos:        start,
		Len:        l.off - start.Offset,
		RawStart:   rawStart,
		RawEnd:     rawEnd,
		NoEscapes:  noEscapes,
		StringBody: decoded,
	}, nil
}

func (l *Lexer) lexNumber(start Position) (Token, *Error) {
	end, scanErr := ScanNumber(l.buf, l.off)
	if scanErr != nil {
		scanErr.Pos = l.pos
		return Token{}, scanErr
	}
	lexeme := string(l.buf[l.off:end])
	l.advance(end - l.off)

	return Token{
		Kind:   Number,
		Pos:    start,
		Len:    len(lexeme),
		Lexeme: lexeme,
		Views:  ParseNumber(lexeme),
	}, nil
}

func (l *Lexer) lexKeyword(start Position) (Token, *Error) {
	switch {
	case l.matchesAt(l.off, "true"):
		l.advance(4)
		return Token{Kind: True, Pos: start, Len: 4}, nil
	case l.matchesAt(l.off, "false"):
		l.advance(5)
		return Token{Kind: False, Pos: start, Len: 5}, nil
	case l.matchesAt(l.off, "null"):
		l.advance(4)
		return Token{Kind: Null, Pos: start, Len: 4}, nil
	}

	nonfinite := l.matchesAt(l.off, "NaN") || l.matchesAt(l.off, "Infinity")
	if nonfinite && !l.opt.AllowNonfiniteNumbers {
		return Token{}, &Error{Kind: kinds.ENonfinite, Pos: l.pos, Msg: "non-finite number not allowed"}
	}
	if l.opt.AllowNonfiniteNumbers {
		switch {
		case l.matchesAt(l.off, "NaN"):
			l.advance(3)
			return Token{Kind: NaN, Pos: start, Len: 3, Lexeme: "NaN", Views: NonfiniteViews(NaN)}, nil
		case l.matchesAt(l.off, "Infinity"):
			l.advance(8)
			return Token{Kind: Infinity, Pos: start, Len: 8, Lexeme: "Infinity", Views: NonfiniteViews(Infinity)}, nil
		}
	}

	return Token{}, l.badToken("unknown identifier")
}
