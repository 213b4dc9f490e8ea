package lex

import "github.com/relex/jsondom/internal/kinds"

// Kind is a lexical token category (spec §4.2).
type Kind int

const (
	EOF Kind = iota
	LBrace
	RBrace
	LBracket
	RBracket
	Colon
	Comma
	String
	Number
	True
	False
	Null
	NaN
	Infinity
	NegInfinity
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case LBrace:
		return "opening brace '{'"
	case RBrace:
		return "closing brace '}'"
	case LBracket:
		return "opening bracket '['"
	case RBracket:
		return "closing bracket ']'"
	case Colon:
		return "colon ':'"
	case Comma:
		return "comma ','"
	case String:
		return "string"
	case Number:
		return "number"
	case True:
		return "'true'"
	case False:
		return "'false'"
	case Null:
		return "'null'"
	case NaN:
		return "'NaN'"
	case Infinity:
		return "'Infinity'"
	case NegInfinity:
		return "'-Infinity'"
	default:
		return "unknown token"
	}
}

// Position is a byte offset plus its 1-based line/column (spec §3).
type Position struct {
	Offset int
	Line   int
	Col    int
}

// NumberViews holds the up-to-three numeric representations a number
// lexeme can populate (spec §3 "number").
type NumberViews struct {
	HasI64 bool
	I64    int64
	HasU64 bool
	U64    uint64
	HasF64 bool
	F64    float64
}

// Token is one lexical unit, carrying its start position and enough of the
// source to let the parser preserve exact lexemes and attempt in-situ
// aliasing (spec §4.2: "Each token carries the position of its first byte
// and its length in the source").
type Token struct {
	Kind Kind
	Pos  Position
	Len  int // byte length of the raw token text in the source

	// Populated for Kind == String.
	RawStart   int // offset of the byte just after the opening quote
	RawEnd     int // offset of the closing quote
	NoEscapes  bool
	StringBody []byte // decoded UTF-8 bytes

	// Populated for Kind == Number, NaN, Infinity, NegInfinity.
	Lexeme string
	Views  NumberViews
}

// Error is a lexical failure; the parser enriches it with expected/actual
// descriptors and a context snippet before returning it to the caller.
type Error struct {
	Kind kinds.ErrorKind
	Pos  Position
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
