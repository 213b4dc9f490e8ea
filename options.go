package jsondom

import "github.com/relex/jsondom/internal/lex"

// UTF8Mode selects the post-decode UTF-8 validation behavior spec §4.3
// describes (validate_utf8 turns this check on; the mode itself isn't
// separately enumerated in spec §6's option list, but §4.3's REJECT/
// REPLACE/VERBATIM distinction requires a knob to select between them).
type UTF8Mode = lex.UTF8Mode

const (
	UTF8Verbatim = lex.UTF8Verbatim
	UTF8Reject   = lex.UTF8Reject
	UTF8Replace  = lex.UTF8Replace
)

// DupKeyPolicy selects how the parser resolves a repeated object key (spec
// §4.4 "Duplicate-key policies").
type DupKeyPolicy int

const (
	DupKeyError DupKeyPolicy = iota
	DupKeyFirstWins
	DupKeyLastWins
	DupKeyCollect
)

// Default resource limits (spec §6).
const (
	DefaultMaxDepth           = 256
	DefaultMaxStringBytes     = 16 * 1024 * 1024
	DefaultMaxContainerElems  = 1_000_000
	DefaultMaxTotalBytes      = 64 * 1024 * 1024
	DefaultIndentSpaces       = 2
	DefaultNewline            = "\n"
	maxStreamWriterStackDepth = 1_000_000
)

// ParseOptions configures the lexer and parser (spec §6 "Parse options").
// A max_* field of 0 means "library default" (resolved by resolveLimits),
// but the zero value leaves off the options that default to on (BOM
// skipping, UTF-8 validation, lexeme preservation and the number views);
// use DefaultParseOptions to get a ready-to-use value.
type ParseOptions struct {
	AllowComments          bool
	AllowTrailingCommas    bool
	AllowNonfiniteNumbers  bool
	AllowSingleQuotes      bool
	AllowUnescapedControls bool
	AllowLeadingBOM        bool
	ValidateUTF8           bool
	UTF8Mode               UTF8Mode
	NormalizeUnicode       bool // reserved; no effect
	DupKeys                DupKeyPolicy

	MaxDepth           int
	MaxStringBytes     int
	MaxContainerElems  int
	MaxTotalBytes      int

	PreserveNumberLexeme bool
	ParseInt64           bool
	ParseUint64          bool
	ParseDouble          bool

	InSituMode bool
}

// DefaultParseOptions returns a fresh ParseOptions with spec §6's defaults.
// Every call returns an independent struct (spec §9: "Global state: there
// is none. All defaults are functions returning fresh option structs.").
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		AllowLeadingBOM:      true,
		ValidateUTF8:         true,
		UTF8Mode:             UTF8Reject,
		DupKeys:              DupKeyError,
		PreserveNumberLexeme: true,
		ParseInt64:           true,
		ParseUint64:          true,
		ParseDouble:          true,
	}
}

func (o ParseOptions) resolveLimits() (maxDepth, maxString, maxContainer, maxTotal int) {
	maxDepth = o.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}
	maxString = o.MaxStringBytes
	if maxString == 0 {
		maxString = DefaultMaxStringBytes
	}
	maxContainer = o.MaxContainerElems
	if maxContainer == 0 {
		maxContainer = DefaultMaxContainerElems
	}
	maxTotal = o.MaxTotalBytes
	if maxTotal == 0 {
		maxTotal = DefaultMaxTotalBytes
	}
	return
}

// WriteOptions configures the DOM and streaming writers (spec §6 "Write
// options").
type WriteOptions struct {
	Pretty       bool
	IndentSpaces int
	Newline      string

	EscapeSolidus      bool
	EscapeUnicode      bool
	EscapeAllNonASCII  bool

	SortObjectKeys   bool
	CanonicalNumbers bool
	CanonicalStrings bool

	AllowNonfiniteNumbers bool
}

// DefaultWriteOptions returns a fresh WriteOptions with spec §6's defaults.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		IndentSpaces: DefaultIndentSpaces,
		Newline:      DefaultNewline,
	}
}

func (o WriteOptions) indent() int {
	if o.IndentSpaces == 0 {
		return DefaultIndentSpaces
	}
	return o.IndentSpaces
}

func (o WriteOptions) newline() string {
	if o.Newline == "" {
		return DefaultNewline
	}
	return o.Newline
}
