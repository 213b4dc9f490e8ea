package jsondom

import (
	"io"
	"unsafe"

	"github.com/relex/jsondom/internal/kinds"
	"github.com/relex/jsondom/internal/lex"
)

// Parse parses a complete JSON document from data (spec §4.4). A single
// root value is expected; any non-whitespace, non-comment bytes left after
// it produce E_TRAILING_GARBAGE. On failure the partially built tree (if
// any) is released before returning, so callers never leak on error.
func Parse(data []byte, opt ParseOptions) (*Value, error) {
	v, consumed, err := parseOne(data, opt)
	if err != nil {
		return nil, err
	}

	lx := lex.New(data[consumed:], lexOptions(opt))
	tok, lerr := lx.NextToken()
	if lerr != nil {
		v.Free()
		return nil, wrapLexErr(data, lerr)
	}
	if tok.Kind != lex.EOF {
		v.Free()
		return nil, newError(data, kinds.ETrailingGarbage, consumed+tok.Pos.Offset, "extra bytes after root value", "", "")
	}

	return v, nil
}

// ParseString is Parse for a Go string.
func ParseString(s string, opt ParseOptions) (*Value, error) {
	return Parse([]byte(s), opt)
}

// ParseReader reads r to completion and parses the result.
func ParseReader(r io.Reader, opt ParseOptions) (*Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data, opt)
}

// ParseMultiple parses a sequence of concatenated JSON documents (spec §6:
// "A parse-multiple variant additionally reports bytes consumed so the
// caller may iterate concatenated documents"). consumed[i] is the absolute
// offset into data immediately after document i, so data[consumed[i-1]:]
// is where document i started. Whitespace/comments between documents are
// skipped the same way they are inside one.
func ParseMultiple(data []byte, opt ParseOptions) (values []*Value, consumed []int, err error) {
	offset := 0
	for {
		lx := lex.New(data[offset:], lexOptions(opt))
		tok, lerr := lx.NextToken()
		if lerr != nil {
			freeAll(values)
			return nil, nil, wrapLexErr(data, lerr)
		}
		if tok.Kind == lex.EOF {
			return values, consumed, nil
		}

		v, n, perr := parseOne(data[offset:], opt)
		if perr != nil {
			freeAll(values)
			return nil, nil, perr
		}
		offset += n
		values = append(values, v)
		consumed = append(consumed, offset)
	}
}

func freeAll(values []*Value) {
	for _, v := range values {
		v.Free()
	}
}

func lexOptions(opt ParseOptions) lex.Options {
	return lex.Options{
		AllowComments:          opt.AllowComments,
		AllowSingleQuotes:      opt.AllowSingleQuotes,
		AllowNonfiniteNumbers:  opt.AllowNonfiniteNumbers,
		AllowUnescapedControls: opt.AllowUnescapedControls,
		AllowLeadingBOM:        opt.AllowLeadingBOM,
		ValidateUTF8:           opt.ValidateUTF8,
		UTF8Mode:               opt.UTF8Mode,
	}
}

// parser holds the recursive-descent parsing state (spec §4.4).
type parser struct {
	lx   *lex.Lexer
	buf  []byte // the full original input, for snippet/in-situ purposes
	opt  ParseOptions
	ctx  *Context
	depth int

	maxDepth, maxString, maxContainer, maxTotal int
}

// parseOne parses one root value from the start of data and returns it
// along with the number of bytes consumed (for ParseMultiple).
func parseOne(data []byte, opt ParseOptions) (*Value, int, error) {
	p := &parser{
		lx:  lex.New(data, lexOptions(opt)),
		buf: data,
		opt: opt,
		ctx: newContext(),
	}
	p.maxDepth, p.maxString, p.maxContainer, p.maxTotal = opt.resolveLimits()

	tok, err := p.nextToken()
	if err != nil {
		p.ctx.close()
		return nil, 0, err
	}
	if tok.Kind == lex.EOF {
		p.ctx.close()
		return nil, 0, newError(data, kinds.EBadToken, tok.Pos.Offset, "empty input", "a value", lex.EOF.String())
	}

	// Spec §4.4 "In-situ mode": the input-buffer reference is attached to
	// the root context only after the root value is constructed, so the
	// root's own leaves never borrow — only descendants created after this
	// point can. A scalar root (string/number) IS its own leaf and has no
	// descendants, so no binding happens for it; a container root holds no
	// bytes itself, so its descendants may bind immediately.
	if opt.InSituMode && (tok.Kind == lex.LBracket || tok.Kind == lex.LBrace) {
		p.ctx.bindInput(data)
	}

	v, err := p.parseValueToken(tok)
	if err != nil {
		p.ctx.close()
		return nil, 0, err
	}

	return v, p.lx.Offset(), nil
}

func (p *parser) errorAt(kind kinds.ErrorKind, offset int, message, expected, actual string) error {
	return newError(p.buf, kind, offset, message, expected, actual)
}

// nextToken fetches the next token and enforces max_total_bytes (spec §8
// invariant #4) against the lexer's running consumed-bytes offset, so a
// document that would otherwise parse cleanly is rejected as soon as it
// crosses the budget rather than only once fully parsed.
func (p *parser) nextToken() (lex.Token, error) {
	tok, lerr := p.lx.NextToken()
	if lerr != nil {
		return lex.Token{}, wrapLexErr(p.buf, lerr)
	}
	if p.lx.Offset() > p.maxTotal {
		return lex.Token{}, p.errorAt(kinds.ELimit, tok.Pos.Offset, "input exceeds max_total_bytes", "", "")
	}
	return tok, nil
}

func wrapLexErr(buf []byte, lerr *lex.Error) error {
	return newError(buf, lerr.Kind, lerr.Pos.Offset, lerr.Msg, "", "")
}

func newError(buf []byte, kind kinds.ErrorKind, offset int, message, expected, actual string) *Error {
	line, col := lineCol(buf, offset)
	snippet, caret := snippetWindow(buf, offset)
	return &Error{
		Kind:     kind,
		Message:  message,
		Offset:   offset,
		Line:     line,
		Col:      col,
		Expected: expected,
		Actual:   actual,
		Snippet:  snippet,
		Caret:    caret,
	}
}

func lineCol(buf []byte, offset int) (line, col int) {
	line, col = 1, 1
	if offset > len(buf) {
		offset = len(buf)
	}
	for i := 0; i < offset; i++ {
		if buf[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return
}

// parseValueToken dispatches on an already-fetched token, per spec §4.4's
// "value" production. Reusing the already-fetched token (rather than
// re-fetching) is what lets array/object element parsing avoid double
// token consumption.
func (p *parser) parseValueToken(tok lex.Token) (*Value, error) {
	switch tok.Kind {
	case lex.Null:
		return &Value{ctx: p.ctx, kind: KindNull}, nil
	case lex.True:
		return &Value{ctx: p.ctx, kind: KindBool, b: true}, nil
	case lex.False:
		return &Value{ctx: p.ctx, kind: KindBool, b: false}, nil
	case lex.String:
		return p.buildString(tok)
	case lex.Number:
		return p.buildNumber(tok)
	case lex.NaN, lex.Infinity, lex.NegInfinity:
		if !p.opt.AllowNonfiniteNumbers {
			return nil, p.errorAt(kinds.ENonfinite, tok.Pos.Offset, "non-finite number not allowed", "", tok.Kind.String())
		}
		return p.buildNonfinite(tok)
	case lex.LBracket:
		return p.parseArray(tok.Pos)
	case lex.LBrace:
		return p.parseObject(tok.Pos)
	default:
		return nil, p.errorAt(kinds.EBadToken, tok.Pos.Offset, "unexpected token", "a value", tok.Kind.String())
	}
}

func (p *parser) buildString(tok lex.Token) (*Value, error) {
	if len(tok.StringBody) > p.maxString {
		return nil, p.errorAt(kinds.ELimit, tok.Pos.Offset, "string exceeds max_string_bytes", "", "")
	}

	if p.ctx.inSitu && tok.NoEscapes && tok.RawEnd-tok.RawStart == len(tok.StringBody) {
		return &Value{ctx: p.ctx, kind: KindString, str: stringData{
			bytes:  borrowBytes(p.buf, tok.RawStart, tok.RawEnd),
			inSitu: true,
		}}, nil
	}

	body, err := p.ctx.arena.CopyBytes(tok.StringBody)
	if err != nil {
		return nil, p.errorAt(kinds.EOOM, tok.Pos.Offset, err.Error(), "", "")
	}
	return &Value{ctx: p.ctx, kind: KindString, str: stringData{bytes: body}}, nil
}

func (p *parser) buildNumber(tok lex.Token) (*Value, error) {
	n := numberData{}
	if p.opt.PreserveNumberLexeme {
		n.hasLexeme = true
		if p.ctx.inSitu {
			n.lexeme = borrowString(p.buf, tok.Pos.Offset, tok.Pos.Offset+tok.Len)
		} else {
			lexeme, err := p.ctx.arena.CopyString(tok.Lexeme)
			if err != nil {
				return nil, p.errorAt(kinds.EOOM, tok.Pos.Offset, err.Error(), "", "")
			}
			n.lexeme = lexeme
		}
	}
	if p.opt.ParseInt64 {
		n.hasI64, n.i64 = tok.Views.HasI64, tok.Views.I64
	}
	if p.opt.ParseUint64 {
		n.hasU64, n.u64 = tok.Views.HasU64, tok.Views.U64
	}
	if p.opt.ParseDouble {
		n.hasF64, n.f64 = tok.Views.HasF64, tok.Views.F64
	}
	return &Value{ctx: p.ctx, kind: KindNumber, num: n}, nil
}

func (p *parser) buildNonfinite(tok lex.Token) (*Value, error) {
	n := numberData{hasLexeme: true, lexeme: tok.Lexeme}
	if p.opt.ParseDouble {
		n.hasF64, n.f64 = tok.Views.HasF64, tok.Views.F64
	}
	return &Value{ctx: p.ctx, kind: KindNumber, num: n}, nil
}

func borrowBytes(buf []byte, start, end int) []byte {
	if start == end {
		return nil
	}
	return buf[start:end:end]
}

func borrowString(buf []byte, start, end int) string {
	if start == end {
		return ""
	}
	return unsafe.String(&buf[start], end-start)
}

func (p *parser) parseArray(openPos lex.Position) (*Value, error) {
	p.depth++
	if p.depth > p.maxDepth {
		p.depth--
		return nil, p.errorAt(kinds.EDepth, openPos.Offset, "array nesting exceeds max_depth", "", "")
	}
	defer func() { p.depth-- }()

	arrVal := &Value{ctx: p.ctx, kind: KindArray}

	tok, err := p.nextToken()
	if err != nil {
		return nil, err
	}
	if tok.Kind == lex.RBracket {
		return arrVal, nil
	}

	for {
		elem, err := p.parseValueToken(tok)
		if err != nil {
			return nil, err
		}
		if len(arrVal.arr) >= p.maxContainer {
			return nil, p.errorAt(kinds.ELimit, tok.Pos.Offset, "array exceeds max_container_elems", "", "")
		}
		arrVal.arr = append(arrVal.arr, elem)

		sep, err := p.nextToken()
		if err != nil {
			return nil, err
		}
		switch sep.Kind {
		case lex.RBracket:
			return arrVal, nil
		case lex.Comma:
			next, err := p.nextToken()
			if err != nil {
				return nil, err
			}
			if next.Kind == lex.RBracket {
				if !p.opt.AllowTrailingCommas {
					return nil, p.errorAt(kinds.EBadToken, next.Pos.Offset, "trailing comma not allowed", "a value", next.Kind.String())
				}
				return arrVal, nil
			}
			tok = next
		default:
			return nil, p.errorAt(kinds.EBadToken, sep.Pos.Offset, "expected comma or closing bracket", "comma ',' or closing bracket ']'", sep.Kind.String())
		}
	}
}

func (p *parser) parseObject(openPos lex.Position) (*Value, error) {
	p.depth++
	if p.depth > p.maxDepth {
		p.depth--
		return nil, p.errorAt(kinds.EDepth, openPos.Offset, "object nesting exceeds max_depth", "", "")
	}
	defer func() { p.depth-- }()

	objVal := &Value{ctx: p.ctx, kind: KindObject}

	tok, err := p.nextToken()
	if err != nil {
		return nil, err
	}
	if tok.Kind == lex.RBrace {
		return objVal, nil
	}

	for {
		if tok.Kind != lex.String {
			return nil, p.errorAt(kinds.EBadToken, tok.Pos.Offset, "expected object key", "string", tok.Kind.String())
		}
		keyTok := tok
		keyVal, err := p.buildString(keyTok)
		if err != nil {
			return nil, err
		}
		key, _ := keyVal.AsString()

		colon, err := p.nextToken()
		if err != nil {
			return nil, err
		}
		if colon.Kind != lex.Colon {
			return nil, p.errorAt(kinds.EBadToken, colon.Pos.Offset, "expected colon", "colon ':'", colon.Kind.String())
		}

		valTok, err := p.nextToken()
		if err != nil {
			return nil, err
		}
		val, err := p.parseValueToken(valTok)
		if err != nil {
			return nil, err
		}

		if err := p.applyDupKeyPolicy(objVal, key, val, keyTok.Pos.Offset); err != nil {
			return nil, err
		}

		sep, err := p.nextToken()
		if err != nil {
			return nil, err
		}
		switch sep.Kind {
		case lex.RBrace:
			return objVal, nil
		case lex.Comma:
			next, err := p.nextToken()
			if err != nil {
				return nil, err
			}
			if next.Kind == lex.RBrace {
				if !p.opt.AllowTrailingCommas {
					return nil, p.errorAt(kinds.EBadToken, next.Pos.Offset, "trailing comma not allowed", "a string key", next.Kind.String())
				}
				return objVal, nil
			}
			tok = next
		default:
			return nil, p.errorAt(kinds.EBadToken, sep.Pos.Offset, "expected comma or closing brace", "comma ',' or closing brace '}'", sep.Kind.String())
		}
	}
}

// applyDupKeyPolicy implements spec §4.4's four duplicate-key policies.
func (p *parser) applyDupKeyPolicy(objVal *Value, key string, val *Value, offset int) error {
	for i, pair := range objVal.obj {
		if pair.key != key {
			continue
		}
		switch p.opt.DupKeys {
		case DupKeyError:
			return p.errorAt(kinds.EDupKey, offset, "duplicate object key", "", "")
		case DupKeyFirstWins:
			// retain the first; val was already allocated in this arena
			// and is simply left unlinked, per spec §4.4.
			return nil
		case DupKeyLastWins:
			objVal.obj[i].val = val
			return nil
		case DupKeyCollect:
			if pair.val.Kind() == KindArray {
				pair.val.arr = append(pair.val.arr, val)
			} else {
				collected := &Value{ctx: p.ctx, kind: KindArray, arr: []*Value{pair.val, val}}
				objVal.obj[i].val = collected
			}
			return nil
		}
	}
	if len(objVal.obj) >= p.maxContainer {
		return p.errorAt(kinds.ELimit, offset, "object exceeds max_container_elems", "", "")
	}
	objVal.obj = append(objVal.obj, objPair{key: key, val: val})
	return nil
}
