package lex

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/relex/jsondom/internal/kinds"
)

// UTF8Mode selects the post-decode validation behavior (spec §4.3).
type UTF8Mode int

const (
	UTF8Verbatim UTF8Mode = iota
	UTF8Reject
	UTF8Replace
)

// DecodeOptions controls string-body decoding (spec §6 parse options).
type DecodeOptions struct {
	AllowUnescapedControls bool
	ValidateUTF8           bool
	UTF8Mode               UTF8Mode
}

// DecodeString decodes the bytes between quotes (body does not include the
// surrounding quote characters). It returns the decoded UTF-8 bytes and
// whether the body contained no escapes at all — the in-situ eligibility
// signal spec §4.4 requires ("the decoded length must equal the original
// byte-range length").
func DecodeString(body []byte, quote byte, opts DecodeOptions) (decoded []byte, noEscapes bool, err *Error) {
	noEscapes = true
	out := make([]byte, 0, len(body))

	i := 0
	for i < len(body) {
		c := body[i]

		if c == quote {
			return nil, false, &Error{Kind: kinds.EBadToken, Msg: "unexpected quote inside string body"}
		}

		if c == '\\' {
			noEscapes = false
			i++
			if i >= len(body) {
				return nil, false, &Error{Kind: kinds.EBadEscape, Msg: "unterminated escape sequence"}
			}
			decodedRune, consumed, decErr := decodeEscape(body[i:])
			if decErr != nil {
				return nil, false, decErr
			}
			if decodedRune >= 0 {
				var buf [4]byte
				n := utf8.EncodeRune(buf[:], decodedRune)
				out = append(out, buf[:n]...)
			} else {
				// A raw-byte escape such as \/ -> '/'.
				out = append(out, body[i])
			}
			i += consumed
			continue
		}

		if c < 0x20 {
			if !opts.AllowUnescapedControls {
				return nil, false, &Error{Kind: kinds.EBadToken, Msg: "unescaped control character in string"}
			}
		}

		out = append(out, c)
		i++
	}

	if opts.ValidateUTF8 {
		switch opts.UTF8Mode {
		case UTF8Reject:
			if !utf8.Valid(out) {
				return nil, false, &Error{Kind: kinds.EBadUnicode, Msg: "invalid UTF-8 in decoded string"}
			}
		case UTF8Replace:
			// Unlike REJECT, each ill-formed sequence is replaced with
			// U+FFFD instead of failing (see SPEC_FULL.md §4).
			out = []byte(replaceInvalidUTF8(out))
		case UTF8Verbatim:
			// accepts anything
		}
	}

	return out, noEscapes, nil
}

// decodeEscape decodes the escape sequence starting right after the
// backslash. It returns the decoded rune (or -1 for a raw-byte escape like
// \/, handled by the caller copying the literal byte) and how many bytes of
// input (starting at the given slice) were consumed.
func decodeEscape(rest []byte) (r rune, consumed int, err *Error) {
	if len(rest) == 0 {
		return 0, 0, &Error{Kind: kinds.EBadEscape, Msg: "unterminated escape sequence"}
	}

	switch rest[0] {
	case '"':
		return '"', 1, nil
	case '\\':
		return '\\', 1, nil
	case '/':
		return -1, 1, nil
	case 'b':
		return '\b', 1, nil
	case 'f':
		return '\f', 1, nil
	case 'n':
		return '\n', 1, nil
	case 'r':
		return '\r', 1, nil
	case 't':
		return '\t', 1, nil
	case 'u':
		return decodeUnicodeEscape(rest)
	default:
		return 0, 0, &Error{Kind: kinds.EBadEscape, Msg: "unknown escape character"}
	}
}

func decodeUnicodeEscape(rest []byte) (r rune, consumed int, err *Error) {
	// rest[0] == 'u'
	if len(rest) < 5 {
		return 0, 0, &Error{Kind: kinds.EBadUnicode, Msg: "truncated \\u escape"}
	}
	hi, ok := parseHex4(rest[1:5])
	if !ok {
		return 0, 0, &Error{Kind: kinds.EBadUnicode, Msg: "invalid hex digits in \\u escape"}
	}

	if hi < 0xD800 || hi > 0xDFFF {
		return rune(hi), 5, nil
	}
	if hi > 0xDBFF {
		return 0, 0, &Error{Kind: kinds.EBadUnicode, Msg: "lone low surrogate"}
	}

	// High surrogate: must be immediately followed by \uDC00-\uDFFF.
	if len(rest) < 11 || rest[5] != '\\' || rest[6] != 'u' {
		return 0, 0, &Error{Kind: kinds.EBadUnicode, Msg: "high surrogate not followed by low surrogate"}
	}
	lo, ok := parseHex4(rest[7:11])
	if !ok {
		return 0, 0, &Error{Kind: kinds.EBadUnicode, Msg: "invalid hex digits in \\u escape"}
	}
	if lo < 0xDC00 || lo > 0xDFFF {
		return 0, 0, &Error{Kind: kinds.EBadUnicode, Msg: "high surrogate not followed by low surrogate"}
	}

	combined := utf16.DecodeRune(rune(hi), rune(lo))
	if combined == utf8.RuneError {
		return 0, 0, &Error{Kind: kinds.EBadUnicode, Msg: "invalid surrogate pair"}
	}
	return combined, 11, nil
}

func parseHex4(b []byte) (uint32, bool) {
	var v uint32
	for _, c := range b {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint32(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= uint32(c-'A') + 10
		default:
			return 0, false
		}
	}
	return v, true
}

// replaceInvalidUTF8 rewrites ill-formed sequences with U+FFFD rune by
// rune, the straightforward "true replacement" resolution of spec §9's
// open question (see SPEC_FULL.md §4).
func replaceInvalidUTF8(b []byte) string {
	out := make([]rune, 0, len(b))
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		out = append(out, r)
		i += size
	}
	return string(out)
}
