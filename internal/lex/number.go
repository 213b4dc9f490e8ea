package lex

import (
	"math"
	"strconv"

	"github.com/relex/jsondom/internal/kinds"
)

// ScanNumber validates the RFC 8259 number grammar starting at buf[start]
// (spec §4.3) and returns the lexeme's end offset (exclusive). It does not
// itself compute numeric views; call ParseNumber on the returned lexeme for
// that.
func ScanNumber(buf []byte, start int) (end int, err *Error) {
	i := start
	n := len(buf)

	if i < n && buf[i] == '-' {
		i++
	}

	if i >= n || buf[i] < '0' || buf[i] > '9' {
		return i, &Error{Kind: kinds.EBadNumber, Msg: "expected digit after sign"}
	}
	if buf[i] == '0' {
		i++
	} else {
		for i < n && buf[i] >= '0' && buf[i] <= '9' {
			i++
		}
	}

	if i < n && buf[i] == '.' {
		j := i + 1
		if j >= n || buf[j] < '0' || buf[j] > '9' {
			return i, &Error{Kind: kinds.EBadNumber, Msg: "expected digit after decimal point"}
		}
		i = j
		for i < n && buf[i] >= '0' && buf[i] <= '9' {
			i++
		}
	}

	if i < n && (buf[i] == 'e' || buf[i] == 'E') {
		j := i + 1
		if j < n && (buf[j] == '+' || buf[j] == '-') {
			j++
		}
		if j >= n || buf[j] < '0' || buf[j] > '9' {
			return i, &Error{Kind: kinds.EBadNumber, Msg: "expected digit in exponent"}
		}
		i = j
		for i < n && buf[i] >= '0' && buf[i] <= '9' {
			i++
		}
	}

	return i, nil
}

// ParseNumber fills in the numeric views that apply to lexeme, per spec
// §4.3: a signed/unsigned integer view when the lexeme is an integer in
// range, and a double view via strict-decimal conversion whenever
// strconv.ParseFloat accepts the lexeme without a range error.
func ParseNumber(lexeme string) NumberViews {
	var v NumberViews

	if isIntegerLexeme(lexeme) {
		if i64, err := strconv.ParseInt(lexeme, 10, 64); err == nil {
			v.HasI64 = true
			v.I64 = i64
		}
		if lexeme[0] != '-' {
			if u64, err := strconv.ParseUint(lexeme, 10, 64); err == nil {
				v.HasU64 = true
				v.U64 = u64
			}
		}
	}

	if f64, err := strconv.ParseFloat(lexeme, 64); err == nil {
		v.HasF64 = true
		v.F64 = f64
	}

	return v
}

func isIntegerLexeme(lexeme string) bool {
	for i := 0; i < len(lexeme); i++ {
		c := lexeme[i]
		if c == '.' || c == 'e' || c == 'E' {
			return false
		}
	}
	return true
}

// NonfiniteViews returns the NumberViews for one of the three non-finite
// spellings (spec §4.3: "NaN, Infinity, and -Infinity produce number values
// whose double view holds the corresponding IEEE-754 special").
func NonfiniteViews(kind Kind) NumberViews {
	switch kind {
	case NaN:
		return NumberViews{HasF64: true, F64: math.NaN()}
	case Infinity:
		return NumberViews{HasF64: true, F64: math.Inf(1)}
	case NegInfinity:
		return NumberViews{HasF64: true, F64: math.Inf(-1)}
	default:
		return NumberViews{}
	}
}
