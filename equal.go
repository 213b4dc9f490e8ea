package jsondom

// Equal implements the structural deep-equality relation from spec §4.5
// ("Deep equality") and §8 ("Deep-equal is an equivalence relation"):
// nulls equal; booleans by value; strings by byte sequence; numbers by the
// best available shared representation; arrays element-wise in order;
// objects as unordered multisets of (key, value) pairs where duplicate
// keys must match with the same multiplicity.
func Equal(a, b *Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return string(a.str.bytes) == string(b.str.bytes)
	case KindNumber:
		return numbersEqual(a.num, b.num)
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return objectsEqual(a.obj, b.obj)
	default:
		return false
	}
}

// numbersEqual compares using the first representation both sides share,
// in the priority order spec §4.5 names: i64, then u64, then double
// (exact equality), then the raw lexeme string.
func numbersEqual(a, b numberData) bool {
	if a.hasI64 && b.hasI64 {
		return a.i64 == b.i64
	}
	if a.hasU64 && b.hasU64 {
		return a.u64 == b.u64
	}
	if a.hasF64 && b.hasF64 {
		return a.f64 == b.f64
	}
	if a.hasLexeme && b.hasLexeme {
		return a.lexeme == b.lexeme
	}
	return false
}

func objectsEqual(a, b []objPair) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, pa := range a {
		found := false
		for j, pb := range b {
			if used[j] || pb.key != pa.key {
				continue
			}
			if Equal(pa.val, pb.val) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
