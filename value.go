package jsondom

import (
	"fmt"
	"strconv"

	"github.com/relex/jsondom/internal/arena"
)

// Kind is the tag of Value's six-variant union (spec §3 "Value").
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{"null", "bool", "number", "string", "array", "object"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

type numberData struct {
	lexeme    string
	hasLexeme bool
	hasI64    bool
	i64       int64
	hasU64    bool
	u64       uint64
	hasF64    bool
	f64       float64
}

type stringData struct {
	bytes  []byte
	inSitu bool
}

type objPair struct {
	key    string
	inSitu bool
	val    *Value
}

// Value is a node in a JSON document tree (spec §3). Every Value belongs
// to exactly one Context; see context.go for the adoption discipline that
// governs what happens when a Value constructed in one Context is grafted
// into a tree rooted in another.
type Value struct {
	ctx  *Context
	kind Kind

	b   bool
	num numberData
	str stringData
	arr []*Value
	obj []objPair
}

// Kind reports the value's type tag.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

func typeError(v *Value, want string) error {
	return fmt.Errorf("%w: value is %s, not %s", ErrInvalid, v.Kind(), want)
}

// ---- constructors (each creates its own Context, spec §3 lifecycle (b)) ----

// NewNull returns a standalone null value.
func NewNull() *Value {
	return &Value{ctx: newContext(), kind: KindNull}
}

// NewBool returns a standalone boolean value.
func NewBool(b bool) *Value {
	return &Value{ctx: newContext(), kind: KindBool, b: b}
}

// NewString returns a standalone string value, copying s into its own
// arena.
func NewString(s string) *Value {
	ctx := newContext()
	body, _ := ctx.arena.CopyBytes([]byte(s))
	return &Value{ctx: ctx, kind: KindString, str: stringData{bytes: body}}
}

// NewInt64 returns a standalone signed-integer number value.
func NewInt64(i int64) *Value {
	ctx := newContext()
	lexeme := strconv.FormatInt(i, 10)
	return &Value{ctx: ctx, kind: KindNumber, num: numberData{
		lexeme: lexeme, hasLexeme: true,
		hasI64: true, i64: i,
		hasU64: i >= 0, u64: uint64(i),
		hasF64: true, f64: float64(i),
	}}
}

// NewUint64 returns a standalone unsigned-integer number value.
func NewUint64(u uint64) *Value {
	ctx := newContext()
	lexeme := strconv.FormatUint(u, 10)
	v := &Value{ctx: ctx, kind: KindNumber, num: numberData{
		lexeme: lexeme, hasLexeme: true,
		hasU64: true, u64: u,
		hasF64: true, f64: float64(u),
	}}
	if u <= 1<<63-1 {
		v.num.hasI64 = true
		v.num.i64 = int64(u)
	}
	return v
}

// NewFloat64 returns a standalone double number value. Non-finite doubles
// are accepted here; no lexeme is stored, so writers render the value from
// its double view. Callers parsing untrusted text go through Parse, which
// preserves the original source spelling instead.
func NewFloat64(f float64) *Value {
	ctx := newContext()
	return &Value{ctx: ctx, kind: KindNumber, num: numberData{
		hasF64: true, f64: f,
	}}
}

// NewArray returns a standalone, empty array value.
func NewArray() *Value {
	return &Value{ctx: newContext(), kind: KindArray}
}

// NewObject returns a standalone, empty object value.
func NewObject() *Value {
	return &Value{ctx: newContext(), kind: KindObject}
}

// ---- scalar accessors (spec §3; mirrors the teacher's AsXxx contract) ----

// AsNull returns nil if v is a null value, else an ErrInvalid-wrapping error.
func (v *Value) AsNull() error {
	if v.Kind() == KindNull {
		return nil
	}
	return typeError(v, "null")
}

// AsBool extracts a boolean.
func (v *Value) AsBool() (bool, error) {
	if v.Kind() != KindBool {
		return false, typeError(v, "bool")
	}
	return v.b, nil
}

// AsString extracts a string's decoded bytes as a Go string.
func (v *Value) AsString() (string, error) {
	if v.Kind() != KindString {
		return "", typeError(v, "string")
	}
	return string(v.str.bytes), nil
}

// Lexeme returns the exact original number lexeme and whether one was
// preserved (spec §3 "number": "an original lexeme ... plus up to three
// precomputed numeric views").
func (v *Value) Lexeme() (string, bool) {
	if v.Kind() != KindNumber {
		return "", false
	}
	return v.num.lexeme, v.num.hasLexeme
}

// AsInt64 extracts the signed 64-bit view, if populated.
func (v *Value) AsInt64() (int64, error) {
	if v.Kind() != KindNumber {
		return 0, typeError(v, "number")
	}
	if !v.num.hasI64 {
		return 0, fmt.Errorf("%w: number has no int64 representation", ErrInvalid)
	}
	return v.num.i64, nil
}

// AsUint64 extracts the unsigned 64-bit view, if populated.
func (v *Value) AsUint64() (uint64, error) {
	if v.Kind() != KindNumber {
		return 0, typeError(v, "number")
	}
	if !v.num.hasU64 {
		return 0, fmt.Errorf("%w: number has no uint64 representation", ErrInvalid)
	}
	return v.num.u64, nil
}

// AsFloat64 extracts the double view, if populated.
func (v *Value) AsFloat64() (float64, error) {
	if v.Kind() != KindNumber {
		return 0, typeError(v, "number")
	}
	if !v.num.hasF64 {
		return 0, fmt.Errorf("%w: number has no float64 representation", ErrInvalid)
	}
	return v.num.f64, nil
}

// ---- array accessors and mutators (spec §4.1) ----

// Len returns the number of elements (arrays) or pairs (objects); 0 for
// every other kind.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Index returns the i'th array element, or a standalone null Value if v is
// not an array or i is out of range — the fluent, error-free drill-down
// contract the teacher exposes.
func (v *Value) Index(i int) *Value {
	if v.Kind() != KindArray || i < 0 || i >= len(v.arr) {
		return NewNull()
	}
	return v.arr[i]
}

// Elements returns a copy of the array's element slice, or nil if v is not
// an array.
func (v *Value) Elements() []*Value {
	if v.Kind() != KindArray {
		return nil
	}
	out := make([]*Value, len(v.arr))
	copy(out, v.arr)
	return out
}

// Push appends child to the array, adopting it if it was constructed in a
// different Context (spec §3 "Adoption invariant").
func (v *Value) Push(child *Value) error {
	if v.Kind() != KindArray {
		return typeError(v, "array")
	}
	grown, err := arena.GrowForAppend(v.arr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLimit, err)
	}
	v.arr = append(grown[:len(v.arr)], child)
	return nil
}

// InsertAt inserts child at index i, shifting the tail (spec §4.1).
func (v *Value) InsertAt(i int, child *Value) error {
	if v.Kind() != KindArray {
		return typeError(v, "array")
	}
	if i < 0 || i > len(v.arr) {
		return fmt.Errorf("%w: array index %d out of range", ErrInvalid, i)
	}
	grown, err := arena.Insert(v.arr, i, child)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLimit, err)
	}
	v.arr = grown
	return nil
}

// SetAt replaces the element at index i, returning the displaced value.
// The displaced subtree's foreign sub-contexts are released immediately
// (spec §3: "Mutation may replace children: the displaced child is
// dropped per the adoption invariant").
func (v *Value) SetAt(i int, child *Value) (*Value, error) {
	if v.Kind() != KindArray {
		return nil, typeError(v, "array")
	}
	if i < 0 || i >= len(v.arr) {
		return nil, fmt.Errorf("%w: array index %d out of range", ErrInvalid, i)
	}
	old := v.arr[i]
	v.arr[i] = child
	freeSubtree(old, v.ctx, map[*Context]bool{})
	return old, nil
}

// RemoveAt removes and returns the element at index i, shifting the tail
// down by one slot.
func (v *Value) RemoveAt(i int) (*Value, error) {
	if v.Kind() != KindArray {
		return nil, typeError(v, "array")
	}
	if i < 0 || i >= len(v.arr) {
		return nil, fmt.Errorf("%w: array index %d out of range", ErrInvalid, i)
	}
	old := v.arr[i]
	v.arr = arena.RemoveAt(v.arr, i)
	return old, nil
}

// ---- object accessors and mutators (spec §4.1) ----

// Key returns the value for key, or a standalone null Value if v is not an
// object or the key is absent — the fluent drill-down contract.
func (v *Value) Key(key string) *Value {
	if v.Kind() != KindObject {
		return NewNull()
	}
	for _, p := range v.obj {
		if p.key == key {
			return p.val
		}
	}
	return NewNull()
}

// Get is Key's counterpart that reports absence: it returns (nil, false)
// if v is not an object or the key is absent.
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind() != KindObject {
		return nil, false
	}
	for _, p := range v.obj {
		if p.key == key {
			return p.val, true
		}
	}
	return nil, false
}

// Keys returns the object's keys in insertion order.
func (v *Value) Keys() []string {
	if v.Kind() != KindObject {
		return nil
	}
	out := make([]string, len(v.obj))
	for i, p := range v.obj {
		out[i] = p.key
	}
	return out
}

// Pairs returns the object's (key, value) pairs in insertion order.
func (v *Value) Pairs() []struct {
	Key string
	Val *Value
} {
	if v.Kind() != KindObject {
		return nil
	}
	out := make([]struct {
		Key string
		Val *Value
	}, len(v.obj))
	for i, p := range v.obj {
		out[i] = struct {
			Key string
			Val *Value
		}{p.key, p.val}
	}
	return out
}

// Put inserts or replaces key's value, returning the previously-held value
// (nil if key was new). An existing key is replaced in place, preserving
// insertion order (spec §4.1 "Object put with an existing key replaces the
// value slot in place").
func (v *Value) Put(key string, child *Value) (*Value, error) {
	if v.Kind() != KindObject {
		return nil, typeError(v, "object")
	}
	for i, p := range v.obj {
		if p.key == key {
			old := p.val
			v.obj[i].val = child
			freeSubtree(old, v.ctx, map[*Context]bool{})
			return old, nil
		}
	}
	keyCopy, err := v.ctx.arena.CopyString(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLimit, err)
	}
	grown, err := arena.GrowForAppend(v.obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLimit, err)
	}
	v.obj = append(grown[:len(v.obj)], objPair{key: keyCopy, val: child})
	return nil, nil
}

// RemoveKey removes key, returning its value and whether it was present.
func (v *Value) RemoveKey(key string) (*Value, bool, error) {
	if v.Kind() != KindObject {
		return nil, false, typeError(v, "object")
	}
	for i, p := range v.obj {
		if p.key == key {
			v.obj = arena.RemoveAt(v.obj, i)
			return p.val, true, nil
		}
	}
	return nil, false, nil
}

// Free releases the entire reachable set rooted at v: v's own Context,
// plus every foreign (adopted) sub-Context, each only after its own
// children have been visited (spec §3 "Adoption invariant", §9). Partial
// freeing of sub-values is not supported — this always frees the whole
// tree.
func (v *Value) Free() {
	if v == nil || v.ctx == nil {
		return
	}
	visited := map[*Context]bool{}
	switch v.kind {
	case KindArray:
		for _, c := range v.arr {
			freeSubtree(c, v.ctx, visited)
		}
	case KindObject:
		for _, p := range v.obj {
			freeSubtree(p.val, v.ctx, visited)
		}
	}
	if !visited[v.ctx] {
		visited[v.ctx] = true
		v.ctx.close()
	}
}
