package jsondom

// Clone deep-copies v into a freshly allocated Context, so the result is
// independent of v's original tree and safe to free on its own. Used by
// the schema compiler to take ownership of enum/const literals (spec
// §4.5: "an optional list of cloned enum values and optional const value
// (both deep-cloned into a schema-owned context)") and exercised directly
// by the round-trip invariant "equal(x, clone(x, fresh_ctx))" (spec §8).
func Clone(v *Value) *Value {
	if v == nil {
		return NewNull()
	}
	ctx := newContext()
	return cloneInto(v, ctx)
}

func cloneInto(v *Value, ctx *Context) *Value {
	switch v.Kind() {
	case KindNull:
		return &Value{ctx: ctx, kind: KindNull}
	case KindBool:
		return &Value{ctx: ctx, kind: KindBool, b: v.b}
	case KindNumber:
		lexeme := v.num.lexeme
		if v.num.hasLexeme {
			lexeme, _ = ctx.arena.CopyString(lexeme)
		}
		n := v.num
		n.lexeme = lexeme
		return &Value{ctx: ctx, kind: KindNumber, num: n}
	case KindString:
		body, _ := ctx.arena.CopyBytes(v.str.bytes)
		return &Value{ctx: ctx, kind: KindString, str: stringData{bytes: body}}
	case KindArray:
		out := &Value{ctx: ctx, kind: KindArray, arr: make([]*Value, len(v.arr))}
		for i, c := range v.arr {
			out.arr[i] = cloneInto(c, ctx)
		}
		return out
	case KindObject:
		out := &Value{ctx: ctx, kind: KindObject, obj: make([]objPair, len(v.obj))}
		for i, p := range v.obj {
			key, _ := ctx.arena.CopyString(p.key)
			out.obj[i] = objPair{key: key, val: cloneInto(p.val, ctx)}
		}
		return out
	default:
		return &Value{ctx: ctx, kind: KindNull}
	}
}
