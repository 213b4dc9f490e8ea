package jsondom

import "github.com/relex/jsondom/internal/arena"

// Context is the bookkeeping record that owns an Arena and optionally
// borrows the caller's original input buffer for in-situ leaves (spec §3
// "Arena / Context"). Every Value knows its owning Context.
type Context struct {
	arena  *arena.Arena
	input  []byte // non-owning; nil unless in-situ mode is active
	inSitu bool
}

func newContext() *Context {
	return &Context{arena: arena.New()}
}

// bindInput attaches the caller's input buffer for in-situ leaves. The
// parser binds it only when the root is an array or object, so a scalar
// root's own bytes are never borrowed — only the leaves of a container
// root, which are constructed afterward.
func (c *Context) bindInput(buf []byte) {
	c.input = buf
	c.inSitu = true
}

func (c *Context) close() {
	if c == nil {
		return
	}
	c.arena.Close()
	c.input = nil
}

// freeSubtree walks v's descendants first (so deeper foreign contexts are
// released before their parents), then closes v's own context if it
// differs from parentCtx and hasn't been closed yet in this walk. This is
// the adoption-aware drop from spec §3/§4.1/§9: "dropping Y's root walks
// the tree and, for any subtree whose node's context differs from its
// parent's context, recursively drops that distinct context after first
// recursing into its own children."
func freeSubtree(v *Value, parentCtx *Context, visited map[*Context]bool) {
	if v == nil {
		return
	}
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
	if v.ctx != parentCtx && v.ctx != nil && !visited[v.ctx] {
		visited[v.ctx] = true
		v.ctx.close()
	}
}
