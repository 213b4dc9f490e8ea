// Package arena implements the bump-allocated block allocator backing a
// parsed or constructed document tree (spec §4.1, component A+B). Every
// top-level tree owns exactly one Arena; string and number lexeme bytes
// that aren't borrowed in-situ are copied into it instead of becoming
// independent heap allocations, so freeing the tree is one operation.
package arena

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/relex/jsondom/internal/kinds"
)

// DefaultBlockSize is the size of a freshly chained block when the current
// block can't satisfy a request (spec §3: "default block 64 KiB").
const DefaultBlockSize = 64 * 1024

// Error is a low-level allocation failure, always EOOM or ELimit.
type Error struct {
	Kind    kinds.ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func oomErrorf(format string, args ...any) *Error {
	return &Error{Kind: kinds.EOOM, Message: fmt.Sprintf(format, args...)}
}

type block struct {
	buf  []byte
	used int
}

// Arena is an ordered list of byte blocks, bump-allocated in order.
type Arena struct {
	blocks []*block
	total  int // bytes ever handed out, for diagnostics only
	closed bool
}

// New returns a fresh, empty Arena.
func New() *Arena {
	return &Arena{}
}

// Closed reports whether Close has already released this arena.
func (a *Arena) Closed() bool {
	return a == nil || a.closed
}

// Close releases every block. The arena must not be used afterward. This
// models spec §4.1's "deallocation frees blocks in list order"; because Go
// is garbage collected, "freeing" means dropping the last references so
// the blocks become collectible, not an explicit munmap.
func (a *Arena) Close() {
	if a == nil || a.closed {
		return
	}
	a.blocks = nil
	a.closed = true
}

// checkedAdd returns a+b, failing on overflow (spec §4.1: "all size
// arithmetic uses checked addition/multiplication").
func checkedAdd(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, oomErrorf("arena: negative size in addition")
	}
	sum := a + b
	if sum < a {
		return 0, oomErrorf("arena: size addition overflow (%d + %d)", a, b)
	}
	return sum, nil
}

// checkedMul returns a*b, failing on overflow or when the product exceeds
// math.MaxInt32.
func checkedMul(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, oomErrorf("arena: negative size in multiplication")
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/a != b || product > math.MaxInt32 {
		return 0, oomErrorf("arena: size multiplication overflow (%d * %d)", a, b)
	}
	return product, nil
}

func alignUp(offset, align int) (int, error) {
	if align <= 0 || align&(align-1) != 0 {
		return 0, oomErrorf("arena: alignment %d is not a power of two", align)
	}
	mask := align - 1
	sum, err := checkedAdd(offset, mask)
	if err != nil {
		return 0, err
	}
	return sum &^ mask, nil
}

// Alloc returns n zeroed bytes aligned to align (a power of two), bump
// allocated from the current block, or from a freshly chained block when
// the current one can't satisfy the request (spec §4.1).
func (a *Arena) Alloc(n int, align int) ([]byte, error) {
	if a == nil || a.closed {
		return nil, oomErrorf("arena: allocation on closed arena")
	}
	if n < 0 {
		return nil, oomErrorf("arena: negative allocation size %d", n)
	}
	if n == 0 {
		return nil, nil
	}

	if len(a.blocks) > 0 {
		cur := a.blocks[len(a.blocks)-1]
		aligned, err := alignUp(cur.used, align)
		if err != nil {
			return nil, err
		}
		end, err := checkedAdd(aligned, n)
		if err != nil {
			return nil, err
		}
		if end <= len(cur.buf) {
			out := cur.buf[aligned:end]
			cur.used = end
			a.total += n
			return out, nil
		}
	}

	withAlign, err := checkedAdd(n, align)
	if err != nil {
		return nil, err
	}
	size := DefaultBlockSize
	if withAlign > size {
		size = withAlign
	}
	nb := &block{buf: make([]byte, size)}
	a.blocks = append(a.blocks, nb)

	aligned, err := alignUp(0, align)
	if err != nil {
		return nil, err
	}
	end, err := checkedAdd(aligned, n)
	if err != nil {
		return nil, err
	}
	out := nb.buf[aligned:end]
	nb.used = end
	a.total += n
	return out, nil
}

// CopyBytes copies src into a fresh arena allocation aligned to 1 byte and
// returns the copy. Used for string and number-lexeme bytes that aren't
// eligible for in-situ borrowing.
func (a *Arena) CopyBytes(src []byte) ([]byte, error) {
	dst, err := a.Alloc(len(src), 1)
	if err != nil {
		return nil, err
	}
	copy(dst, src)
	return dst, nil
}

// CopyString is CopyBytes for a string, returning a string backed by the
// arena's block rather than an independent heap allocation.
func (a *Arena) CopyString(s string) (string, error) {
	b, err := a.CopyBytes([]byte(s))
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}
	return unsafe.String(&b[0], len(b)), nil
}

// Total reports the number of logical bytes handed out so far (excludes
// block-padding waste), for diagnostics.
func (a *Arena) Total() int {
	if a == nil {
		return 0
	}
	return a.total
}
