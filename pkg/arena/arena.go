package arena

// DefaultChunkSize is the number of blocks a slab grows by at a time.
const DefaultChunkSize = 64

// Option configures an Arena.
type Option func(*Arena)

// WithChunkSize sets the number of blocks per chunk on the provided Arena.
func WithChunkSize(n int) Option {
	return func(a *Arena) {
		if n > 0 {
			a.chunkSize = n
		}
	}
}

// Arena is a bump allocator that hands out fixed-size blocks from larger
// chunks. Individual blocks are never freed; Reset releases everything at
// once. An Arena and the slabs on top of it are not safe for concurrent
// use: allocation into containers sharing one arena must be serialized by
// the caller.
type Arena struct {
	chunkSize int
	gen       uint64
	allocated int
}

// New creates an empty arena. No memory is reserved until the first
// allocation.
func New(opts ...Option) *Arena {
	a := &Arena{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Reset releases all blocks handed out so far, as a whole. Slabs drop
// their chunks on their next allocation. Any handle, pointer or container
// built on this arena is invalid from here on; that is a caller contract,
// not something the arena can enforce.
func (a *Arena) Reset() {
	a.gen++
	a.allocated = 0
}

// Generation returns the current arena generation. It changes on every
// Reset.
func (a *Arena) Generation() uint64 { return a.gen }

// NumAllocated returns the number of blocks handed out since the last
// Reset, across all slabs.
func (a *Arena) NumAllocated() int { return a.allocated }

// Handle identifies one block within a slab. Handles stay valid until the
// arena is reset, even as the slab grows.
type Handle = int32

// Slab is a typed view over an Arena that allocates blocks of a single
// type. Blocks live in fixed-size chunks that never move once allocated,
// so both the returned pointers and the handles remain stable as the slab
// grows.
type Slab[T any] struct {
	arena  *Arena
	gen    uint64
	chunks [][]T
	len    int32
}

// NewSlab binds a new slab to the given arena.
func NewSlab[T any](a *Arena) *Slab[T] {
	return &Slab[T]{arena: a, gen: a.gen}
}

// Alloc hands out one zeroed block, returning its handle and a pointer to
// it.
func (s *Slab[T]) Alloc() (Handle, *T) {
	if s.gen != s.arena.gen {
		// The arena was reset since the last allocation.
		s.chunks = nil
		s.len = 0
		s.gen = s.arena.gen
	}
	cs := s.arena.chunkSize
	if int(s.len) == len(s.chunks)*cs {
		s.chunks = append(s.chunks, make([]T, cs))
	}
	h := s.len
	s.len++
	s.arena.allocated++
	return h, &s.chunks[int(h)/cs][int(h)%cs]
}

// At returns the block for h. h must come from a prior Alloc on this slab
// within the current arena generation.
func (s *Slab[T]) At(h Handle) *T {
	cs := s.arena.chunkSize
	return &s.chunks[int(h)/cs][int(h)%cs]
}

// Len returns the number of blocks allocated from this slab.
func (s *Slab[T]) Len() int { return int(s.len) }
