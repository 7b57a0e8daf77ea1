// Package arenalist implements a positional doubly linked list backed by a
// flat arena of slots addressed by integer handles.
//
// The representation replaces the classic XOR-of-addresses trick for
// halving pointer overhead: instead of folding prev and next into one
// machine word of address arithmetic, nodes live in a contiguous backing
// slice and link to each other through 32-bit indices. That keeps the
// per-node link cost at 8 bytes, avoids boxing every element as a separate
// heap object, and stays safe under Go's memory model. Freed slots are
// recycled through an internal free list before the arena grows.
//
// Positions are 0-based from the head. The list is not safe for concurrent
// mutation.
package arenalist

import "errors"

var (
	ErrListEmpty          = errors.New("list is empty")
	ErrPositionOutOfRange = errors.New("position out of range")
)

// nilIndex marks the absence of a neighbor slot.
const nilIndex int32 = -1

type slot[V any] struct {
	value V
	prev  int32
	next  int32
}

// List is a doubly linked list of values of type V stored in an arena.
type List[V any] struct {
	slots  []slot[V]
	free   []int32
	head   int32
	tail   int32
	length int
}

// New creates an empty list.
func New[V any]() *List[V] {
	return &List[V]{head: nilIndex, tail: nilIndex}
}

// Len returns the number of elements in the list.
func (l *List[V]) Len() int {
	return l.length
}

// alloc takes a slot from the free list, growing the arena only when no
// freed slot is available.
func (l *List[V]) alloc(v V) int32 {
	if n := len(l.free); n > 0 {
		idx := l.free[n-1]
		l.free = l.free[:n-1]
		l.slots[idx] = slot[V]{value: v, prev: nilIndex, next: nilIndex}
		return idx
	}
	l.slots = append(l.slots, slot[V]{value: v, prev: nilIndex, next: nilIndex})
	return int32(len(l.slots) - 1)
}

// release returns a slot to the free list, zeroing its value so the arena
// does not pin freed element memory.
func (l *List[V]) release(idx int32) {
	var zero V
	l.slots[idx] = slot[V]{value: zero, prev: nilIndex, next: nilIndex}
	l.free = append(l.free, idx)
}

// seek returns the slot index at the given position.
func (l *List[V]) seek(pos int) (int32, error) {
	if l.length == 0 {
		return nilIndex, ErrListEmpty
	}
	if pos < 0 || pos >= l.length {
		return nilIndex, ErrPositionOutOfRange
	}
	idx := l.head
	for i := 0; i < pos; i++ {
		idx = l.slots[idx].next
	}
	return idx, nil
}

// PushFront inserts v at the head of the list.
func (l *List[V]) PushFront(v V) {
	idx := l.alloc(v)
	if l.head == nilIndex {
		l.head, l.tail = idx, idx
	} else {
		l.slots[idx].next = l.head
		l.slots[l.head].prev = idx
		l.head = idx
	}
	l.length++
}

// PushBack inserts v at the tail of the list.
func (l *List[V]) PushBack(v V) {
	idx := l.alloc(v)
	if l.tail == nilIndex {
		l.head, l.tail = idx, idx
	} else {
		l.slots[idx].prev = l.tail
		l.slots[l.tail].next = idx
		l.tail = idx
	}
	l.length++
}

// Insert places v before the element at pos. A negative pos appends, pos 0
// prepends. Any other pos must address an existing element.
func (l *List[V]) Insert(v V, pos int) error {
	switch {
	case pos < 0 || (l.length == 0 && pos == 0):
		l.PushBack(v)
		return nil
	case pos == 0:
		l.PushFront(v)
		return nil
	}

	at, err := l.seek(pos)
	if err != nil {
		return err
	}
	idx := l.alloc(v)
	prev := l.slots[at].prev
	l.slots[idx].prev = prev
	l.slots[idx].next = at
	l.slots[prev].next = idx
	l.slots[at].prev = idx
	l.length++
	return nil
}

// Read returns the value at pos without mutating the list.
func (l *List[V]) Read(pos int) (V, error) {
	idx, err := l.seek(pos)
	if err != nil {
		var zero V
		return zero, err
	}
	return l.slots[idx].value, nil
}

// Delete removes and returns the value at pos.
func (l *List[V]) Delete(pos int) (V, error) {
	var zero V
	idx, err := l.seek(pos)
	if err != nil {
		return zero, err
	}

	s := l.slots[idx]
	if s.prev != nilIndex {
		l.slots[s.prev].next = s.next
	} else {
		l.head = s.next
	}
	if s.next != nilIndex {
		l.slots[s.next].prev = s.prev
	} else {
		l.tail = s.prev
	}

	l.release(idx)
	l.length--
	return s.value, nil
}

// Validate walks the list in both directions and checks that the link
// structure, endpoints, and length agree. Any non-nil result indicates a
// bug in the list itself.
func (l *List[V]) Validate() error {
	if l.length == 0 {
		if l.head != nilIndex || l.tail != nilIndex {
			return errors.New("empty list has dangling endpoints")
		}
		return nil
	}
	if l.slots[l.head].prev != nilIndex {
		return errors.New("head has a predecessor")
	}
	if l.slots[l.tail].next != nilIndex {
		return errors.New("tail has a successor")
	}

	count := 0
	prev := nilIndex
	for idx := l.head; idx != nilIndex; idx = l.slots[idx].next {
		if l.slots[idx].prev != prev {
			return errors.New("prev link does not match forward traversal")
		}
		prev = idx
		if count++; count > l.length {
			return errors.New("forward traversal exceeds recorded length")
		}
	}
	if count != l.length {
		return errors.New("forward traversal count does not match length")
	}
	if prev != l.tail {
		return errors.New("forward traversal does not end at tail")
	}
	return nil
}
