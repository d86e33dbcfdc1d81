// Package recency implements a doubly-linked list whose nodes live in an
// arena and are addressed by integer handles. The front of the list is the
// most recently used element and the back is the least recently used one.
package recency

import "fmt"

// A Handle addresses an element of a List. Handles of removed elements are
// reused by later insertions.
type Handle int

// Nil is the handle that addresses no element.
const Nil Handle = -1

type node[T any] struct {
	value T
	prev  Handle
	next  Handle
	inUse bool
}

// List is an arena-backed doubly-linked list.
type List[T any] struct {
	nodes []node[T]
	free  []Handle
	head  Handle
	tail  Handle
	size  int
}

// New creates an empty List.
func New[T any]() *List[T] {
	return &List[T]{head: Nil, tail: Nil}
}

// Len returns the number of elements.
func (l *List[T]) Len() int {
	return l.size
}

// Front returns the handle of the most recently used element, or Nil.
func (l *List[T]) Front() Handle {
	return l.head
}

// Back returns the handle of the least recently used element, or Nil.
func (l *List[T]) Back() Handle {
	return l.tail
}

// Next returns the element after h, moving towards the back.
func (l *List[T]) Next(h Handle) Handle {
	return l.mustGet(h).next
}

// Prev returns the element before h, moving towards the front.
func (l *List[T]) Prev(h Handle) Handle {
	return l.mustGet(h).prev
}

// Value returns the value stored at h.
func (l *List[T]) Value(h Handle) T {
	return l.mustGet(h).value
}

// Set replaces the value stored at h without moving it.
func (l *List[T]) Set(h Handle, v T) {
	l.mustGet(h).value = v
}

// PushFront inserts a value at the front and returns its handle.
func (l *List[T]) PushFront(v T) Handle {
	h := l.alloc()

	n := &l.nodes[h]
	n.value = v
	n.inUse = true

	l.linkFront(h)
	l.size++

	return h
}

// MoveToFront makes h the most recently used element.
func (l *List[T]) MoveToFront(h Handle) {
	l.mustGet(h)

	if l.head == h {
		return
	}

	l.unlink(h)
	l.linkFront(h)
}

// Remove takes h out of the list and returns its value. The handle becomes
// invalid.
func (l *List[T]) Remove(h Handle) T {
	n := l.mustGet(h)
	v := n.value

	l.unlink(h)

	var zero T
	n.value = zero
	n.inUse = false
	l.free = append(l.free, h)
	l.size--

	return v
}

// Reset removes every element.
func (l *List[T]) Reset() {
	l.nodes = nil
	l.free = nil
	l.head = Nil
	l.tail = Nil
	l.size = 0
}

func (l *List[T]) alloc() Handle {
	if n := len(l.free); n > 0 {
		h := l.free[n-1]
		l.free = l.free[:n-1]

		return h
	}

	l.nodes = append(l.nodes, node[T]{})

	return Handle(len(l.nodes) - 1)
}

func (l *List[T]) linkFront(h Handle) {
	n := &l.nodes[h]
	n.prev = Nil
	n.next = l.head

	if l.head != Nil {
		l.nodes[l.head].prev = h
	}

	l.head = h

	if l.tail == Nil {
		l.tail = h
	}
}

func (l *List[T]) unlink(h Handle) {
	n := &l.nodes[h]

	if n.prev != Nil {
		l.nodes[n.prev].next = n.next
	} else {
		l.head = n.next
	}

	if n.next != Nil {
		l.nodes[n.next].prev = n.prev
	} else {
		l.tail = n.prev
	}

	n.prev = Nil
	n.next = Nil
}

func (l *List[T]) mustGet(h Handle) *node[T] {
	if h < 0 || int(h) >= len(l.nodes) || !l.nodes[h].inUse {
		panic(fmt.Sprintf("invalid handle %d", h))
	}

	return &l.nodes[h]
}
