package cache

import "iter"

// Node is an element of a List.
// The node is handed out by PushBack so owners can remove or reorder it in O(1).
type Node[T any] struct {
	Value T
	prev  *Node[T]
	next  *Node[T]
	list  *List[T]
}

// Linked reports whether the node currently belongs to a list.
func (n *Node[T]) Linked() bool {
	return n != nil && n.list != nil
}

// List is a doubly-linked list ordered oldest (front) to newest (back).
// The list is not thread-safe; callers must handle synchronization.
type List[T any] struct {
	head *Node[T]
	tail *Node[T]
	len  int
}

// NewList creates an empty list.
func NewList[T any]() *List[T] {
	return &List[T]{}
}

// Len returns the number of nodes in the list.
func (l *List[T]) Len() int {
	return l.len
}

// PushBack adds a new node at the back (newest position).
// Returns the created node for later access.
func (l *List[T]) PushBack(v T) *Node[T] {
	node := &Node[T]{Value: v}
	l.link(node)
	return node
}

// MoveToBack moves an existing node to the back (most recently used).
// A node that was removed earlier is linked again.
func (l *List[T]) MoveToBack(node *Node[T]) {
	if node == nil || node == l.tail {
		return
	}
	if node.list == l {
		l.unlink(node)
	}
	l.link(node)
}

// Remove removes a node from the list.
// Removing a node that is not linked is a no-op.
func (l *List[T]) Remove(node *Node[T]) {
	if node == nil || node.list != l {
		return
	}
	l.unlink(node)
}

// Front returns the oldest node without removing it.
// Returns nil if the list is empty.
func (l *List[T]) Front() *Node[T] {
	return l.head
}

// PopFront removes and returns the value of the oldest node.
// Returns zero value and false if list is empty.
func (l *List[T]) PopFront() (T, bool) {
	if l.head == nil {
		var zero T
		return zero, false
	}

	node := l.head
	l.unlink(node)
	return node.Value, true
}

// All iterates over the nodes from oldest to newest.
// The current node may be removed during iteration.
func (l *List[T]) All() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		for n := l.head; n != nil; {
			next := n.next
			if !yield(n) {
				return
			}
			n = next
		}
	}
}

// Clear unlinks all nodes from the list.
func (l *List[T]) Clear() {
	for n := l.head; n != nil; {
		next := n.next
		n.prev, n.next, n.list = nil, nil, nil
		n = next
	}
	l.head = nil
	l.tail = nil
	l.len = 0
}

// link appends a detached node at the back.
func (l *List[T]) link(node *Node[T]) {
	node.prev = l.tail
	node.next = nil
	node.list = l
	if l.tail == nil {
		l.head = node
	} else {
		l.tail.next = node
	}
	l.tail = node
	l.len++
}

// unlink removes a node from the list and clears its links.
func (l *List[T]) unlink(node *Node[T]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}

	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}

	node.prev = nil
	node.next = nil
	node.list = nil
	l.len--
}
