package value

import (
	"container/heap"
	"strings"

	"github.com/cordy-lang/cordy/lang/cerr"
)

// Heap is a binary min-heap over Ordered values. There is no max-heap
// variant and no reversed-ordering wrapper: pop and peek always yield the
// smallest element.
type Heap struct {
	inner heapImpl
}

func NewHeap(items []Value) (*Heap, error) {
	h := &Heap{}
	for _, v := range items {
		h.inner = append(h.inner, v)
	}
	if err := h.inner.validate(); err != nil {
		return nil, err
	}
	heap.Init(&h.inner)
	return h, nil
}

func (h *Heap) String() string { return h.render(false) }
func (h *Heap) Repr() string   { return h.render(true) }
func (*Heap) Type() string     { return "heap" }

func (h *Heap) render(repr bool) string {
	var b strings.Builder
	b.WriteString("heap(")
	for i, v := range h.inner {
		if i > 0 {
			b.WriteString(", ")
		}
		if repr {
			b.WriteString(v.Repr())
		} else {
			b.WriteString(v.String())
		}
	}
	b.WriteByte(')')
	return b.String()
}

func (h *Heap) Len() int { return len(h.inner) }

func (h *Heap) Push(v Value) error {
	if len(h.inner) > 0 {
		if _, err := Compare(v, h.inner[0]); err != nil {
			return err
		}
	}
	heap.Push(&h.inner, v)
	return nil
}

func (h *Heap) Pop() (Value, error) {
	if len(h.inner) == 0 {
		return nil, cerr.New(cerr.ValueErrorValueMustBeNonEmpty)
	}
	return heap.Pop(&h.inner).(Value), nil
}

func (h *Heap) Peek() (Value, error) {
	if len(h.inner) == 0 {
		return nil, cerr.New(cerr.ValueErrorValueMustBeNonEmpty)
	}
	return h.inner[0], nil
}

func (h *Heap) Iterate() Iterator {
	items := make([]Value, len(h.inner))
	copy(items, h.inner)
	return &sliceIterator{items: items}
}

type heapImpl []Value

func (h heapImpl) validate() error {
	for _, v := range h {
		_, err := Compare(v, v)
		if err != nil {
			return err
		}
	}
	return nil
}

func (h heapImpl) Len() int { return len(h) }
func (h heapImpl) Less(i, j int) bool {
	c, err := Compare(h[i], h[j])
	if err != nil {
		return false
	}
	return c < 0
}
func (h heapImpl) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *heapImpl) Push(x any)   { *h = append(*h, x.(Value)) }
func (h *heapImpl) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
