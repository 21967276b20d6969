package refine

import "github.com/arl/meshquality/mesh"

// BadSubseg is a queued encroachment finding. The (Org, Dest)
// snapshot lets the segment splitter recognize a stale entry -- one whose
// subsegment has since been split, flipped, or killed outright.
type BadSubseg struct {
	Handle mesh.Osub
	Org    *mesh.Vertex
	Dest   *mesh.Vertex
}

// stale reports whether the queued finding no longer describes a live
// subsegment with the same endpoints it was enqueued with.
func (b *BadSubseg) stale() bool {
	return b.Org == nil || b.Handle.IsDead() || b.Handle.Org() != b.Org || b.Handle.Dest() != b.Dest
}

// BadSubsegQueue is the strict FIFO buffer of component C.
type BadSubsegQueue struct {
	items []*BadSubseg
	head  int
}

func NewBadSubsegQueue() *BadSubsegQueue { return &BadSubsegQueue{} }

func (q *BadSubsegQueue) Enqueue(b *BadSubseg) {
	q.items = append(q.items, b)
}

// Dequeue pops the oldest entry, skipping (and discarding) stale ones, and
// reports ok=false once the queue is drained.
func (q *BadSubsegQueue) Dequeue() (b *BadSubseg, ok bool) {
	for q.head < len(q.items) {
		b = q.items[q.head]
		q.head++
		if q.head > 4096 && q.head*2 > len(q.items) {
			q.items = append([]*BadSubseg(nil), q.items[q.head:]...)
			q.head = 0
		}
		if b.stale() {
			continue
		}
		return b, true
	}
	return nil, false
}

func (q *BadSubsegQueue) Empty() bool { return q.head >= len(q.items) }

func (q *BadSubsegQueue) Len() int { return len(q.items) - q.head }

// BadTriangle is a queued quality-test failure. Key is the square of
// the triangle's shortest edge at enqueue time and determines the queue's
// ordering; the (Org, Dest, Apex) snapshot detects staleness.
type BadTriangle struct {
	Handle mesh.Otri
	Key    float64
	Org    *mesh.Vertex
	Dest   *mesh.Vertex
	Apex   *mesh.Vertex

	seq int
}

func (b *BadTriangle) stale() bool {
	if b.Handle.IsDead() {
		return true
	}
	return b.Handle.Org() != b.Org || b.Handle.Dest() != b.Dest || b.Handle.Apex() != b.Apex
}

// BadTriangleQueue is the priority queue of component D: a binary min-heap
// ordered by Key ascending (shortest-edge triangles surface first), ties
// broken by insertion order, kept in a slice with bubbleUp/trickleDown
// helpers.
type BadTriangleQueue struct {
	heap    []*BadTriangle
	nextSeq int
}

func NewBadTriangleQueue() *BadTriangleQueue { return &BadTriangleQueue{} }

func (q *BadTriangleQueue) less(a, b *BadTriangle) bool {
	if a.Key != b.Key {
		return a.Key < b.Key
	}
	return a.seq < b.seq
}

func (q *BadTriangleQueue) bubbleUp(i int, b *BadTriangle) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(b, q.heap[parent]) {
			break
		}
		q.heap[i] = q.heap[parent]
		i = parent
	}
	q.heap[i] = b
}

func (q *BadTriangleQueue) trickleDown(i int, b *BadTriangle) {
	n := len(q.heap)
	for {
		child := i*2 + 1
		if child >= n {
			break
		}
		if child+1 < n && q.less(q.heap[child+1], q.heap[child]) {
			child++
		}
		if !q.less(q.heap[child], b) {
			break
		}
		q.heap[i] = q.heap[child]
		i = child
	}
	q.heap[i] = b
}

// Enqueue pushes b, assigning it a fresh sequence number for tie-breaking
// if it does not already have one (a re-enqueued BadTriangle keeps its
// original sequence number, and with it its place ahead of equal-key
// entries enqueued after it first was).
func (q *BadTriangleQueue) Enqueue(b *BadTriangle) {
	if b.seq == 0 {
		q.nextSeq++
		b.seq = q.nextSeq
	}
	q.heap = append(q.heap, nil)
	q.bubbleUp(len(q.heap)-1, b)
}

// Dequeue pops the worst (shortest-edge) live triangle, discarding stale
// entries along the way, and reports ok=false once the queue is drained.
func (q *BadTriangleQueue) Dequeue() (b *BadTriangle, ok bool) {
	for len(q.heap) > 0 {
		top := q.heap[0]
		last := len(q.heap) - 1
		moved := q.heap[last]
		q.heap = q.heap[:last]
		if last > 0 {
			q.trickleDown(0, moved)
		}
		if top.stale() {
			continue
		}
		return top, true
	}
	return nil, false
}

func (q *BadTriangleQueue) Empty() bool { return len(q.heap) == 0 }

func (q *BadTriangleQueue) Len() int { return len(q.heap) }
