// Package floodfill provides breadth-first traversal over the vertex
// adjacency graph of a sculpt surface.
package floodfill

import (
	"github.com/Faultbox/sculptcore/internal/sculpt/mesh"
	"github.com/Faultbox/sculptcore/pkg/math"
)

// queue is a ring buffer of vertex indices that doubles in place when the
// frontier outgrows it.
type queue struct {
	buf        []int
	start, end int
}

func newQueue() *queue {
	return &queue{buf: make([]int, 64)}
}

func (q *queue) empty() bool { return q.start == q.end }

func (q *queue) push(v int) {
	next := (q.end + 1) % len(q.buf)
	if next == q.start {
		q.grow()
		next = (q.end + 1) % len(q.buf)
	}
	q.buf[q.end] = v
	q.end = next
}

func (q *queue) pop() int {
	v := q.buf[q.start]
	q.start = (q.start + 1) % len(q.buf)
	return v
}

// grow doubles capacity, moving the wrapped tail segment so the occupied
// range stays contiguous in ring order.
func (q *queue) grow() {
	oldSize := len(q.buf)
	q.buf = append(q.buf, make([]int, oldSize)...)
	if q.end < q.start {
		n := oldSize - q.start
		copy(q.buf[len(q.buf)-n:], q.buf[q.start:oldSize])
		q.start = len(q.buf) - n
	}
}

// Fill is one breadth-first traversal. Seeds are added before Execute;
// every vertex is visited at most once.
type Fill struct {
	queue   *queue
	visited []bool
}

// NewFill creates a traversal over a domain of vertCount vertices.
func NewFill(vertCount int) *Fill {
	return &Fill{
		queue:   newQueue(),
		visited: make([]bool, vertCount),
	}
}

// Add seeds the traversal with a vertex. Out-of-range and repeated seeds
// are ignored.
func (f *Fill) Add(v int) {
	if v < 0 || v >= len(f.visited) || f.visited[v] {
		return
	}
	f.visited[v] = true
	f.queue.push(v)
}

// AddInitialWithSymmetry seeds v and, for every enabled mirror-symmetry
// area (symmBits: X=1, Y=2, Z=4), the vertex nearest to v's mirrored
// location. A non-positive radius disables the distance limit on the
// mirrored snap.
func (f *Fill) AddInitialWithSymmetry(m mesh.Surface, symmBits, v int, radius float32) {
	if v < 0 || v >= len(f.visited) {
		return
	}
	location := m.Position(v)
	for area := 0; area <= 7; area++ {
		if area != 0 && (area&symmBits) != area {
			continue
		}
		if area == 0 {
			f.Add(v)
			continue
		}
		mirrored := location.MirrorFlip(area)
		if n := NearestVertex(m, mirrored, radius); n != -1 {
			f.Add(n)
		}
	}
}

// Execute runs the traversal. For every accepted edge (from, to), fn
// decides whether to continue through to. fn may write side effects as
// vertices are first reached.
func (f *Fill) Execute(m mesh.Surface, fn func(from, to int) bool) {
	var neighbors []int
	for !f.queue.empty() {
		from := f.queue.pop()
		neighbors = m.VertNeighbors(from, neighbors[:0])
		for _, to := range neighbors {
			if to < 0 || to >= len(f.visited) || f.visited[to] {
				continue
			}
			f.visited[to] = true
			if fn(from, to) {
				f.queue.push(to)
			}
		}
	}
}

// NearestVertex returns the vertex closest to co, or -1 when the surface is
// empty or no vertex lies within radius (radius <= 0 means unlimited).
func NearestVertex(m mesh.Surface, co math.Vec3, radius float32) int {
	best := -1
	var bestDist float32
	for v := 0; v < m.VertCount(); v++ {
		d := m.Position(v).Distance(co)
		if radius > 0 && d > radius {
			continue
		}
		if best == -1 || d < bestDist {
			best = v
			bestDist = d
		}
	}
	return best
}
