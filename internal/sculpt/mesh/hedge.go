package mesh

import "github.com/Faultbox/sculptcore/pkg/math"

// HVert is a vertex of the dynamic half-edge backend.
type HVert struct {
	Co math.Vec3
	No math.Vec3

	index int
	edge  *HEdge
	faces []*HFace
}

// HEdge is an edge with per-endpoint disk-cycle links, so all edges around
// a vertex can be walked without a global table.
type HEdge struct {
	verts     [2]*HVert
	next      [2]*HEdge
	prev      [2]*HEdge
	faceCount int
}

func (e *HEdge) side(v *HVert) int {
	if e.verts[0] == v {
		return 0
	}
	if e.verts[1] == v {
		return 1
	}
	return -1
}

// HFace is a polygon of the half-edge backend.
type HFace struct {
	index int
	verts []*HVert
}

// Verts returns the face's corner vertices.
func (f *HFace) Verts() []*HVert { return f.verts }

// Hedge is the dynamic-topology backend. Vertices and faces can be added
// mid-session; attribute buffers are reconciled by the attribute store when
// counts change.
type Hedge struct {
	verts []*HVert
	faces []*HFace

	origPos  []math.Vec3
	origNorm []math.Vec3
}

// NewHedge creates an empty dynamic mesh.
func NewHedge() *Hedge {
	return &Hedge{}
}

// AddVert appends a vertex and returns it.
func (h *Hedge) AddVert(co math.Vec3) *HVert {
	v := &HVert{Co: co, index: len(h.verts)}
	h.verts = append(h.verts, v)
	return v
}

// Vert returns the vertex at a linear index, or nil when out of range.
func (h *Hedge) Vert(i int) *HVert {
	if i < 0 || i >= len(h.verts) {
		return nil
	}
	return h.verts[i]
}

// VertIndex returns the linear index of v, or -1 for nil or foreign verts.
func (h *Hedge) VertIndex(v *HVert) int {
	if v == nil || v.index < 0 || v.index >= len(h.verts) || h.verts[v.index] != v {
		return -1
	}
	return v.index
}

func diskEdgeAppend(e *HEdge, v *HVert) {
	i := e.side(v)
	if v.edge == nil {
		v.edge = e
		e.next[i] = e
		e.prev[i] = e
		return
	}
	first := v.edge
	fi := first.side(v)
	last := first.prev[fi]
	li := last.side(v)
	e.next[i] = first
	e.prev[i] = last
	first.prev[fi] = e
	last.next[li] = e
}

func (h *Hedge) findEdge(a, b *HVert) *HEdge {
	e := a.edge
	if e == nil {
		return nil
	}
	start := e
	for {
		i := e.side(a)
		if e.verts[i^1] == b {
			return e
		}
		e = e.next[i]
		if e == start {
			return nil
		}
	}
}

func (h *Hedge) ensureEdge(a, b *HVert) *HEdge {
	if e := h.findEdge(a, b); e != nil {
		return e
	}
	e := &HEdge{verts: [2]*HVert{a, b}}
	diskEdgeAppend(e, a)
	diskEdgeAppend(e, b)
	return e
}

// AddFace creates a polygon over existing vertices, creating any missing
// edges. Returns nil for degenerate input.
func (h *Hedge) AddFace(verts ...*HVert) *HFace {
	if len(verts) < 3 {
		return nil
	}
	f := &HFace{index: len(h.faces), verts: append([]*HVert(nil), verts...)}
	for i, v := range verts {
		next := verts[(i+1)%len(verts)]
		h.ensureEdge(v, next).faceCount++
		v.faces = append(v.faces, f)
	}
	h.faces = append(h.faces, f)
	return f
}

// Type implements Surface.
func (h *Hedge) Type() Type { return TypeHedge }

// VertCount implements Surface.
func (h *Hedge) VertCount() int { return len(h.verts) }

// FaceCount implements Surface.
func (h *Hedge) FaceCount() int { return len(h.faces) }

// Position implements Surface.
func (h *Hedge) Position(v int) math.Vec3 {
	if hv := h.Vert(v); hv != nil {
		return hv.Co
	}
	return math.Vec3{}
}

// Normal implements Surface.
func (h *Hedge) Normal(v int) math.Vec3 {
	if hv := h.Vert(v); hv != nil {
		return hv.No
	}
	return math.Vec3{}
}

// OrigPosition implements Surface.
func (h *Hedge) OrigPosition(v int) math.Vec3 {
	if h.origPos == nil || v < 0 || v >= len(h.origPos) {
		return h.Position(v)
	}
	return h.origPos[v]
}

// OrigNormal implements Surface.
func (h *Hedge) OrigNormal(v int) math.Vec3 {
	if h.origNorm == nil || v < 0 || v >= len(h.origNorm) {
		return h.Normal(v)
	}
	return h.origNorm[v]
}

// CaptureOrig implements Surface.
func (h *Hedge) CaptureOrig() {
	h.origPos = h.origPos[:0]
	h.origNorm = h.origNorm[:0]
	for _, v := range h.verts {
		h.origPos = append(h.origPos, v.Co)
		h.origNorm = append(h.origNorm, v.No)
	}
}

// RecalcNormals rebuilds vertex normals from incident faces.
func (h *Hedge) RecalcNormals() {
	for _, v := range h.verts {
		v.No = math.Vec3{}
	}
	for _, f := range h.faces {
		if len(f.verts) < 3 {
			continue
		}
		a := f.verts[0].Co
		b := f.verts[1].Co
		c := f.verts[2].Co
		n := b.Sub(a).Cross(c.Sub(a))
		for _, v := range f.verts {
			v.No = v.No.Add(n)
		}
	}
	for _, v := range h.verts {
		v.No = v.No.Normalize()
	}
}

// VertNeighbors implements Surface, walking the disk cycle of v.
func (h *Hedge) VertNeighbors(v int, buf []int) []int {
	hv := h.Vert(v)
	if hv == nil || hv.edge == nil {
		return buf
	}
	e := hv.edge
	start := e
	for {
		i := e.side(hv)
		if i < 0 {
			break
		}
		buf = append(buf, e.verts[i^1].index)
		e = e.next[i]
		if e == start {
			break
		}
	}
	return buf
}

// VertFaces implements Surface.
func (h *Hedge) VertFaces(v int, buf []int) []int {
	hv := h.Vert(v)
	if hv == nil {
		return buf
	}
	for _, f := range hv.faces {
		buf = append(buf, f.index)
	}
	return buf
}

// FaceVerts implements Surface.
func (h *Hedge) FaceVerts(f int, buf []int) []int {
	if f < 0 || f >= len(h.faces) {
		return buf
	}
	for _, hv := range h.faces[f].verts {
		buf = append(buf, hv.index)
	}
	return buf
}

// VertIsBoundary implements Surface. A vertex is on the boundary when any
// edge in its disk cycle borders fewer than two faces.
func (h *Hedge) VertIsBoundary(v int) bool {
	hv := h.Vert(v)
	if hv == nil || hv.edge == nil {
		return false
	}
	e := hv.edge
	start := e
	for {
		if e.faceCount < 2 {
			return true
		}
		i := e.side(hv)
		if i < 0 {
			return false
		}
		e = e.next[i]
		if e == start {
			return false
		}
	}
}

// RayOccluded implements Surface.
func (h *Hedge) RayOccluded(co, dir math.Vec3) bool {
	ray := Ray{Origin: co, Direction: dir}
	var corners []math.Vec3
	for _, f := range h.faces {
		if len(f.verts) < 3 {
			continue
		}
		corners = corners[:0]
		for _, hv := range f.verts {
			corners = append(corners, hv.Co)
		}
		if faceFanOccludes(ray, corners) {
			return true
		}
	}
	return false
}
