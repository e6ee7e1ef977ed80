package mesh

import "github.com/Faultbox/sculptcore/pkg/math"

// Layer is a named attribute layer hosted by the plain-mesh backend.
// Exactly one of the data slices is non-nil, matching Etype.
type Layer struct {
	Name      string
	Domain    Domain
	Etype     ElemType
	Temporary bool

	Floats []float32
	Ints   []int32
	Bytes  []uint8
}

// Len returns the layer's element count.
func (l *Layer) Len() int {
	switch l.Etype {
	case ElemFloat:
		return len(l.Floats)
	case ElemInt:
		return len(l.Ints)
	case ElemByte:
		return len(l.Bytes)
	}
	return 0
}

// Mesh is the static indexed polygon mesh backend. Faces are stored as an
// offset table into a flat corner-vertex list.
type Mesh struct {
	verts   []math.Vec3
	normals []math.Vec3

	faceOffsets []int // len = face count + 1
	cornerVerts []int

	origPos  []math.Vec3
	origNorm []math.Vec3

	layers []*Layer

	// Lazily built adjacency.
	vertFaces [][]int
	boundary  []bool
}

// NewMesh builds a mesh from vertex positions and polygon corner lists.
// Vertex normals are computed from face geometry.
func NewMesh(verts []math.Vec3, faces [][]int) *Mesh {
	m := &Mesh{
		verts:       verts,
		faceOffsets: make([]int, 0, len(faces)+1),
	}
	m.faceOffsets = append(m.faceOffsets, 0)
	for _, f := range faces {
		m.cornerVerts = append(m.cornerVerts, f...)
		m.faceOffsets = append(m.faceOffsets, len(m.cornerVerts))
	}
	m.RecalcNormals()
	return m
}

// Type implements Surface.
func (m *Mesh) Type() Type { return TypeMesh }

// VertCount implements Surface.
func (m *Mesh) VertCount() int { return len(m.verts) }

// FaceCount implements Surface.
func (m *Mesh) FaceCount() int { return len(m.faceOffsets) - 1 }

// Position implements Surface.
func (m *Mesh) Position(v int) math.Vec3 {
	if v < 0 || v >= len(m.verts) {
		return math.Vec3{}
	}
	return m.verts[v]
}

// Normal implements Surface.
func (m *Mesh) Normal(v int) math.Vec3 {
	if v < 0 || v >= len(m.normals) {
		return math.Vec3{}
	}
	return m.normals[v]
}

// OrigPosition implements Surface.
func (m *Mesh) OrigPosition(v int) math.Vec3 {
	if m.origPos == nil || v < 0 || v >= len(m.origPos) {
		return m.Position(v)
	}
	return m.origPos[v]
}

// OrigNormal implements Surface.
func (m *Mesh) OrigNormal(v int) math.Vec3 {
	if m.origNorm == nil || v < 0 || v >= len(m.origNorm) {
		return m.Normal(v)
	}
	return m.origNorm[v]
}

// CaptureOrig implements Surface.
func (m *Mesh) CaptureOrig() {
	m.origPos = append(m.origPos[:0], m.verts...)
	m.origNorm = append(m.origNorm[:0], m.normals...)
}

// SetPosition moves a vertex. Normals are not recomputed automatically.
func (m *Mesh) SetPosition(v int, co math.Vec3) {
	if v < 0 || v >= len(m.verts) {
		return
	}
	m.verts[v] = co
}

// AddVert appends a vertex with no face connectivity and returns its index.
// Adjacency caches are invalidated; attribute layers keep their old length
// until the attribute store reconciles them.
func (m *Mesh) AddVert(co math.Vec3) int {
	m.verts = append(m.verts, co)
	m.normals = append(m.normals, math.Vec3{})
	m.vertFaces = nil
	m.boundary = nil
	return len(m.verts) - 1
}

// FaceCorners returns the corner vertex indices of face f, or nil when f is
// out of range.
func (m *Mesh) FaceCorners(f int) []int {
	if f < 0 || f >= m.FaceCount() {
		return nil
	}
	return m.cornerVerts[m.faceOffsets[f]:m.faceOffsets[f+1]]
}

// RecalcNormals rebuilds vertex normals as the normalized sum of incident
// face normals.
func (m *Mesh) RecalcNormals() {
	m.normals = make([]math.Vec3, len(m.verts))
	for f := 0; f < m.FaceCount(); f++ {
		corners := m.FaceCorners(f)
		if len(corners) < 3 {
			continue
		}
		a := m.verts[corners[0]]
		b := m.verts[corners[1]]
		c := m.verts[corners[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		for _, v := range corners {
			m.normals[v] = m.normals[v].Add(n)
		}
	}
	for i := range m.normals {
		m.normals[i] = m.normals[i].Normalize()
	}
}

func (m *Mesh) ensureVertFaces() {
	if m.vertFaces != nil {
		return
	}
	m.vertFaces = make([][]int, len(m.verts))
	for f := 0; f < m.FaceCount(); f++ {
		for _, v := range m.FaceCorners(f) {
			if v >= 0 && v < len(m.vertFaces) {
				m.vertFaces[v] = append(m.vertFaces[v], f)
			}
		}
	}
}

func (m *Mesh) ensureBoundary() {
	if m.boundary != nil {
		return
	}
	m.boundary = make([]bool, len(m.verts))

	// Count faces per undirected edge; an edge used by a single face is a
	// boundary edge and marks both endpoints.
	edgeFaces := make(map[[2]int]int)
	for f := 0; f < m.FaceCount(); f++ {
		corners := m.FaceCorners(f)
		for i, v := range corners {
			next := corners[(i+1)%len(corners)]
			a, b := v, next
			if a > b {
				a, b = b, a
			}
			edgeFaces[[2]int{a, b}]++
		}
	}
	for edge, count := range edgeFaces {
		if count == 1 {
			if edge[0] < len(m.boundary) {
				m.boundary[edge[0]] = true
			}
			if edge[1] < len(m.boundary) {
				m.boundary[edge[1]] = true
			}
		}
	}
}

// VertNeighbors implements Surface. Neighbors are the ring of vertices
// sharing a face edge with v.
func (m *Mesh) VertNeighbors(v int, buf []int) []int {
	if v < 0 || v >= len(m.verts) {
		return buf
	}
	m.ensureVertFaces()
	for _, f := range m.vertFaces[v] {
		corners := m.FaceCorners(f)
		for i, cv := range corners {
			if cv != v {
				continue
			}
			prev := corners[(i+len(corners)-1)%len(corners)]
			next := corners[(i+1)%len(corners)]
			buf = appendUnique(buf, prev)
			buf = appendUnique(buf, next)
		}
	}
	return buf
}

// VertFaces implements Surface.
func (m *Mesh) VertFaces(v int, buf []int) []int {
	if v < 0 || v >= len(m.verts) {
		return buf
	}
	m.ensureVertFaces()
	return append(buf, m.vertFaces[v]...)
}

// FaceVerts implements Surface.
func (m *Mesh) FaceVerts(f int, buf []int) []int {
	return append(buf, m.FaceCorners(f)...)
}

// VertIsBoundary implements Surface.
func (m *Mesh) VertIsBoundary(v int) bool {
	if v < 0 || v >= len(m.verts) {
		return false
	}
	m.ensureBoundary()
	return m.boundary[v]
}

// RayOccluded implements Surface.
func (m *Mesh) RayOccluded(co, dir math.Vec3) bool {
	ray := Ray{Origin: co, Direction: dir}
	var corners []math.Vec3
	for f := 0; f < m.FaceCount(); f++ {
		idx := m.FaceCorners(f)
		if len(idx) < 3 {
			continue
		}
		corners = corners[:0]
		for _, v := range idx {
			corners = append(corners, m.verts[v])
		}
		if faceFanOccludes(ray, corners) {
			return true
		}
	}
	return false
}

// AddLayer creates a named attribute layer sized to the current element
// count of the domain. Returns nil for an unsupported domain.
func (m *Mesh) AddLayer(domain Domain, etype ElemType, name string, temporary bool) *Layer {
	count := ElemCount(m, domain)
	if count < 0 {
		return nil
	}
	l := &Layer{Name: name, Domain: domain, Etype: etype, Temporary: temporary}
	switch etype {
	case ElemFloat:
		l.Floats = make([]float32, count)
	case ElemInt:
		l.Ints = make([]int32, count)
	case ElemByte:
		l.Bytes = make([]uint8, count)
	}
	m.layers = append(m.layers, l)
	return l
}

// FindLayer returns the named layer, or nil when absent.
func (m *Mesh) FindLayer(domain Domain, etype ElemType, name string) *Layer {
	for _, l := range m.layers {
		if l.Name == name && l.Domain == domain && l.Etype == etype {
			return l
		}
	}
	return nil
}

// RemoveLayer frees the named layer. Reports whether a layer was removed.
func (m *Mesh) RemoveLayer(domain Domain, etype ElemType, name string) bool {
	for i, l := range m.layers {
		if l.Name == name && l.Domain == domain && l.Etype == etype {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			return true
		}
	}
	return false
}

func appendUnique(buf []int, v int) []int {
	for _, b := range buf {
		if b == v {
			return buf
		}
	}
	return append(buf, v)
}
