// Package mesh unifies vertex and face access over the three sculpt
// geometry backends: an indexed polygon mesh, a subdivision grid hierarchy
// and a dynamic half-edge mesh.
package mesh

import "github.com/Faultbox/sculptcore/pkg/math"

// Type identifies the active backend. The set is closed; switches over it
// are expected to be exhaustive.
type Type int

const (
	TypeMesh Type = iota
	TypeGrids
	TypeHedge
)

// Domain selects which element class an attribute or count refers to.
type Domain int

const (
	DomainPoint Domain = iota
	DomainFace
)

// ElemType is the element type of an attribute layer.
type ElemType int

const (
	ElemFloat ElemType = iota
	ElemInt
	ElemByte
)

// Surface is the access contract shared by the three backends. Vertices are
// addressed by linear index in [0, VertCount); faces by index in
// [0, FaceCount). Invalid indices yield zero values and empty slices, never
// panics.
type Surface interface {
	Type() Type

	// VertCount is the Point-domain element count. For grids this is
	// grid count times grid area.
	VertCount() int
	FaceCount() int

	Position(v int) math.Vec3
	Normal(v int) math.Vec3

	// OrigPosition and OrigNormal return the pre-stroke snapshot taken by
	// CaptureOrig, falling back to live values when no snapshot exists.
	OrigPosition(v int) math.Vec3
	OrigNormal(v int) math.Vec3
	CaptureOrig()

	// VertNeighbors appends the adjacent vertex indices of v to buf and
	// returns it. The sequence is finite and restartable per call.
	VertNeighbors(v int, buf []int) []int

	// VertFaces appends the face indices incident to v to buf.
	VertFaces(v int, buf []int) []int

	// FaceVerts appends the corner vertex indices of face f to buf.
	FaceVerts(f int, buf []int) []int

	// VertIsBoundary reports whether v lies on a topological boundary.
	VertIsBoundary(v int) bool

	// RayOccluded reports whether a ray from co along dir hits any face
	// of the surface, ignoring hits at the origin itself.
	RayOccluded(co, dir math.Vec3) bool
}

// ActiveVert is the tagged handle for the active vertex of a session. Only
// the variant matching the backend type is meaningful; Resolve collapses it
// into a linear index once, after which all access is index based.
type ActiveVert struct {
	kind Type

	index int // TypeMesh

	grid, gridX, gridY int // TypeGrids

	vert *HVert // TypeHedge
}

// ActiveMeshVert wraps a plain-mesh vertex index.
func ActiveMeshVert(i int) ActiveVert {
	return ActiveVert{kind: TypeMesh, index: i}
}

// ActiveGridVert wraps a grid coordinate triple.
func ActiveGridVert(grid, x, y int) ActiveVert {
	return ActiveVert{kind: TypeGrids, grid: grid, gridX: x, gridY: y}
}

// ActiveHedgeVert wraps a half-edge vertex reference.
func ActiveHedgeVert(v *HVert) ActiveVert {
	return ActiveVert{kind: TypeHedge, vert: v}
}

// Resolve collapses an ActiveVert into a linear index on s, or -1 when the
// handle does not match the backend or is out of range.
func Resolve(s Surface, av ActiveVert) int {
	if s.Type() != av.kind {
		return -1
	}
	switch av.kind {
	case TypeMesh:
		if av.index < 0 || av.index >= s.VertCount() {
			return -1
		}
		return av.index
	case TypeGrids:
		g := s.(*Grids)
		return g.LinearIndex(av.grid, av.gridX, av.gridY)
	case TypeHedge:
		h := s.(*Hedge)
		return h.VertIndex(av.vert)
	}
	return -1
}

// ElemCount returns the element count of a domain on s, or -1 for an
// unsupported domain.
func ElemCount(s Surface, domain Domain) int {
	switch domain {
	case DomainPoint:
		return s.VertCount()
	case DomainFace:
		return s.FaceCount()
	}
	return -1
}
