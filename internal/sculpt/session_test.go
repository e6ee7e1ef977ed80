package sculpt

import (
	"testing"

	"github.com/Faultbox/sculptcore/internal/logger"
	"github.com/Faultbox/sculptcore/internal/sculpt/attr"
	"github.com/Faultbox/sculptcore/internal/sculpt/mesh"
	"github.com/Faultbox/sculptcore/pkg/math"
)

func init() {
	logger.InitNop()
}

// twoQuadStrip builds two quads sharing the edge (1, 4).
func twoQuadStrip() *mesh.Mesh {
	verts := []math.Vec3{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0},
		{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1},
	}
	return mesh.NewMesh(verts, [][]int{{0, 1, 4, 3}, {1, 2, 5, 4}})
}

// twoIslands builds two quads with no shared vertices.
func twoIslands() *mesh.Mesh {
	verts := []math.Vec3{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
		{X: 5, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 1}, {X: 5, Y: 1},
	}
	return mesh.NewMesh(verts, [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}})
}

func TestStrokeLifecycle(t *testing.T) {
	ss := NewSession(twoQuadStrip())
	defer ss.Close()

	ss.BeginStroke(&StrokeCache{Radius: 1})
	if ss.StrokeID != 1 {
		t.Fatalf("StrokeID = %d, want 1", ss.StrokeID)
	}
	if ss.Cache == nil {
		t.Fatal("Cache = nil after BeginStroke")
	}

	h, err := ss.Attrs.Ensure(mesh.DomainPoint, mesh.ElemFloat, "test.stroke", attr.Params{StrokeOnly: true})
	if err != nil {
		t.Fatal(err)
	}

	ss.EndStroke()
	if ss.Cache != nil {
		t.Error("Cache != nil after EndStroke")
	}
	if ss.Attrs.Lookup(h) == nil {
		t.Error("stroke attribute dropped by EndStroke, want kept for reuse")
	}

	ss.BeginStroke(&StrokeCache{Radius: 1})
	ss.AbortStroke()
	if ss.Attrs.Lookup(h) != nil {
		t.Error("stroke attribute survived AbortStroke")
	}
}

func TestFaceSets(t *testing.T) {
	ss := NewSession(twoQuadStrip())
	defer ss.Close()

	if err := ss.EnsureFaceSets(); err != nil {
		t.Fatal(err)
	}
	if got := ss.FaceSet(0); got != DefaultFaceSet {
		t.Fatalf("FaceSet(0) = %d, want default %d", got, DefaultFaceSet)
	}

	ss.SetFaceSet(1, 7)
	if got := ss.FaceSet(1); got != 7 {
		t.Errorf("FaceSet(1) = %d, want 7", got)
	}

	if !ss.VertHasFaceSet(0, DefaultFaceSet) {
		t.Error("VertHasFaceSet(0, default) = false, want true")
	}
	if ss.VertHasFaceSet(0, 7) {
		t.Error("VertHasFaceSet(0, 7) = true, want false")
	}
	// Vertex 1 sits on the shared edge, so it belongs to both sets.
	if !ss.VertHasFaceSet(1, 7) || !ss.VertHasFaceSet(1, DefaultFaceSet) {
		t.Error("shared vertex should belong to both sets")
	}
	if ss.VertHasUniqueFaceSet(1) {
		t.Error("VertHasUniqueFaceSet(shared) = true, want false")
	}
	if !ss.VertHasUniqueFaceSet(0) {
		t.Error("VertHasUniqueFaceSet(0) = false, want true")
	}

	ss.SetActiveVert(mesh.ActiveMeshVert(2))
	if got := ss.ActiveFaceSet(); got != 7 {
		t.Errorf("ActiveFaceSet() = %d, want 7", got)
	}
}

func TestFaceSetQueriesWithoutAttribute(t *testing.T) {
	ss := NewSession(twoQuadStrip())
	defer ss.Close()

	if got := ss.FaceSet(0); got != DefaultFaceSet {
		t.Errorf("FaceSet(0) = %d, want default", got)
	}
	if !ss.VertHasFaceSet(0, DefaultFaceSet) {
		t.Error("VertHasFaceSet() = false without attribute, want default membership")
	}
	if got := ss.ActiveFaceSet(); got != DefaultFaceSet {
		t.Errorf("ActiveFaceSet() = %d with no active vert, want default", got)
	}
}

func TestStrokeIDEnsureStampsStale(t *testing.T) {
	ss := NewSession(twoQuadStrip())
	defer ss.Close()

	ss.BeginStroke(&StrokeCache{})
	if err := ss.StrokeIDEnsure(); err != nil {
		t.Fatal(err)
	}
	a := ss.Attrs.Lookup(ss.StrokeIDAttr)
	if a == nil {
		t.Fatal("stroke id attribute missing")
	}
	for i, b := range a.Bytes {
		if b != ss.StrokeID-1 {
			t.Fatalf("stamp[%d] = %d, want stale %d", i, b, ss.StrokeID-1)
		}
	}
}

func TestIslands(t *testing.T) {
	m := twoIslands()
	ss := NewSession(m)
	defer ss.Close()

	if err := ss.IslandsEnsure(); err != nil {
		t.Fatal(err)
	}
	if a, b := ss.IslandID(0), ss.IslandID(3); a != b {
		t.Errorf("IslandID(0) = %d, IslandID(3) = %d, want same island", a, b)
	}
	if a, b := ss.IslandID(0), ss.IslandID(4); a == b {
		t.Errorf("IslandID(0) = IslandID(4) = %d, want distinct islands", a)
	}

	// Growing the mesh invalidates the cache; the new vertex gets its own
	// island on rebuild.
	v := m.AddVert(math.Vec3{X: 10})
	if err := ss.IslandsEnsure(); err != nil {
		t.Fatal(err)
	}
	if got := ss.IslandID(v); got == ss.IslandID(0) || got == ss.IslandID(4) {
		t.Errorf("IslandID(new) = %d, want a fresh island", got)
	}
}

func TestIslandsInvalidate(t *testing.T) {
	ss := NewSession(twoIslands())
	defer ss.Close()

	if err := ss.IslandsEnsure(); err != nil {
		t.Fatal(err)
	}
	ss.InvalidateIslands()
	if err := ss.IslandsEnsure(); err != nil {
		t.Fatal(err)
	}
	if got := ss.IslandID(4); got == -1 {
		t.Error("IslandID(4) = -1 after rebuild, want valid id")
	}
}

func TestIsVertexInsideBrushRadiusSymm(t *testing.T) {
	ss := NewSession(twoQuadStrip())
	defer ss.Close()

	loc := math.Vec3{X: 2}
	co := math.Vec3{X: -2}

	if ss.IsVertexInsideBrushRadiusSymm(co, loc, 1) {
		t.Error("inside = true without symmetry, want false")
	}
	ss.SymmBits = 1 // mirror across X
	if !ss.IsVertexInsideBrushRadiusSymm(co, loc, 1) {
		t.Error("inside = false with X mirror, want true")
	}
}

func TestSetActiveVert(t *testing.T) {
	ss := NewSession(twoQuadStrip())
	defer ss.Close()

	ss.SetActiveVert(mesh.ActiveMeshVert(3))
	if ss.ActiveVert != 3 {
		t.Errorf("ActiveVert = %d, want 3", ss.ActiveVert)
	}

	// A handle for the wrong backend resolves to no active vertex.
	ss.SetActiveVert(mesh.ActiveGridVert(0, 0, 0))
	if ss.ActiveVert != -1 {
		t.Errorf("ActiveVert = %d for mismatched handle, want -1", ss.ActiveVert)
	}
}
