package mesh

import (
	"sort"
	"testing"

	"github.com/Faultbox/sculptcore/pkg/math"
)

// cubeMesh builds a closed 8-vertex cube of quads.
func cubeMesh() *Mesh {
	verts := []math.Vec3{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
	}
	faces := [][]int{
		{0, 1, 2, 3},
		{4, 7, 6, 5},
		{0, 4, 5, 1},
		{3, 2, 6, 7},
		{0, 3, 7, 4},
		{1, 5, 6, 2},
	}
	return NewMesh(verts, faces)
}

// planeMesh builds an open 3x3-vertex planar patch of 4 quads.
func planeMesh() *Mesh {
	var verts []math.Vec3
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			verts = append(verts, math.Vec3{X: float32(x), Y: float32(y)})
		}
	}
	faces := [][]int{
		{0, 1, 4, 3}, {1, 2, 5, 4}, {3, 4, 7, 6}, {4, 5, 8, 7},
	}
	return NewMesh(verts, faces)
}

func sortedNeighbors(s Surface, v int) []int {
	n := s.VertNeighbors(v, nil)
	sort.Ints(n)
	return n
}

func TestMeshCounts(t *testing.T) {
	m := cubeMesh()
	if got := m.VertCount(); got != 8 {
		t.Errorf("VertCount() = %d, want 8", got)
	}
	if got := m.FaceCount(); got != 6 {
		t.Errorf("FaceCount() = %d, want 6", got)
	}
}

func TestMeshVertNeighbors(t *testing.T) {
	m := cubeMesh()
	got := sortedNeighbors(m, 0)
	want := []int{1, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("neighbors of 0 = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("neighbors of 0 = %v, want %v", got, want)
			break
		}
	}

	if n := m.VertNeighbors(-1, nil); len(n) != 0 {
		t.Errorf("neighbors of invalid vert = %v, want empty", n)
	}
}

func TestMeshBoundary(t *testing.T) {
	cube := cubeMesh()
	for v := 0; v < cube.VertCount(); v++ {
		if cube.VertIsBoundary(v) {
			t.Errorf("closed cube vert %d reported as boundary", v)
		}
	}

	plane := planeMesh()
	for v := 0; v < plane.VertCount(); v++ {
		want := v != 4 // only the center vertex is interior
		if got := plane.VertIsBoundary(v); got != want {
			t.Errorf("plane vert %d boundary = %v, want %v", v, got, want)
		}
	}
}

func TestMeshNormalsPointOutOnPlane(t *testing.T) {
	m := planeMesh()
	n := m.Normal(4)
	if n.Z > -0.99 && n.Z < 0.99 {
		t.Errorf("plane normal = %v, want +-Z axis", n)
	}
}

func TestMeshLayers(t *testing.T) {
	m := cubeMesh()
	l := m.AddLayer(DomainPoint, ElemFloat, "factor", true)
	if l == nil {
		t.Fatal("AddLayer returned nil")
	}
	if len(l.Floats) != 8 {
		t.Errorf("layer size = %d, want 8", len(l.Floats))
	}
	if m.FindLayer(DomainPoint, ElemFloat, "factor") != l {
		t.Error("FindLayer did not return the created layer")
	}
	if m.FindLayer(DomainFace, ElemFloat, "factor") != nil {
		t.Error("FindLayer matched wrong domain")
	}
	if !m.RemoveLayer(DomainPoint, ElemFloat, "factor") {
		t.Error("RemoveLayer failed")
	}
	if m.RemoveLayer(DomainPoint, ElemFloat, "factor") {
		t.Error("RemoveLayer succeeded twice")
	}
}

func TestMeshRayOccluded(t *testing.T) {
	m := cubeMesh()
	// From inside the cube every direction is blocked.
	if !m.RayOccluded(math.Vec3{}, math.Vec3{Z: 1}) {
		t.Error("ray from cube center should be occluded")
	}
	// From outside, pointing away, nothing is hit.
	if m.RayOccluded(math.Vec3{Z: 5}, math.Vec3{Z: 1}) {
		t.Error("ray pointing away from cube should not be occluded")
	}
}

func TestGridsAdjacencyCrossesGrids(t *testing.T) {
	// Two quads sharing the edge (1, 4).
	verts := []math.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 2, Y: 1, Z: 0},
	}
	base := NewMesh(verts, [][]int{{0, 1, 4, 3}, {1, 2, 5, 4}})
	g, err := NewGrids(base, 2)
	if err != nil {
		t.Fatalf("NewGrids: %v", err)
	}

	size := g.GridSize()
	if size != 5 {
		t.Fatalf("GridSize() = %d, want 5", size)
	}
	if g.VertCount() != 2*size*size {
		t.Fatalf("VertCount() = %d, want %d", g.VertCount(), 2*size*size)
	}

	// A vertex in the middle of grid 0's shared edge must link into grid 1.
	mid := g.LinearIndex(0, size-1, size/2)
	crossed := false
	for _, n := range g.VertNeighbors(mid, nil) {
		grid, _, _ := g.GridCoord(n)
		if grid == 1 {
			crossed = true
			co := g.Position(mid)
			nco := g.Position(n)
			if co.Distance(nco) > 1e-5 {
				t.Errorf("cross-grid duplicate at %v but expected twin of %v", nco, co)
			}
		}
	}
	if !crossed {
		t.Error("shared-edge vertex has no neighbor in the adjacent grid")
	}

	// Interior grid verts never cross.
	for _, n := range g.VertNeighbors(g.LinearIndex(0, 1, 1), nil) {
		grid, _, _ := g.GridCoord(n)
		if grid != 0 {
			t.Errorf("interior vert crossed into grid %d", grid)
		}
	}
}

func TestGridsBoundary(t *testing.T) {
	base := NewMesh([]math.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
	}, [][]int{{0, 1, 2, 3}})
	g, err := NewGrids(base, 1)
	if err != nil {
		t.Fatalf("NewGrids: %v", err)
	}
	if !g.VertIsBoundary(g.LinearIndex(0, 0, 0)) {
		t.Error("corner vert should be boundary")
	}
	if g.VertIsBoundary(g.LinearIndex(0, 1, 1)) {
		t.Error("center vert should not be boundary")
	}
}

func TestGridsRejectsNonQuads(t *testing.T) {
	tri := NewMesh([]math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}}, [][]int{{0, 1, 2}})
	if _, err := NewGrids(tri, 2); err == nil {
		t.Error("NewGrids accepted a triangle base mesh")
	}
}

func TestHedgeNeighborsAndBoundary(t *testing.T) {
	h := NewHedge()
	a := h.AddVert(math.Vec3{})
	b := h.AddVert(math.Vec3{X: 1})
	c := h.AddVert(math.Vec3{X: 1, Y: 1})
	d := h.AddVert(math.Vec3{Y: 1})
	h.AddFace(a, b, c)
	h.AddFace(a, c, d)
	h.RecalcNormals()

	got := sortedNeighbors(h, h.VertIndex(a))
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("neighbors of a = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("neighbors of a = %v, want %v", got, want)
			break
		}
	}

	// Open fan: every vertex touches an edge with one face.
	if !h.VertIsBoundary(0) {
		t.Error("open-mesh vert should be boundary")
	}

	faces := h.VertFaces(h.VertIndex(a), nil)
	if len(faces) != 2 {
		t.Errorf("vert a faces = %v, want 2 faces", faces)
	}
}

func TestHedgeDynamicGrowth(t *testing.T) {
	h := NewHedge()
	a := h.AddVert(math.Vec3{})
	b := h.AddVert(math.Vec3{X: 1})
	c := h.AddVert(math.Vec3{Y: 1})
	h.AddFace(a, b, c)

	if h.VertCount() != 3 {
		t.Fatalf("VertCount() = %d, want 3", h.VertCount())
	}
	dv := h.AddVert(math.Vec3{X: 1, Y: 1})
	h.AddFace(b, dv, c)
	if h.VertCount() != 4 || h.FaceCount() != 2 {
		t.Errorf("counts after growth = (%d, %d), want (4, 2)", h.VertCount(), h.FaceCount())
	}
	gotN := sortedNeighbors(h, h.VertIndex(dv))
	if len(gotN) != 2 {
		t.Errorf("neighbors of new vert = %v, want 2", gotN)
	}
}

func TestResolve(t *testing.T) {
	m := cubeMesh()
	if got := Resolve(m, ActiveMeshVert(3)); got != 3 {
		t.Errorf("Resolve mesh vert = %d, want 3", got)
	}
	if got := Resolve(m, ActiveMeshVert(99)); got != -1 {
		t.Errorf("Resolve out-of-range vert = %d, want -1", got)
	}
	if got := Resolve(m, ActiveGridVert(0, 0, 0)); got != -1 {
		t.Errorf("Resolve mismatched handle kind = %d, want -1", got)
	}

	h := NewHedge()
	hv := h.AddVert(math.Vec3{})
	if got := Resolve(h, ActiveHedgeVert(hv)); got != 0 {
		t.Errorf("Resolve hedge vert = %d, want 0", got)
	}
	if got := Resolve(h, ActiveHedgeVert(nil)); got != -1 {
		t.Errorf("Resolve nil hedge vert = %d, want -1", got)
	}
}

func TestElemCount(t *testing.T) {
	m := cubeMesh()
	if got := ElemCount(m, DomainPoint); got != 8 {
		t.Errorf("ElemCount(Point) = %d, want 8", got)
	}
	if got := ElemCount(m, DomainFace); got != 6 {
		t.Errorf("ElemCount(Face) = %d, want 6", got)
	}
	if got := ElemCount(m, Domain(99)); got != -1 {
		t.Errorf("ElemCount(invalid) = %d, want -1", got)
	}
}
