package attr

import (
	"testing"

	"github.com/Faultbox/sculptcore/internal/logger"
	"github.com/Faultbox/sculptcore/internal/sculpt/mesh"
	"github.com/Faultbox/sculptcore/pkg/math"
)

func init() {
	logger.InitNop()
}

func testMesh() *mesh.Mesh {
	verts := []math.Vec3{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
	}
	faces := [][]int{
		{0, 1, 2, 3}, {4, 7, 6, 5}, {0, 4, 5, 1},
		{3, 2, 6, 7}, {0, 3, 7, 4}, {1, 5, 6, 2},
	}
	return mesh.NewMesh(verts, faces)
}

func TestEnsureCreatesNativeLayerOnMesh(t *testing.T) {
	m := testMesh()
	st := NewStore(m)

	h, err := st.Ensure(mesh.DomainPoint, mesh.ElemFloat, "factor", Params{})
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	a := st.Lookup(h)
	if a == nil {
		t.Fatal("Lookup returned nil for fresh handle")
	}
	if a.SimpleArray {
		t.Error("mesh backend should host a native layer by default")
	}
	if len(a.Floats) != 8 {
		t.Errorf("buffer size = %d, want 8", len(a.Floats))
	}
	if m.FindLayer(mesh.DomainPoint, mesh.ElemFloat, "factor") == nil {
		t.Error("native layer missing from mesh")
	}
}

func TestEnsureForcesSimpleArray(t *testing.T) {
	m := testMesh()
	st := NewStore(m)

	h, err := st.Ensure(mesh.DomainPoint, mesh.ElemFloat, "scratch", Params{SimpleArray: true})
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if a := st.Lookup(h); !a.SimpleArray {
		t.Error("SimpleArray param not honored")
	}
}

func TestEnsureOnGridsDowngradesPermanent(t *testing.T) {
	base := mesh.NewMesh([]math.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
	}, [][]int{{0, 1, 2, 3}})
	g, err := mesh.NewGrids(base, 1)
	if err != nil {
		t.Fatalf("NewGrids: %v", err)
	}
	st := NewStore(g)

	h, err := st.Ensure(mesh.DomainPoint, mesh.ElemFloat, "mask", Params{Permanent: true})
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	a := st.Lookup(h)
	if !a.SimpleArray {
		t.Error("grids backend must force simple-array storage")
	}
	if a.Params.Permanent {
		t.Error("permanent request on grids should downgrade")
	}
	if len(a.Floats) != g.VertCount() {
		t.Errorf("buffer size = %d, want %d", len(a.Floats), g.VertCount())
	}
}

func TestEnsureFindsExisting(t *testing.T) {
	st := NewStore(testMesh())

	h1, _ := st.Ensure(mesh.DomainPoint, mesh.ElemFloat, "factor", Params{})
	h2, _ := st.Ensure(mesh.DomainPoint, mesh.ElemFloat, "factor", Params{StrokeOnly: true})
	if h1 != h2 {
		t.Error("Ensure created a duplicate instead of finding the live attribute")
	}
	if a := st.Lookup(h2); !a.Params.StrokeOnly {
		t.Error("StrokeOnly param not synced on reuse")
	}
	if st.LiveCount() != 1 {
		t.Errorf("LiveCount() = %d, want 1", st.LiveCount())
	}
}

func TestGetFindOnly(t *testing.T) {
	st := NewStore(testMesh())

	if _, ok := st.Get(mesh.DomainPoint, mesh.ElemFloat, "nope"); ok {
		t.Error("Get found a nonexistent attribute")
	}
	st.Ensure(mesh.DomainPoint, mesh.ElemByte, "stamp", Params{})
	if _, ok := st.Get(mesh.DomainPoint, mesh.ElemByte, "stamp"); !ok {
		t.Error("Get missed a live attribute")
	}
	// Identity includes the element type.
	if _, ok := st.Get(mesh.DomainPoint, mesh.ElemFloat, "stamp"); ok {
		t.Error("Get matched across element types")
	}
}

func TestUpdateRefsIdempotent(t *testing.T) {
	m := testMesh()
	st := NewStore(m)

	h, _ := st.Ensure(mesh.DomainPoint, mesh.ElemFloat, "factor", Params{})
	a := st.Lookup(h)
	a.Floats[3] = 0.75

	st.UpdateRefs()
	st.UpdateRefs()

	a2 := st.Lookup(h)
	if a2 == nil {
		t.Fatal("handle went stale on an unchanged mesh")
	}
	if a2.Floats[3] != 0.75 {
		t.Errorf("contents changed: Floats[3] = %v, want 0.75", a2.Floats[3])
	}
	if &a2.Floats[0] != &a.Floats[0] {
		t.Error("buffer identity changed on an unchanged mesh")
	}
}

func TestUpdateRefsRecreatesAfterTopologyChange(t *testing.T) {
	m := testMesh()
	st := NewStore(m)

	h, _ := st.Ensure(mesh.DomainPoint, mesh.ElemFloat, "factor", Params{})

	m.AddVert(math.Vec3{X: 2, Y: 2, Z: 2})
	st.UpdateRefs()

	a := st.Lookup(h)
	if a == nil {
		t.Fatal("recreation must preserve the attribute slot and handle")
	}
	if len(a.Floats) != 9 {
		t.Errorf("buffer size after resize = %d, want 9", len(a.Floats))
	}
	if a.ElemNum != 9 {
		t.Errorf("ElemNum = %d, want 9", a.ElemNum)
	}
}

func TestDestroy(t *testing.T) {
	m := testMesh()
	st := NewStore(m)

	h, _ := st.Ensure(mesh.DomainPoint, mesh.ElemFloat, "factor", Params{})
	if !st.Destroy(h) {
		t.Fatal("Destroy failed on live attribute")
	}
	if st.Destroy(h) {
		t.Error("double Destroy succeeded")
	}
	if st.Lookup(h) != nil {
		t.Error("stale handle resolved after destroy")
	}
	if m.FindLayer(mesh.DomainPoint, mesh.ElemFloat, "factor") != nil {
		t.Error("native layer survived destroy")
	}

	// The freed slot can be reused without resurrecting the old handle.
	h2, _ := st.Ensure(mesh.DomainPoint, mesh.ElemFloat, "other", Params{})
	if st.Lookup(h) != nil {
		t.Error("stale handle aliases the new occupant")
	}
	if st.Lookup(h2) == nil {
		t.Error("fresh handle on reused slot failed to resolve")
	}
}

func TestDestroyTemporarySweeps(t *testing.T) {
	st := NewStore(testMesh())

	st.Ensure(mesh.DomainPoint, mesh.ElemFloat, "stroke", Params{StrokeOnly: true})
	st.Ensure(mesh.DomainPoint, mesh.ElemFloat, "session", Params{})
	st.Ensure(mesh.DomainFace, mesh.ElemInt, "face_set", Params{Permanent: true})

	st.DestroyTemporaryStroke()
	if st.LiveCount() != 2 {
		t.Errorf("after stroke sweep LiveCount() = %d, want 2", st.LiveCount())
	}

	st.DestroyTemporaryAll()
	if st.LiveCount() != 1 {
		t.Errorf("after full sweep LiveCount() = %d, want 1 (permanent)", st.LiveCount())
	}
}

func TestEnsureUnsupportedDomain(t *testing.T) {
	st := NewStore(testMesh())
	if _, err := st.Ensure(mesh.Domain(42), mesh.ElemFloat, "bad", Params{}); err == nil {
		t.Error("Ensure accepted an unsupported domain")
	}
}

func TestFaceDomain(t *testing.T) {
	st := NewStore(testMesh())
	h, err := st.Ensure(mesh.DomainFace, mesh.ElemInt, "face_set", Params{Permanent: true})
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	a := st.Lookup(h)
	if len(a.Ints) != 6 {
		t.Errorf("face buffer size = %d, want 6", len(a.Ints))
	}
}
