package sculpt

import (
	"github.com/Faultbox/sculptcore/internal/logger"
	"github.com/Faultbox/sculptcore/internal/sculpt/attr"
	"github.com/Faultbox/sculptcore/internal/sculpt/floodfill"
	"github.com/Faultbox/sculptcore/internal/sculpt/mesh"
	"github.com/Faultbox/sculptcore/pkg/math"
)

// Attribute layer names owned by the session.
const (
	AttrNameFaceSet   = ".sculpt_face_set"
	AttrNameStrokeID  = ".sculpt_stroke_id"
	AttrNameIslandKey = ".sculpt_island_key"
)

// DefaultFaceSet is the face set every face belongs to until face sets are
// painted.
const DefaultFaceSet = 1

// StrokeCache is per-stroke brush state. It exists for the duration of one
// brush stroke.
type StrokeCache struct {
	Brush    *Brush
	Radius   float32
	Location math.Vec3

	// InitialNormalSymm is the stroke's initial surface normal under the
	// current mirror-symmetry pass.
	InitialNormalSymm math.Vec3
	// ViewNormalSymm is the viewing direction under the current pass.
	ViewNormalSymm math.Vec3

	// PaintFaceSet is the face set being painted by a draw-face-sets
	// stroke.
	PaintFaceSet int
}

// FilterCache is the stroke-less counterpart used by mesh filters.
type FilterCache struct {
	InitialNormal math.Vec3
	ViewNormal    math.Vec3
}

// Session owns the sculpt-mode state for one object: surface backend,
// attribute store and stroke lifecycle. It is mutated only by the thread
// driving the stroke; factor queries during a stroke are read-mostly.
type Session struct {
	Surf  mesh.Surface
	Attrs *attr.Store

	// StrokeID distinguishes strokes for attribute stamping. It advances
	// at stroke begin and deliberately wraps.
	StrokeID uint8

	Cache  *StrokeCache
	Filter *FilterCache

	// ActiveVert is the resolved linear index of the active vertex, -1
	// when none.
	ActiveVert int

	// SymmBits enables mirror symmetry per axis (X=1, Y=2, Z=4).
	SymmBits int

	// DynTopo marks strokes that continuously change topology.
	DynTopo bool

	// Automasking attribute handles, managed by the automask package.
	FactorAttr    attr.Handle
	CavityAttr    attr.Handle
	OcclusionAttr attr.Handle
	StrokeIDAttr  attr.Handle

	// Settings-hash reuse state across strokes.
	LastAutomaskHash     uint64
	HaveLastHash         bool
	LastAutomaskStrokeID uint8

	// RecomputeCount counts automask precompute passes, for reuse
	// diagnostics.
	RecomputeCount int

	faceSetAttr    attr.Handle
	islandsValid   bool
	islandBuiltFor int
}

// NewSession creates a session over a surface backend.
func NewSession(surf mesh.Surface) *Session {
	return &Session{
		Surf:       surf,
		Attrs:      attr.NewStore(surf),
		ActiveVert: -1,
	}
}

// Close tears the session down, freeing all non-permanent attributes.
func (ss *Session) Close() {
	ss.Attrs.DestroyTemporaryAll()
	ss.Cache = nil
	ss.Filter = nil
}

// BeginStroke starts a stroke: advances the stroke id, snapshots original
// positions and installs the stroke cache.
func (ss *Session) BeginStroke(cache *StrokeCache) {
	ss.StrokeID++
	ss.Surf.CaptureOrig()
	ss.Cache = cache
}

// EndStroke finishes a stroke. Stroke-scoped attribute buffers are kept for
// possible reuse by the next stroke; AbortStroke drops them.
func (ss *Session) EndStroke() {
	ss.Cache = nil
}

// AbortStroke tears down a cancelled stroke, dropping stroke-scoped
// buffers. No further factor queries may occur for this stroke.
func (ss *Session) AbortStroke() {
	ss.Attrs.DestroyTemporaryStroke()
	ss.Cache = nil
}

// SetActiveVert resolves and stores the active vertex handle.
func (ss *Session) SetActiveVert(av mesh.ActiveVert) {
	ss.ActiveVert = mesh.Resolve(ss.Surf, av)
}

// EnsureFaceSets creates the persistent face-set attribute, filled with the
// default set.
func (ss *Session) EnsureFaceSets() error {
	if ss.Attrs.Lookup(ss.faceSetAttr) != nil {
		return nil
	}
	h, err := ss.Attrs.Ensure(mesh.DomainFace, mesh.ElemInt, AttrNameFaceSet, attr.Params{Permanent: true})
	if err != nil {
		return err
	}
	a := ss.Attrs.Lookup(h)
	for i := range a.Ints {
		a.Ints[i] = DefaultFaceSet
	}
	ss.faceSetAttr = h
	return nil
}

// SetFaceSet assigns face f to a set. A no-op until EnsureFaceSets ran.
func (ss *Session) SetFaceSet(f int, set int) {
	a := ss.Attrs.Lookup(ss.faceSetAttr)
	if a == nil || f < 0 || f >= len(a.Ints) {
		return
	}
	a.Ints[f] = int32(set)
}

// FaceSet returns the set of face f, or the default set when face sets
// do not exist.
func (ss *Session) FaceSet(f int) int {
	a := ss.Attrs.Lookup(ss.faceSetAttr)
	if a == nil || f < 0 || f >= len(a.Ints) {
		return DefaultFaceSet
	}
	return int(a.Ints[f])
}

// VertFaceSetGet returns the face set of the first face incident to v.
func (ss *Session) VertFaceSetGet(v int) int {
	faces := ss.Surf.VertFaces(v, nil)
	if len(faces) == 0 {
		return DefaultFaceSet
	}
	return ss.FaceSet(faces[0])
}

// VertHasFaceSet reports whether any face of v belongs to set.
func (ss *Session) VertHasFaceSet(v int, set int) bool {
	faces := ss.Surf.VertFaces(v, nil)
	if len(faces) == 0 {
		return set == DefaultFaceSet
	}
	for _, f := range faces {
		if ss.FaceSet(f) == set {
			return true
		}
	}
	return false
}

// VertHasUniqueFaceSet reports whether all faces of v share one set.
func (ss *Session) VertHasUniqueFaceSet(v int) bool {
	faces := ss.Surf.VertFaces(v, nil)
	for i := 1; i < len(faces); i++ {
		if ss.FaceSet(faces[i]) != ss.FaceSet(faces[0]) {
			return false
		}
	}
	return true
}

// ActiveFaceSet returns the face set under the active vertex.
func (ss *Session) ActiveFaceSet() int {
	if ss.ActiveVert < 0 {
		return DefaultFaceSet
	}
	return ss.VertFaceSetGet(ss.ActiveVert)
}

// VertIsBoundary reports whether v lies on a topological boundary.
func (ss *Session) VertIsBoundary(v int) bool {
	return ss.Surf.VertIsBoundary(v)
}

// StrokeIDEnsure creates the per-vertex stroke stamp attribute.
func (ss *Session) StrokeIDEnsure() error {
	if ss.Attrs.Lookup(ss.StrokeIDAttr) != nil {
		return nil
	}
	h, err := ss.Attrs.Ensure(mesh.DomainPoint, mesh.ElemByte, AttrNameStrokeID, attr.Params{})
	if err != nil {
		return err
	}
	// Stamps must not collide with the current stroke before the first
	// query touches them.
	a := ss.Attrs.Lookup(h)
	for i := range a.Bytes {
		a.Bytes[i] = ss.StrokeID - 1
	}
	ss.StrokeIDAttr = h
	return nil
}

// InvalidateIslands drops the cached connected-component ids. Call after a
// topology change.
func (ss *Session) InvalidateIslands() {
	ss.islandsValid = false
}

// IslandsEnsure builds the per-vertex connected-component ids if missing
// or stale. The cached ids survive only while the vertex count is
// unchanged; attribute recreation on resize zeroes them.
func (ss *Session) IslandsEnsure() error {
	if ss.islandsValid && ss.islandBuiltFor == ss.Surf.VertCount() {
		if _, ok := ss.Attrs.Get(mesh.DomainPoint, mesh.ElemInt, AttrNameIslandKey); ok {
			return nil
		}
	}
	h, err := ss.Attrs.Ensure(mesh.DomainPoint, mesh.ElemInt, AttrNameIslandKey, attr.Params{})
	if err != nil {
		return err
	}
	a := ss.Attrs.Lookup(h)
	for i := range a.Ints {
		a.Ints[i] = -1
	}

	island := int32(0)
	for v := 0; v < ss.Surf.VertCount(); v++ {
		if a.Ints[v] != -1 {
			continue
		}
		fill := floodfill.NewFill(ss.Surf.VertCount())
		fill.Add(v)
		a.Ints[v] = island
		fill.Execute(ss.Surf, func(from, to int) bool {
			a.Ints[to] = island
			return true
		})
		island++
	}
	ss.islandsValid = true
	ss.islandBuiltFor = ss.Surf.VertCount()
	logger.Sugar.Debugf("sculpt: island cache built, %d islands over %d verts", island, ss.Surf.VertCount())
	return nil
}

// IslandID returns the connected-component id of v, or -1 when the island
// cache is absent.
func (ss *Session) IslandID(v int) int {
	h, ok := ss.Attrs.Get(mesh.DomainPoint, mesh.ElemInt, AttrNameIslandKey)
	if !ok {
		return -1
	}
	a := ss.Attrs.Lookup(h)
	if a == nil || v < 0 || v >= len(a.Ints) {
		return -1
	}
	return int(a.Ints[v])
}

// IsVertexInsideBrushRadiusSymm reports whether co lies within radius of
// location under any enabled mirror-symmetry transform.
func (ss *Session) IsVertexInsideBrushRadiusSymm(co, location math.Vec3, radius float32) bool {
	for area := 0; area <= 7; area++ {
		if area != 0 && (area&ss.SymmBits) != area {
			continue
		}
		if co.Distance(location.MirrorFlip(area)) <= radius {
			return true
		}
	}
	return false
}
