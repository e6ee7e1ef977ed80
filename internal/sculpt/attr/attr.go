// Package attr implements the per-session registry of named, typed
// per-domain attribute buffers used by sculpt tools.
package attr

import (
	"fmt"

	"github.com/Faultbox/sculptcore/internal/logger"
	"github.com/Faultbox/sculptcore/internal/sculpt/mesh"
)

// MaxAttributes is the capacity of the session attribute registry.
const MaxAttributes = 64

// Params configure attribute creation.
type Params struct {
	// Permanent attributes survive session teardown sweeps.
	Permanent bool
	// StrokeOnly attributes are candidates for destruction between strokes.
	StrokeOnly bool
	// SimpleArray forces plain array storage even when the backend could
	// host a native layer.
	SimpleArray bool
}

// Handle refers to a live attribute. Handles are generation tagged: after
// the slot is destroyed and reused, stale handles resolve to nil instead of
// aliasing the new occupant.
type Handle struct {
	slot int
	gen  uint32
}

// Valid reports whether the handle was ever issued. It does not imply the
// attribute is still live; use Store.Lookup for that.
func (h Handle) Valid() bool { return h.gen != 0 }

// Attribute is one named, typed, per-domain buffer. Exactly one of the data
// slices is non-nil, matching Etype.
type Attribute struct {
	Name   string
	Domain mesh.Domain
	Etype  mesh.ElemType
	Params Params

	// SimpleArray reports the actual storage mode, which may have been
	// forced on backends that cannot host native layers.
	SimpleArray bool
	ElemNum     int

	Floats []float32
	Ints   []int32
	Bytes  []uint8

	used  bool
	gen   uint32
	layer *mesh.Layer // set when backed by a native mesh layer
}

// Store owns up to MaxAttributes attributes for one sculpt session.
type Store struct {
	surf  mesh.Surface
	slots [MaxAttributes]Attribute
}

// NewStore creates a store bound to the session's active surface.
func NewStore(surf mesh.Surface) *Store {
	return &Store{surf: surf}
}

// Surface returns the surface the store reconciles against.
func (st *Store) Surface() mesh.Surface { return st.surf }

func (st *Store) elemCount(domain mesh.Domain) int {
	return mesh.ElemCount(st.surf, domain)
}

func (st *Store) handleFor(slot int) Handle {
	return Handle{slot: slot, gen: st.slots[slot].gen}
}

// Lookup resolves a handle to its attribute, or nil when the handle is
// stale or was never issued.
func (st *Store) Lookup(h Handle) *Attribute {
	if h.gen == 0 || h.slot < 0 || h.slot >= MaxAttributes {
		return nil
	}
	a := &st.slots[h.slot]
	if !a.used || a.gen != h.gen {
		return nil
	}
	return a
}

// Get finds a live attribute by identity. The boolean reports presence.
func (st *Store) Get(domain mesh.Domain, etype mesh.ElemType, name string) (Handle, bool) {
	for i := range st.slots {
		a := &st.slots[i]
		if a.used && a.Name == name && a.Domain == domain && a.Etype == etype {
			if st.update(a) {
				st.UpdateRefs()
			}
			return st.handleFor(i), true
		}
	}
	// An orphaned native layer can be adopted back into a slot.
	if m, ok := st.surf.(*mesh.Mesh); ok {
		if l := m.FindLayer(domain, etype, name); l != nil {
			slot := st.alloc()
			if slot < 0 {
				return Handle{}, false
			}
			a := &st.slots[slot]
			a.Name = name
			a.Domain = domain
			a.Etype = etype
			a.SimpleArray = false
			a.layer = l
			a.ElemNum = l.Len()
			a.Floats, a.Ints, a.Bytes = l.Floats, l.Ints, l.Bytes
			return st.handleFor(slot), true
		}
	}
	return Handle{}, false
}

// Ensure finds or creates an attribute. Creation sizes the buffer to the
// domain's current element count. An unsupported domain yields an error,
// not a panic.
func (st *Store) Ensure(domain mesh.Domain, etype mesh.ElemType, name string, params Params) (Handle, error) {
	if st.elemCount(domain) < 0 {
		return Handle{}, fmt.Errorf("attr: unsupported domain %d for %q", domain, name)
	}

	if h, ok := st.Get(domain, etype, name); ok {
		a := st.Lookup(h)
		st.update(a)
		// StrokeOnly is not part of storage identity; sync it on reuse.
		a.Params.StrokeOnly = params.StrokeOnly
		return h, nil
	}

	slot := st.alloc()
	if slot < 0 {
		return Handle{}, fmt.Errorf("attr: registry full (max %d), cannot create %q", MaxAttributes, name)
	}
	a := &st.slots[slot]
	a.Name = name
	a.Domain = domain
	a.Etype = etype
	a.Params = params
	st.create(a)
	st.UpdateRefs()
	return st.handleFor(slot), nil
}

// alloc reserves a free slot and returns its index, or -1 when full. The
// generation counter survives the reset so stale handles stay stale.
func (st *Store) alloc() int {
	for i := range st.slots {
		if !st.slots[i].used {
			gen := st.slots[i].gen + 1
			st.slots[i] = Attribute{used: true, gen: gen}
			return i
		}
	}
	return -1
}

// create allocates backing storage for a. Grid and half-edge backends
// cannot host named layers, so storage degrades to a simple array there; a
// permanent request on those backends downgrades with a warning, matching
// the source of this behavior.
func (st *Store) create(a *Attribute) {
	count := st.elemCount(a.Domain)

	simple := a.Params.SimpleArray
	if st.surf.Type() != mesh.TypeMesh {
		if a.Params.Permanent {
			logger.Sugar.Warnf("attr: %q requested permanent storage on a %v backend; using a local array",
				a.Name, st.surf.Type())
			a.Params.Permanent = false
		}
		simple = true
	}

	a.ElemNum = count
	a.Floats, a.Ints, a.Bytes = nil, nil, nil
	a.layer = nil

	if simple {
		a.SimpleArray = true
		switch a.Etype {
		case mesh.ElemFloat:
			a.Floats = make([]float32, count)
		case mesh.ElemInt:
			a.Ints = make([]int32, count)
		case mesh.ElemByte:
			a.Bytes = make([]uint8, count)
		}
		return
	}

	a.SimpleArray = false
	m := st.surf.(*mesh.Mesh)
	l := m.AddLayer(a.Domain, a.Etype, a.Name, !a.Params.Permanent)
	a.layer = l
	a.Floats, a.Ints, a.Bytes = l.Floats, l.Ints, l.Bytes
}

// update re-validates one attribute against the backend, recreating its
// storage in place when stale. Reports whether recreation happened.
func (st *Store) update(a *Attribute) bool {
	count := st.elemCount(a.Domain)

	bad := a.ElemNum != count

	// A coerced simple array on a backend that supports native layers.
	bad = bad || (a.SimpleArray && !a.Params.SimpleArray && st.surf.Type() == mesh.TypeMesh)

	if !a.SimpleArray {
		m, ok := st.surf.(*mesh.Mesh)
		if !ok {
			bad = true
		} else {
			l := m.FindLayer(a.Domain, a.Etype, a.Name)
			if l == nil || l.Len() != count {
				bad = true
			} else {
				// Refresh aliases; the layer may have been reallocated.
				a.layer = l
				a.Floats, a.Ints, a.Bytes = l.Floats, l.Ints, l.Bytes
			}
		}
	}

	if bad {
		logger.Sugar.Debugf("attr: recreating %q (%d -> %d elems)", a.Name, a.ElemNum, count)
		st.freeStorage(a)
		st.create(a)
	}
	return bad
}

// UpdateRefs re-validates every live attribute. It runs the sweep twice
// because a recreation can invalidate layer references refreshed by the
// first pass; the second pass is a no-op when nothing changed.
func (st *Store) UpdateRefs() {
	for pass := 0; pass < 2; pass++ {
		for i := range st.slots {
			if st.slots[i].used {
				st.update(&st.slots[i])
			}
		}
	}
}

func (st *Store) freeStorage(a *Attribute) {
	if a.layer != nil {
		if m, ok := st.surf.(*mesh.Mesh); ok {
			m.RemoveLayer(a.Domain, a.Etype, a.Name)
		}
		a.layer = nil
	}
	a.Floats, a.Ints, a.Bytes = nil, nil, nil
}

// Destroy frees an attribute's storage and releases its slot. Safe against
// double destruction; reports whether anything was freed.
func (st *Store) Destroy(h Handle) bool {
	a := st.Lookup(h)
	if a == nil || !a.used {
		return false
	}
	st.freeStorage(a)
	a.used = false
	a.ElemNum = 0
	return true
}

// DestroyTemporaryStroke frees all stroke-scoped attributes.
func (st *Store) DestroyTemporaryStroke() {
	for i := range st.slots {
		a := &st.slots[i]
		if a.used && a.Params.StrokeOnly {
			st.Destroy(st.handleFor(i))
		}
	}
}

// DestroyTemporaryAll frees every non-permanent attribute. Used at session
// teardown.
func (st *Store) DestroyTemporaryAll() {
	for i := range st.slots {
		a := &st.slots[i]
		if a.used && !a.Params.Permanent {
			st.Destroy(st.handleFor(i))
		}
	}
}

// LiveCount returns the number of live attributes, for diagnostics.
func (st *Store) LiveCount() int {
	n := 0
	for i := range st.slots {
		if st.slots[i].used {
			n++
		}
	}
	return n
}
