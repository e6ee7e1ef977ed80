package mesh

import (
	"fmt"

	"github.com/Faultbox/sculptcore/pkg/math"
)

// gridEdge links one side of a grid to the matching side of the grid across
// the shared base-mesh edge. neighbor is -1 on mesh boundaries.
type gridEdge struct {
	neighbor     int
	neighborEdge int
	reversed     bool
}

// Grids is the multiresolution backend: one subdivision grid per quad face
// of a base mesh. Grid vertices along shared base edges are duplicated per
// grid, like a CCG layout; adjacency links the duplicates so traversal
// crosses grid boundaries.
type Grids struct {
	base *Mesh
	size int // vertices per grid side

	positions []math.Vec3
	normals   []math.Vec3
	origPos   []math.Vec3
	origNorm  []math.Vec3

	edges [][4]gridEdge
}

// NewGrids subdivides a base mesh of quads into a grid hierarchy with
// (2^level + 1) vertices per grid side.
func NewGrids(base *Mesh, level int) (*Grids, error) {
	if level < 1 {
		return nil, fmt.Errorf("subdivision level %d out of range", level)
	}
	for f := 0; f < base.FaceCount(); f++ {
		if len(base.FaceCorners(f)) != 4 {
			return nil, fmt.Errorf("face %d is not a quad", f)
		}
	}

	g := &Grids{base: base}
	g.rebuild(level)
	return g, nil
}

// Resubdivide rebuilds the hierarchy at a new level. Attribute buffers
// sized to the old vertex count become stale and are reconciled by the
// attribute store.
func (g *Grids) Resubdivide(level int) {
	if level >= 1 {
		g.rebuild(level)
	}
}

func (g *Grids) rebuild(level int) {
	g.size = (1 << level) + 1
	area := g.size * g.size
	faces := g.base.FaceCount()

	g.positions = make([]math.Vec3, faces*area)
	g.origPos = nil
	g.origNorm = nil

	for f := 0; f < faces; f++ {
		corners := g.base.FaceCorners(f)
		c0 := g.base.Position(corners[0])
		c1 := g.base.Position(corners[1])
		c2 := g.base.Position(corners[2])
		c3 := g.base.Position(corners[3])

		for y := 0; y < g.size; y++ {
			for x := 0; x < g.size; x++ {
				tx := float32(x) / float32(g.size-1)
				ty := float32(y) / float32(g.size-1)
				bottom := c0.Add(c1.Sub(c0).Scale(tx))
				top := c3.Add(c2.Sub(c3).Scale(tx))
				g.positions[f*area+y*g.size+x] = bottom.Add(top.Sub(bottom).Scale(ty))
			}
		}
	}

	g.buildEdges()
	g.RecalcNormals()
}

func (g *Grids) buildEdges() {
	type side struct {
		face int
		edge int
	}
	shared := make(map[[2]int][]side)
	for f := 0; f < g.base.FaceCount(); f++ {
		corners := g.base.FaceCorners(f)
		for e := 0; e < 4; e++ {
			a := corners[e]
			b := corners[(e+1)%4]
			key := [2]int{a, b}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			shared[key] = append(shared[key], side{f, e})
		}
	}

	g.edges = make([][4]gridEdge, g.base.FaceCount())
	for f := range g.edges {
		for e := 0; e < 4; e++ {
			g.edges[f][e] = gridEdge{neighbor: -1}
		}
	}
	for key, sides := range shared {
		if len(sides) != 2 {
			continue // boundary or non-manifold edge
		}
		a, b := sides[0], sides[1]
		// With consistent winding the shared edge runs in opposite
		// directions on the two faces, so edge params mirror.
		aDir := g.base.FaceCorners(a.face)[a.edge] == key[0]
		bDir := g.base.FaceCorners(b.face)[b.edge] == key[0]
		reversed := aDir != bDir
		g.edges[a.face][a.edge] = gridEdge{neighbor: b.face, neighborEdge: b.edge, reversed: reversed}
		g.edges[b.face][b.edge] = gridEdge{neighbor: a.face, neighborEdge: a.edge, reversed: reversed}
	}
}

// GridSize returns the per-side vertex count of each grid.
func (g *Grids) GridSize() int { return g.size }

// GridArea returns the per-grid vertex count.
func (g *Grids) GridArea() int { return g.size * g.size }

// LinearIndex maps a grid coordinate triple to a linear vertex index, or -1
// when out of range.
func (g *Grids) LinearIndex(grid, x, y int) int {
	if grid < 0 || grid >= g.base.FaceCount() || x < 0 || x >= g.size || y < 0 || y >= g.size {
		return -1
	}
	return grid*g.GridArea() + y*g.size + x
}

// GridCoord splits a linear vertex index into its grid coordinate triple.
func (g *Grids) GridCoord(v int) (grid, x, y int) {
	area := g.GridArea()
	grid = v / area
	rem := v % area
	return grid, rem % g.size, rem / g.size
}

// Type implements Surface.
func (g *Grids) Type() Type { return TypeGrids }

// VertCount implements Surface.
func (g *Grids) VertCount() int { return g.base.FaceCount() * g.GridArea() }

// FaceCount implements Surface. Faces are the base-mesh faces.
func (g *Grids) FaceCount() int { return g.base.FaceCount() }

// Position implements Surface.
func (g *Grids) Position(v int) math.Vec3 {
	if v < 0 || v >= len(g.positions) {
		return math.Vec3{}
	}
	return g.positions[v]
}

// Normal implements Surface.
func (g *Grids) Normal(v int) math.Vec3 {
	if v < 0 || v >= len(g.normals) {
		return math.Vec3{}
	}
	return g.normals[v]
}

// OrigPosition implements Surface.
func (g *Grids) OrigPosition(v int) math.Vec3 {
	if g.origPos == nil || v < 0 || v >= len(g.origPos) {
		return g.Position(v)
	}
	return g.origPos[v]
}

// OrigNormal implements Surface.
func (g *Grids) OrigNormal(v int) math.Vec3 {
	if g.origNorm == nil || v < 0 || v >= len(g.origNorm) {
		return g.Normal(v)
	}
	return g.origNorm[v]
}

// CaptureOrig implements Surface.
func (g *Grids) CaptureOrig() {
	g.origPos = append(g.origPos[:0], g.positions...)
	g.origNorm = append(g.origNorm[:0], g.normals...)
}

// SetPosition moves a grid vertex.
func (g *Grids) SetPosition(v int, co math.Vec3) {
	if v >= 0 && v < len(g.positions) {
		g.positions[v] = co
	}
}

// RecalcNormals rebuilds vertex normals from in-grid tangents.
func (g *Grids) RecalcNormals() {
	g.normals = make([]math.Vec3, len(g.positions))
	for v := range g.positions {
		grid, x, y := g.GridCoord(v)
		x0, x1 := clampInt(x-1, 0, g.size-1), clampInt(x+1, 0, g.size-1)
		y0, y1 := clampInt(y-1, 0, g.size-1), clampInt(y+1, 0, g.size-1)
		dx := g.positions[g.LinearIndex(grid, x1, y)].Sub(g.positions[g.LinearIndex(grid, x0, y)])
		dy := g.positions[g.LinearIndex(grid, x, y1)].Sub(g.positions[g.LinearIndex(grid, x, y0)])
		g.normals[v] = dx.Cross(dy).Normalize()
	}
}

// edgeParam returns the position of (x, y) along grid edge e, or -1 when
// the vertex does not lie on that edge.
func (g *Grids) edgeParam(e, x, y int) int {
	n := g.size - 1
	switch e {
	case 0:
		if y == 0 {
			return x
		}
	case 1:
		if x == n {
			return y
		}
	case 2:
		if y == n {
			return n - x
		}
	case 3:
		if x == 0 {
			return n - y
		}
	}
	return -1
}

// edgeCoord is the inverse of edgeParam.
func (g *Grids) edgeCoord(e, t int) (x, y int) {
	n := g.size - 1
	switch e {
	case 0:
		return t, 0
	case 1:
		return n, t
	case 2:
		return n - t, n
	case 3:
		return 0, n - t
	}
	return -1, -1
}

// VertNeighbors implements Surface. In-grid neighbors form the 4-ring;
// vertices on grid edges additionally link to their duplicates in the grid
// across the shared base edge.
func (g *Grids) VertNeighbors(v int, buf []int) []int {
	if v < 0 || v >= len(g.positions) {
		return buf
	}
	grid, x, y := g.GridCoord(v)

	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		if n := g.LinearIndex(grid, x+d[0], y+d[1]); n >= 0 {
			buf = append(buf, n)
		}
	}

	for e := 0; e < 4; e++ {
		t := g.edgeParam(e, x, y)
		if t < 0 {
			continue
		}
		link := g.edges[grid][e]
		if link.neighbor < 0 {
			continue
		}
		nt := t
		if link.reversed {
			nt = g.size - 1 - t
		}
		nx, ny := g.edgeCoord(link.neighborEdge, nt)
		if n := g.LinearIndex(link.neighbor, nx, ny); n >= 0 {
			buf = appendUnique(buf, n)
		}
	}
	return buf
}

// VertFaces implements Surface. A grid vertex belongs to its own base face
// and, along shared edges, to the neighboring base faces.
func (g *Grids) VertFaces(v int, buf []int) []int {
	if v < 0 || v >= len(g.positions) {
		return buf
	}
	grid, x, y := g.GridCoord(v)
	buf = append(buf, grid)
	for e := 0; e < 4; e++ {
		if g.edgeParam(e, x, y) < 0 {
			continue
		}
		if link := g.edges[grid][e]; link.neighbor >= 0 {
			buf = appendUnique(buf, link.neighbor)
		}
	}
	return buf
}

// FaceVerts implements Surface. A grid's face corners are the four corner
// vertices of that grid.
func (g *Grids) FaceVerts(f int, buf []int) []int {
	if f < 0 || f >= g.FaceCount() {
		return buf
	}
	n := g.size - 1
	return append(buf,
		g.LinearIndex(f, 0, 0),
		g.LinearIndex(f, n, 0),
		g.LinearIndex(f, n, n),
		g.LinearIndex(f, 0, n),
	)
}

// VertIsBoundary implements Surface.
func (g *Grids) VertIsBoundary(v int) bool {
	if v < 0 || v >= len(g.positions) {
		return false
	}
	grid, x, y := g.GridCoord(v)
	for e := 0; e < 4; e++ {
		if g.edgeParam(e, x, y) >= 0 && g.edges[grid][e].neighbor < 0 {
			return true
		}
	}
	return false
}

// RayOccluded implements Surface.
func (g *Grids) RayOccluded(co, dir math.Vec3) bool {
	ray := Ray{Origin: co, Direction: dir}
	for grid := 0; grid < g.base.FaceCount(); grid++ {
		for y := 0; y < g.size-1; y++ {
			for x := 0; x < g.size-1; x++ {
				a := g.positions[g.LinearIndex(grid, x, y)]
				b := g.positions[g.LinearIndex(grid, x+1, y)]
				c := g.positions[g.LinearIndex(grid, x+1, y+1)]
				d := g.positions[g.LinearIndex(grid, x, y+1)]
				if _, hit := ray.IntersectTriangle(a, b, c); hit {
					return true
				}
				if _, hit := ray.IntersectTriangle(a, c, d); hit {
					return true
				}
			}
		}
	}
	return false
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
