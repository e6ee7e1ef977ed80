// maskview computes automasking factors for a synthetic test surface and
// prints a histogram of the result. It exists to eyeball mask behavior for
// a given configuration without a sculpting frontend.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/sculptcore/internal/config"
	"github.com/Faultbox/sculptcore/internal/logger"
	"github.com/Faultbox/sculptcore/internal/sculpt"
	"github.com/Faultbox/sculptcore/internal/sculpt/automask"
	"github.com/Faultbox/sculptcore/internal/sculpt/mesh"
	"github.com/Faultbox/sculptcore/pkg/math"
)

var (
	flagSize   = flag.Int("size", 33, "Test surface resolution (verts per side)")
	flagGroove = flag.Bool("groove", true, "Crease the surface so cavity masking has relief")
	flagSave   = flag.String("save-config", "", "Write the effective configuration to a file and exit")
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Log.Info("=== maskview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if *flagSave != "" {
		if err := cfg.SaveTo(*flagSave); err != nil {
			logger.Log.Error("saving config", zap.Error(err))
			os.Exit(1)
		}
		logger.Sugar.Infof("wrote %s", *flagSave)
		return
	}

	if err := run(cfg); err != nil {
		logger.Log.Error("maskview failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	sd, err := cfg.ToSculpt()
	if err != nil {
		return err
	}
	br, err := cfg.ToBrush()
	if err != nil {
		return err
	}
	symm, err := config.ParseSymmetry(cfg.Sculpt.Symmetry)
	if err != nil {
		return err
	}

	surf := testSurface(*flagSize, *flagGroove)
	ss := sculpt.NewSession(surf)
	defer ss.Close()
	ss.SymmBits = symm

	if err := ss.EnsureFaceSets(); err != nil {
		return err
	}

	n := *flagSize
	center := (n/2)*n + n/2
	ss.SetActiveVert(mesh.ActiveMeshVert(center))

	ss.BeginStroke(&sculpt.StrokeCache{
		Brush:             br,
		Radius:            cfg.Brush.Radius,
		Location:          surf.Position(center),
		InitialNormalSymm: math.Vec3{Z: 1},
		ViewNormalSymm:    math.Vec3{Z: 1},
	})
	defer ss.EndStroke()

	cache := automask.CacheInit(sd, br, ss)
	if cache == nil {
		logger.Log.Warn("no automasking mode enabled, all factors are 1")
	}

	factors := make([]float32, surf.VertCount())
	var min, max, sum float32
	min = 1
	for v := range factors {
		var orig *math.Vec3
		if cache != nil && automask.NeedsNormal(sd, br) {
			no := surf.OrigNormal(v)
			orig = &no
		}
		f := automask.Factor(cache, ss, v, orig)
		factors[v] = f
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
		sum += f
	}

	logger.Sugar.Infof("surface: %d verts, %d faces", surf.VertCount(), surf.FaceCount())
	logger.Sugar.Infof("factors: min=%.3f max=%.3f mean=%.3f", min, max, sum/float32(len(factors)))
	printHistogram(factors)
	return nil
}

// testSurface builds a square patch, optionally creased along the middle
// column so concave and convex regions exist.
func testSurface(n int, groove bool) *mesh.Mesh {
	verts := make([]math.Vec3, 0, n*n)
	mid := float32(n-1) / 2
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			var h float32
			if groove {
				d := float32(x) - mid
				if d < 0 {
					d = -d
				}
				h = d * 0.5
			}
			verts = append(verts, math.Vec3{X: float32(x), Y: float32(y), Z: h})
		}
	}
	var faces [][]int
	for y := 0; y < n-1; y++ {
		for x := 0; x < n-1; x++ {
			i := y*n + x
			faces = append(faces, []int{i, i + 1, i + n + 1, i + n})
		}
	}
	return mesh.NewMesh(verts, faces)
}

func printHistogram(factors []float32) {
	const bins = 10
	var counts [bins]int
	for _, f := range factors {
		b := int(f * bins)
		if b >= bins {
			b = bins - 1
		}
		if b < 0 {
			b = 0
		}
		counts[b]++
	}

	peak := 1
	for _, c := range counts {
		if c > peak {
			peak = c
		}
	}
	for i, c := range counts {
		bar := strings.Repeat("#", c*40/peak)
		logger.Sugar.Infof("[%.1f-%.1f) %6d %s", float32(i)/bins, float32(i+1)/bins, c, bar)
	}
}
