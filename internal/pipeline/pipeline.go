// Package pipeline runs the jobs of a recipe and writes their outputs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/soypat/procgen"
	"github.com/soypat/procgen/config"
	"github.com/soypat/procgen/field"
	"github.com/soypat/procgen/fieldio"
	"github.com/soypat/procgen/mesh"
	"github.com/soypat/procgen/meshio"
	"github.com/soypat/procgen/outline"
	"github.com/soypat/procgen/report"
	"github.com/soypat/procgen/terrain"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// RecipeSnapshot is the file name of the effective recipe written to the
// output directory.
const RecipeSnapshot = "recipe.yaml"

// product is what a job generates: a mesh, a field, or both for terrain.
type product struct {
	mesh *mesh.Trimesh
	f2   *field.Field2
	f3   *field.Field3
}

// values returns the generated field or nil for plain meshes.
func (p *product) values() report.Values {
	switch {
	case p.f3 != nil:
		return p.f3
	case p.f2 != nil:
		return p.f2
	}
	return nil
}

// Runner executes recipe jobs. CSV outputs named by several jobs collect
// one row per job.
type Runner struct {
	recipe *config.Recipe
	log    *slog.Logger

	csvFiles    map[string]*os.File
	meshTables  map[string]*report.Table[report.MeshStats]
	fieldTables map[string]*report.Table[report.FieldStats]
}

// NewRunner returns a runner for a validated recipe. A nil logger discards
// all output.
func NewRunner(r *config.Recipe, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		recipe:      r,
		log:         log,
		csvFiles:    make(map[string]*os.File),
		meshTables:  make(map[string]*report.Table[report.MeshStats]),
		fieldTables: make(map[string]*report.Table[report.FieldStats]),
	}
}

// Run executes every job in order. Job i draws its random numbers from a
// source seeded with recipe seed + i, so output does not depend on which
// other jobs run. Run stops at the first failing job or when ctx is done.
func (rn *Runner) Run(ctx context.Context) (err error) {
	r := rn.recipe
	if err := r.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(r.OutDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	defer func() {
		err = errors.Join(err, rn.closeCSV())
	}()
	if err := rn.writeFile(RecipeSnapshot, r.WriteYAML); err != nil {
		return err
	}
	for i := range r.Jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		job := &r.Jobs[i]
		seed := r.Seed + int64(i)
		log := rn.log.With("job", job.Name, "kind", job.Kind)
		log.Debug("job started", "seed", seed)
		p, err := build(job, seed)
		if err != nil {
			return fmt.Errorf("job %q: %w", job.Name, err)
		}
		if p.mesh != nil {
			log.Info("mesh built", "vertices", p.mesh.VertexCount(), "faces", p.mesh.FaceCount())
		}
		if v := p.values(); v != nil {
			log.Info("field built", "cells", v.Len(), "channels", v.Channels())
		}
		for _, out := range job.Outputs {
			if err := rn.write(job, p, out); err != nil {
				return fmt.Errorf("job %q: %w", job.Name, err)
			}
			log.Debug("output written", "path", filepath.Join(r.OutDir, out))
		}
	}
	return nil
}

func build(job *config.Job, seed int64) (*product, error) {
	rng := rand.New(rand.NewSource(seed))
	switch job.Kind {
	case config.KindNoise2:
		f, err := noise2(job.Noise, rng, seed)
		return &product{f2: f}, err
	case config.KindNoise3:
		f, err := noise3(job.Noise, rng, seed)
		return &product{f3: f}, err
	}
	p, err := buildMesh(job, rng, seed)
	if err != nil {
		return nil, err
	}
	m := p.mesh
	if !job.Transform.IsIdentity() {
		t, err := job.Transform.Matrix()
		if err != nil {
			return nil, err
		}
		m.Transform(t)
		m.CalculateBounds()
	}
	if job.Weld {
		if _, err := m.Weld(job.WeldTolerance); err != nil {
			return nil, err
		}
	}
	switch {
	case job.Smooth:
		m.SmoothFaces()
	case job.Separate:
		m.SeparateFaces()
	}
	return p, nil
}

func buildMesh(job *config.Job, rng *rand.Rand, seed int64) (*product, error) {
	var q *mesh.Quadmesh
	switch job.Kind {
	case config.KindCube:
		if job.Subdivisions == 0 {
			return &product{mesh: mesh.Cube()}, nil
		}
		q = mesh.QuadCube()
	case config.KindTetrahedron:
		q = mesh.Tetrahedron()
	case config.KindPolygon:
		loop := make([]r3.Vec, len(job.Polygon))
		for i, p := range job.Polygon {
			loop[i] = r3.Vec{X: p[0], Y: p[1], Z: p[2]}
		}
		m, err := mesh.Triangulate(loop, job.FixWinding)
		return &product{mesh: m}, err
	case config.KindOutline:
		pts, err := outlinePoints(job.Outline)
		if err != nil {
			return nil, err
		}
		if job.Outline.Extrude == 0 {
			loop := make([]r3.Vec, len(pts))
			for i, p := range pts {
				loop[i] = r3.Vec{X: p.X, Y: p.Y}
			}
			m, err := mesh.Triangulate(loop, true)
			return &product{mesh: m}, err
		}
		m, err := mesh.Extrude(pts, job.Outline.Extrude)
		if err != nil || job.Subdivisions == 0 {
			return &product{mesh: m}, err
		}
		q = m.ToQuadmesh()
	case config.KindOBJ:
		fp, err := os.Open(job.Path)
		if err != nil {
			return nil, err
		}
		defer fp.Close()
		if job.Subdivisions == 0 {
			m, err := meshio.ReadTrimeshOBJ(fp)
			return &product{mesh: m}, err
		}
		q, err = meshio.ReadQuadmeshOBJ(fp)
		if err != nil {
			return nil, err
		}
	case config.KindTerrain:
		heights, err := noise2(job.Noise, rng, seed)
		if err != nil {
			return nil, err
		}
		tc := job.Terrain
		t, err := terrain.FromField(heights, 0, r3.Vec{X: tc.Scales[0], Y: tc.Scales[1], Z: tc.Scales[2]})
		if err != nil {
			return nil, err
		}
		return &product{mesh: t.ToTrimesh(r2.Vec{X: tc.TexFactors[0], Y: tc.TexFactors[1]}), f2: heights}, nil
	default:
		return nil, fmt.Errorf("unknown kind %q", job.Kind)
	}
	for i := 0; i < job.Subdivisions; i++ {
		if err := q.Subdivide(); err != nil {
			return nil, fmt.Errorf("subdivision %d: %w", i+1, err)
		}
	}
	m, err := q.ToTrimesh()
	return &product{mesh: m}, err
}

// outlinePoints returns the outline's vertices with every corner filleted.
func outlinePoints(oc config.Outline) ([]r2.Vec, error) {
	pts := make([]r2.Vec, len(oc.Points))
	for i, p := range oc.Points {
		pts[i] = r2.Vec{X: p[0], Y: p[1]}
	}
	if oc.Sides > 0 {
		var err error
		pts, err = outline.Nagon(oc.Sides, oc.Radius)
		if err != nil {
			return nil, err
		}
	}
	var b outline.Builder
	for _, p := range pts {
		b.AddV2(p).Smooth(oc.Fillet, oc.FilletFacets)
	}
	return b.Vertices()
}

func noise2(nc config.NoiseConfig, rng *rand.Rand, seed int64) (*field.Field2, error) {
	f, err := generateNoise2(nc, rng, seed)
	if err != nil || !nc.Abs {
		return f, err
	}
	for c := range f.Channels() {
		if err := f.Abs(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func generateNoise2(nc config.NoiseConfig, rng *rand.Rand, seed int64) (*field.Field2, error) {
	dims := procgen.V2i{nc.Dimensions[0], nc.Dimensions[1]}
	var scale r2.Vec
	if len(nc.Scale) == 2 {
		scale = r2.Vec{X: nc.Scale[0], Y: nc.Scale[1]}
	}
	switch nc.Type {
	case config.NoiseWhite:
		return field.WhiteNoise2(dims, nc.Channels, rng)
	case config.NoiseValue:
		return field.FractalValueNoise2(dims, nc.Layers, rng)
	case config.NoisePerlin:
		return field.PerlinNoise2(dims, scale)
	case config.NoiseFractalPerlin:
		return field.FractalPerlinNoise2(dims, scale, nc.Layers)
	case config.NoiseSimplex:
		return field.SimplexNoise2(dims, scale, nc.Layers, seed)
	case config.NoiseSlowPerlin:
		return field.SlowPerlinNoise2(dims, scale.X, rng)
	case config.NoiseSlowFractal:
		return field.SlowFractalPerlinNoise2(dims, scale.X, nc.Layers, rng)
	}
	return nil, fmt.Errorf("unknown noise type %q", nc.Type)
}

func noise3(nc config.NoiseConfig, rng *rand.Rand, seed int64) (*field.Field3, error) {
	dims := procgen.V3i{nc.Dimensions[0], nc.Dimensions[1], nc.Dimensions[2]}
	var scale r3.Vec
	if len(nc.Scale) == 3 {
		scale = r3.Vec{X: nc.Scale[0], Y: nc.Scale[1], Z: nc.Scale[2]}
	}
	switch nc.Type {
	case config.NoiseWhite:
		return field.WhiteNoise3(dims, nc.Channels, rng)
	case config.NoiseValue:
		return field.FractalValueNoise3(dims, nc.Layers, rng)
	case config.NoisePerlin:
		return field.PerlinNoise3(dims, scale)
	case config.NoiseFractalPerlin:
		return field.FractalPerlinNoise3(dims, scale, nc.Layers)
	case config.NoiseSimplex:
		return field.SimplexNoise3(dims, scale, nc.Layers, seed)
	}
	return nil, fmt.Errorf("unsupported volume noise type %q", nc.Type)
}

func (rn *Runner) write(job *config.Job, p *product, out string) error {
	switch filepath.Ext(out) {
	case ".obj":
		return rn.writeFile(out, func(w io.Writer) error {
			return meshio.WriteOBJ(w, meshio.Object{Name: job.Name, Mesh: p.mesh})
		})
	case ".stl":
		return rn.writeFile(out, func(w io.Writer) error {
			return meshio.WriteSTL(w, p.mesh)
		})
	case ".png":
		return rn.writeFile(out, func(w io.Writer) error {
			if p.f3 != nil {
				return fieldio.WriteSlicesPNG(w, p.f3, job.PNGScale)
			}
			return fieldio.WritePNG(w, p.f2, job.PNGScale)
		})
	case ".svg":
		return rn.writeFile(out, func(w io.Writer) error {
			return fieldio.WriteHistogram(w, job.Name, p.values().Data(), job.HistogramBins, "svg")
		})
	case ".csv":
		if p.mesh != nil {
			table, err := rn.meshTable(out)
			if err != nil {
				return err
			}
			return table.Append(report.Mesh(job.Name, p.mesh))
		}
		table, err := rn.fieldTable(out)
		if err != nil {
			return err
		}
		return table.Append(report.Field(job.Name, p.values())...)
	}
	return fmt.Errorf("no writer for output %q", out)
}

// writeFile creates name in the output directory and fills it with fn.
func (rn *Runner) writeFile(name string, fn func(io.Writer) error) error {
	fp, err := os.Create(filepath.Join(rn.recipe.OutDir, name))
	if err != nil {
		return err
	}
	if err := fn(fp); err != nil {
		fp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return fp.Close()
}

func (rn *Runner) csvFile(name string) (*os.File, error) {
	if fp, ok := rn.csvFiles[name]; ok {
		return fp, nil
	}
	fp, err := os.Create(filepath.Join(rn.recipe.OutDir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	rn.csvFiles[name] = fp
	return fp, nil
}

func (rn *Runner) meshTable(name string) (*report.Table[report.MeshStats], error) {
	if _, ok := rn.fieldTables[name]; ok {
		return nil, fmt.Errorf("%s already holds field statistics", name)
	}
	if t, ok := rn.meshTables[name]; ok {
		return t, nil
	}
	fp, err := rn.csvFile(name)
	if err != nil {
		return nil, err
	}
	t := report.NewTable[report.MeshStats](fp)
	rn.meshTables[name] = t
	return t, nil
}

func (rn *Runner) fieldTable(name string) (*report.Table[report.FieldStats], error) {
	if _, ok := rn.meshTables[name]; ok {
		return nil, fmt.Errorf("%s already holds mesh statistics", name)
	}
	if t, ok := rn.fieldTables[name]; ok {
		return t, nil
	}
	fp, err := rn.csvFile(name)
	if err != nil {
		return nil, err
	}
	t := report.NewTable[report.FieldStats](fp)
	rn.fieldTables[name] = t
	return t, nil
}

func (rn *Runner) closeCSV() error {
	var errs []error
	for name, fp := range rn.csvFiles {
		if err := fp.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", name, err))
		}
	}
	clear(rn.csvFiles)
	return errors.Join(errs...)
}
