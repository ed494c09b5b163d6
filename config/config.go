// Package config loads generation recipes from YAML.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/soypat/procgen"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is returned by Validate for recipes that cannot be run.
var ErrInvalid = errors.New("invalid recipe")

// Job kinds.
const (
	KindCube        = "cube"
	KindTetrahedron = "tetrahedron"
	KindPolygon     = "polygon"
	KindOutline     = "outline"
	KindOBJ         = "obj"
	KindTerrain     = "terrain"
	KindNoise2      = "noise2"
	KindNoise3      = "noise3"
)

// Noise types.
const (
	NoiseWhite         = "white"
	NoiseValue         = "fractal-value"
	NoisePerlin        = "perlin"
	NoiseFractalPerlin = "fractal-perlin"
	NoiseSimplex       = "simplex"
	NoiseSlowPerlin    = "slow-perlin"
	NoiseSlowFractal   = "slow-fractal-perlin"
)

// MaxSubdivisions bounds the number of subdivision passes. Each pass
// multiplies the face count by four.
const MaxSubdivisions = 6

// Recipe lists the jobs of one generator run.
type Recipe struct {
	Seed   int64  `yaml:"seed"`
	OutDir string `yaml:"out_dir"`
	// JobDefaults is decoded under every job.
	JobDefaults Job   `yaml:"job_defaults"`
	Jobs        []Job `yaml:"jobs"`
}

// Job describes one mesh or field to generate and the files to write.
type Job struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	// Mesh jobs.
	Subdivisions int          `yaml:"subdivisions"`
	Smooth       bool         `yaml:"smooth"`
	Separate     bool         `yaml:"separate"`
	Polygon      [][3]float64 `yaml:"polygon,omitempty"`
	FixWinding   bool         `yaml:"fix_winding"`
	Path         string       `yaml:"path,omitempty"`
	Outline      Outline      `yaml:"outline"`
	Transform    Transform    `yaml:"transform"`
	// Weld merges vertices closer than WeldTolerance before shading.
	// A zero tolerance is derived from the shortest edge.
	Weld          bool    `yaml:"weld"`
	WeldTolerance float64 `yaml:"weld_tolerance"`
	// Field and terrain jobs.
	Noise   NoiseConfig   `yaml:"noise"`
	Terrain TerrainConfig `yaml:"terrain"`
	// Output options.
	PNGScale      int      `yaml:"png_scale"`
	HistogramBins int      `yaml:"histogram_bins"`
	Outputs       []string `yaml:"outputs"`
}

// NoiseConfig parameterizes field generation.
type NoiseConfig struct {
	Type       string    `yaml:"type"`
	Dimensions []int     `yaml:"dimensions"`
	Channels   int       `yaml:"channels"`
	Layers     int       `yaml:"layers"`
	Scale      []float64 `yaml:"scale"`
	// Abs stores the magnitude of the noise, folding values around 0.5.
	Abs bool `yaml:"abs,omitempty"`
}

// Outline describes a 2D shape in the XY plane, given by its points or as
// a regular polygon. Every corner is rounded by Fillet and the shape is
// extruded along +Z when Extrude is positive.
type Outline struct {
	Points       [][2]float64 `yaml:"points,omitempty"`
	Sides        int          `yaml:"sides,omitempty"`
	Radius       float64      `yaml:"radius,omitempty"`
	Fillet       float64      `yaml:"fillet"`
	FilletFacets int          `yaml:"fillet_facets"`
	Extrude      float64      `yaml:"extrude"`
}

// Transform places a mesh: it is scaled, then rotated about an axis through
// the origin, then translated.
type Transform struct {
	Scale         [3]float64 `yaml:"scale"`
	RotateAxis    [3]float64 `yaml:"rotate_axis"`
	RotateDegrees float64    `yaml:"rotate_degrees"`
	Translate     [3]float64 `yaml:"translate"`
}

// IsIdentity reports whether t leaves meshes unchanged.
func (t Transform) IsIdentity() bool {
	return t.Scale == [3]float64{1, 1, 1} && t.RotateDegrees == 0 && t.Translate == [3]float64{}
}

// Matrix returns the transform as a single matrix.
func (t Transform) Matrix() (procgen.Mat4, error) {
	for _, s := range t.Scale {
		if s == 0 {
			return procgen.Mat4{}, fmt.Errorf("zero scale %v: %w", t.Scale, ErrInvalid)
		}
	}
	m := procgen.Scale3D(float32(t.Scale[0]), float32(t.Scale[1]), float32(t.Scale[2]))
	if t.RotateDegrees != 0 {
		axis, err := procgen.Unit3(r3.Vec{X: t.RotateAxis[0], Y: t.RotateAxis[1], Z: t.RotateAxis[2]})
		if err != nil {
			return procgen.Mat4{}, fmt.Errorf("rotate axis %v: %w: %w", t.RotateAxis, ErrInvalid, err)
		}
		m = procgen.Rotate3D(axis, float32(t.RotateDegrees)).Mul(m)
	}
	return procgen.Translate3D(float32(t.Translate[0]), float32(t.Translate[1]), float32(t.Translate[2])).Mul(m), nil
}

// TerrainConfig holds the heightmap scaling for terrain jobs.
type TerrainConfig struct {
	Scales     [3]float64 `yaml:"scales"`
	TexFactors [2]float64 `yaml:"tex_factors"`
}

// jobDefaults is the job every decoded job starts from. It is only set
// while Parse holds decodeMu.
var (
	decodeMu    sync.Mutex
	jobDefaults Job
)

// UnmarshalYAML decodes a job over the current job defaults.
func (j *Job) UnmarshalYAML(value *yaml.Node) error {
	type plain Job
	*j = jobDefaults.clone()
	return value.Decode((*plain)(j))
}

func (j Job) clone() Job {
	j.Polygon = slices.Clone(j.Polygon)
	j.Outline.Points = slices.Clone(j.Outline.Points)
	j.Noise.Dimensions = slices.Clone(j.Noise.Dimensions)
	j.Noise.Scale = slices.Clone(j.Noise.Scale)
	j.Outputs = slices.Clone(j.Outputs)
	return j
}

// Default returns the embedded recipe.
func Default() *Recipe {
	r, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: bad embedded defaults: %v", err))
	}
	return r
}

// Load reads a recipe file, merging it over the embedded defaults.
// If path is empty only the embedded defaults are used.
func Load(path string) (*Recipe, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML recipe over the embedded defaults. Fields absent from
// data keep their default value, a jobs list replaces the default jobs and
// every job starts from the resulting job_defaults.
func Parse(data []byte) (*Recipe, error) {
	var head struct {
		JobDefaults yaml.Node `yaml:"job_defaults"`
	}
	var defaults Job
	if err := yaml.Unmarshal(defaultsYAML, &head); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := decodePlain(&head.JobDefaults, &defaults); err != nil {
		return nil, fmt.Errorf("parsing embedded job defaults: %w", err)
	}
	if len(data) > 0 {
		head.JobDefaults = yaml.Node{}
		if err := yaml.Unmarshal(data, &head); err != nil {
			return nil, fmt.Errorf("parsing recipe: %w", err)
		}
		if !head.JobDefaults.IsZero() {
			if err := decodePlain(&head.JobDefaults, &defaults); err != nil {
				return nil, fmt.Errorf("parsing job defaults: %w", err)
			}
		}
	}

	decodeMu.Lock()
	defer decodeMu.Unlock()
	jobDefaults = defaults
	defer func() { jobDefaults = Job{} }()
	r := &Recipe{}
	if err := yaml.Unmarshal(defaultsYAML, r); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, r); err != nil {
			return nil, fmt.Errorf("parsing recipe: %w", err)
		}
	}
	r.JobDefaults = defaults
	return r, nil
}

// decodePlain decodes n into j without applying job defaults.
func decodePlain(n *yaml.Node, j *Job) error {
	type plain Job
	return n.Decode((*plain)(j))
}

// WriteYAML writes the recipe as YAML.
func (r *Recipe) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("marshaling recipe: %w", err)
	}
	return enc.Close()
}

// Validate checks every job so no work starts on a recipe that would fail.
func (r *Recipe) Validate() error {
	if len(r.Jobs) == 0 {
		return fmt.Errorf("no jobs: %w", ErrInvalid)
	}
	seen := make(map[string]bool, len(r.Jobs))
	for i := range r.Jobs {
		job := &r.Jobs[i]
		if job.Name == "" {
			return fmt.Errorf("job %d has no name: %w", i, ErrInvalid)
		}
		if seen[job.Name] {
			return fmt.Errorf("job %q: duplicate name: %w", job.Name, ErrInvalid)
		}
		seen[job.Name] = true
		if err := job.Validate(); err != nil {
			return fmt.Errorf("job %q: %w", job.Name, err)
		}
	}
	return nil
}

// IsMesh reports whether the job produces a mesh.
func (j *Job) IsMesh() bool {
	switch j.Kind {
	case KindCube, KindTetrahedron, KindPolygon, KindOutline, KindOBJ, KindTerrain:
		return true
	}
	return false
}

// Validate checks the job parameters and output names.
func (j *Job) Validate() error {
	var allowed []string
	switch j.Kind {
	case KindCube, KindTetrahedron, KindOBJ:
		allowed = []string{".obj", ".stl", ".csv"}
	case KindPolygon:
		if len(j.Polygon) < 3 {
			return fmt.Errorf("polygon with %d points: %w", len(j.Polygon), ErrInvalid)
		}
		allowed = []string{".obj", ".stl", ".csv"}
	case KindOutline:
		if err := j.Outline.validate(); err != nil {
			return err
		}
		allowed = []string{".obj", ".stl", ".csv"}
	case KindTerrain:
		allowed = []string{".obj", ".stl", ".csv", ".png"}
	case KindNoise2, KindNoise3:
		allowed = []string{".png", ".csv", ".svg"}
	default:
		return fmt.Errorf("unknown kind %q: %w", j.Kind, ErrInvalid)
	}
	if j.Kind == KindOBJ && j.Path == "" {
		return fmt.Errorf("obj job without path: %w", ErrInvalid)
	}
	if j.Subdivisions < 0 || j.Subdivisions > MaxSubdivisions {
		return fmt.Errorf("subdivisions %d outside [0,%d]: %w", j.Subdivisions, MaxSubdivisions, ErrInvalid)
	}
	open := j.Kind == KindPolygon || j.Kind == KindTerrain || (j.Kind == KindOutline && j.Outline.Extrude == 0)
	if j.Subdivisions > 0 && open {
		return fmt.Errorf("%s meshes are open and cannot be subdivided: %w", j.Kind, ErrInvalid)
	}
	if j.Weld && !j.IsMesh() {
		return fmt.Errorf("%s job cannot weld: %w", j.Kind, ErrInvalid)
	}
	if j.WeldTolerance < 0 {
		return fmt.Errorf("weld_tolerance %g: %w", j.WeldTolerance, ErrInvalid)
	}
	if _, err := j.Transform.Matrix(); err != nil {
		return err
	}
	if j.Smooth && j.Separate {
		return fmt.Errorf("smooth and separate are exclusive: %w", ErrInvalid)
	}
	switch j.Kind {
	case KindNoise2, KindTerrain:
		if err := j.Noise.validate(2); err != nil {
			return err
		}
	case KindNoise3:
		if err := j.Noise.validate(3); err != nil {
			return err
		}
	}
	if j.Kind == KindTerrain && j.Noise.Channels != 1 {
		return fmt.Errorf("terrain from %d channels: %w", j.Noise.Channels, ErrInvalid)
	}
	if j.PNGScale < 1 {
		return fmt.Errorf("png_scale %d: %w", j.PNGScale, ErrInvalid)
	}
	if len(j.Outputs) == 0 {
		return fmt.Errorf("no outputs: %w", ErrInvalid)
	}
	for _, out := range j.Outputs {
		if filepath.Base(out) != out {
			return fmt.Errorf("output %q must be a file name: %w", out, ErrInvalid)
		}
		ext := filepath.Ext(out)
		if !slices.Contains(allowed, ext) {
			return fmt.Errorf("output %q: %s job cannot write %q files: %w", out, j.Kind, ext, ErrInvalid)
		}
		if ext == ".svg" && j.HistogramBins < 1 {
			return fmt.Errorf("histogram_bins %d: %w", j.HistogramBins, ErrInvalid)
		}
	}
	return nil
}

func (o *Outline) validate() error {
	switch {
	case len(o.Points) > 0 && o.Sides > 0:
		return fmt.Errorf("outline with both points and sides: %w", ErrInvalid)
	case o.Sides > 0:
		if o.Sides < 3 || !(o.Radius > 0) {
			return fmt.Errorf("regular outline with %d sides of radius %g: %w", o.Sides, o.Radius, ErrInvalid)
		}
	case len(o.Points) < 3:
		return fmt.Errorf("outline with %d points: %w", len(o.Points), ErrInvalid)
	}
	if o.Fillet < 0 || (o.Fillet > 0 && o.FilletFacets < 1) {
		return fmt.Errorf("fillet %g with %d facets: %w", o.Fillet, o.FilletFacets, ErrInvalid)
	}
	if o.Extrude < 0 {
		return fmt.Errorf("extrude %g: %w", o.Extrude, ErrInvalid)
	}
	return nil
}

func (n *NoiseConfig) validate(dims int) error {
	if len(n.Dimensions) != dims {
		return fmt.Errorf("want %d dimensions, got %v: %w", dims, n.Dimensions, ErrInvalid)
	}
	for _, d := range n.Dimensions {
		if d < 1 {
			return fmt.Errorf("dimensions %v: %w", n.Dimensions, ErrInvalid)
		}
	}
	if n.Channels < 1 || (n.Channels > 1 && n.Type != NoiseWhite) {
		return fmt.Errorf("%d channels of %s noise: %w", n.Channels, n.Type, ErrInvalid)
	}
	if n.Abs && dims != 2 {
		return fmt.Errorf("abs of %d dimensional noise: %w", dims, ErrInvalid)
	}
	switch n.Type {
	case NoiseWhite:
		return nil
	case NoiseValue, NoiseFractalPerlin, NoiseSimplex:
		if n.Layers < 1 {
			return fmt.Errorf("%s noise with %d layers: %w", n.Type, n.Layers, ErrInvalid)
		}
	case NoisePerlin:
	case NoiseSlowFractal:
		if n.Layers < 1 {
			return fmt.Errorf("%s noise with %d layers: %w", n.Type, n.Layers, ErrInvalid)
		}
		fallthrough
	case NoiseSlowPerlin:
		if dims != 2 {
			return fmt.Errorf("%s noise is two dimensional only: %w", n.Type, ErrInvalid)
		}
	default:
		return fmt.Errorf("unknown noise type %q: %w", n.Type, ErrInvalid)
	}
	if n.Type != NoiseValue && len(n.Scale) != dims {
		return fmt.Errorf("want %d scale components, got %v: %w", dims, n.Scale, ErrInvalid)
	}
	return nil
}
