package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soypat/procgen/config"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestDefault(t *testing.T) {
	r := config.Default()
	if err := r.Validate(); err != nil {
		t.Fatal(err)
	}
	if r.Seed != 1 || r.OutDir != "out" {
		t.Errorf("got seed %d and out_dir %q, want 1 and \"out\"", r.Seed, r.OutDir)
	}
	if len(r.Jobs) == 0 {
		t.Fatal("no default jobs")
	}
	// Fields absent from a default job come from job_defaults.
	cube := r.Jobs[0]
	if cube.PNGScale != 1 || cube.HistogramBins != 32 || cube.Noise.Type != config.NoiseFractalPerlin {
		t.Errorf("job defaults not applied: %+v", cube)
	}
	for _, job := range r.Jobs {
		if job.Name == "clouds" && (job.Noise.Layers != 6 || job.Noise.Channels != 1 || job.Noise.Dimensions[0] != 256) {
			t.Errorf("got clouds noise %+v, want 6 layers of 256x256 merged with defaults", job.Noise)
		}
		if job.Name == "plate" && (job.Outline.Sides != 6 || job.Outline.FilletFacets != 4) {
			t.Errorf("got plate outline %+v, want 6 sides with default fillet facets", job.Outline)
		}
	}
}

func TestParseOverrides(t *testing.T) {
	const src = `
seed: 42
job_defaults:
  png_scale: 3
jobs:
  - name: a
    kind: noise2
    noise:
      type: white
      channels: 3
    outputs: [a.png]
  - name: b
    kind: cube
    subdivisions: 1
    outputs: [b.obj]
`
	r, err := config.Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Validate(); err != nil {
		t.Fatal(err)
	}
	if r.Seed != 42 || r.OutDir != "out" {
		t.Errorf("got seed %d and out_dir %q, want 42 and default \"out\"", r.Seed, r.OutDir)
	}
	if len(r.Jobs) != 2 {
		t.Fatalf("got %d jobs, want the 2 listed jobs", len(r.Jobs))
	}
	a := r.Jobs[0]
	if a.PNGScale != 3 {
		t.Errorf("got png_scale %d, want 3 from recipe job_defaults", a.PNGScale)
	}
	if a.Noise.Channels != 3 || len(a.Noise.Dimensions) != 2 || a.HistogramBins != 32 {
		t.Errorf("got job %+v, want merged noise config", a)
	}
	if r.JobDefaults.PNGScale != 3 {
		t.Errorf("got job defaults png_scale %d, want 3", r.JobDefaults.PNGScale)
	}
	// Jobs do not share slices with the defaults or each other.
	a.Noise.Dimensions[0] = 1
	if r.Jobs[1].Noise.Dimensions[0] == 1 || r.JobDefaults.Noise.Dimensions[0] == 1 {
		t.Error("jobs alias default slices")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipe.yaml")
	err := os.WriteFile(path, []byte("out_dir: elsewhere\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	r, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if r.OutDir != "elsewhere" || len(r.Jobs) != len(config.Default().Jobs) {
		t.Errorf("got out_dir %q with %d jobs, want override with default jobs", r.OutDir, len(r.Jobs))
	}
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("want error for missing file")
	}
	if _, err := config.Parse([]byte("jobs: {")); err == nil {
		t.Error("want error for malformed YAML")
	}
}

func TestWriteYAML(t *testing.T) {
	r := config.Default()
	var buf bytes.Buffer
	if err := r.WriteYAML(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := config.Parse(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Jobs) != len(r.Jobs) || got.Jobs[2].Name != r.Jobs[2].Name || len(got.Jobs[2].Polygon) != len(r.Jobs[2].Polygon) {
		t.Errorf("recipe did not survive a YAML round trip:\n%s", buf.String())
	}
}

func TestValidate(t *testing.T) {
	valid := func() config.Job {
		r := config.Default()
		job := r.JobDefaults
		job.Name = "job"
		job.Outputs = []string{"job.obj"}
		return job
	}
	for _, test := range []struct {
		name   string
		modify func(j *config.Job)
		want   string
	}{
		{name: "unknown kind", modify: func(j *config.Job) { j.Kind = "sphere" }, want: "unknown kind"},
		{name: "short polygon", modify: func(j *config.Job) { j.Kind = config.KindPolygon; j.Polygon = [][3]float64{{0, 0, 0}} }, want: "polygon"},
		{name: "obj without path", modify: func(j *config.Job) { j.Kind = config.KindOBJ }, want: "path"},
		{name: "too many subdivisions", modify: func(j *config.Job) { j.Subdivisions = config.MaxSubdivisions + 1 }, want: "subdivisions"},
		{name: "open mesh subdivision", modify: func(j *config.Job) {
			j.Kind = config.KindPolygon
			j.Polygon = [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
			j.Subdivisions = 1
		}, want: "open"},
		{name: "outline points and sides", modify: func(j *config.Job) {
			j.Kind = config.KindOutline
			j.Outline.Points = [][2]float64{{0, 0}, {1, 0}, {0, 1}}
			j.Outline.Sides = 5
			j.Outline.Radius = 1
		}, want: "both"},
		{name: "outline sides", modify: func(j *config.Job) {
			j.Kind = config.KindOutline
			j.Outline.Sides = 2
			j.Outline.Radius = 1
		}, want: "sides"},
		{name: "outline fillet facets", modify: func(j *config.Job) {
			j.Kind = config.KindOutline
			j.Outline.Sides = 4
			j.Outline.Radius = 1
			j.Outline.Fillet = 0.1
			j.Outline.FilletFacets = 0
		}, want: "facets"},
		{name: "flat outline subdivision", modify: func(j *config.Job) {
			j.Kind = config.KindOutline
			j.Outline.Sides = 4
			j.Outline.Radius = 1
			j.Subdivisions = 1
		}, want: "open"},
		{name: "weld field", modify: func(j *config.Job) {
			j.Kind = config.KindNoise2
			j.Weld = true
			j.Outputs = []string{"n.png"}
		}, want: "weld"},
		{name: "weld tolerance", modify: func(j *config.Job) { j.WeldTolerance = -1 }, want: "weld_tolerance"},
		{name: "smooth and separate", modify: func(j *config.Job) { j.Smooth, j.Separate = true, true }, want: "exclusive"},
		{name: "no outputs", modify: func(j *config.Job) { j.Outputs = nil }, want: "no outputs"},
		{name: "bad extension", modify: func(j *config.Job) { j.Outputs = []string{"job.png"} }, want: "cannot write"},
		{name: "output path", modify: func(j *config.Job) { j.Outputs = []string{"../job.obj"} }, want: "file name"},
		{name: "noise dims", modify: func(j *config.Job) {
			j.Kind = config.KindNoise3
			j.Outputs = []string{"n.png"}
		}, want: "dimensions"},
		{name: "noise type", modify: func(j *config.Job) {
			j.Kind = config.KindNoise2
			j.Noise.Type = "worley"
			j.Outputs = []string{"n.png"}
		}, want: "noise type"},
		{name: "noise layers", modify: func(j *config.Job) {
			j.Kind = config.KindNoise2
			j.Noise.Layers = 0
			j.Outputs = []string{"n.png"}
		}, want: "layers"},
		{name: "slow fractal layers", modify: func(j *config.Job) {
			j.Kind = config.KindNoise2
			j.Noise.Type = config.NoiseSlowFractal
			j.Noise.Layers = 0
			j.Outputs = []string{"n.png"}
		}, want: "layers"},
		{name: "volume abs", modify: func(j *config.Job) {
			j.Kind = config.KindNoise3
			j.Noise.Dimensions = []int{4, 4, 4}
			j.Noise.Abs = true
			j.Outputs = []string{"n.png"}
		}, want: "abs"},
		{name: "noise channels", modify: func(j *config.Job) {
			j.Kind = config.KindNoise2
			j.Noise.Channels = 3
			j.Outputs = []string{"n.png"}
		}, want: "channels"},
		{name: "histogram bins", modify: func(j *config.Job) {
			j.Kind = config.KindNoise2
			j.HistogramBins = 0
			j.Outputs = []string{"n.svg"}
		}, want: "histogram_bins"},
	} {
		job := valid()
		if err := job.Validate(); err != nil {
			t.Fatalf("%s: base job invalid: %v", test.name, err)
		}
		test.modify(&job)
		err := job.Validate()
		if !errors.Is(err, config.ErrInvalid) {
			t.Errorf("%s: got error %v, want %v", test.name, err, config.ErrInvalid)
			continue
		}
		if !strings.Contains(err.Error(), test.want) {
			t.Errorf("%s: error %q does not mention %q", test.name, err, test.want)
		}
	}
}

func TestValidateRecipe(t *testing.T) {
	r := config.Default()
	r.Jobs = append(r.Jobs, r.Jobs[0])
	if err := r.Validate(); !errors.Is(err, config.ErrInvalid) || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("got error %v, want duplicate name error", err)
	}
	r.Jobs = nil
	if err := r.Validate(); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("got error %v, want %v", err, config.ErrInvalid)
	}
}

func TestTransform(t *testing.T) {
	tf := config.Transform{
		Scale:         [3]float64{2, 2, 2},
		RotateAxis:    [3]float64{0, 0, 5},
		RotateDegrees: 90,
		Translate:     [3]float64{1, 0, 0},
	}
	if tf.IsIdentity() {
		t.Error("transform reported as identity")
	}
	m, err := tf.Matrix()
	if err != nil {
		t.Fatal(err)
	}
	// Scaled to (2,0,0), rotated to (0,2,0), translated to (1,2,0).
	got := m.MulPosition(r3.Vec{X: 1})
	if r3.Norm(r3.Sub(got, r3.Vec{X: 1, Y: 2})) > 1e-5 {
		t.Errorf("got %v, want (1, 2, 0)", got)
	}
	if !config.Default().JobDefaults.Transform.IsIdentity() {
		t.Error("default transform is not the identity")
	}

	tf.RotateAxis = [3]float64{}
	if _, err := tf.Matrix(); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("got error %v for zero axis, want %v", err, config.ErrInvalid)
	}
	tf.RotateDegrees = 0
	if _, err := tf.Matrix(); err != nil {
		t.Errorf("axis must be ignored without rotation: %v", err)
	}
	tf.Scale[1] = 0
	if _, err := tf.Matrix(); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("got error %v for zero scale, want %v", err, config.ErrInvalid)
	}
}
