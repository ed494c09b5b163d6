package report_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/soypat/procgen"
	"github.com/soypat/procgen/field"
	"github.com/soypat/procgen/mesh"
	"github.com/soypat/procgen/report"
)

func TestMesh(t *testing.T) {
	got := report.Mesh("cube", mesh.Cube())
	want := report.MeshStats{
		Name: "cube", Vertices: 24, Faces: 12, Area: 6,
		MaxX: 1, MaxY: 1, MaxZ: 1, Normals: true,
	}
	if math.Abs(got.Area-want.Area) > 1e-9 {
		t.Errorf("got area %g, want %g", got.Area, want.Area)
	}
	got.Area = want.Area
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestField(t *testing.T) {
	f, err := field.NewField2(procgen.V2i{2, 2}, 2)
	if err != nil {
		t.Fatal(err)
	}
	copy(f.Data(), []float32{
		0, 1,
		1, 1,
		2, 1,
		3, 1,
	})
	rows := report.Field("f", f)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	r := rows[0]
	if r.Cells != 4 || r.Mean != 1.5 || r.Min != 0 || r.Max != 3 || r.Median != 1 {
		t.Errorf("got %+v, want 4 cells, mean 1.5, min 0, max 3, median 1", r)
	}
	// Sample standard deviation of 0,1,2,3.
	if want := math.Sqrt(5.0 / 3); math.Abs(r.StdDev-want) > 1e-12 {
		t.Errorf("got stddev %g, want %g", r.StdDev, want)
	}
	if rows[1].Channel != 1 || rows[1].Mean != 1 || rows[1].StdDev != 0 {
		t.Errorf("got %+v, want constant channel 1", rows[1])
	}
	// Channel 0 must not have been reordered by the median computation.
	if f.Data()[0] != 0 || f.Data()[6] != 3 {
		t.Error("field data modified")
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := report.NewTable[report.MeshStats](&buf)
	if err := table.Append(report.Mesh("a", mesh.Cube())); err != nil {
		t.Fatal(err)
	}
	tri, err := mesh.QuadCube().ToTrimesh()
	if err != nil {
		t.Fatal(err)
	}
	if err := table.Append(report.Mesh("b", tri)); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header and 2 rows:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "name,vertices,faces,area") {
		t.Errorf("unexpected header %q", lines[0])
	}
	var rows []report.MeshStats
	if err := gocsv.UnmarshalBytes(buf.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1].Name != "b" || rows[1].Vertices != 8 || rows[1].Faces != 12 {
		t.Errorf("got rows %+v", rows)
	}
}
