// Package report summarizes meshes and fields as CSV tables.
package report

import (
	"fmt"
	"io"
	"slices"

	"github.com/gocarina/gocsv"
	"github.com/soypat/procgen/field"
	"github.com/soypat/procgen/mesh"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MeshStats is one row of a mesh summary table.
type MeshStats struct {
	Name      string  `csv:"name"`
	Vertices  int     `csv:"vertices"`
	Faces     int     `csv:"faces"`
	Area      float64 `csv:"area"`
	MinX      float64 `csv:"min_x"`
	MinY      float64 `csv:"min_y"`
	MinZ      float64 `csv:"min_z"`
	MaxX      float64 `csv:"max_x"`
	MaxY      float64 `csv:"max_y"`
	MaxZ      float64 `csv:"max_z"`
	Normals   bool    `csv:"normals"`
	Texcoords bool    `csv:"texcoords"`
}

// FieldStats is one row of a field summary table, one per channel.
type FieldStats struct {
	Name    string  `csv:"name"`
	Channel int     `csv:"channel"`
	Cells   int     `csv:"cells"`
	Mean    float64 `csv:"mean"`
	StdDev  float64 `csv:"stddev"`
	Min     float64 `csv:"min"`
	Max     float64 `csv:"max"`
	Median  float64 `csv:"median"`
}

// Values is a field whose float32 samples are stored channel interleaved.
// Both field.Field2 and field.Field3 implement it.
type Values interface {
	field.ScalarField
	Data() []float32
}

// Mesh summarizes m. Bounds are those last computed by CalculateBounds.
func Mesh(name string, m *mesh.Trimesh) MeshStats {
	bb := m.Bounds()
	return MeshStats{
		Name:      name,
		Vertices:  m.VertexCount(),
		Faces:     m.FaceCount(),
		Area:      m.Area(),
		MinX:      bb.Min.X,
		MinY:      bb.Min.Y,
		MinZ:      bb.Min.Z,
		MaxX:      bb.Max.X,
		MaxY:      bb.Max.Y,
		MaxZ:      bb.Max.Z,
		Normals:   m.Normals != nil,
		Texcoords: m.Texcoords != nil,
	}
}

// Field summarizes each channel of f.
func Field(name string, f Values) []FieldStats {
	ch := f.Channels()
	data := f.Data()
	n := len(data) / ch
	rows := make([]FieldStats, ch)
	x := make([]float64, n)
	for c := range rows {
		for i := range x {
			x[i] = float64(data[i*ch+c])
		}
		mean, std := stat.MeanStdDev(x, nil)
		row := FieldStats{
			Name:    name,
			Channel: c,
			Cells:   n,
			Mean:    mean,
			StdDev:  std,
			Min:     floats.Min(x),
			Max:     floats.Max(x),
		}
		// Quantile needs sorted input. x is refilled for the next channel.
		slices.Sort(x)
		row.Median = stat.Quantile(0.5, stat.Empirical, x, nil)
		rows[c] = row
	}
	return rows
}

// Table appends rows of type T to a CSV stream. The header is written with
// the first rows.
type Table[T any] struct {
	w             io.Writer
	headerWritten bool
}

// NewTable returns a table writing to w.
func NewTable[T any](w io.Writer) *Table[T] {
	return &Table[T]{w: w}
}

// Append writes rows to the table.
func (t *Table[T]) Append(rows ...T) error {
	if len(rows) == 0 {
		return nil
	}
	if !t.headerWritten {
		if err := gocsv.Marshal(rows, t.w); err != nil {
			return fmt.Errorf("writing table: %w", err)
		}
		t.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, t.w); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	return nil
}
