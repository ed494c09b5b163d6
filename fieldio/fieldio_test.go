package fieldio_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/soypat/procgen"
	"github.com/soypat/procgen/field"
	"github.com/soypat/procgen/fieldio"
	"gonum.org/v1/plot/cmpimg"
)

// gradient returns a field where cell (x, y) channel c holds (x+y+c)/10.
func gradient(t *testing.T, dims procgen.V2i, channels int) *field.Field2 {
	t.Helper()
	f, err := field.NewField2(dims, channels)
	if err != nil {
		t.Fatal(err)
	}
	for p := range f.Cells() {
		for c := 0; c < channels; c++ {
			f.Set(p[0], p[1], c, float32(p[0]+p[1]+c)/10)
		}
	}
	return f
}

func quantized(v float32) uint8 { return uint8(v * 255) }

func TestImageGray(t *testing.T) {
	f := gradient(t, procgen.V2i{4, 3}, 1)
	img, err := fieldio.Image(f)
	if err != nil {
		t.Fatal(err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("got %T, want *image.Gray", img)
	}
	if gray.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("got bounds %v, want 4x3", gray.Bounds())
	}
	if got, want := gray.GrayAt(3, 2).Y, quantized(.5); got != want {
		t.Errorf("got pixel %d, want %d", got, want)
	}
}

func TestImageColor(t *testing.T) {
	rgb, err := fieldio.Image(gradient(t, procgen.V2i{2, 2}, 3))
	if err != nil {
		t.Fatal(err)
	}
	got := rgb.(*image.NRGBA).NRGBAAt(1, 0)
	want := color.NRGBA{R: quantized(.1), G: quantized(.2), B: quantized(.3), A: 255}
	if got != want {
		t.Errorf("got RGB pixel %v, want %v", got, want)
	}
	rgba, err := fieldio.Image(gradient(t, procgen.V2i{2, 2}, 4))
	if err != nil {
		t.Fatal(err)
	}
	got = rgba.(*image.NRGBA).NRGBAAt(0, 1)
	want = color.NRGBA{R: quantized(.1), G: quantized(.2), B: quantized(.3), A: quantized(.4)}
	if got != want {
		t.Errorf("got RGBA pixel %v, want %v", got, want)
	}
	_, err = fieldio.Image(gradient(t, procgen.V2i{2, 2}, 2))
	if !errors.Is(err, field.ErrChannelMismatch) {
		t.Errorf("got error %v, want %v", err, field.ErrChannelMismatch)
	}
}

func TestWritePNG(t *testing.T) {
	f := gradient(t, procgen.V2i{5, 4}, 1)
	var got, want bytes.Buffer
	if err := fieldio.WritePNG(&got, f, 1); err != nil {
		t.Fatal(err)
	}
	img, _ := fieldio.Image(f)
	if err := png.Encode(&want, img); err != nil {
		t.Fatal(err)
	}
	equal, err := cmpimg.Equal("png", got.Bytes(), want.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Error("unscaled PNG differs from field image")
	}
}

func TestWritePNGScaled(t *testing.T) {
	const scale = 4
	f := gradient(t, procgen.V2i{5, 4}, 1)
	var buf bytes.Buffer
	if err := fieldio.WritePNG(&buf, f, scale); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Size() != image.Pt(5*scale, 4*scale) {
		t.Fatalf("got size %v, want %v", img.Bounds().Size(), image.Pt(5*scale, 4*scale))
	}
	for p := range f.Cells() {
		v, _ := f.Get(p[0], p[1], 0)
		c := color.GrayModel.Convert(img.At(p[0]*scale+scale/2, p[1]*scale+scale/2)).(color.Gray)
		if c.Y != quantized(v) {
			t.Errorf("cell %v: got %d, want %d", p, c.Y, quantized(v))
		}
	}
}

func TestSlicesImage(t *testing.T) {
	f, err := field.NewField3(procgen.V3i{2, 2, 5}, 1)
	if err != nil {
		t.Fatal(err)
	}
	for z := 0; z < 5; z++ {
		f.Set(1, 1, z, 0, float32(z)/4)
	}
	img, err := fieldio.SlicesImage(f)
	if err != nil {
		t.Fatal(err)
	}
	// 5 slices tile into 3 columns and 2 rows.
	if img.Bounds() != image.Rect(0, 0, 6, 4) {
		t.Fatalf("got bounds %v, want 6x4", img.Bounds())
	}
	nrgba := img.(*image.NRGBA)
	for z := 0; z < 5; z++ {
		x, y := z%3*2+1, z/3*2+1
		if got, want := nrgba.NRGBAAt(x, y).R, quantized(float32(z)/4); got != want {
			t.Errorf("slice %d: got %d, want %d", z, got, want)
		}
	}
	if a := nrgba.NRGBAAt(5, 3).A; a != 0 {
		t.Errorf("got alpha %d in unused tile, want 0", a)
	}
	var buf bytes.Buffer
	if err := fieldio.WriteSlicesPNG(&buf, f, 2); err != nil {
		t.Fatal(err)
	}
}

func TestWriteHistogram(t *testing.T) {
	f := gradient(t, procgen.V2i{8, 8}, 1)
	var buf bytes.Buffer
	if err := fieldio.WriteHistogram(&buf, "gradient", f.Data(), 10, "svg"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("histogram output is not SVG")
	}
	if err := fieldio.WriteHistogram(&buf, "bad", f.Data(), 0, "svg"); err == nil {
		t.Error("want error for zero bins")
	}
	if err := fieldio.WriteHistogram(&buf, "empty", nil, 10, "svg"); err == nil {
		t.Error("want error for no values")
	}
	if err := fieldio.WriteHistogram(&buf, "format", f.Data(), 10, "bmp"); err == nil {
		t.Error("want error for unsupported format")
	}
}
