// Package fieldio exports scalar fields as images and value histograms.
package fieldio

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/nfnt/resize"
	"github.com/soypat/procgen/field"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Image quantizes f to 8 bits per channel. One channel fields become gray
// images, three channel fields opaque RGB and four channel fields RGBA with
// non-premultiplied alpha. Cell (x, y) maps to pixel (x, y).
func Image(f *field.Field2) (image.Image, error) {
	b := f.ToBytes()
	dims := b.Dims()
	rect := image.Rect(0, 0, dims[0], dims[1])
	data := b.Data()
	switch f.Channels() {
	case 1:
		img := image.NewGray(rect)
		copy(img.Pix, data)
		return img, nil
	case 3:
		img := image.NewNRGBA(rect)
		for i := 0; i < len(data)/3; i++ {
			copy(img.Pix[4*i:], data[3*i:3*i+3])
			img.Pix[4*i+3] = math.MaxUint8
		}
		return img, nil
	case 4:
		img := image.NewNRGBA(rect)
		copy(img.Pix, data)
		return img, nil
	}
	return nil, fmt.Errorf("image from %d channel field: %w", f.Channels(), field.ErrChannelMismatch)
}

// SlicesImage tiles the z slices of f left to right, top to bottom, in a
// grid of ceil(sqrt(depth)) columns. Unused tiles are transparent.
func SlicesImage(f *field.Field3) (image.Image, error) {
	dims := f.Dims()
	cols := int(math.Ceil(math.Sqrt(float64(dims[2]))))
	rows := (dims[2] + cols - 1) / cols
	dst := image.NewNRGBA(image.Rect(0, 0, cols*dims[0], rows*dims[1]))
	for z := 0; z < dims[2]; z++ {
		slice, err := f.Slice(z)
		if err != nil {
			return nil, err
		}
		tile, err := Image(slice)
		if err != nil {
			return nil, err
		}
		at := image.Pt(z%cols*dims[0], z/cols*dims[1])
		draw.Draw(dst, tile.Bounds().Add(at), tile, image.Point{}, draw.Src)
	}
	return dst, nil
}

// WritePNG encodes f as a PNG image magnified by scale with nearest neighbor
// filtering so cells stay sharp. A scale below 1 is treated as 1.
func WritePNG(w io.Writer, f *field.Field2, scale int) error {
	img, err := Image(f)
	if err != nil {
		return err
	}
	return png.Encode(w, magnify(img, scale))
}

// WriteSlicesPNG encodes the tiled slices of f as a PNG image.
func WriteSlicesPNG(w io.Writer, f *field.Field3, scale int) error {
	img, err := SlicesImage(f)
	if err != nil {
		return err
	}
	return png.Encode(w, magnify(img, scale))
}

func magnify(img image.Image, scale int) image.Image {
	if scale <= 1 {
		return img
	}
	size := img.Bounds().Size()
	return resize.Resize(uint(size.X*scale), uint(size.Y*scale), img, resize.NearestNeighbor)
}

// WriteHistogram plots the distribution of values with the given number of
// bins. format is one of the gonum/plot formats such as "png" or "svg".
func WriteHistogram(w io.Writer, title string, values []float32, bins int, format string) error {
	if len(values) == 0 {
		return fmt.Errorf("histogram of no values: %w", field.ErrBadDimensions)
	}
	vs := make(plotter.Values, len(values))
	for i, v := range values {
		vs[i] = float64(v)
	}
	h, err := plotter.NewHist(vs, bins)
	if err != nil {
		return err
	}
	h.FillColor = color.Gray{Y: 160}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "value"
	p.Y.Label.Text = "cells"
	p.Add(h)
	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
