package mapnik

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/vector"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"

	"github.com/orofarne/mapnik/style"
)

// BenchmarkPaintO benchmarks the raster backend filling an "O" shape.
func BenchmarkPaintO(b *testing.B) {
	sizes := []int{20, 200, 2000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			center := float64(size) / 2
			c := vec.Vec2{X: center, Y: center}

			// outer and inner circle, filled with the even-odd rule
			o := circlePath(c, float64(size)*0.45)
			inner := circlePath(c, float64(size)*0.30)
			o.Cmds = append(o.Cmds, inner.Cmds...)
			o.Coords = append(o.Coords, inner.Coords...)

			sc := &scene{
				width:  size,
				height: size,
				ops:    []op{&fillOp{path: o, color: color.NRGBA{A: 255}, evenOdd: true}},
			}

			b.ResetTimer()
			b.ReportAllocs()

			for b.Loop() {
				paintRaster(sc)
			}
		})
	}
}

// BenchmarkVectorO benchmarks x/image/vector drawing the same shape.
func BenchmarkVectorO(b *testing.B) {
	sizes := []int{20, 200, 2000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			r := vector.NewRasterizer(size, size)

			dst := image.NewAlpha(image.Rect(0, 0, size, size))
			src := image.NewUniform(color.Alpha{255})

			c := vec.Vec2{X: float64(size) / 2, Y: float64(size) / 2}
			outer := circlePath(c, float64(size)*0.45)
			inner := circlePath(c, float64(size)*0.30)

			b.ResetTimer()
			b.ReportAllocs()

			for b.Loop() {
				r.Reset(size, size)
				addToVector(r, outer)
				addToVector(r, inner)
				r.Draw(dst, dst.Bounds(), src, image.Point{})
			}
		})
	}
}

// BenchmarkRenderImage benchmarks a complete map render.
func BenchmarkRenderImage(b *testing.B) {
	for _, size := range []int{100, 500, 1000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			m := NewMap(size, size)
			sm, err := style.LoadString(squareStyle, "", true)
			if err != nil {
				b.Fatal(err)
			}
			if err := m.setStyle(sm); err != nil {
				b.Fatal(err)
			}

			b.ReportAllocs()
			for b.Loop() {
				if _, err := RenderImage(m); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func addToVector(r *vector.Rasterizer, p *path.Data) {
	walkPath(p,
		func(v vec.Vec2) { r.MoveTo(float32(v.X), float32(v.Y)) },
		func(v vec.Vec2) { r.LineTo(float32(v.X), float32(v.Y)) },
		func(a, b, c vec.Vec2) {
			r.CubeTo(float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), float32(c.X), float32(c.Y))
		},
		r.ClosePath)
}
