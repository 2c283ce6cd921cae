package compare

import (
	"errors"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/orisano/pixelmatch"
	"go.uber.org/zap/zaptest"
)

// writeImage stores a white w×h image with a black square of the given
// size in its top-left corner.
func writeImage(t *testing.T, path string, w, h, square int) {
	t.Helper()
	img := imaging.New(w, h, color.White)
	for y := range square {
		for x := range square {
			img.Set(x, y, color.Black)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		t.Fatal(err)
	}
}

func newComparator(t *testing.T, opts Options) (*Comparator, *strings.Builder) {
	out := &strings.Builder{}
	return New(opts, out, zaptest.NewLogger(t)), out
}

func TestIdentical(t *testing.T) {
	dir := t.TempDir()
	actual := filepath.Join(dir, "simple-500-agg.png")
	expected := filepath.Join(dir, "simple-500-reference.png")
	writeImage(t, actual, 50, 10, 3)
	writeImage(t, expected, 50, 10, 3)

	c, out := newComparator(t, DefaultOptions())
	n, err := c.Compare(actual, expected)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("got %d different pixels, want 0", n)
	}

	if err := c.Summary(false); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "1/1 passed\n" {
		t.Errorf("summary = %q", got)
	}
	if len(c.Outcomes()) != 0 {
		t.Error("outcomes not cleared by Summary")
	}
}

func TestDifferent(t *testing.T) {
	dir := t.TempDir()
	actual := filepath.Join(dir, "lines-1-800-agg.png")
	expected := filepath.Join(dir, "lines-1-800-reference.png")
	writeImage(t, actual, 40, 40, 4)
	writeImage(t, expected, 40, 40, 0)

	diffDir := filepath.Join(dir, "diff")
	c, out := newComparator(t, Options{Threshold: 0.1, IncludeAA: true, DiffDir: diffDir})
	n, err := c.Compare(actual, expected)
	if err != nil {
		t.Fatal(err)
	}
	if n != 16 {
		t.Errorf("got %d different pixels, want 16", n)
	}

	panel, err := imaging.Open(filepath.Join(diffDir, "lines-1-800-agg-diff.png"))
	if err != nil {
		t.Fatalf("diff image: %v", err)
	}
	if b := panel.Bounds(); b.Dx() != 120 || b.Dy() != 40 {
		t.Errorf("diff image is %v, want 120x40", b)
	}

	if err := c.Summary(false); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.HasPrefix(s, "0/1 passed\n") || !strings.Contains(s, "16 different pixels") {
		t.Errorf("summary = %q", s)
	}
}

func TestSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	actual := filepath.Join(dir, "a.png")
	expected := filepath.Join(dir, "b.png")
	writeImage(t, actual, 20, 10, 0)
	writeImage(t, expected, 10, 20, 0)

	c, _ := newComparator(t, DefaultOptions())
	if _, err := c.Compare(actual, expected); !errors.Is(err, pixelmatch.ErrImageSizesNotMatch) {
		t.Errorf("got %v, want size mismatch", err)
	}
}

func TestMissingReference(t *testing.T) {
	dir := t.TempDir()
	actual := filepath.Join(dir, "a.png")
	expected := filepath.Join(dir, "images", "a-reference.png")
	writeImage(t, actual, 20, 10, 2)

	c, _ := newComparator(t, DefaultOptions())
	if _, err := c.Compare(actual, expected); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, want fs.ErrNotExist", err)
	}
	if _, err := c.Compare(filepath.Join(dir, "none.png"), expected); err == nil {
		t.Error("missing actual image accepted")
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	actual := filepath.Join(dir, "a.png")
	expected := filepath.Join(dir, "images", "a-reference.png")
	writeImage(t, actual, 20, 10, 2)

	c, out := newComparator(t, Options{Threshold: 0.1, AcceptMissing: true})
	n, err := c.Compare(actual, expected)
	if err != nil {
		t.Fatal(err)
	}
	if n != 200 {
		t.Errorf("missing reference counted as %d pixels, want 200", n)
	}
	if err := c.Summary(true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "no reference image") {
		t.Errorf("summary = %q", out.String())
	}

	if _, err := os.Stat(expected); err != nil {
		t.Fatalf("reference not created: %v", err)
	}
	n, err = c.Compare(actual, expected)
	if err != nil || n != 0 {
		t.Errorf("after generate: n=%d, err=%v", n, err)
	}
}

func TestPercentiles(t *testing.T) {
	a := image.NewGray(image.Rect(0, 0, 10, 10))
	b := image.NewGray(image.Rect(0, 0, 10, 10))
	// 3 of 100 pixels differ by 200
	for i := range 3 {
		b.SetGray(i, 0, color.Gray{Y: 200})
	}
	p80, p95, p99 := percentiles(a, b)
	if p80 != 0 || p95 != 0 || p99 != 200 {
		t.Errorf("percentiles = %d, %d, %d", p80, p95, p99)
	}
}
