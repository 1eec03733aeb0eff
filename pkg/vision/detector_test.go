package vision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

var testClassNames = []string{"person", "sports ball"}

//fakeNetwork returns the same layers for every frame
type fakeNetwork struct {
	layers []Layer
	err    error
	calls  int
	closed bool
}

func (f *fakeNetwork) Forward(img gocv.Mat) ([]Layer, error) {
	f.calls++
	return f.layers, f.err
}

func (f *fakeNetwork) Close() error {
	f.closed = true
	return nil
}

//row builds a candidate with the given normalised box and one score per class
func row(cx, cy, w, h float32, scores ...float32) []float32 {
	return append([]float32{cx, cy, w, h, 1}, scores...)
}

func TestInterpret(t *testing.T) {
	layers := []Layer{
		{
			row(0.5, 0.5, 0.2, 0.4, 0.9, 0.1),  // person
			row(0.1, 0.1, 0.1, 0.1, 0.2, 0.95), // ball class, dropped
			row(0.3, 0.3, 0.1, 0.1, 0.5, 0.0),  // exactly at threshold, dropped
		},
		{
			row(0.25, 0.5, 0.3, 0.6, 0.7, 0.7), // tie goes to the first class
			{0.1, 0.2, 0.3},                    // too short
		},
	}

	got := Interpret(layers, 200, 100, testClassNames, "person", 0.5)
	require.Len(t, got, 2)

	assert.Equal(t, 0, got[0].ClassID)
	assert.Equal(t, "person", got[0].ClassName)
	assert.InDelta(t, 0.9, got[0].Confidence, 1e-6)
	assert.Equal(t, BoundingBox{X: 80, Y: 30, Width: 40, Height: 40}, got[0].Box)

	assert.InDelta(t, 0.7, got[1].Confidence, 1e-6)
	assert.Equal(t, BoundingBox{X: 20, Y: 20, Width: 60, Height: 60}, got[1].Box)
}

func TestInterpretTruncatesInDoublePrecision(t *testing.T) {
	//float32(0.0875) * 640 rounds up to 56 in float32 but is just below 56 in float64
	layers := []Layer{{row(0.0875, 0.5, 0.0875, 0.5, 0.9)}}

	got := Interpret(layers, 640, 100, []string{"person"}, "person", 0.5)
	require.Len(t, got, 1)
	assert.Equal(t, BoundingBox{X: 28, Y: 25, Width: 55, Height: 50}, got[0].Box)

	layers = []Layer{{row(0.04375, 0.5, 0.04375, 0.5, 0.9)}}
	got = Interpret(layers, 640, 100, []string{"person"}, "person", 0.5)
	require.Len(t, got, 1)
	assert.Equal(t, BoundingBox{X: 14, Y: 25, Width: 27, Height: 50}, got[0].Box)
}

func TestInterpretUnnamedClass(t *testing.T) {
	layers := []Layer{{row(0.5, 0.5, 0.2, 0.2, 0.1, 0.1, 0.9)}}
	assert.Empty(t, Interpret(layers, 100, 100, testClassNames, "person", 0.5))
}

func TestEngineDetect(t *testing.T) {
	net := &fakeNetwork{layers: []Layer{{row(0.5, 0.5, 0.5, 0.5, 0.8, 0.1)}}}
	engine := NewEngine(net, testClassNames, "person", 0.5)

	empty := gocv.NewMat()
	defer empty.Close()

	got, err := engine.Detect(empty)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, net.calls)

	img := gocv.NewMatWithSize(40, 80, gocv.MatTypeCV8UC3)
	defer img.Close()

	got, err = engine.Detect(img)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, BoundingBox{X: 20, Y: 10, Width: 40, Height: 20}, got[0].Box)

	net.err = errors.New("boom")
	_, err = engine.Detect(img)
	assert.Error(t, err)

	require.NoError(t, engine.Close())
	assert.True(t, net.closed)
}

func TestLoadClassNames(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "coco.names")
	require.NoError(t, os.WriteFile(path, []byte("person\n\nbicycle\r\n car \n"), 0644))

	names, err := LoadClassNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"person", "bicycle", "car"}, names)

	empty := filepath.Join(dir, "empty.names")
	require.NoError(t, os.WriteFile(empty, []byte("\n\n"), 0644))
	_, err = LoadClassNames(empty)
	assert.Error(t, err)

	_, err = LoadClassNames(filepath.Join(dir, "missing.names"))
	assert.Error(t, err)
}
