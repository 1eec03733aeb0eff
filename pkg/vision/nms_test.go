package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func det(conf float32, x, y, w, h float64) Detection {
	return Detection{ClassName: "person", Confidence: conf, Box: BoundingBox{X: x, Y: y, Width: w, Height: h}}
}

func TestIoU(t *testing.T) {
	a := BoundingBox{X: 0, Y: 0, Width: 10, Height: 10}
	assert.InDelta(t, 1.0, IoU(a, a), 1e-9)
	assert.InDelta(t, 0.0, IoU(a, BoundingBox{X: 20, Y: 20, Width: 5, Height: 5}), 1e-9)
	assert.InDelta(t, 50.0/150.0, IoU(a, BoundingBox{X: 5, Y: 0, Width: 10, Height: 10}), 1e-9)
	assert.Equal(t, 0.0, IoU(BoundingBox{}, BoundingBox{}))
}

func TestSuppress(t *testing.T) {
	input := []Detection{
		det(0.7, 0, 0, 10, 10),
		det(0.9, 1, 1, 10, 10),    // overlaps the first heavily
		det(0.8, 50, 50, 10, 10),  // separate
		det(0.55, 80, 80, 10, 10), // below the score threshold
	}

	got := Suppress(input, 0.6, 0.4)
	require.Len(t, got, 2)
	assert.Equal(t, input[1], got[0])
	assert.Equal(t, input[2], got[1])
}

func TestSuppressTiesKeepInputOrder(t *testing.T) {
	input := []Detection{
		det(0.8, 0, 0, 10, 10),
		det(0.8, 2, 0, 10, 10),
	}

	got := Suppress(input, 0.6, 0.4)
	require.Len(t, got, 1)
	assert.Equal(t, input[0], got[0])
}

func TestSuppressOverlapAtThresholdIsKept(t *testing.T) {
	//IoU of these two is exactly 1/3
	input := []Detection{
		det(0.9, 0, 0, 10, 10),
		det(0.8, 5, 0, 10, 10),
	}

	assert.Len(t, Suppress(input, 0.6, float32(1.0/3.0)+1e-6), 2)
	assert.Len(t, Suppress(input, 0.6, 0.3), 1)
}

func TestSuppressIdempotent(t *testing.T) {
	input := []Detection{
		det(0.65, 0, 0, 20, 20),
		det(0.9, 5, 5, 20, 20),
		det(0.75, 15, 15, 20, 20),
		det(0.8, 100, 0, 20, 20),
		det(0.99, 102, 2, 20, 20),
	}

	once := Suppress(input, 0.6, 0.4)
	assert.Equal(t, once, Suppress(once, 0.6, 0.4))
}

func TestSuppressEmpty(t *testing.T) {
	assert.Empty(t, Suppress(nil, 0.6, 0.4))
	assert.Empty(t, Boxes(nil))
}
