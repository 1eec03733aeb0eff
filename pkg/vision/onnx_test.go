package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillInput(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{255, 0, 51, 255})
		}
	}

	size := 4
	dst := make([]float32, 3*size*size)
	require.NoError(t, fillInput(img, size, dst))

	plane := size * size
	for i := 0; i < plane; i++ {
		assert.InDelta(t, 1.0, dst[i], 0.005)
		assert.InDelta(t, 0.0, dst[plane+i], 0.005)
		assert.InDelta(t, 0.2, dst[2*plane+i], 0.005)
	}
}

func TestFillInputShortTensor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	assert.Error(t, fillInput(img, 4, make([]float32, 10)))
}

func TestSplitRows(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6, 7}
	assert.Equal(t, Layer{{1, 2, 3}, {4, 5, 6}}, splitRows(data, 3))
	assert.Nil(t, splitRows(data, 0))
}

func TestNewONNXNetworkRejectsBadShape(t *testing.T) {
	_, err := NewONNXNetwork(ONNXConfig{ModelPath: "model.onnx", InputSize: 416})
	assert.Error(t, err)
}

func TestFirstError(t *testing.T) {
	first, second := errors.New("session"), errors.New("output")

	var calls int
	ok := func() error { calls++; return nil }
	fail := func(err error) func() error {
		return func() error { calls++; return err }
	}

	assert.NoError(t, firstError(ok, ok, ok))
	assert.Equal(t, 3, calls)

	calls = 0
	assert.Equal(t, first, firstError(fail(first), ok, fail(second)))
	assert.Equal(t, 3, calls)

	assert.Equal(t, second, firstError(ok, ok, fail(second)))
}
