package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

var (
	bgrRed    = gocv.NewScalar(0, 0, 255, 0)
	bgrYellow = gocv.NewScalar(0, 255, 255, 0)
	bgrBlack  = gocv.NewScalar(0, 0, 0, 0)
)

func solid(c gocv.Scalar, rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(c, rows, cols, gocv.MatTypeCV8UC3)
}

//paint fills rect of img with c
func paint(img gocv.Mat, rect image.Rectangle, c gocv.Scalar) {
	region := img.Region(rect)
	region.SetTo(c)
	region.Close()
}

func TestDecide(t *testing.T) {
	tests := []struct {
		red, yellow int
		want        Team
	}{
		{500, 100, TeamRed},
		{100, 500, TeamYellow},
		{200, 100, TeamUnknown},
		{201, 100, TeamRed},
		{100, 201, TeamYellow},
		{0, 0, TeamUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Decide(tt.red, tt.yellow, 100), "red %d yellow %d", tt.red, tt.yellow)
	}
}

func TestCountTeamPixels(t *testing.T) {
	red := solid(bgrRed, 20, 20)
	defer red.Close()

	r, y, err := CountTeamPixels(red)
	require.NoError(t, err)
	assert.Equal(t, 400, r)
	assert.Equal(t, 0, y)

	yellow := solid(bgrYellow, 20, 10)
	defer yellow.Close()

	r, y, err = CountTeamPixels(yellow)
	require.NoError(t, err)
	assert.Equal(t, 0, r)
	assert.Equal(t, 200, y)

	black := solid(bgrBlack, 20, 20)
	defer black.Close()

	r, y, err = CountTeamPixels(black)
	require.NoError(t, err)
	assert.Equal(t, 0, r)
	assert.Equal(t, 0, y)
}

func TestColorClassifier(t *testing.T) {
	c := NewColorClassifier(100)

	img := solid(bgrBlack, 60, 60)
	defer img.Close()
	paint(img, image.Rect(0, 0, 30, 60), bgrRed)
	paint(img, image.Rect(30, 0, 60, 10), bgrYellow)

	team, err := c.Classify(img)
	require.NoError(t, err)
	assert.Equal(t, TeamRed, team)

	//100 red pixels do not beat 0 yellow ones by more than the margin
	small := solid(bgrRed, 10, 10)
	defer small.Close()

	team, err = c.Classify(small)
	require.NoError(t, err)
	assert.Equal(t, TeamUnknown, team)

	empty := gocv.NewMat()
	defer empty.Close()

	team, err = c.Classify(empty)
	assert.ErrorIs(t, err, ErrEmptyImage)
	assert.Equal(t, TeamUnknown, team)
}
