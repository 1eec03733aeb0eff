package vision

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestTeamString(t *testing.T) {
	assert.Equal(t, "Trailblazers (Red)", TeamRed.String())
	assert.Equal(t, "Lakers (Yellow)", TeamYellow.String())
	assert.Equal(t, "Unknown Team", TeamUnknown.String())
	assert.Equal(t, "Unknown Team", Team(42).String())
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		box  BoundingBox
		want image.Rectangle
		ok   bool
	}{
		{"inside", BoundingBox{X: 10, Y: 20, Width: 30, Height: 40}, image.Rect(10, 20, 40, 60), true},
		{"overflowing", BoundingBox{X: -5, Y: -5, Width: 50, Height: 200}, image.Rect(0, 0, 45, 100), true},
		{"right of image", BoundingBox{X: 120, Y: 0, Width: 10, Height: 10}, image.Rectangle{}, false},
		{"zero width", BoundingBox{X: 10, Y: 10, Width: 0, Height: 10}, image.Rectangle{}, false},
		{"negative", BoundingBox{X: 10, Y: 10, Width: -4, Height: 10}, image.Rectangle{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := tt.box.Clamp(100, 100)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, r)
		})
	}
}

func TestCircleBox(t *testing.T) {
	b := Circle{X: 50.5, Y: 20, Radius: 10.9}.Box()
	assert.Equal(t, BoundingBox{X: 40.5, Y: 10, Width: 20, Height: 20}, b)
}

func TestDistance(t *testing.T) {
	a := BoundingBox{X: 0, Y: 0, Width: 2, Height: 2}
	b := BoundingBox{X: 3, Y: 4, Width: 2, Height: 2}
	assert.InDelta(t, 5.0, Distance(a, b), 1e-9)
}

func TestOutcomeFailed(t *testing.T) {
	assert.False(t, Outcome{Team: TeamRed}.Failed())
	assert.False(t, Outcome{Reason: ErrNoBall}.Failed())
	assert.False(t, Outcome{Reason: ErrNoPlayers}.Failed())
	assert.True(t, Outcome{Reason: ErrDegenerateRegion}.Failed())
	assert.True(t, Outcome{Reason: errors.New("forward failed")}.Failed())
}
