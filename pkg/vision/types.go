//Package vision holds the per-frame analysis: person detection, suppression of duplicate
//boxes, shirt colour classification, ball location and possession resolution.
package vision

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

var (
	//ErrEmptyImage is returned for an empty image or region.
	ErrEmptyImage = errors.New("empty image")
	//ErrDegenerateRegion is returned when a box has no area left after clamping to the image.
	ErrDegenerateRegion = errors.New("degenerate region")
	//ErrNotInitialized is returned when an Analyzer is used before Initialize.
	ErrNotInitialized = errors.New("analyzer not initialized")
	//ErrNoBall marks a frame where no ball candidate was found.
	ErrNoBall = errors.New("no ball found")
	//ErrNoPlayers marks a frame with a ball but no player to give it to.
	ErrNoPlayers = errors.New("no players found")
)

//Team is the possession label of a frame.
type Team int

const (
	TeamUnknown Team = iota
	TeamRed
	TeamYellow
)

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "Trailblazers (Red)"
	case TeamYellow:
		return "Lakers (Yellow)"
	default:
		return "Unknown Team"
	}
}

//BoundingBox is an axis aligned rectangle in pixel space, top-left corner plus size.
type BoundingBox struct {
	X, Y, Width, Height float64
}

//Center returns the geometric center of b.
func (b BoundingBox) Center() (float64, float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

//Area returns the area of b, 0 for boxes with no extent.
func (b BoundingBox) Area() float64 {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

//Clamp converts b to integer pixel coordinates inside a width x height image. ok is false when
//nothing of the box is left.
func (b BoundingBox) Clamp(width, height int) (r image.Rectangle, ok bool) {
	x1 := max(int(b.X), 0)
	y1 := max(int(b.Y), 0)
	x2 := min(int(b.X+b.Width), width)
	y2 := min(int(b.Y+b.Height), height)

	if x1 >= x2 || y1 >= y2 {
		return image.Rectangle{}, false
	}

	return image.Rect(x1, y1, x2, y2), true
}

//Distance is the euclidean distance between the centers of a and b.
func Distance(a, b BoundingBox) float64 {
	ax, ay := a.Center()
	bx, by := b.Center()
	return math.Hypot(ax-bx, ay-by)
}

//Detection is one detector candidate that survived class and confidence filtering.
type Detection struct {
	ClassID    int
	ClassName  string
	Confidence float32
	Box        BoundingBox
}

//Circle is a circular candidate found by the ball locator.
type Circle struct {
	X, Y, Radius float64
}

//Box returns the square around c, using the integer radius.
func (c Circle) Box() BoundingBox {
	r := float64(int(c.Radius))
	return BoundingBox{X: c.X - r, Y: c.Y - r, Width: 2 * r, Height: 2 * r}
}

//Outcome is the result of analysing one frame: a team, and the reason the team is unknown when
//the frame could not be resolved.
type Outcome struct {
	Team   Team
	Reason error
}

//Failed reports whether the frame is unknown because its analysis failed, as opposed to a frame
//that simply has no ball or no players in it.
func (o Outcome) Failed() bool {
	return o.Reason != nil && o.Reason != ErrNoBall && o.Reason != ErrNoPlayers
}
