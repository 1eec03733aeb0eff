package vision

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

//BallFinder locates the ball in a frame given the players found in it
type BallFinder interface {
	Locate(img gocv.Mat, players []BoundingBox) (BoundingBox, bool, error)
}

//HoughLocator finds orange circles with the Hough gradient method
type HoughLocator struct{}

//Locate returns the box of the circle nearest to any player. ok is false when there are no
//circles or no players
func (HoughLocator) Locate(img gocv.Mat, players []BoundingBox) (BoundingBox, bool, error) {
	circles, err := FindCircles(img)
	if err != nil {
		return BoundingBox{}, false, err
	}

	box, ok := NearestCircle(circles, players)
	return box, ok, nil
}

//FindCircles thresholds img to orange (hue 5-15, saturation and value 150-255), blurs the mask
//and runs the Hough circle transform on it
func FindCircles(img gocv.Mat) ([]Circle, error) {
	if img.Empty() {
		return nil, ErrEmptyImage
	}

	hsv, mask, found := gocv.NewMat(), gocv.NewMat(), gocv.NewMat()
	defer hsv.Close()
	defer mask.Close()
	defer found.Close()

	if err := gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV); err != nil {
		return nil, errors.Wrap(err, "convert frame to hsv")
	}

	lo, hi := hueRange(5, 15)
	gocv.InRangeWithScalar(hsv, lo, hi, &mask)
	gocv.GaussianBlur(mask, &mask, image.Pt(9, 9), 2, 2, gocv.BorderDefault)

	gocv.HoughCirclesWithParams(mask, &found, gocv.HoughGradient, 1, float64(mask.Rows()/8), 100, 20, 10, 50)

	if found.Empty() {
		return nil, nil
	}

	circles := make([]Circle, 0, found.Cols())
	for i := 0; i < found.Cols(); i++ {
		v := found.GetVecfAt(0, i)
		circles = append(circles, Circle{X: float64(v[0]), Y: float64(v[1]), Radius: float64(v[2])})
	}

	return circles, nil
}

//NearestCircle returns the box of the circle whose center is closest to the center of any player.
//The first pair wins on ties
func NearestCircle(circles []Circle, players []BoundingBox) (BoundingBox, bool) {
	var (
		best  BoundingBox
		found bool
		dist  float64
	)

	for _, c := range circles {
		box := c.Box()
		for _, p := range players {
			if d := Distance(box, p); !found || d < dist {
				best, dist, found = box, d, true
			}
		}
	}

	return best, found
}
