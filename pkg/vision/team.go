package vision

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

//Classifier decides which team a player region belongs to
type Classifier interface {
	Classify(region gocv.Mat) (Team, error)
}

//ColorClassifier counts red and yellow shirt pixels in HSV space after equalising the value channel
type ColorClassifier struct {
	Margin int
}

//NewColorClassifier returns a classifier that needs one colour to lead the other by margin pixels
func NewColorClassifier(margin int) *ColorClassifier {
	return &ColorClassifier{Margin: margin}
}

//Classify returns the team whose colour dominates region
func (c *ColorClassifier) Classify(region gocv.Mat) (Team, error) {
	red, yellow, err := CountTeamPixels(region)
	if err != nil {
		return TeamUnknown, err
	}

	return Decide(red, yellow, c.Margin), nil
}

//Decide picks the team whose pixel count exceeds the other's by strictly more than margin
func Decide(red, yellow, margin int) Team {
	switch {
	case red > yellow+margin:
		return TeamRed
	case yellow > red+margin:
		return TeamYellow
	default:
		return TeamUnknown
	}
}

//hueRange builds the HSV bounds for hues lo..hi with saturation and value in 150..255
func hueRange(lo, hi float64) (gocv.Scalar, gocv.Scalar) {
	return gocv.NewScalar(lo, 150, 150, 0), gocv.NewScalar(hi, 255, 255, 0)
}

//CountTeamPixels returns the number of red (hue 0-10 or 160-180) and yellow (hue 20-30) pixels
//of a BGR region
func CountTeamPixels(region gocv.Mat) (red, yellow int, err error) {
	if region.Empty() {
		return 0, 0, ErrEmptyImage
	}

	hsv := gocv.NewMat()
	defer hsv.Close()

	if err := gocv.CvtColor(region, &hsv, gocv.ColorBGRToHSV); err != nil {
		return 0, 0, errors.Wrap(err, "convert region to hsv")
	}

	channels := gocv.Split(hsv)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()

	if len(channels) != 3 {
		return 0, 0, errors.Errorf("expected 3 hsv channels, got %d", len(channels))
	}

	gocv.EqualizeHist(channels[2], &channels[2])
	gocv.Merge(channels, &hsv)

	lowRed, highRed, redMask, yellowMask := gocv.NewMat(), gocv.NewMat(), gocv.NewMat(), gocv.NewMat()
	defer lowRed.Close()
	defer highRed.Close()
	defer redMask.Close()
	defer yellowMask.Close()

	lo, hi := hueRange(0, 10)
	gocv.InRangeWithScalar(hsv, lo, hi, &lowRed)
	lo, hi = hueRange(160, 180)
	gocv.InRangeWithScalar(hsv, lo, hi, &highRed)
	gocv.BitwiseOr(lowRed, highRed, &redMask)

	lo, hi = hueRange(20, 30)
	gocv.InRangeWithScalar(hsv, lo, hi, &yellowMask)

	return gocv.CountNonZero(redMask), gocv.CountNonZero(yellowMask), nil
}
