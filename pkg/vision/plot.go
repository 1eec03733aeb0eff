package vision

import (
	"image"
	"image/color"
	"log"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

var yellowTeamColor = color.RGBA{255, 255, 0, 0}
var redTeamColor = color.RGBA{255, 0, 0, 0}
var unknownTeamColor = color.RGBA{0, 0, 255, 0}
var ballColor = color.RGBA{255, 165, 0, 0}

//teamColor returns the box colour used for players of team
func teamColor(team Team) color.RGBA {
	switch team {
	case TeamYellow:
		return yellowTeamColor
	case TeamRed:
		return redTeamColor
	default:
		return unknownTeamColor
	}
}

//plotPlayerOnFrame draws the player's box and writes its team above it
func plotPlayerOnFrame(frame *gocv.Mat, rect image.Rectangle, team Team) {
	plotColor := teamColor(team)
	gocv.Rectangle(frame, rect, plotColor, 2)
	gocv.PutText(frame, team.String(), image.Pt(rect.Min.X, rect.Min.Y-10), gocv.FontHersheyTriplex, 0.8, plotColor, 2)
}

//plotBallOnFrame draws the ball box with its label at the top-left corner
func plotBallOnFrame(frame *gocv.Mat, rect image.Rectangle) {
	gocv.Rectangle(frame, rect, ballColor, 2)
	gocv.PutText(frame, "Basketball", rect.Min, gocv.FontHersheySimplex, 0.5, ballColor, 2)
}

//AnnotatedName is the file name of the annotated copy of frame key
func AnnotatedName(key int64) string {
	return "frame_" + strconv.FormatInt(key, 10) + "_annotated.png"
}

//annotate draws players (coloured by their own team) and the ball on a copy of img and writes it
//as a PNG into dir
func annotate(dir string, key int64, img gocv.Mat, players []BoundingBox, ball BoundingBox, found bool, classifier Classifier) (string, error) {
	canvas := img.Clone()
	defer canvas.Close()

	for _, p := range players {
		rect, ok := p.Clamp(img.Cols(), img.Rows())
		if !ok {
			log.Printf("annotate: skipping degenerate box %+v in frame %d", p, key)
			continue
		}

		region := img.Region(rect)
		team, err := classifier.Classify(region)
		region.Close()
		if err != nil {
			team = TeamUnknown
		}

		plotPlayerOnFrame(&canvas, rect, team)
	}

	if found {
		if rect, ok := ball.Clamp(img.Cols(), img.Rows()); ok {
			plotBallOnFrame(&canvas, rect)
		}
	}

	path := filepath.Join(dir, AnnotatedName(key))
	if !gocv.IMWrite(path, canvas) {
		return "", errors.Errorf("cannot write %s", path)
	}

	return path, nil
}
