package vision

import "gocv.io/x/gocv"

//NearestPlayer returns the index of the player whose center is closest to the ball, -1 when there
//are no players. The first one wins on ties
func NearestPlayer(ball BoundingBox, players []BoundingBox) int {
	best, dist := -1, 0.0
	for i, p := range players {
		if d := Distance(ball, p); best < 0 || d < dist {
			best, dist = i, d
		}
	}
	return best
}

//Resolve attributes the ball to the nearest player and classifies that player's region of img
func Resolve(img gocv.Mat, ball BoundingBox, found bool, players []BoundingBox, classifier Classifier) Outcome {
	if !found {
		return Outcome{Team: TeamUnknown, Reason: ErrNoBall}
	}

	i := NearestPlayer(ball, players)
	if i < 0 {
		return Outcome{Team: TeamUnknown, Reason: ErrNoPlayers}
	}

	rect, ok := players[i].Clamp(img.Cols(), img.Rows())
	if !ok {
		return Outcome{Team: TeamUnknown, Reason: ErrDegenerateRegion}
	}

	region := img.Region(rect)
	defer region.Close()

	team, err := classifier.Classify(region)
	if err != nil {
		return Outcome{Team: TeamUnknown, Reason: err}
	}

	return Outcome{Team: team}
}
