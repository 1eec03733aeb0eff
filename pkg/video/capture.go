package video

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

//ErrOpenSource is returned when a video container can not be opened
var ErrOpenSource = errors.New("cannot open source")

//FrameSource is the video decode capability the sampler drives. Implementations are not safe for
//concurrent use, one sampler owns one source.
type FrameSource interface {
	//FrameCount is the total number of frames reported by the container
	FrameCount() int
	//FPS is the frame rate reported by the container
	FPS() float64
	//ReadAt seeks to source frame pos and decodes it into dst, false if nothing could be decoded
	ReadAt(pos int, dst *gocv.Mat) bool
	Close() error
}

//Opener opens a FrameSource for given path
type Opener func(path string) (FrameSource, error)

type captureSource struct {
	cap *gocv.VideoCapture
}

//OpenCapture opens given video file with OpenCV's video capture
func OpenCapture(path string) (FrameSource, error) {
	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrOpenSource, "'%s': %v", path, err)
	}

	if !cap.IsOpened() {
		cap.Close()
		return nil, errors.Wrapf(ErrOpenSource, "'%s'", path)
	}

	return &captureSource{cap: cap}, nil
}

func (c *captureSource) FrameCount() int {
	return int(c.cap.Get(gocv.VideoCaptureFrameCount))
}

func (c *captureSource) FPS() float64 {
	return c.cap.Get(gocv.VideoCaptureFPS)
}

func (c *captureSource) ReadAt(pos int, dst *gocv.Mat) bool {
	c.cap.Set(gocv.VideoCapturePosFrames, float64(pos))
	return c.cap.Read(dst)
}

func (c *captureSource) Close() error {
	return c.cap.Close()
}
