//Package video turns a video file into a strided sequence of encoded frames.
package video

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/chenBenjamin97/possession-analyzer/pkg/utils"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

//ErrEncodeFrame is returned when a decoded frame can not be encoded to JPEG
var ErrEncodeFrame = errors.New("failed to encode frame")

//ErrWriteFrame is returned when a frame file can not be written to the frames directory
var ErrWriteFrame = errors.New("failed to save frame")

//Config holds the sampling settings ('frames.*' configuration keys)
type Config struct {
	//MaxFrames caps the number of sampled frames per video
	MaxFrames int
	//IntervalSeconds is the target spacing between two sampled frames
	IntervalSeconds float64
	//OutputDir receives a copy of every sampled frame as 'frame_<source position>.jpg'
	OutputDir string
}

//DefaultConfig returns the sampling defaults
func DefaultConfig() Config {
	return Config{
		MaxFrames:       utils.DefaultMaxFrames,
		IntervalSeconds: utils.DefaultIntervalSeconds,
		OutputDir:       utils.DefaultFramesDir,
	}
}

//Frame is one sampled frame
type Frame struct {
	//Index is the 0-based extraction index
	Index int64
	//Position is the source frame position, Index * stride
	Position int
	//Data is the JPEG encoded frame
	Data []byte
}

//Stride returns how many source frames separate two sampled frames, at least 1
func Stride(fps, intervalSeconds float64) int {
	stride := int(math.Round(fps * intervalSeconds))
	if stride < 1 {
		return 1
	}

	return stride
}

//Sampler reads a single video sequentially, seeking stride frames at a time. It must never be
//shared, concurrent seeks on one source produce undefined frames.
type Sampler struct {
	cfg       Config
	src       FrameSource
	stride    int
	total     int
	count     int
	frame     gocv.Mat
	released  bool
	truncated bool
}

//Open opens path with given opener and returns a sampler over it. Failing to open the video or to
//create the frames directory is fatal.
func Open(path string, cfg Config, open Opener) (*Sampler, error) {
	src, err := open(path)
	if err != nil {
		return nil, err
	}

	return NewSampler(src, cfg)
}

//NewSampler takes ownership of src. src is closed on failure.
func NewSampler(src FrameSource, cfg Config) (*Sampler, error) {
	if err := utils.EnsureDir(cfg.OutputDir); err != nil {
		src.Close()
		return nil, err
	}

	return &Sampler{
		cfg:    cfg,
		src:    src,
		stride: Stride(src.FPS(), cfg.IntervalSeconds),
		total:  src.FrameCount(),
		frame:  gocv.NewMat(),
	}, nil
}

//Stride returns the sampling stride of the underlying video
func (s *Sampler) Stride() int {
	return s.stride
}

//Next returns the next sampled frame or io.EOF once the video or the frame cap is exhausted.
//A frame that can not be decoded ends the stream (it is not skipped), see Truncated.
func (s *Sampler) Next() (Frame, error) {
	if s.released {
		return Frame{}, io.EOF
	}

	if s.count >= s.cfg.MaxFrames {
		s.release()
		return Frame{}, io.EOF
	}

	pos := s.count * s.stride
	if pos >= s.total {
		s.release()
		return Frame{}, io.EOF
	}

	if !s.src.ReadAt(pos, &s.frame) || s.frame.Empty() {
		log.Printf("Sampler: Could not decode frame %d of %d, stopping", pos, s.total)
		s.truncated = true
		s.release()
		return Frame{}, io.EOF
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, s.frame)
	if err != nil {
		s.release()
		return Frame{}, errors.Wrapf(ErrEncodeFrame, "frame %d: %v", pos, err)
	}
	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	buf.Close()

	framePath := filepath.Join(s.cfg.OutputDir, fmt.Sprintf("frame_%d.jpg", pos))
	if err := os.WriteFile(framePath, data, 0644); err != nil {
		s.release()
		return Frame{}, errors.Wrapf(ErrWriteFrame, "'%s': %v", framePath, err)
	}

	f := Frame{Index: int64(s.count), Position: pos, Data: data}
	s.count++
	return f, nil
}

//Progress is the completed fraction of the frame cap
func (s *Sampler) Progress() float64 {
	if s.cfg.MaxFrames == 0 {
		return 0
	}

	return float64(s.count) / float64(s.cfg.MaxFrames)
}

//Count returns how many frames were sampled so far
func (s *Sampler) Count() int {
	return s.count
}

//Truncated reports whether the stream ended on a frame that could not be decoded
func (s *Sampler) Truncated() bool {
	return s.truncated
}

//Close releases the video, safe to call more than once
func (s *Sampler) Close() error {
	return s.release()
}

func (s *Sampler) release() error {
	if s.released {
		return nil
	}
	s.released = true
	s.frame.Close()

	return s.src.Close()
}
