package video

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

//ErrDecodeFrame is returned when stored frame bytes are not a decodable image
var ErrDecodeFrame = errors.New("failed to decode frame")

//DecodeFrame decodes encoded image bytes into a BGR Mat. The caller owns the returned Mat
func DecodeFrame(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), ErrDecodeFrame
	}

	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		img.Close()
		return gocv.NewMat(), errors.Wrap(ErrDecodeFrame, err.Error())
	}

	if img.Empty() {
		img.Close()
		return gocv.NewMat(), ErrDecodeFrame
	}

	return img, nil
}
