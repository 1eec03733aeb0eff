package vision

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

//Layer is one output layer of a YOLO style network: one row per candidate, laid out as
//centerX, centerY, width, height (all normalised to 0..1), objectness, then one score per class
type Layer [][]float32

//Network runs the forward pass of an object detection model on a BGR frame
type Network interface {
	Forward(img gocv.Mat) ([]Layer, error)
	Close() error
}

//Engine turns network output into person detections in pixel coordinates
type Engine struct {
	net        Network
	classNames []string
	keepClass  string
	threshold  float32
}

//NewEngine wraps net. Only candidates labelled keepClass with a class score above threshold are kept
func NewEngine(net Network, classNames []string, keepClass string, threshold float32) *Engine {
	return &Engine{
		net:        net,
		classNames: classNames,
		keepClass:  keepClass,
		threshold:  threshold,
	}
}

//Detect returns the kept candidates of img. An empty image yields no detections
func (e *Engine) Detect(img gocv.Mat) ([]Detection, error) {
	if img.Empty() {
		return nil, nil
	}

	layers, err := e.net.Forward(img)
	if err != nil {
		return nil, errors.Wrap(err, "forward pass")
	}

	return Interpret(layers, img.Cols(), img.Rows(), e.classNames, e.keepClass, e.threshold), nil
}

//Close releases the underlying network
func (e *Engine) Close() error {
	return e.net.Close()
}

//Interpret converts raw layer rows into detections. The class of a row is its best scoring class
//(first one on ties) and its confidence is that score, which must be strictly above threshold.
//Rows whose class id has no name, or whose name is not keepClass, are dropped. Coordinates are
//scaled in float64 and truncated to whole pixels
func Interpret(layers []Layer, width, height int, classNames []string, keepClass string, threshold float32) []Detection {
	var detections []Detection

	for _, layer := range layers {
		for _, row := range layer {
			if len(row) <= 5 {
				continue
			}

			classID, confidence := -1, float32(0)
			for i, score := range row[5:] {
				if classID < 0 || score > confidence {
					classID, confidence = i, score
				}
			}

			if confidence <= threshold || classID >= len(classNames) || classNames[classID] != keepClass {
				continue
			}

			centerX := int(float64(row[0]) * float64(width))
			centerY := int(float64(row[1]) * float64(height))
			w := int(float64(row[2]) * float64(width))
			h := int(float64(row[3]) * float64(height))

			detections = append(detections, Detection{
				ClassID:    classID,
				ClassName:  classNames[classID],
				Confidence: confidence,
				Box: BoundingBox{
					X:      float64(centerX - w/2),
					Y:      float64(centerY - h/2),
					Width:  float64(w),
					Height: float64(h),
				},
			})
		}
	}

	return detections
}

//LoadClassNames reads one class name per line, ignoring blank lines
func LoadClassNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open class names")
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names = append(names, name)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read class names from %s", path)
	}

	if len(names) == 0 {
		return nil, errors.Errorf("no class names in %s", path)
	}

	return names, nil
}
