package vision

import (
	"image"
	"sync"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"
)

//ONNXConfig describes a YOLO model exported to ONNX with a single [1, rows, 5+classes] output
type ONNXConfig struct {
	ModelPath   string
	LibraryPath string
	InputName   string
	OutputName  string
	OutputRows  int
	Classes     int
	InputSize   int
}

var ortMu sync.Mutex

//initORT loads the onnxruntime shared library once per process
func initORT(libraryPath string) error {
	ortMu.Lock()
	defer ortMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}

	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}

	return errors.Wrap(ort.InitializeEnvironment(), "initialize onnxruntime")
}

//ONNXNetwork runs the model through onnxruntime. Each instance owns its tensors, so one instance
//must not be shared between goroutines
type ONNXNetwork struct {
	cfg     ONNXConfig
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

//NewONNXNetwork initializes the runtime if needed and opens a session for cfg.ModelPath
func NewONNXNetwork(cfg ONNXConfig) (*ONNXNetwork, error) {
	if cfg.InputSize <= 0 || cfg.OutputRows <= 0 || cfg.Classes <= 0 {
		return nil, errors.Errorf("invalid onnx model shape: input %d, rows %d, classes %d", cfg.InputSize, cfg.OutputRows, cfg.Classes)
	}

	if err := initORT(cfg.LibraryPath); err != nil {
		return nil, err
	}

	size := int64(cfg.InputSize)
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, size, size))
	if err != nil {
		return nil, errors.Wrap(err, "create input tensor")
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(cfg.OutputRows), int64(5+cfg.Classes)))
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "create output tensor")
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrapf(err, "create session for %s", cfg.ModelPath)
	}

	return &ONNXNetwork{cfg: cfg, session: session, input: input, output: output}, nil
}

//Forward feeds img resized to the square input size, RGB planar and scaled to 0..1
func (o *ONNXNetwork) Forward(img gocv.Mat) ([]Layer, error) {
	src, err := img.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "convert frame")
	}

	if err := fillInput(src, o.cfg.InputSize, o.input.GetData()); err != nil {
		return nil, err
	}

	if err := o.session.Run(); err != nil {
		return nil, errors.Wrap(err, "run session")
	}

	return []Layer{splitRows(o.output.GetData(), 5+o.cfg.Classes)}, nil
}

//Close destroys the session and its tensors
func (o *ONNXNetwork) Close() error {
	err := firstError(o.session.Destroy, o.input.Destroy, o.output.Destroy)
	return errors.Wrap(err, "destroy onnx session")
}

//firstError runs every fn and returns the first non-nil error
func firstError(fns ...func() error) error {
	var err error
	for _, fn := range fns {
		if ferr := fn(); err == nil {
			err = ferr
		}
	}

	return err
}

//fillInput writes img into dst as three planes (R, G, B) of size x size values in 0..1
func fillInput(img image.Image, size int, dst []float32) error {
	plane := size * size
	if len(dst) < plane*3 {
		return errors.Errorf("input tensor holds %d values, need %d", len(dst), plane*3)
	}

	img = resize.Resize(uint(size), uint(size), img, resize.Bilinear)
	bounds := img.Bounds()

	red := dst[0:plane]
	green := dst[plane : plane*2]
	blue := dst[plane*2 : plane*3]

	i := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(b>>8) / 255.0
			i++
		}
	}

	return nil
}

//splitRows copies a flat row-major output into rows of cols values, dropping a trailing partial row
func splitRows(data []float32, cols int) Layer {
	if cols <= 0 {
		return nil
	}

	layer := make(Layer, 0, len(data)/cols)
	for start := 0; start+cols <= len(data); start += cols {
		row := make([]float32, cols)
		copy(row, data[start:start+cols])
		layer = append(layer, row)
	}

	return layer
}
