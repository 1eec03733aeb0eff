package vision

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

//DarknetNetwork runs a Darknet (YOLOv3 style) model through the OpenCV DNN module
type DarknetNetwork struct {
	net         gocv.Net
	outputNames []string
	inputSize   int
}

//NewDarknetNetwork loads the model described by cfgPath and weightsPath and targets the CPU
func NewDarknetNetwork(cfgPath, weightsPath string, inputSize int) (*DarknetNetwork, error) {
	net := gocv.ReadNetFromDarknet(cfgPath, weightsPath)
	if net.Empty() {
		net.Close()
		return nil, errors.Errorf("cannot load darknet model %s (%s)", cfgPath, weightsPath)
	}

	net.SetPreferableBackend(gocv.NetBackendOpenCV)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	outputNames := outputLayerNames(net)
	if len(outputNames) == 0 {
		net.Close()
		return nil, errors.Errorf("darknet model %s has no output layers", cfgPath)
	}

	return &DarknetNetwork{net: net, outputNames: outputNames, inputSize: inputSize}, nil
}

//Forward resizes img to the square input size, scales pixels to 0..1, swaps BGR to RGB and
//returns every output layer
func (d *DarknetNetwork) Forward(img gocv.Mat) ([]Layer, error) {
	blob := gocv.BlobFromImage(img, 1.0/255.0, image.Pt(d.inputSize, d.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	if blob.Empty() {
		return nil, errors.New("empty input blob")
	}

	d.net.SetInput(blob, "")
	outs := d.net.ForwardLayers(d.outputNames)

	layers := make([]Layer, 0, len(outs))
	for _, out := range outs {
		layers = append(layers, matToLayer(out))
		out.Close()
	}

	return layers, nil
}

//Close releases the network
func (d *DarknetNetwork) Close() error {
	return d.net.Close()
}

//outputLayerNames maps the 1-based unconnected layer ids to layer names
func outputLayerNames(net gocv.Net) []string {
	layerNames := net.GetLayerNames()

	var names []string
	for _, id := range net.GetUnconnectedOutLayers() {
		if id > 0 && id-1 < len(layerNames) {
			names = append(names, layerNames[id-1])
		}
	}

	return names
}

func matToLayer(m gocv.Mat) Layer {
	rows, cols := m.Rows(), m.Cols()
	layer := make(Layer, rows)
	for r := 0; r < rows; r++ {
		row := make([]float32, cols)
		for c := 0; c < cols; c++ {
			row[c] = m.GetFloatAt(r, c)
		}
		layer[r] = row
	}

	return layer
}
