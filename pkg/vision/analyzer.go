package vision

import (
	"log"

	"github.com/chenBenjamin97/possession-analyzer/pkg/utils"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	BackendDarknet = "darknet"
	BackendONNX    = "onnx"
)

//Config holds everything an Analyzer needs to build its pipeline
type Config struct {
	Backend          string
	ModelConfig      string
	ModelWeights     string
	ClassNames       string
	ONNX             ONNXConfig
	InputSize        int
	KeepClass        string
	Confidence       float32
	ScoreThreshold   float32
	OverlapThreshold float32
	Margin           int
	//AnnotateDir receives annotated frames, empty disables annotation
	AnnotateDir string
}

//DefaultConfig returns the detection and classification thresholds with the darknet backend
func DefaultConfig() Config {
	return Config{
		Backend:          BackendDarknet,
		InputSize:        utils.NetInputSize,
		KeepClass:        utils.PersonClass,
		Confidence:       utils.DetectionConfidence,
		ScoreThreshold:   utils.NMSScoreThreshold,
		OverlapThreshold: utils.NMSOverlapThreshold,
		Margin:           utils.TeamMargin,
	}
}

//Analyzer runs the whole per-frame pipeline: detect persons, suppress duplicates, locate the
//ball and resolve the team in possession. An Analyzer is not safe for concurrent use, each
//worker owns one
type Analyzer struct {
	cfg        Config
	engine     *Engine
	classifier Classifier
	ball       BallFinder
}

//NewAnalyzer returns an analyzer that loads its model on Initialize
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

//NewAnalyzerWith returns an initialized analyzer built from the given stages. Nil stages are
//replaced by the colour classifier and the Hough locator
func NewAnalyzerWith(cfg Config, engine *Engine, classifier Classifier, ball BallFinder) *Analyzer {
	a := &Analyzer{cfg: cfg, engine: engine, classifier: classifier, ball: ball}
	a.defaultStages()
	return a
}

func (a *Analyzer) defaultStages() {
	if a.classifier == nil {
		a.classifier = NewColorClassifier(a.cfg.Margin)
	}
	if a.ball == nil {
		a.ball = HoughLocator{}
	}
}

//Initialize loads the class names and the network. Calling it again after a success is a no-op
func (a *Analyzer) Initialize() error {
	if a.engine != nil {
		return nil
	}

	if a.cfg.AnnotateDir != "" {
		if err := utils.EnsureDir(a.cfg.AnnotateDir); err != nil {
			return err
		}
	}

	names, err := LoadClassNames(a.cfg.ClassNames)
	if err != nil {
		return err
	}

	var net Network
	switch a.cfg.Backend {
	case BackendDarknet, "":
		net, err = NewDarknetNetwork(a.cfg.ModelConfig, a.cfg.ModelWeights, a.cfg.InputSize)
	case BackendONNX:
		onnxCfg := a.cfg.ONNX
		onnxCfg.Classes = len(names)
		onnxCfg.InputSize = a.cfg.InputSize
		net, err = NewONNXNetwork(onnxCfg)
	default:
		err = errors.Errorf("unknown detector backend %q", a.cfg.Backend)
	}
	if err != nil {
		return err
	}

	a.engine = NewEngine(net, names, a.cfg.KeepClass, a.cfg.Confidence)
	a.defaultStages()
	return nil
}

//Analyze returns the team in possession in img. Failures are reported in the outcome, never
//returned
func (a *Analyzer) Analyze(key int64, img gocv.Mat) Outcome {
	if a.engine == nil {
		return Outcome{Team: TeamUnknown, Reason: ErrNotInitialized}
	}

	if img.Empty() {
		return Outcome{Team: TeamUnknown, Reason: ErrEmptyImage}
	}

	detections, err := a.engine.Detect(img)
	if err != nil {
		return Outcome{Team: TeamUnknown, Reason: err}
	}

	players := Boxes(Suppress(detections, a.cfg.ScoreThreshold, a.cfg.OverlapThreshold))

	ball, found, err := a.ball.Locate(img, players)
	if err != nil {
		return Outcome{Team: TeamUnknown, Reason: errors.Wrap(err, "locate ball")}
	}

	outcome := Resolve(img, ball, found, players, a.classifier)

	if a.cfg.AnnotateDir != "" {
		if _, err := annotate(a.cfg.AnnotateDir, key, img, players, ball, found, a.classifier); err != nil {
			log.Printf("Analyze: Error, got '%v'", err)
		}
	}

	return outcome
}

//Close releases the network
func (a *Analyzer) Close() error {
	if a.engine == nil {
		return nil
	}

	err := a.engine.Close()
	a.engine = nil
	return err
}
