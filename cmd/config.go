package main

import (
	"github.com/chenBenjamin97/possession-analyzer/pkg/utils"
	"github.com/chenBenjamin97/possession-analyzer/pkg/video"
	"github.com/chenBenjamin97/possession-analyzer/pkg/vision"
	"github.com/spf13/viper"
)

func setDefaults() {
	viper.SetDefault("frames.max.count", utils.DefaultMaxFrames)
	viper.SetDefault("frames.interval.seconds", utils.DefaultIntervalSeconds)
	viper.SetDefault("frames.output.dir", utils.DefaultFramesDir)
	viper.SetDefault("yolo.model.config", "./models/yolov3.cfg")
	viper.SetDefault("yolo.model.weights", "./models/yolov3.weights")
	viper.SetDefault("yolo.class.names", "./models/coco.names")
	viper.SetDefault("detector.backend", vision.BackendDarknet)
	viper.SetDefault("onnx.input.name", "images")
	viper.SetDefault("onnx.output.name", "output")
	viper.SetDefault("onnx.output.rows", 10647)
	viper.SetDefault("annotate.enabled", true)
	viper.SetDefault("http.port", "8080")
	viper.SetDefault("directory.source", "./data/source")
	viper.SetDefault("directory.work", "./data/work")
}

func samplingConfig() video.Config {
	return video.Config{
		MaxFrames:       viper.GetInt("frames.max.count"),
		IntervalSeconds: viper.GetFloat64("frames.interval.seconds"),
		OutputDir:       viper.GetString("frames.output.dir"),
	}
}

//imageOutputPath is 'image.output.path' when configured, the analyze output path otherwise
func imageOutputPath(output string) string {
	if path := viper.GetString("image.output.path"); path != "" {
		return path
	}
	return output
}

//visionConfig builds the analyzer settings; annotated frames go to imageDir when enabled
func visionConfig(imageDir string) vision.Config {
	cfg := vision.DefaultConfig()
	cfg.Backend = viper.GetString("detector.backend")
	cfg.ModelConfig = viper.GetString("yolo.model.config")
	cfg.ModelWeights = viper.GetString("yolo.model.weights")
	cfg.ClassNames = viper.GetString("yolo.class.names")
	cfg.ONNX = vision.ONNXConfig{
		ModelPath:   viper.GetString("onnx.model.path"),
		LibraryPath: viper.GetString("onnx.library.path"),
		InputName:   viper.GetString("onnx.input.name"),
		OutputName:  viper.GetString("onnx.output.name"),
		OutputRows:  viper.GetInt("onnx.output.rows"),
	}

	if viper.GetBool("annotate.enabled") {
		cfg.AnnotateDir = imageDir
	}

	return cfg
}
