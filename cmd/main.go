package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/chenBenjamin97/possession-analyzer/pkg/api"
	"github.com/chenBenjamin97/possession-analyzer/pkg/batch"
	"github.com/chenBenjamin97/possession-analyzer/pkg/utils"
	"github.com/chenBenjamin97/possession-analyzer/pkg/video"
	"github.com/spf13/viper"
)

const usage = `usage:
  possession extract [-config file] <inputVideoPath> <outputSequencePath>
  possession analyze [-config file] <inputSequencePath> <outputPath> <parallelism>
  possession serve   [-config file]`

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	fs := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	configPath := fs.String("config", "", "path of the yaml configuration file")
	fs.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	fs.Parse(os.Args[2:])

	if err := loadConfig(*configPath); err != nil {
		log.Fatalf("Error: Could not read config file, got '%v'", err)
	}

	args := fs.Args()
	switch os.Args[1] {
	case "extract":
		if len(args) != 2 {
			log.Fatalf("Error: extract expects 2 arguments, got %d\n%s", len(args), usage)
		}
		if err := runExtract(context.Background(), args[0], args[1]); err != nil {
			log.Fatalf("Error: extract failed, got '%v'", err)
		}
	case "analyze":
		if len(args) != 3 {
			log.Fatalf("Error: analyze expects 3 arguments, got %d\n%s", len(args), usage)
		}
		parallelism, err := strconv.Atoi(args[2])
		if err != nil || parallelism < 1 {
			log.Fatalf("Error: parallelism must be a positive integer, got '%s'", args[2])
		}
		if err := runAnalyze(context.Background(), args[0], args[1], parallelism); err != nil {
			log.Fatalf("Error: analyze failed, got '%v'", err)
		}
	case "serve":
		serve()
	default:
		log.Fatalf("Error: unknown command '%s'\n%s", os.Args[1], usage)
	}
}

//loadConfig reads config.yaml from the working directory, or path when given. Environment
//variables override file values, 'frames.max.count' is read from FRAMES_MAX_COUNT
func loadConfig(path string) error {
	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && path == "" {
			log.Printf("No config file found, using defaults")
			return nil
		}
		return err
	}

	return nil
}

func runExtract(ctx context.Context, input, output string) error {
	res, err := batch.Extract(ctx, input, output, samplingConfig(), video.OpenCapture)
	if err != nil {
		return err
	}

	log.Printf("Extract: %d videos, %d frames (%d ended early) written to '%s'", res.Videos, res.Frames, res.Truncated, output)
	return nil
}

func runAnalyze(ctx context.Context, input, output string, parallelism int) error {
	res, err := batch.Analyze(ctx, input, output, parallelism, batch.VisionFactory(visionConfig(imageOutputPath(output))))
	if err != nil {
		return err
	}

	log.Printf("Analyze: totals written to '%s'", res.PossessionPath)
	for _, tag := range res.Totals.Tags() {
		log.Printf("Analyze: %s\t%d", tag, res.Totals[tag])
	}
	if n := res.Counters.Get(utils.CounterGroup, utils.FailedImagesCounter); n > 0 {
		log.Printf("Analyze: %d frames could not be decoded", n)
	}

	return nil
}

//processUpload runs both stages for a video stored under 'directory.source'
func processUpload(name string) {
	ws := batch.Workspace{Root: viper.GetString("directory.work")}
	dir, err := ws.Dir(name)
	if err != nil {
		log.Printf("processUpload: Error, got '%v'", err)
		return
	}

	src, err := utils.SafeJoin(viper.GetString("directory.source"), name)
	if err != nil {
		log.Printf("processUpload: Error, got '%v'", err)
		return
	}

	ctx := context.Background()
	if err := runExtract(ctx, src, ws.Sequence(dir)); err != nil {
		log.Printf("processUpload: Error, extract of '%s' got '%v'", name, err)
		return
	}

	if err := runAnalyze(ctx, ws.Sequence(dir), ws.Images(dir), runtime.NumCPU()); err != nil {
		log.Printf("processUpload: Error, analyze of '%s' got '%v'", name, err)
		return
	}

	log.Printf("processUpload: '%s' is ready", name)
}

func serve() {
	//create missing directories from config file
	for _, key := range []string{"directory.source", "directory.work", "frames.output.dir"} {
		if err := utils.EnsureDir(viper.GetString(key)); err != nil {
			log.Fatalf("Error: %v", err)
		}
	}

	r := api.SetRouter(processUpload)
	if err := r.Run(":" + viper.GetString("http.port")); err != nil {
		log.Fatalf("Error: Got '%v'", err)
	}
}
