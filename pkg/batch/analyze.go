package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/chenBenjamin97/possession-analyzer/pkg/sequence"
	"github.com/chenBenjamin97/possession-analyzer/pkg/tally"
	"github.com/chenBenjamin97/possession-analyzer/pkg/utils"
	"github.com/chenBenjamin97/possession-analyzer/pkg/video"
	"github.com/chenBenjamin97/possession-analyzer/pkg/vision"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

//FrameAnalyzer is the per-worker frame pipeline. Each worker owns one instance
type FrameAnalyzer interface {
	Initialize() error
	Analyze(key int64, img gocv.Mat) vision.Outcome
	Close() error
}

//AnalyzerFactory builds one FrameAnalyzer per worker
type AnalyzerFactory func() FrameAnalyzer

//VisionFactory returns a factory of vision analyzers sharing cfg
func VisionFactory(cfg vision.Config) AnalyzerFactory {
	return func() FrameAnalyzer {
		return vision.NewAnalyzer(cfg)
	}
}

//AnalyzeResult summarises an analyze run
type AnalyzeResult struct {
	Totals         tally.Tally
	Counters       tally.Counters
	FailedFrames   []int64
	Frames         int64
	PossessionPath string
}

//worker holds the map side state of one worker: its combined partitions, failed frame keys and
//counters. Nothing in it is shared until the workers are done
type worker struct {
	parts    []tally.Tally
	failed   []int64
	counters tally.Counters
	frames   int64
}

func newWorker(partitions int) *worker {
	w := &worker{parts: make([]tally.Tally, partitions), counters: tally.Counters{}}
	for i := range w.parts {
		w.parts[i] = tally.Tally{}
	}
	return w
}

//Analyze classifies every frame of input (a sequence file or a directory of them) with
//parallelism workers and writes the per-team totals. Partition outputs go to '<output>_logs' and
//are merged into 'Possession.txt' next to output; undecodable frames are listed in
//'FailedFrames.txt' there
func Analyze(ctx context.Context, input, output string, parallelism int, newAnalyzer AnalyzerFactory) (AnalyzeResult, error) {
	if parallelism < 1 {
		return AnalyzeResult{}, errors.Errorf("parallelism must be at least 1, got %d", parallelism)
	}

	files, err := sequence.InputFiles(input)
	if err != nil {
		return AnalyzeResult{}, err
	}

	logsDir := output + "_logs"
	for _, dir := range []string{output, logsDir} {
		if err := utils.EnsureDir(dir); err != nil {
			return AnalyzeResult{}, err
		}
	}

	records := make(chan sequence.Record, parallelism)
	workers := make([]*worker, parallelism)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(records)
		return readAll(ctx, files, records)
	})

	for i := range workers {
		workers[i] = newWorker(parallelism)
		w := workers[i]
		g.Go(func() error {
			return w.run(ctx, newAnalyzer(), records)
		})
	}

	if err := g.Wait(); err != nil {
		return AnalyzeResult{}, err
	}

	result := AnalyzeResult{Totals: tally.Tally{}, Counters: tally.Counters{}}
	for _, w := range workers {
		result.Counters.Merge(w.counters)
		result.FailedFrames = append(result.FailedFrames, w.failed...)
		result.Frames += w.frames
	}
	sort.Slice(result.FailedFrames, func(i, j int) bool { return result.FailedFrames[i] < result.FailedFrames[j] })

	for part := 0; part < parallelism; part++ {
		totals := reducePartition(workers, part)
		if err := tally.WritePart(logsDir, part, totals); err != nil {
			return result, err
		}
		result.Totals.Merge(totals)
	}

	parent := filepath.Dir(filepath.Clean(output))
	result.PossessionPath = filepath.Join(parent, utils.PossessionFileName)
	if err := tally.MergeParts(logsDir, result.PossessionPath); err != nil {
		return result, err
	}

	if err := writeFailedFrames(filepath.Join(parent, utils.FailedFramesFileName), result.FailedFrames); err != nil {
		return result, err
	}

	if err := os.RemoveAll(logsDir); err != nil {
		return result, errors.Wrapf(err, "remove '%s'", logsDir)
	}

	log.Printf("Analyze: %d frames, counters: %s", result.Frames, result.Counters)
	return result, nil
}

//readAll streams the records of files, in order, into out
func readAll(ctx context.Context, files []string, out chan<- sequence.Record) error {
	for _, path := range files {
		if err := readFile(ctx, path, out); err != nil {
			return err
		}
	}
	return nil
}

func readFile(ctx context.Context, path string, out chan<- sequence.Record) error {
	r, err := sequence.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		rec, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "read '%s'", path)
		}

		select {
		case out <- rec:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

//run initializes a and maps every record it receives until in is closed
func (w *worker) run(ctx context.Context, a FrameAnalyzer, in <-chan sequence.Record) error {
	if err := a.Initialize(); err != nil {
		return errors.Wrap(err, "initialize analyzer")
	}
	defer a.Close()

	for {
		select {
		case rec, ok := <-in:
			if !ok {
				return nil
			}
			w.mapRecord(a, rec)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

//mapRecord decodes and analyses one frame. An undecodable frame is recorded by key and counted
//in FailedImages, a frame whose analysis failed is counted in Errors and tallied as unknown
func (w *worker) mapRecord(a FrameAnalyzer, rec sequence.Record) {
	w.frames++

	img, err := video.DecodeFrame(rec.Data)
	if err != nil {
		img.Close()
		log.Printf("Analyze: Error, frame %d: '%v'", rec.Key, err)
		w.failed = append(w.failed, rec.Key)
		w.counters.Inc(utils.CounterGroup, utils.FailedImagesCounter, 1)
		return
	}
	defer img.Close()

	outcome := analyzeFrame(a, rec.Key, img)
	if outcome.Failed() {
		log.Printf("Analyze: Error, frame %d: '%v'", rec.Key, outcome.Reason)
		w.counters.Inc(utils.CounterGroup, utils.ErrorsCounter, 1)
	}

	tag := outcome.Team.String()
	w.parts[tally.Partition(tag, len(w.parts))].Add(tag, 1)
}

//analyzeFrame turns a panic raised while analysing a frame into a failed unknown outcome
func analyzeFrame(a FrameAnalyzer, key int64, img gocv.Mat) (outcome vision.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = vision.Outcome{Team: vision.TeamUnknown, Reason: errors.Errorf("panic: %v", r)}
		}
	}()

	return a.Analyze(key, img)
}

//reducePartition gathers every worker's partial count of each tag in part and reduces them
func reducePartition(workers []*worker, part int) tally.Tally {
	values := map[string][]int64{}
	for _, w := range workers {
		for tag, n := range w.parts[part] {
			values[tag] = append(values[tag], n)
		}
	}

	totals := tally.Tally{}
	for tag, counts := range values {
		key, total := tally.Reduce(tag, counts)
		totals.Add(key, total)
	}
	return totals
}

//writeFailedFrames lists undecodable frames, one '<key marker>\t<frame index>' line each
func writeFailedFrames(path string, keys []int64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create '%s'", path)
	}

	bw := bufio.NewWriter(f)
	for _, k := range keys {
		fmt.Fprintf(bw, "%s\t%d\n", utils.FailedImageKey, k)
	}

	if err := bw.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "write '%s'", path)
	}

	return errors.Wrapf(f.Close(), "close '%s'", path)
}
