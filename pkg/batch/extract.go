//Package batch drives the two offline stages: extract samples frames of videos into sequence
//files, analyze turns sequence files into per-team possession totals.
package batch

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/chenBenjamin97/possession-analyzer/pkg/sequence"
	"github.com/chenBenjamin97/possession-analyzer/pkg/utils"
	"github.com/chenBenjamin97/possession-analyzer/pkg/video"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

//SuccessMarker is created in a stage output directory once the stage completed
const SuccessMarker = "_SUCCESS"

//ExtractResult summarises an extract run
type ExtractResult struct {
	Videos    int
	Frames    int
	Truncated int
}

//PartMapName returns the sequence file name written for input unit i
func PartMapName(i int) string {
	return fmt.Sprintf("part-m-%05d", i)
}

//Extract samples every video of input (a file or a directory) into output, one sequence file per
//video. All videos are processed in parallel. A video's file only appears under its final name
//once the video was fully sampled; the first failure cancels the remaining videos
func Extract(ctx context.Context, input, output string, cfg video.Config, open video.Opener) (ExtractResult, error) {
	videos, err := sequence.InputFiles(input)
	if err != nil {
		return ExtractResult{}, err
	}

	if len(videos) == 0 {
		return ExtractResult{}, errors.Errorf("no videos in '%s'", input)
	}

	if err := utils.EnsureDir(output); err != nil {
		return ExtractResult{}, err
	}

	results := make([]ExtractResult, len(videos))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range videos {
		g.Go(func() error {
			frames, truncated, err := extractOne(ctx, path, output, i, cfg, open)
			if err != nil {
				log.Printf("Extract: Error, got '%v'", err)
				return err
			}

			results[i] = ExtractResult{Videos: 1, Frames: frames}
			if truncated {
				results[i].Truncated = 1
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return ExtractResult{}, err
	}

	var total ExtractResult
	for _, r := range results {
		total.Videos += r.Videos
		total.Frames += r.Frames
		total.Truncated += r.Truncated
	}

	if err := os.WriteFile(filepath.Join(output, SuccessMarker), nil, 0644); err != nil {
		return total, errors.Wrap(err, "write success marker")
	}

	return total, nil
}

//extractOne samples one video into '.part-m-NNNNN.tmp' and renames it to 'part-m-NNNNN'
func extractOne(ctx context.Context, path, output string, i int, cfg video.Config, open video.Opener) (frames int, truncated bool, err error) {
	sampler, err := video.Open(path, cfg, open)
	if err != nil {
		return 0, false, errors.Wrapf(err, "'%s'", path)
	}
	defer sampler.Close()

	final := filepath.Join(output, PartMapName(i))
	tmp := filepath.Join(output, "."+PartMapName(i)+".tmp")

	w, err := sequence.Create(tmp)
	if err != nil {
		return 0, false, err
	}
	closed := false
	defer func() {
		if err != nil {
			if !closed {
				w.Close()
			}
			os.Remove(tmp)
		}
	}()

	lastPercent := -1
	for {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}

		frame, err := sampler.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, false, errors.Wrapf(err, "'%s'", path)
		}

		if err := w.Append(sequence.Record{Key: frame.Index, Data: frame.Data}); err != nil {
			return 0, false, err
		}

		if percent := int(sampler.Progress() * 100); percent/10 != lastPercent/10 {
			lastPercent = percent
			log.Printf("Extract: '%s' %d%% (%d frames, stride %d)", filepath.Base(path), percent, sampler.Count(), sampler.Stride())
		}
	}

	closed = true
	if err := w.Close(); err != nil {
		return 0, false, err
	}

	if err := os.Rename(tmp, final); err != nil {
		return 0, false, errors.Wrapf(err, "commit '%s'", final)
	}

	return sampler.Count(), sampler.Truncated(), nil
}
