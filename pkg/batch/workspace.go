package batch

import (
	"path/filepath"

	"github.com/chenBenjamin97/possession-analyzer/pkg/utils"
)

//Workspace lays out the stage outputs of uploaded videos under Root, one directory per video:
//'seq' holds the sampled sequence, 'images' the annotated frames, and the reports sit beside them
type Workspace struct {
	Root string
}

//Dir is the directory of video. The name must be a plain file name
func (w Workspace) Dir(video string) (string, error) {
	return utils.SafeJoin(w.Root, video)
}

//Sequence is where extract writes the sampled frames of the video in dir
func (w Workspace) Sequence(dir string) string {
	return filepath.Join(dir, "seq")
}

//Images is the analyze output of the video in dir; Possession.txt lands in dir itself
func (w Workspace) Images(dir string) string {
	return filepath.Join(dir, "images")
}

//Possession is the totals file of the video in dir
func (w Workspace) Possession(dir string) string {
	return filepath.Join(dir, utils.PossessionFileName)
}
