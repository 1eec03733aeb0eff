package tally

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	tag, total := Reduce("Lakers (Yellow)", []int64{1, 1, 1, 4})
	assert.Equal(t, "Lakers (Yellow)", tag)
	assert.Equal(t, int64(7), total)

	_, total = Reduce("Unknown Team", nil)
	assert.Equal(t, int64(0), total)
}

func TestReduceGroupingIndependent(t *testing.T) {
	votes := []int64{1, 1, 1, 1, 1, 1, 1}

	_, whole := Reduce("t", votes)

	_, a := Reduce("t", votes[:2])
	_, b := Reduce("t", votes[2:5])
	_, c := Reduce("t", votes[5:])
	_, left := Reduce("t", []int64{a, b, c})
	_, right := Reduce("t", []int64{c, a, b})
	_, nested := Reduce("t", []int64{a, func() int64 { _, s := Reduce("t", []int64{b, c}); return s }()})

	assert.Equal(t, whole, left)
	assert.Equal(t, whole, right)
	assert.Equal(t, whole, nested)
}

func TestTallyMergeOrder(t *testing.T) {
	p1 := Tally{"red": 2, "unknown": 1}
	p2 := Tally{"yellow": 3}
	p3 := Tally{"red": 1, "yellow": 1}

	ab := Tally{}
	ab.Merge(p1)
	ab.Merge(p2)
	ab.Merge(p3)

	ba := Tally{}
	ba.Merge(p3)
	ba.Merge(p1)
	ba.Merge(p2)

	assert.Equal(t, ab, ba)
	assert.Equal(t, Tally{"red": 3, "yellow": 4, "unknown": 1}, ab)
	assert.Equal(t, []string{"red", "unknown", "yellow"}, ab.Tags())
}

func TestCounters(t *testing.T) {
	w1 := Counters{}
	w1.Inc("ImageProcessing", "Errors", 1)
	w2 := Counters{}
	w2.Inc("ImageProcessing", "Errors", 2)
	w2.Inc("ImageProcessing", "FailedImages", 1)

	total := Counters{}
	total.Merge(w1)
	total.Merge(w2)

	assert.Equal(t, int64(3), total.Get("ImageProcessing", "Errors"))
	assert.Equal(t, int64(1), total.Get("ImageProcessing", "FailedImages"))
	assert.Equal(t, int64(0), total.Get("ImageProcessing", "Other"))
	assert.Equal(t, "ImageProcessing.Errors=3, ImageProcessing.FailedImages=1", total.String())
}

func TestPartition(t *testing.T) {
	assert.Equal(t, 0, Partition("anything", 1))
	assert.Equal(t, 0, Partition("anything", 0))
	for _, key := range []string{"Trailblazers (Red)", "Lakers (Yellow)", "Unknown Team"} {
		p := Partition(key, 3)
		assert.True(t, p >= 0 && p < 3)
		assert.Equal(t, p, Partition(key, 3))
	}
}

func TestWriteAndMergeParts(t *testing.T) {
	dir := t.TempDir()
	logs := filepath.Join(dir, "out_logs")
	require.NoError(t, os.Mkdir(logs, 0755))

	require.NoError(t, WritePart(logs, 1, Tally{"Lakers (Yellow)": 1}))
	require.NoError(t, WritePart(logs, 0, Tally{"Unknown Team": 5, "Trailblazers (Red)": 2}))
	require.NoError(t, os.WriteFile(filepath.Join(logs, "_SUCCESS"), nil, 0644))

	dst := filepath.Join(dir, "Possession.txt")
	require.NoError(t, MergeParts(logs, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "Trailblazers (Red)\t2\nUnknown Team\t5\nLakers (Yellow)\t1\n", string(data))

	totals, err := ReadTotals(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Tally{"Trailblazers (Red)": 2, "Unknown Team": 5, "Lakers (Yellow)": 1}, totals)
}

func TestReadTotalsMalformed(t *testing.T) {
	_, err := ReadTotals(bytes.NewBufferString("no tab here\n"))
	assert.Error(t, err)

	_, err = ReadTotals(bytes.NewBufferString("Red\tmany\n"))
	assert.Error(t, err)
}
