package tally

import (
	"bufio"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

//PartPrefix is the file name prefix of reduce partition outputs.
const PartPrefix = "part-r-"

//Partition assigns key to one of n reduce partitions.
func Partition(key string, n int) int {
	if n <= 1 {
		return 0
	}

	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

//PartName returns the file name of reduce partition part.
func PartName(part int) string {
	return fmt.Sprintf("%s%05d", PartPrefix, part)
}

//WriteTotals writes one "<tag>\t<count>" line per tag, sorted by tag.
func WriteTotals(w io.Writer, t Tally) error {
	bw := bufio.NewWriter(w)
	for _, tag := range t.Tags() {
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", tag, t[tag]); err != nil {
			return errors.Wrap(err, "tally: write totals")
		}
	}

	return errors.Wrap(bw.Flush(), "tally: write totals")
}

//WritePart writes partition part of the reduce output into dir.
func WritePart(dir string, part int, t Tally) error {
	path := filepath.Join(dir, PartName(part))
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "tally: create '%s'", path)
	}

	if err := WriteTotals(f, t); err != nil {
		f.Close()
		return err
	}

	return errors.Wrapf(f.Close(), "tally: close '%s'", path)
}

//MergeParts concatenates every partition file of dir, in partition order, into dst.
func MergeParts(dir, dst string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "tally: list '%s'", dir)
	}

	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), PartPrefix) {
			parts = append(parts, e.Name())
		}
	}
	sort.Strings(parts)

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "tally: create '%s'", dst)
	}

	for _, name := range parts {
		if err := appendFile(out, filepath.Join(dir, name)); err != nil {
			out.Close()
			return err
		}
	}

	return errors.Wrapf(out.Close(), "tally: close '%s'", dst)
}

func appendFile(dst io.Writer, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "tally: open '%s'", path)
	}
	defer in.Close()

	_, err = io.Copy(dst, in)
	return errors.Wrapf(err, "tally: copy '%s'", path)
}

//ReadTotals parses "<tag>\t<count>" lines. Counts of a tag appearing more than once are summed.
func ReadTotals(r io.Reader) (Tally, error) {
	t := Tally{}
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		i := strings.LastIndexByte(text, '\t')
		if i < 0 {
			return nil, errors.Errorf("tally: line %d: missing tab", line)
		}
		n, err := strconv.ParseInt(text[i+1:], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "tally: line %d", line)
		}
		t.Add(text[:i], n)
	}

	return t, errors.Wrap(scanner.Err(), "tally: read totals")
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
