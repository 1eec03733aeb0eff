//Package sequence implements the record file handed from the extract stage to the analyze stage:
//a short header followed by (frame index, encoded image) records in extraction order.
package sequence

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

//maxRecordSize bounds a single encoded frame.
const maxRecordSize = 256 << 20

const version byte = 1

var magic = [4]byte{'F', 'S', 'E', 'Q'}

//ErrBadHeader is returned when a file does not start with a sequence header.
var ErrBadHeader = errors.New("sequence: bad header")

//Record is one sampled frame.
type Record struct {
	//Key is the 0-based extraction index of the frame.
	Key int64
	//Data is the encoded (JPEG) frame.
	Data []byte
}

//Writer appends records to an underlying stream.
type Writer struct {
	w     *bufio.Writer
	c     io.Closer
	count int
}

//NewWriter writes the header to w and returns a Writer appending to it.
func NewWriter(w io.Writer) (*Writer, error) {
	sw := &Writer{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		sw.c = c
	}

	header := append(magic[:], version)
	if _, err := sw.w.Write(header); err != nil {
		return nil, errors.Wrap(err, "sequence: write header")
	}

	return sw, nil
}

//Create creates (truncates) the file at path and returns a Writer for it.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "sequence: create '%s'", path)
	}

	w, err := NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	return w, nil
}

//Append writes one record.
func (w *Writer) Append(r Record) error {
	if len(r.Data) > maxRecordSize {
		return errors.Errorf("sequence: record %d too large (%d bytes)", r.Key, len(r.Data))
	}

	var head [12]byte
	binary.BigEndian.PutUint64(head[0:8], uint64(r.Key))
	binary.BigEndian.PutUint32(head[8:12], uint32(len(r.Data)))
	if _, err := w.w.Write(head[:]); err != nil {
		return errors.Wrapf(err, "sequence: write record %d", r.Key)
	}
	if _, err := w.w.Write(r.Data); err != nil {
		return errors.Wrapf(err, "sequence: write record %d", r.Key)
	}

	w.count++
	return nil
}

//Count returns how many records were appended.
func (w *Writer) Count() int {
	return w.count
}

//Close flushes buffered records and closes the underlying stream when it is closable.
func (w *Writer) Close() error {
	err := w.w.Flush()
	if w.c != nil {
		if cerr := w.c.Close(); err == nil {
			err = cerr
		}
	}

	return errors.Wrap(err, "sequence: close")
}

//Reader reads records in the order they were written.
type Reader struct {
	r *bufio.Reader
	c io.Closer
}

//NewReader checks the header of r and returns a Reader over its records.
func NewReader(r io.Reader) (*Reader, error) {
	sr := &Reader{r: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok {
		sr.c = c
	}

	var header [5]byte
	if _, err := io.ReadFull(sr.r, header[:]); err != nil {
		return nil, ErrBadHeader
	}
	if [4]byte(header[:4]) != magic || header[4] != version {
		return nil, ErrBadHeader
	}

	return sr, nil
}

//Open opens the sequence file at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "sequence: open '%s'", path)
	}

	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "sequence: '%s'", path)
	}

	return r, nil
}

//Next returns the next record, io.EOF after the last one and io.ErrUnexpectedEOF for a
//truncated file.
func (r *Reader) Next() (Record, error) {
	var head [12]byte
	n, err := io.ReadFull(r.r, head[:])
	if err == io.EOF && n == 0 {
		return Record{}, io.EOF
	}
	if err != nil {
		return Record{}, io.ErrUnexpectedEOF
	}

	key := int64(binary.BigEndian.Uint64(head[0:8]))
	size := binary.BigEndian.Uint32(head[8:12])
	if size > maxRecordSize {
		return Record{}, errors.Errorf("sequence: record %d too large (%d bytes)", key, size)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return Record{}, io.ErrUnexpectedEOF
	}

	return Record{Key: key, Data: data}, nil
}

//Close closes the underlying stream when it is closable.
func (r *Reader) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}

//InputFiles resolves an analyze input path: a single file is returned as is, a directory is
//expanded to its regular files, skipping names starting with '_' or '.' (markers, temp files).
func InputFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "sequence: input '%s'", path)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrapf(err, "sequence: list '%s'", path)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "_") || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)

	return files, nil
}
