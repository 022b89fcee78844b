/*
Package grid implements the binary payload of a Nanonis SXM file.

The payload begins with a 4 byte signature followed by one big-endian
IEEE-754 float32 per sample, laid out as a row-major tensor of shape
(channel, direction, row, column) where direction 0 holds the forward
scan and direction 1 the backward scan. Row 0 is the first scan line
read from the stream.
*/
package grid

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"
)

const signatureSize = 4

// ErrTruncatedPayload is returned when the stream holds fewer float
// values than the pixel and channel counts require.
var ErrTruncatedPayload = errors.New("grid: truncated payload")

// Grid is a single (rows, cols) float32 raster.
type Grid struct {
	rows, cols int
	data       []float32
}

// Rows returns the number of scan lines.
func (g Grid) Rows() int {
	return g.rows
}

// Cols returns the number of samples per scan line.
func (g Grid) Cols() int {
	return g.cols
}

// At returns the sample at (row, col).
func (g Grid) At(row, col int) float32 {
	return g.data[row*g.cols+col]
}

// Row returns one scan line. The slice aliases the decoded buffer.
func (g Grid) Row(row int) []float32 {
	return g.data[row*g.cols : (row+1)*g.cols : (row+1)*g.cols]
}

// Channel holds both scan directions of one recorded channel.
type Channel struct {
	Forward  Grid
	Backward Grid
}

type decoder struct {
	s *kaitai.Stream

	xPixels, yPixels int
	channels         []string

	data []float32
}

func (d *decoder) readSignature() error {
	_, err := d.s.ReadBytes(signatureSize)
	return truncated(err)
}

func (d *decoder) readFloats() error {
	total := d.xPixels * d.yPixels * len(d.channels) * 2

	b, err := d.s.ReadBytes(total * 4)
	if err != nil {
		return truncated(err)
	}

	d.data = make([]float32, total)
	for i := range d.data {
		d.data[i] = math.Float32frombits(binary.BigEndian.Uint32(b[i*4:]))
	}

	return nil
}

// view binds a (yPixels, xPixels) window over the flat buffer at
// index ((channel*2 + direction) * yPixels + row) * xPixels + col.
func (d *decoder) view(channel, direction int) Grid {
	size := d.yPixels * d.xPixels
	offset := (channel*2 + direction) * size
	return Grid{
		rows: d.yPixels,
		cols: d.xPixels,
		data: d.data[offset : offset+size : offset+size],
	}
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncatedPayload
	}
	return err
}

// Decode reads the binary payload from r, which must be positioned
// immediately after the header terminator line, and returns the
// per-channel grids keyed by channel name. Nothing beyond the
// signature and xPixels*yPixels*len(channels)*2 float values is read.
func Decode(r io.ReadSeeker, xPixels, yPixels int, channels []string) (map[string]Channel, error) {
	if xPixels <= 0 || yPixels <= 0 || len(channels) == 0 {
		return nil, fmt.Errorf("grid: invalid shape (%d, %d, %d)", xPixels, yPixels, len(channels))
	}

	d := decoder{
		s:        kaitai.NewStream(r),
		xPixels:  xPixels,
		yPixels:  yPixels,
		channels: channels,
	}

	if err := d.readSignature(); err != nil {
		return nil, err
	}
	if err := d.readFloats(); err != nil {
		return nil, err
	}

	m := make(map[string]Channel, len(channels))
	for i, name := range channels {
		m[name] = Channel{
			Forward:  d.view(i, 0),
			Backward: d.view(i, 1),
		}
	}

	return m, nil
}
