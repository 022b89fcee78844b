package sxm

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/bodgit/sxm/grid"
	"github.com/bodgit/sxm/header"
	"github.com/bodgit/sxm/metadata"
)

// Image is one decoded SXM file. Header and Metadata are populated by
// the text pass, Data by the binary pass; the fields are not written
// again after their pass completes.
type Image struct {
	Filename string
	Header   *header.Map
	Metadata *metadata.Metadata
	Data     map[string]grid.Channel
}

// Open decodes the named SXM file in full.
func Open(name string) (*Image, error) {
	return load(name, false)
}

// OpenHeader decodes only the text header and metadata of the named
// SXM file; the binary payload is not read.
func OpenHeader(name string) (*Image, error) {
	return load(name, true)
}

func load(name string, headerOnly bool) (*Image, error) {
	img := &Image{
		Filename: name,
	}

	if err := img.readHeader(); err != nil {
		return nil, err
	}

	m, err := metadata.Resolve(img.Header)
	if err != nil {
		return nil, err
	}
	img.Metadata = m

	if headerOnly {
		return img, nil
	}

	if err := img.readData(); err != nil {
		return nil, err
	}

	return img, nil
}

func (img *Image) readHeader() error {
	f, err := os.Open(img.Filename)
	if err != nil {
		return err
	}
	defer f.Close()

	h, err := header.Parse(f)
	if err != nil {
		return err
	}
	img.Header = h

	return nil
}

// readData reopens the file in byte mode; the header only reveals the
// payload shape once fully parsed, hence the second pass.
func (img *Image) readData() error {
	f, err := os.Open(img.Filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := skipHeader(f); err != nil {
		return err
	}

	names := make([]string, len(img.Metadata.Channels))
	for i, c := range img.Metadata.Channels {
		names[i] = c.Name
	}

	data, err := grid.Decode(f, img.Metadata.XPixels, img.Metadata.YPixels, names)
	if err != nil {
		return err
	}
	img.Data = data

	return nil
}

// skipHeader advances f just past the terminator line. The scan
// compares raw bytes so that it agrees with the text pass on where the
// header ends.
func skipHeader(f io.ReadSeeker) error {
	br := bufio.NewReader(f)

	var offset int64
	for {
		line, err := br.ReadString('\n')
		offset += int64(len(line))
		if strings.TrimSpace(line) == header.Terminator {
			break
		}
		if err == io.EOF {
			return header.ErrMissingTerminator
		}
		if err != nil {
			return err
		}
	}

	_, err := f.Seek(offset, io.SeekStart)
	return err
}
