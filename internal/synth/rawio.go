package synth

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// rawMagic identifies the flat frame format: magic, uint32 width and height,
// then width*height little-endian float64 pixels in row-major order. It is a
// transport format for the CLI; container formats like FITS are handled by
// external tooling.
var rawMagic = [4]byte{'T', 'S', 'F', 'R'}

// WriteFrame writes f to w in the raw frame format.
func WriteFrame(w io.Writer, f *Frame) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(rawMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(f.Width)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(f.Height)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, f.Pix); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadFrame reads a frame in the raw frame format.
func ReadFrame(r io.Reader) (*Frame, error) {
	br := bufio.NewReader(r)
	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}
	if magic != rawMagic {
		return nil, fmt.Errorf("not a raw frame: bad magic %q", magic)
	}
	var width, height uint32
	if err := binary.Read(br, binary.LittleEndian, &width); err != nil {
		return nil, fmt.Errorf("read frame width: %w", err)
	}
	if err := binary.Read(br, binary.LittleEndian, &height); err != nil {
		return nil, fmt.Errorf("read frame height: %w", err)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("invalid frame dimensions %dx%d", width, height)
	}
	f := NewFrame(int(width), int(height))
	if err := binary.Read(br, binary.LittleEndian, f.Pix); err != nil {
		return nil, fmt.Errorf("read frame pixels: %w", err)
	}
	return f, nil
}

// LoadFrame reads a frame from a file.
func LoadFrame(path string) (*Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return ReadFrame(fh)
}

// SaveFrame writes a frame to a file.
func SaveFrame(path string, f *Frame) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteFrame(fh, f); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}
