package lutsynth

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kovidgoyal/lutsynth/encode"
	"github.com/kovidgoyal/lutsynth/lut"
	"github.com/kovidgoyal/lutsynth/types"
)

type fileSystem interface {
	Create(string) (io.WriteCloser, error)
	Open(string) (io.ReadCloser, error)
	Remove(string) error
}

type localFS struct{}

func (localFS) Create(name string) (io.WriteCloser, error) { return os.Create(name) }
func (localFS) Open(name string) (io.ReadCloser, error)    { return os.Open(name) }
func (localFS) Remove(name string) error                   { return os.Remove(name) }

var fs fileSystem = localFS{}

// Encode writes t to w in the specified format, recording this library as
// the creator unless opts say otherwise.
func Encode(w io.Writer, t *lut.Table, format types.Format, opts ...encode.Option) error {
	return encode.Encode(w, t, format, append([]encode.Option{encode.Creator(Creator())}, opts...)...)
}

// Save saves the table to the file with the specified filename. The format
// is determined from the filename extension, see types.FormatExts. Nothing is
// created if the format is unknown and the file is removed again if encoding
// fails.
//
// Examples:
//
//	// Save as a Resolve/Adobe cube file.
//	err := lutsynth.Save(t, "display.cube")
//
//	// Save as a 16-bit 3dl file.
//	err := lutsynth.Save(t, "display.3dl", encode.OutputBits(16))
func Save(t *lut.Table, filename string, opts ...encode.Option) (err error) {
	f, err := types.FormatFromFilename(filename)
	if err != nil {
		return err
	}
	defaults := []encode.Option{encode.Filename(filename)}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff":
		defaults = append(defaults, encode.ImageContainer(encode.TIFF))
	}
	file, err := fs.Create(filename)
	if err != nil {
		return err
	}
	err = Encode(file, t, f, append(defaults, opts...)...)
	errc := file.Close()
	if err == nil {
		err = errc
	}
	if err != nil {
		_ = fs.Remove(filename)
	}
	return err
}

// Open loads a table from file, the format is determined from the filename
// extension.
func Open(filename string) (*lut.Table, error) {
	f, err := types.FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}
	file, err := fs.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return encode.Decode(file, f)
}
