package imgutil

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// Kind identifies an accepted source image type.
type Kind int

const (
	KindUnknown Kind = iota
	KindBMP
	KindPNG
	KindJPEG
	KindGIF
)

func (k Kind) String() string {
	switch k {
	case KindBMP:
		return "bmp"
	case KindPNG:
		return "png"
	case KindJPEG:
		return "jpeg"
	case KindGIF:
		return "gif"
	default:
		return "unknown"
	}
}

var (
	bmpSig    = []byte("BM")
	pngSig    = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	gif87aSig = []byte("GIF87a")
	gif89aSig = []byte("GIF89a")
)

// Extensions are the file name patterns offered when picking input files.
var Extensions = []string{".bmp", ".png", ".jpg", ".jpeg", ".gif"}

// DetectHeader inspects the first 8 bytes of a file for known signatures.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) < 8 {
		return KindUnknown, errors.New("header too short")
	}

	switch {
	case bytes.HasPrefix(header, jpegSig):
		return KindJPEG, nil
	case bytes.HasPrefix(header, pngSig):
		return KindPNG, nil
	case bytes.HasPrefix(header, gif87aSig), bytes.HasPrefix(header, gif89aSig):
		return KindGIF, nil
	case bytes.HasPrefix(header, bmpSig):
		return KindBMP, nil
	}

	return KindUnknown, nil
}

// SniffFile reads the first 8 bytes of a file to determine its type.
func SniffFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	return SniffReader(f)
}

// SniffReader reads the first 8 bytes from r and determines its type.
func SniffReader(r io.Reader) (Kind, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return KindUnknown, err
	}

	return DetectHeader(header)
}
