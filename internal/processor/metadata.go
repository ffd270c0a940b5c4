package processor

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"wirthmage/pkg/imgutil"
)

// MetadataReport lists what the final strip stage removes from a source.
type MetadataReport struct {
	Kind         imgutil.Kind
	ExifTags     int
	TextChunks   []string
	HasGPS       bool
	HasModel     bool
	HasTimestamp bool
}

// Empty reports whether nothing would be stripped.
func (r MetadataReport) Empty() bool {
	return r.ExifTags == 0 && len(r.TextChunks) == 0 && !r.HasTimestamp
}

func InspectMetadata(path string) (MetadataReport, error) {
	report := MetadataReport{}

	file, err := os.Open(path)
	if err != nil {
		return report, err
	}
	defer file.Close()

	kind, err := imgutil.SniffReader(file)
	if err != nil {
		return report, err
	}
	report.Kind = kind

	if kind == imgutil.KindPNG {
		if err := scanPNGText(file, &report); err != nil {
			return report, err
		}
	}

	if err := analyzeExif(file, &report); err != nil {
		return report, err
	}
	return report, nil
}

func analyzeExif(rs io.ReadSeeker, report *MetadataReport) error {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return err
	}

	raw, err := exif.SearchAndExtractExifWithReader(rs)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) || strings.Contains(strings.ToLower(err.Error()), "no exif") {
			return nil
		}
		return err
	}

	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return err
	}

	for _, tag := range tags {
		report.ExifTags++
		name := tag.TagName
		if strings.HasPrefix(name, "GPS") || strings.Contains(tag.IfdPath, "GPS") {
			report.HasGPS = true
		}
		if name == "Model" || name == "Make" {
			report.HasModel = true
		}
		if name == "DateTimeOriginal" || name == "DateTimeDigitized" || name == "DateTime" {
			report.HasTimestamp = true
		}
	}
	return nil
}

var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// maxTextChunk bounds how much of a text chunk is read to find its keyword.
const maxTextChunk = 1 << 20

// pngChunk is one chunk header: its declared data length and type.
type pngChunk struct {
	length uint32
	name   string
}

func readChunkHeader(r io.Reader) (pngChunk, error) {
	var head [8]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return pngChunk{}, err
	}
	return pngChunk{length: binary.BigEndian.Uint32(head[:4]), name: string(head[4:])}, nil
}

// scanPNGText records text keywords and the tIME chunk. Chunk data and
// CRCs are skipped; oversized text chunks are skipped unread.
func scanPNGText(rs io.ReadSeeker, report *MetadataReport) error {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return err
	}
	br := bufio.NewReader(rs)

	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(br, sig); err != nil {
		return err
	}
	if !bytes.Equal(sig, pngSignature) {
		return errors.New("invalid PNG signature")
	}

	for {
		chunk, err := readChunkHeader(br)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		// data + CRC still to consume
		remaining := int64(chunk.length) + 4

		switch {
		case chunk.name == "tIME":
			report.HasTimestamp = true
		case isTextChunk(chunk.name) && chunk.length <= maxTextChunk:
			data := make([]byte, chunk.length)
			if _, err := io.ReadFull(br, data); err != nil {
				return err
			}
			remaining -= int64(chunk.length)
			if key, _, ok := bytes.Cut(data, []byte{0}); ok && len(key) > 0 {
				report.TextChunks = append(report.TextChunks, string(key))
				applyTextKey(report, string(key))
			}
		}

		if _, err := io.CopyN(io.Discard, br, remaining); err != nil {
			return err
		}
		if chunk.name == "IEND" {
			return nil
		}
	}
}

func isTextChunk(name string) bool {
	return name == "tEXt" || name == "zTXt" || name == "iTXt"
}

func applyTextKey(report *MetadataReport, key string) {
	lower := strings.ToLower(key)
	if strings.Contains(lower, "gps") || strings.Contains(lower, "latitude") || strings.Contains(lower, "longitude") {
		report.HasGPS = true
	}
	if strings.Contains(lower, "model") || strings.Contains(lower, "make") {
		report.HasModel = true
	}
	if strings.Contains(lower, "date") || strings.Contains(lower, "time") {
		report.HasTimestamp = true
	}
}
