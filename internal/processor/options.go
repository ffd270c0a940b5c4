package processor

import (
	"fmt"
	"strings"
)

// enumEntry describes one member of a closed option set. name is the
// persisted form; label is the text shown to users; aliases are extra
// spellings accepted on the command line.
type enumEntry struct {
	name    string
	label   string
	aliases []string
}

func lookupEnum(table []enumEntry, kind, s string) (int, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for i, entry := range table {
		if strings.ToLower(entry.name) == needle || entry.label == s {
			return i, nil
		}
		for _, alias := range entry.aliases {
			if alias == needle {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

func validEnum(table []enumEntry, i int) bool {
	return i >= 0 && i < len(table)
}

func enumName(table []enumEntry, i int) string {
	if !validEnum(table, i) {
		return fmt.Sprintf("invalid(%d)", i)
	}
	return table[i].name
}

func enumLabel(table []enumEntry, i int) string {
	if !validEnum(table, i) {
		return ""
	}
	return table[i].label
}

// ImageSize selects the output size preset.
type ImageSize int

const (
	SizeAsIs ImageSize = iota
	SizeFull
	SizeYado
	SizeCard
)

var imageSizes = []enumEntry{
	{name: "ASIS", label: "そのまま", aliases: []string{"as-is", "asis", "none"}},
	{name: "FULL", label: "フルサイズ", aliases: []string{"full"}},
	{name: "YADO", label: "冒険者の宿", aliases: []string{"yado", "inn"}},
	{name: "CARD", label: "カード", aliases: []string{"card"}},
}

func ImageSizes() []ImageSize {
	return []ImageSize{SizeAsIs, SizeFull, SizeYado, SizeCard}
}

func ParseImageSize(s string) (ImageSize, error) {
	i, err := lookupEnum(imageSizes, "image size", s)
	return ImageSize(i), err
}

func (s ImageSize) String() string { return enumName(imageSizes, int(s)) }
func (s ImageSize) Label() string  { return enumLabel(imageSizes, int(s)) }

func (s ImageSize) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *ImageSize) UnmarshalText(text []byte) error {
	v, err := ParseImageSize(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ImageFormat selects the output encoding.
type ImageFormat int

const (
	FormatBMP ImageFormat = iota
	FormatPNG
	FormatJPEG
)

var imageFormats = []enumEntry{
	{name: "BMP", label: "BMP", aliases: []string{"bmp"}},
	{name: "PNG", label: "PNG", aliases: []string{"png"}},
	{name: "JPEG", label: "JPEG", aliases: []string{"jpeg", "jpg"}},
}

func ImageFormats() []ImageFormat {
	return []ImageFormat{FormatBMP, FormatPNG, FormatJPEG}
}

func ParseImageFormat(s string) (ImageFormat, error) {
	i, err := lookupEnum(imageFormats, "image format", s)
	return ImageFormat(i), err
}

func (f ImageFormat) String() string { return enumName(imageFormats, int(f)) }
func (f ImageFormat) Label() string  { return enumLabel(imageFormats, int(f)) }

// Ext is the file extension without the leading dot.
func (f ImageFormat) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return strings.ToLower(f.String())
}

func (f ImageFormat) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *ImageFormat) UnmarshalText(text []byte) error {
	v, err := ParseImageFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// IndexedColor selects palette reduction. IndexedNone disables it.
type IndexedColor int

const (
	IndexedNone IndexedColor = iota
	Indexed8Bit
	Indexed7Bit
	Indexed6Bit
	Indexed5Bit
	Indexed4Bit
	Indexed3Bit
	Indexed2Bit
	Indexed1Bit
)

var indexedColors = []enumEntry{
	{name: "NONE", label: "なし", aliases: []string{"none", "off", "0"}},
	{name: "INDEXED_8BIT", label: "256色 (8-bit)", aliases: []string{"256", "8bit"}},
	{name: "INDEXED_7BIT", label: "128色", aliases: []string{"128", "7bit"}},
	{name: "INDEXED_6BIT", label: "64色", aliases: []string{"64", "6bit"}},
	{name: "INDEXED_5BIT", label: "32色", aliases: []string{"32", "5bit"}},
	{name: "INDEXED_4BIT", label: "16色 (4-bit)", aliases: []string{"16", "4bit"}},
	{name: "INDEXED_3BIT", label: "8色", aliases: []string{"8", "3bit"}},
	{name: "INDEXED_2BIT", label: "4色", aliases: []string{"4", "2bit"}},
	{name: "INDEXED_1BIT", label: "2色", aliases: []string{"2", "1bit"}},
}

var indexedBits = map[IndexedColor]uint{
	Indexed8Bit: 8,
	Indexed7Bit: 7,
	Indexed6Bit: 6,
	Indexed5Bit: 5,
	Indexed4Bit: 4,
	Indexed3Bit: 3,
	Indexed2Bit: 2,
	Indexed1Bit: 1,
}

func IndexedColors() []IndexedColor {
	return []IndexedColor{
		IndexedNone, Indexed8Bit, Indexed7Bit, Indexed6Bit,
		Indexed5Bit, Indexed4Bit, Indexed3Bit, Indexed2Bit, Indexed1Bit,
	}
}

func ParseIndexedColor(s string) (IndexedColor, error) {
	i, err := lookupEnum(indexedColors, "indexed color", s)
	return IndexedColor(i), err
}

func (c IndexedColor) String() string { return enumName(indexedColors, int(c)) }
func (c IndexedColor) Label() string  { return enumLabel(indexedColors, int(c)) }

// Colors is the palette size, or 0 when no reduction is requested.
func (c IndexedColor) Colors() int {
	bits, ok := indexedBits[c]
	if !ok {
		return 0
	}
	return 1 << bits
}

func (c IndexedColor) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *IndexedColor) UnmarshalText(text []byte) error {
	v, err := ParseIndexedColor(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// OutlineStyle decorates the edge of a color-masked image.
type OutlineStyle int

const (
	OutlineNone OutlineStyle = iota
	OutlineInnerBlack
	OutlineOuterBlack
	OutlineInnerWhite
	OutlineOuterWhite
	OutlineInnerBlackOuterWhite
	OutlineInnerWhiteOuterBlack
)

var outlineStyles = []enumEntry{
	{name: "NONE", label: "なし", aliases: []string{"none", "off"}},
	{name: "INNER_BLACK", label: "黒", aliases: []string{"inner-black", "black"}},
	{name: "OUTER_BLACK", label: "黒(外側)", aliases: []string{"outer-black"}},
	{name: "INNER_WHITE", label: "白", aliases: []string{"inner-white", "white"}},
	{name: "OUTER_WHITE", label: "白(外側)", aliases: []string{"outer-white"}},
	{name: "INNER_BLACK_OUTER_WHITE", label: "黒+白(外側)", aliases: []string{"inner-black-outer-white", "black+white"}},
	{name: "INNER_WHITE_OUTER_BLACK", label: "白+黒(外側)", aliases: []string{"inner-white-outer-black", "white+black"}},
}

// outlineFills maps a style to its inner and outer fill colors.
var outlineFills = map[OutlineStyle][2]string{
	OutlineInnerBlack:           {"black", ""},
	OutlineOuterBlack:           {"", "black"},
	OutlineInnerWhite:           {"white", ""},
	OutlineOuterWhite:           {"", "white"},
	OutlineInnerBlackOuterWhite: {"black", "white"},
	OutlineInnerWhiteOuterBlack: {"white", "black"},
}

func OutlineStyles() []OutlineStyle {
	return []OutlineStyle{
		OutlineNone, OutlineInnerBlack, OutlineOuterBlack, OutlineInnerWhite,
		OutlineOuterWhite, OutlineInnerBlackOuterWhite, OutlineInnerWhiteOuterBlack,
	}
}

func ParseOutlineStyle(s string) (OutlineStyle, error) {
	i, err := lookupEnum(outlineStyles, "outline style", s)
	return OutlineStyle(i), err
}

func (o OutlineStyle) String() string { return enumName(outlineStyles, int(o)) }
func (o OutlineStyle) Label() string  { return enumLabel(outlineStyles, int(o)) }

// Inner is the fill color of the inner edge, or "" for none.
func (o OutlineStyle) Inner() string { return outlineFills[o][0] }

// Outer is the fill color of the outer edge, or "" for none.
func (o OutlineStyle) Outer() string { return outlineFills[o][1] }

func (o OutlineStyle) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *OutlineStyle) UnmarshalText(text []byte) error {
	v, err := ParseOutlineStyle(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}
