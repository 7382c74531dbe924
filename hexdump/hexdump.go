package hexdump

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// Options defines options for customizing the hexdump output
type Options struct {
	// BytesPerLine defines the number of bytes to display per line
	BytesPerLine int

	// StartAddress is the address of data[0], printed in the offset column
	StartAddress uint64

	// HighlightStart and HighlightLen mark a byte range of data to highlight,
	// typically the bytes a signature matched
	HighlightStart int
	HighlightLen   int

	// Color enables ANSI colors
	Color bool

	OffsetColor    coloransi.ColorCode
	ZeroColor      coloransi.ColorCode
	HighlightColor coloransi.ColorCode
	HighlightBG    coloransi.ColorCode
}

// DefaultOptions returns the default hexdump options
func DefaultOptions() Options {
	return Options{
		BytesPerLine:   16,
		Color:          true,
		OffsetColor:    coloransi.Cyan,
		ZeroColor:      coloransi.BrightBlack,
		HighlightColor: coloransi.Yellow,
		HighlightBG:    coloransi.Black,
	}
}

// Dump creates a hex dump of the given data with specified options
func Dump(data []byte, options Options) string {
	var buffer bytes.Buffer
	DumpToWriter(&buffer, data, options)
	return buffer.String()
}

// DumpMatch dumps data starting at start with [matchOffset, matchOffset+matchLen) highlighted
func DumpMatch(data []byte, start uint64, matchOffset, matchLen int, color bool) string {
	options := DefaultOptions()
	options.StartAddress = start
	options.HighlightStart = matchOffset
	options.HighlightLen = matchLen
	options.Color = color
	return Dump(data, options)
}

// DumpToWriter writes a hex dump of the given data to the specified writer
func DumpToWriter(writer io.Writer, data []byte, options Options) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}

	for offset := 0; offset < len(data); offset += options.BytesPerLine {
		end := min(offset+options.BytesPerLine, len(data))
		formatLine(writer, data[offset:end], offset, options)
	}
}

// formatLine writes "address  hex bytes  |ascii|" for one line starting at data offset
func formatLine(writer io.Writer, line []byte, offset int, options Options) {
	fmt.Fprint(writer, paint(options, options.OffsetColor, fmt.Sprintf("%016x", options.StartAddress+uint64(offset))), "  ")

	hex := make([]string, options.BytesPerLine)
	var ascii strings.Builder

	for i := range hex {
		if i >= len(line) {
			hex[i] = "  "
			continue
		}

		b := line[i]
		text := fmt.Sprintf("%02x", b)
		c := "."
		if b >= 0x20 && b < 0x7f {
			c = string(rune(b))
		}

		switch {
		case highlighted(offset+i, options):
			text = highlight(options, strings.ToUpper(text))
			if options.Color {
				c = highlight(options, c)
			}
		case b == 0:
			text = paint(options, options.ZeroColor, text)
		}

		hex[i] = text
		ascii.WriteString(c)
	}

	fmt.Fprintf(writer, "%s  |%s|\n", strings.Join(hex, " "), ascii.String())
}

func highlighted(pos int, options Options) bool {
	return options.HighlightLen > 0 && pos >= options.HighlightStart && pos < options.HighlightStart+options.HighlightLen
}

func paint(options Options, fg coloransi.ColorCode, text string) string {
	if !options.Color {
		return text
	}
	return coloransi.Foreground(fg, text)
}

// highlight colors text; without colors highlighted hex is only upper-cased
func highlight(options Options, text string) string {
	if !options.Color {
		return text
	}
	return coloransi.Color(options.HighlightColor, options.HighlightBG, text)
}
