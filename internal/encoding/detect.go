// Package encoding normalises uploaded spreadsheets to UTF-8. Exports from
// older accounting tools still arrive as Windows-1252 or UTF-16.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffLen = 4096

// Charset names reported by Detect.
const (
	UTF8        = "UTF-8"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1252 = "windows-1252"
	ISO8859_15  = "ISO-8859-15"
)

var boms = []struct {
	prefix  []byte
	charset string
	decoder func() *xenc.Decoder
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8, nil},
	{[]byte{0xFF, 0xFE}, UTF16LE, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder},
	{[]byte{0xFE, 0xFF}, UTF16BE, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder},
}

// chardet names mapped to the single-byte charsets we decode.
var singleByte = map[string]*charmap.Charmap{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-15":  charmap.ISO8859_15,
}

// Detect sniffs the start of r and returns a UTF-8 reader over the whole
// input together with the charset it decided on.
//
// Order: BOM, valid UTF-8, chardet heuristics, then Windows-1252.
func Detect(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	buf, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(buf, b.prefix) {
			continue
		}

		if b.decoder == nil {
			_, _ = br.Discard(len(b.prefix))
			return br, b.charset, nil
		}

		return transform.NewReader(br, b.decoder()), b.charset, nil
	}

	if utf8.Valid(trimPartialRune(buf)) {
		return br, UTF8, nil
	}

	if result, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		if cm, ok := singleByte[result.Charset]; ok {
			return transform.NewReader(br, cm.NewDecoder()), result.Charset, nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), Windows1252, nil
}

// NewUTF8Reader is Detect without the charset name.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	out, _, err := Detect(r)
	return out, err
}

// trimPartialRune drops a multi-byte sequence cut off by the sniff window so
// a UTF-8 file is not misread just because the window ended mid-rune.
func trimPartialRune(buf []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(buf); i++ {
		if utf8.RuneStart(buf[len(buf)-i]) {
			if !utf8.FullRune(buf[len(buf)-i:]) {
				return buf[:len(buf)-i]
			}

			break
		}
	}

	return buf
}
