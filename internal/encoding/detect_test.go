package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/backoffice/internal/encoding"
)

func readAll(t *testing.T, input []byte) (string, string) {
	t.Helper()

	r, charset, err := encoding.Detect(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), charset
}

func TestDetect(t *testing.T) {
	const text = "Descripción;Monto\nCafé;12,50\nAlgodón;-3,00\n"

	latin, err := charmap.Windows1252.NewEncoder().String(text)
	require.NoError(t, err)

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(text)
	require.NoError(t, err)

	type testCase struct {
		name        string
		input       []byte
		wantCharset string
	}

	tests := []testCase{
		{name: "UTF8Passthrough", input: []byte(text), wantCharset: encoding.UTF8},
		{name: "UTF8BOMStripped", input: append([]byte{0xEF, 0xBB, 0xBF}, text...), wantCharset: encoding.UTF8},
		{name: "UTF16LE", input: []byte(utf16), wantCharset: encoding.UTF16LE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, charset := readAll(t, tt.input)
			assert.Equal(t, text, got)
			assert.Equal(t, tt.wantCharset, charset)
		})
	}

	t.Run("SingleByte", func(t *testing.T) {
		got, charset := readAll(t, []byte(latin))
		assert.Equal(t, text, got)
		assert.NotEqual(t, encoding.UTF8, charset)
	})
}

func TestDetect_RuneSplitAtWindow(t *testing.T) {
	// Place a two-byte "ñ" across the 4096-byte sniff boundary.
	input := strings.Repeat("a", 4095) + "ñ" + "\n"

	got, charset := readAll(t, []byte(input))
	assert.Equal(t, encoding.UTF8, charset)
	assert.Equal(t, input, got)
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	r, err := encoding.NewUTF8Reader(bytes.NewReader(nil))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}
