package csv

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// SkipBOM wraps r so a leading byte order mark never reaches the header.
// A UTF-8 BOM is dropped; a UTF-16 BOM switches decoding to that encoding.
// Input without a BOM passes through as UTF-8.
func SkipBOM(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}
