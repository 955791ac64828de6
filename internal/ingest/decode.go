// Package ingest reads payment exports into validated orders.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Encoding names the character encoding an export was written in.
type Encoding string

// Supported encodings.
const (
	EncodingUTF8  Encoding = "utf-8"
	EncodingEUCKR Encoding = "euc-kr"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode returns a UTF-8 reader over r. A UTF-8 byte order mark is dropped;
// input that is not valid UTF-8 is decoded as EUC-KR, which is what the
// seat-management system writes when exporting to Excel.
func Decode(r io.Reader) (io.Reader, Encoding, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read export: %w", err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return bytes.NewReader(data), EncodingUTF8, nil
	}

	return transform.NewReader(bytes.NewReader(data), korean.EUCKR.NewDecoder()), EncodingEUCKR, nil
}
