package pipeline

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/Veraticus/saenggibu/internal/common"
)

// Encoding names reported for decoded documents.
const (
	EncodingUTF8  = "utf-8"
	EncodingCP949 = "cp949"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts document bytes to text. UTF-8 is tried first and CP949
// second; input neither accepts cleanly fails with common.ErrUndecodable.
func Decode(data []byte) (string, string, error) {
	if utf8.Valid(data) {
		return string(bytes.TrimPrefix(data, utf8BOM)), EncodingUTF8, nil
	}

	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
		return string(decoded), EncodingCP949, nil
	}

	return "", "", fmt.Errorf("%w: %s", common.ErrUndecodable, guessCharset(data))
}

// guessCharset describes the most likely charset of undecodable input for diagnostics.
func guessCharset(data []byte) string {
	best, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || best == nil {
		return "charset unknown"
	}
	charset := strings.ToLower(best.Charset)
	if best.Language != "" {
		return fmt.Sprintf("looks like %s (%s, confidence %d)", charset, best.Language, best.Confidence)
	}
	return fmt.Sprintf("looks like %s (confidence %d)", charset, best.Confidence)
}
