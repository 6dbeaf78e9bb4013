package httpfetch

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// gzipMagic is the two-byte header every gzip stream starts with.
var gzipMagic = []byte{0x1f, 0x8b}

// decompress unwraps the response body according to the Content-Encoding
// header. The collector's transport gunzips gzip bodies on its own, so the
// gzip branch only unwraps when the magic bytes are still present; brotli
// and deflate always reach us compressed.
func decompress(body []byte, encoding string) ([]byte, error) {
	enc := strings.ToLower(encoding)
	switch {
	case strings.Contains(enc, "br"):
		return io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
	case strings.Contains(enc, "gzip"):
		if !bytes.HasPrefix(body, gzipMagic) {
			return body, nil
		}
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case strings.Contains(enc, "deflate"):
		return inflate(body)
	default:
		return body, nil
	}
}

// inflate handles both spellings of deflate in the wild: zlib-wrapped per
// the HTTP spec and raw streams from servers that skip the wrapper.
func inflate(body []byte) ([]byte, error) {
	if r, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
		defer r.Close()
		return io.ReadAll(r)
	}
	r := flate.NewReader(bytes.NewReader(body))
	defer r.Close()
	return io.ReadAll(r)
}

// decodeText interprets bytes as UTF-8 with byte-order-mark sniffing: a
// UTF-16 BOM switches the decoder, a UTF-8 BOM is stripped.
func decodeText(body []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, body)
	if err != nil {
		return "", fmt.Errorf("transform bytes: %w", err)
	}
	return string(out), nil
}
