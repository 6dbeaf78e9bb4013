package httpfetch

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const pageBody = `<html><body><span class="price">4 990 ₽</span></body></html>`

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func brotliBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zlibBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestFetchPlainBody(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(pageBody))
	}))
	defer srv.Close()

	f := New(Config{})
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, pageBody, page.HTML)
	require.Equal(t, srv.URL, page.URL)
	require.False(t, page.UsedHeadless)
	require.Equal(t, DefaultUserAgent, gotUA)
	require.Contains(t, gotAccept, "ru-RU")
}

func TestFetchDecompressesEncodedBodies(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		encoding string
		body     func(t *testing.T) []byte
	}{
		{"gzip", "gzip", func(t *testing.T) []byte { return gzipBytes(t, pageBody) }},
		{"brotli", "br", func(t *testing.T) []byte { return brotliBytes(t, pageBody) }},
		{"zlib deflate", "deflate", func(t *testing.T) []byte { return zlibBytes(t, pageBody) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			body := tc.body(t)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Encoding", tc.encoding)
				_, _ = w.Write(body)
			}))
			defer srv.Close()

			page, err := New(Config{}).Fetch(context.Background(), srv.URL)
			require.NoError(t, err)
			require.Equal(t, pageBody, page.HTML)
		})
	}
}

func TestFetchStripsUTF8BOM(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(append([]byte{0xEF, 0xBB, 0xBF}, pageBody...))
	}))
	defer srv.Close()

	page, err := New(Config{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, pageBody, page.HTML)
}

func TestFetchDecodesUTF16BOM(t *testing.T) {
	t.Parallel()

	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, _, err := transform.Bytes(enc, []byte(pageBody))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(encoded)
	}))
	defer srv.Close()

	page, fetchErr := New(Config{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, fetchErr)
	require.Equal(t, pageBody, page.HTML)
}

func TestFetchNonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(Config{}).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestFetchEmptyBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := New(Config{}).Fetch(context.Background(), srv.URL)
	require.ErrorContains(t, err, "empty response body")
}

func TestFetchHonorsContextCancel(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(pageBody))
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(Config{}).Fetch(ctx, srv.URL)
	require.ErrorContains(t, err, "canceled")
}

func TestDecompressGzipAlreadyDecoded(t *testing.T) {
	t.Parallel()

	// The transport gunzips gzip bodies before OnResponse fires, so the
	// body arrives as plain text while the header still says gzip. It must
	// pass through untouched instead of failing a second gunzip.
	out, err := decompress([]byte(pageBody), "gzip")
	require.NoError(t, err)
	require.Equal(t, pageBody, string(out))
}

func TestDecompressGzipWithMagicBytes(t *testing.T) {
	t.Parallel()

	out, err := decompress(gzipBytes(t, pageBody), "gzip")
	require.NoError(t, err)
	require.Equal(t, pageBody, string(out))
}

func TestInflateRawDeflate(t *testing.T) {
	t.Parallel()

	// Raw deflate stream is a zlib stream without the two-byte header.
	zl := zlibBytes(t, pageBody)
	raw := zl[2 : len(zl)-4]

	out, err := inflate(raw)
	require.NoError(t, err)
	require.Equal(t, pageBody, string(out))
}
