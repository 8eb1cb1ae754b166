// Package compress implements response body compression negotiation and
// streaming encoders (spec.md §4.8), grounded on the teacher's
// src/http/tport/gzip_reader.go (which wraps compress/gzip around a response
// body) generalized from a request-side decoder to a response-side encoder
// registry, and enriched with the zstd and brotli codecs present in the rest
// of the example pack's go.mod manifests.
package compress

import (
	"compress/gzip"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// Coding names a content-coding token understood by this package.
type Coding string

const (
	Brotli   Coding = "br"
	Zstd     Coding = "zstd"
	Gzip     Coding = "gzip"
	XGzip    Coding = "x-gzip"
	Deflate  Coding = "deflate"
	Identity Coding = "identity"
)

// preferenceOrder is the server's tie-break order when the client's
// Accept-Encoding assigns equal weight to more than one coding (spec.md
// §4.8: "br > zstd > gzip > x-gzip > deflate").
var preferenceOrder = []Coding{Brotli, Zstd, Gzip, XGzip, Deflate}

// Encoder wraps a destination writer with a streaming compressor.
type Encoder interface {
	io.WriteCloser
}

// NewEncoder constructs the streaming encoder for coding, writing compressed
// bytes to w. Identity has no encoder; callers should not call NewEncoder
// for it.
func NewEncoder(coding Coding, w io.Writer) (Encoder, error) {
	switch coding {
	case Brotli:
		return brotli.NewWriter(w), nil
	case Zstd:
		return zstd.NewWriter(w)
	case Gzip, XGzip:
		return gzip.NewWriter(w), nil
	case Deflate:
		return newDeflateWriter(w)
	default:
		return nil, errUnsupportedCoding(coding)
	}
}

type errUnsupportedCoding Coding

func (e errUnsupportedCoding) Error() string {
	return "compress: unsupported coding " + string(e)
}

// acceptEntry is one comma-separated token of an Accept-Encoding header.
type acceptEntry struct {
	coding Coding
	q      float64
}

// Negotiate selects the best content-coding for acceptEncodingHeader among
// the server's available codings, honoring q-values and the identity
// special case (spec.md §4.8). It returns Identity, false when no
// compression should be applied (client declined, or body doesn't qualify
// per the caller's own size/type checks).
func Negotiate(acceptEncodingHeader string, available []Coding) (Coding, bool) {
	if acceptEncodingHeader == "" {
		return Identity, false
	}

	entries := parseAcceptEncoding(acceptEncodingHeader)
	availableSet := make(map[Coding]bool, len(available))
	for _, c := range available {
		availableSet[c] = true
	}

	// explicit q=0 rejections, and an explicit wildcard weight.
	rejected := make(map[Coding]bool)
	var wildcardQ float64 = -1
	byCoding := make(map[Coding]float64, len(entries))
	for _, e := range entries {
		if e.coding == "*" {
			wildcardQ = e.q
			continue
		}
		byCoding[e.coding] = e.q
		if e.q == 0 {
			rejected[e.coding] = true
		}
	}

	bestQ := -1.0
	var best Coding
	for _, c := range preferenceOrder {
		if !availableSet[c] {
			continue
		}
		q, explicit := byCoding[c]
		if !explicit {
			if wildcardQ < 0 {
				continue
			}
			if wildcardQ == 0 {
				continue
			}
			q = wildcardQ
		}
		if rejected[c] {
			continue
		}
		if q > bestQ {
			bestQ = q
			best = c
		}
	}

	if bestQ <= 0 {
		return Identity, false
	}
	return best, true
}

func parseAcceptEncoding(header string) []acceptEntry {
	rawTokens := strings.Split(header, ",")
	entries := make([]acceptEntry, 0, len(rawTokens))
	for _, tok := range rawTokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		name, q := tok, 1.0
		if idx := strings.IndexByte(tok, ';'); idx >= 0 {
			name = strings.TrimSpace(tok[:idx])
			params := tok[idx+1:]
			for _, p := range strings.Split(params, ";") {
				p = strings.TrimSpace(p)
				if strings.HasPrefix(p, "q=") {
					if v, err := strconv.ParseFloat(strings.TrimPrefix(p, "q="), 64); err == nil {
						q = v
					}
				}
			}
		}
		entries = append(entries, acceptEntry{coding: Coding(strings.ToLower(name)), q: q})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].q > entries[j].q })
	return entries
}
