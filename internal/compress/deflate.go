package compress

import (
	"compress/flate"
	"io"
)

// newDeflateWriter backs the "deflate" content-coding with the stdlib raw
// DEFLATE implementation; no third-party pack repo carries a deflate codec,
// so this one concern stays on the standard library (DESIGN.md records the
// justification).
func newDeflateWriter(w io.Writer) (Encoder, error) {
	return flate.NewWriter(w, flate.DefaultCompression)
}
