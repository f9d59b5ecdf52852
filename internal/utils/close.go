package utils

import "io"

// DrainAndClose discards up to limit bytes of r before closing it so the
// underlying connection can be reused.
func DrainAndClose(r io.ReadCloser, limit int64) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, limit))
	_ = r.Close()
}
