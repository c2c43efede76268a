package pkg

import (
	"fmt"
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter fans log entries out to several sinks, e.g. stdout and a rotating log file.
type CombinedWriter struct {
	Writers []io.Writer
}

// NewCombinedWriter skips nil writers.
func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	cw := &CombinedWriter{}
	for _, w := range writers {
		if w != nil {
			cw.Writers = append(cw.Writers, w)
		}
	}
	return cw
}

// Write reports the whole entry as written when at least one sink took it,
// failing sinks are reported in the combined error.
func (cw CombinedWriter) Write(p []byte) (int, error) {
	var err error
	delivered := false
	for i, w := range cw.Writers {
		written, werr := w.Write(p)
		if werr == nil && written < len(p) {
			werr = io.ErrShortWrite
		}
		if werr != nil {
			err = multierr.Append(err, fmt.Errorf("log sink %d: %w", i, werr))
			continue
		}
		delivered = true
	}
	if !delivered {
		return 0, err
	}
	return len(p), err
}
