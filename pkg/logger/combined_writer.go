package logger

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter пишет одни и те же данные в несколько io.Writer.
// Ошибки отдельных writer'ов объединяются, запись в остальные продолжается.
type CombinedWriter struct {
	writers []io.Writer
}

// NewCombinedWriter создаёт writer, дублирующий запись во все переданные writer'ы.
func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{writers: writers}
}

func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var err error
	n := 0
	for _, w := range cw.writers {
		written, werr := w.Write(p)
		if werr != nil {
			err = multierr.Combine(err, werr)
			continue
		}
		if written > n {
			n = written
		}
	}
	return n, err
}
