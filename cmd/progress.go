package cmd

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// newSpinner starts an indeterminate spinner on w. It returns nil when the
// spinner is disabled so verbose logs are not interleaved with it.
func newSpinner(w io.Writer, description string, enabled bool) *progressbar.ProgressBar {
	if !enabled {
		return nil
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	_ = bar.RenderBlank()
	return bar
}

func finishBar(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Finish()
	}
}

// spinnerWriter clears the spinner line before each write so log lines
// sharing the stream start on a clean line. The spinner redraws on its
// next render.
type spinnerWriter struct {
	bar *progressbar.ProgressBar
	w   io.Writer
}

func newSpinnerWriter(bar *progressbar.ProgressBar, w io.Writer) io.Writer {
	if bar == nil {
		return w
	}
	return &spinnerWriter{bar: bar, w: w}
}

func (s *spinnerWriter) Write(p []byte) (int, error) {
	_ = s.bar.Clear()
	return s.w.Write(p)
}
