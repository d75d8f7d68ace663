package exifmeta

import (
	"context"
	"fmt"
	"os"
	"time"

	"autotagger/internal/filesystem"
	"autotagger/internal/logging"
	"autotagger/internal/metrics"
)

const (
	// SourceMtime marks a capture time taken from the file modification time.
	SourceMtime = "mtime"
	// SourceNow marks a capture time taken from the wall clock.
	SourceNow = "now"
)

// Extractor merges readers in priority order and falls back to filesystem
// timestamps. It is safe for concurrent use when its readers are.
type Extractor struct {
	readers []Reader
	stat    func(ctx context.Context, path string) (os.FileInfo, error)
	now     func() time.Time
}

// NewExtractor returns an extractor consulting readers in the given order.
func NewExtractor(readers ...Reader) *Extractor {
	retry := filesystem.DefaultRetryConfig()
	return &Extractor{
		readers: readers,
		stat: func(ctx context.Context, path string) (os.FileInfo, error) {
			return filesystem.StatWithRetry(ctx, path, retry)
		},
		now: time.Now,
	}
}

// ReaderNames lists the configured readers in priority order.
func (e *Extractor) ReaderNames() []string {
	names := make([]string, 0, len(e.readers))
	for _, r := range e.readers {
		names = append(names, r.Name())
	}
	return names
}

// Extract derives the capture time and location of one file. It never fails:
// reader errors and panics degrade the result and are recorded in the trace.
//
// A field resolved by an earlier reader is never overwritten. Later readers
// run only while a field is still missing; a later location that disagrees
// with the chosen one is noted in the trace.
func (e *Extractor) Extract(ctx context.Context, path string) Metadata {
	start := time.Now()
	md := Metadata{GPS: GPSUnknown}
	var captured time.Time

	for _, r := range e.readers {
		if !captured.IsZero() && md.Location != "" {
			break
		}

		reading, panicked := e.read(ctx, r, path)
		if panicked {
			md.ReaderFailures++
		}
		md.Trace = append(md.Trace, reading.Trace...)

		if captured.IsZero() && reading.HasDate() {
			captured = reading.Date
			md.DateSource = r.Name()
		}

		if reading.Location != "" {
			switch {
			case md.Location == "":
				md.Location = reading.Location
				md.LocationSource = r.Name()
			case reading.Location != md.Location:
				md.Trace = append(md.Trace, fmt.Sprintf("%s location %q disagrees with %s %q, keeping %s",
					r.Name(), reading.Location, md.LocationSource, md.Location, md.LocationSource))
			}
		}

		if reading.GPS > md.GPS {
			md.GPS = reading.GPS
		}
	}

	if md.Location != "" {
		md.GPS = GPSResolved
	}

	if captured.IsZero() {
		captured, md.DateSource = e.fallbackDate(ctx, path, &md)
	}
	md.CaptureTime = FormatISO(captured)

	metrics.ExifDateSourceTotal.WithLabelValues(md.DateSource).Inc()
	metrics.ExifGPSStatusTotal.WithLabelValues(md.GPS.String()).Inc()
	metrics.ExifExtractionDuration.Observe(time.Since(start).Seconds())

	return md
}

// read runs one reader, converting a panic into a trace entry.
func (e *Extractor) read(ctx context.Context, r Reader, path string) (reading Reading, panicked bool) {
	name := r.Name()

	defer func() {
		if rec := recover(); rec != nil {
			logging.Warn("Metadata reader %s panicked on %s: %v", name, path, rec)
			metrics.ExifReadsTotal.WithLabelValues(name, "panic").Inc()
			reading = Reading{Trace: []string{fmt.Sprintf("%s panic: %v", name, rec)}}
			panicked = true
		}
	}()

	reading = r.Read(ctx, path)

	outcome := "found"
	switch {
	case reading.Err != nil:
		outcome = "error"
	case !reading.Found:
		outcome = "empty"
	}
	metrics.ExifReadsTotal.WithLabelValues(name, outcome).Inc()

	return reading, false
}

func (e *Extractor) fallbackDate(ctx context.Context, path string, md *Metadata) (time.Time, string) {
	info, err := e.stat(ctx, path)
	if err == nil {
		md.Trace = append(md.Trace, "Using file mtime")
		return info.ModTime(), SourceMtime
	}

	md.Trace = append(md.Trace, fmt.Sprintf("Using current time (stat failed: %v)", err))
	return e.now(), SourceNow
}
