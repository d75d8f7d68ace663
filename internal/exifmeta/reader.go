package exifmeta

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// GPSStatus classifies what a metadata source knows about a file's location.
// Values are ordered from least to most specific; when several readers run,
// the most specific verdict is kept.
type GPSStatus int

const (
	// GPSUnknown means no reader could inspect the file.
	GPSUnknown GPSStatus = iota
	// GPSAbsent means the file has no GPS block.
	GPSAbsent
	// GPSIncomplete means a GPS block exists but lacks latitude/longitude or a reference.
	GPSIncomplete
	// GPSConversionFailed means all four coordinate fields exist but could not be decoded.
	GPSConversionFailed
	// GPSResolved means a location string was produced.
	GPSResolved
)

// String returns the metric/JSON label for the status.
func (s GPSStatus) String() string {
	switch s {
	case GPSAbsent:
		return "absent"
	case GPSIncomplete:
		return "incomplete"
	case GPSConversionFailed:
		return "conversion_failed"
	case GPSResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s GPSStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Reading is what one Reader learned about one file.
type Reading struct {
	// Found is true when the reader located an embedded metadata block.
	Found bool

	// Date is the capture time, zero when no date tag parsed.
	Date time.Time

	// DateTag names the tag Date came from.
	DateTag string

	// Location is "lat, lon" or empty.
	Location string

	GPS GPSStatus

	// Trace holds short diagnostics in the order they were produced.
	Trace []string

	// Err is set when the reader could not inspect the file at all.
	Err error
}

// HasDate reports whether the reading carries a capture time.
func (r Reading) HasDate() bool {
	return !r.Date.IsZero()
}

func (r *Reading) tracef(format string, args ...interface{}) {
	r.Trace = append(r.Trace, fmt.Sprintf(format, args...))
}

// Reader is one metadata decoding strategy. Read never fails; problems are
// reported through Reading.Err and Reading.Trace.
type Reader interface {
	Name() string
	Read(ctx context.Context, path string) Reading
}

// Metadata is the merged result for one file.
type Metadata struct {
	// CaptureTime is ISO-8601 local time (ISOLayout). Always set.
	CaptureTime string `json:"capture_time"`

	// Location is "lat, lon" or empty when no reader resolved one.
	Location string `json:"location,omitempty"`

	GPS GPSStatus `json:"gps"`

	// DateSource is the reader name that supplied CaptureTime, or "mtime" / "now".
	DateSource string `json:"date_source"`

	// LocationSource is the reader name that supplied Location.
	LocationSource string `json:"location_source,omitempty"`

	Trace []string `json:"trace"`

	// ReaderFailures counts readers that panicked while inspecting the file.
	ReaderFailures int `json:"reader_failures,omitempty"`
}

// HasLocation reports whether a location was resolved.
func (m Metadata) HasLocation() bool {
	return m.Location != ""
}

// TraceString joins the trace for a single log line.
func (m Metadata) TraceString() string {
	return strings.Join(m.Trace, " | ")
}
