package exifmeta

import (
	"strings"
	"time"
)

const (
	// exifDateLayout is the fixed EXIF timestamp layout "YYYY:MM:DD HH:MM:SS".
	exifDateLayout = "2006:01:02 15:04:05"

	// ISOLayout is the layout of Metadata.CaptureTime: local wall time, no zone.
	ISOLayout = "2006-01-02T15:04:05"
)

// parseExifDate parses an EXIF timestamp. Surrounding NULs and whitespace are
// ignored; anything else that deviates from the layout is rejected.
// Placeholder values such as "0000:00:00 00:00:00" fail to parse.
func parseExifDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(strings.Trim(raw, "\x00"))
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.ParseInLocation(exifDateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatISO renders t in ISOLayout without converting its location.
func FormatISO(t time.Time) string {
	return t.Format(ISOLayout)
}
