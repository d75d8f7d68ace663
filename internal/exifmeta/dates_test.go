package exifmeta

import (
	"testing"
	"time"
)

func TestParseExifDate(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
		iso   string
	}{
		{"Standard", "2023:05:10 14:22:01", true, "2023-05-10T14:22:01"},
		{"Trailing NUL", "2023:05:10 14:22:01\x00", true, "2023-05-10T14:22:01"},
		{"Surrounding spaces", "  2019:12:31 23:59:59 ", true, "2019-12-31T23:59:59"},
		{"Zero placeholder", "0000:00:00 00:00:00", false, ""},
		{"Blank placeholder", "    :  :     :  :  ", false, ""},
		{"ISO separators", "2023-05-10 14:22:01", false, ""},
		{"Sub-seconds", "2023:05:10 14:22:01.50", false, ""},
		{"Empty", "", false, ""},
		{"Garbage", "yesterday", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseExifDate(tt.raw)
			if ok != tt.valid {
				t.Fatalf("parseExifDate(%q) ok = %v, expected %v", tt.raw, ok, tt.valid)
			}
			if ok && FormatISO(got) != tt.iso {
				t.Errorf("parseExifDate(%q) = %q, expected %q", tt.raw, FormatISO(got), tt.iso)
			}
		})
	}
}

func TestFormatISO(t *testing.T) {
	ts := time.Date(2021, 7, 4, 9, 5, 3, 999, time.Local)
	if got := FormatISO(ts); got != "2021-07-04T09:05:03" {
		t.Errorf("Expected %q, got %q", "2021-07-04T09:05:03", got)
	}
}

func TestTrimDateSuffix(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"2023:05:10 14:22:01", "2023:05:10 14:22:01"},
		{"2023:05:10 14:22:01.25", "2023:05:10 14:22:01"},
		{"2023:05:10 14:22:01+02:00", "2023:05:10 14:22:01"},
		{"2023:05:10 14:22:01-05:00", "2023:05:10 14:22:01"},
		{"2023:05:10 14:22:01Z", "2023:05:10 14:22:01"},
		{"2023:05:10 14:22:01 DST", "2023:05:10 14:22:01 DST"},
		{"short", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := trimDateSuffix(tt.raw); got != tt.expected {
				t.Errorf("trimDateSuffix(%q) = %q, expected %q", tt.raw, got, tt.expected)
			}
		})
	}
}
