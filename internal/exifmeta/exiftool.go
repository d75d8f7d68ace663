package exifmeta

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/barasher/go-exiftool"
)

// ReaderExiftool is the name of the secondary reader.
const ReaderExiftool = "exiftool"

// exiftoolDateKeys lists exiftool's date tags in priority order.
var exiftoolDateKeys = []string{"DateTimeOriginal", "CreateDate", "ModifyDate"}

// exifMarkerKeys are tags only present when the file carries an EXIF block.
var exifMarkerKeys = []string{"ExifVersion", "Make", "Model", "Orientation", "ExifByteOrder"}

var errNotRunning = errors.New("exiftool is not running")

// numberToken matches a plain number or a "num/den" pair inside a value
// such as `40 deg 26' 46.30" N` or "40/1 26/1 4630/100".
var numberToken = regexp.MustCompile(`(-?\d+(?:\.\d+)?)(?:\s*/\s*(\d+(?:\.\d+)?))?`)

// metadataSource is the subset of *exiftool.Exiftool the reader needs.
type metadataSource interface {
	ExtractMetadata(files ...string) []exiftool.FileMetadata
	Close() error
}

// ExiftoolReader reads metadata through a long-lived exiftool process.
// Requests are serialized because the process handles one file at a time.
type ExiftoolReader struct {
	mu  sync.Mutex
	src metadataSource
}

// NewExiftoolReader starts exiftool. An empty binaryPath uses the binary on PATH.
func NewExiftoolReader(binaryPath string) (*ExiftoolReader, error) {
	var opts []func(*exiftool.Exiftool) error
	if binaryPath != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(binaryPath))
	}

	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start exiftool: %w", err)
	}

	return &ExiftoolReader{src: et}, nil
}

// Name implements Reader.
func (r *ExiftoolReader) Name() string { return ReaderExiftool }

// Close stops the exiftool process.
func (r *ExiftoolReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.src == nil {
		return nil
	}
	err := r.src.Close()
	r.src = nil
	return err
}

// Read implements Reader.
func (r *ExiftoolReader) Read(_ context.Context, path string) Reading {
	var out Reading

	fields, err := r.extract(path)
	if err != nil {
		out.Err = err
		out.tracef("exiftool error: %v", err)
		return out
	}

	gpsKeys := keysWithPrefix(fields, "GPS")
	if !hasAnyKey(fields, exifMarkerKeys) && !hasAnyKey(fields, exiftoolDateKeys) && len(gpsKeys) == 0 {
		out.GPS = GPSAbsent
		out.tracef("exiftool: No EXIF data")
		return out
	}

	out.Found = true
	out.tracef("exiftool found EXIF data")

	for _, key := range exiftoolDateKeys {
		raw, ok := fields[key].(string)
		if !ok {
			continue
		}
		if t, ok := parseExifDate(trimDateSuffix(raw)); ok {
			out.Date = t
			out.DateTag = key
			out.tracef("Date extracted via exiftool (%s)", key)
			break
		}
	}

	if len(gpsKeys) == 0 {
		out.GPS = GPSAbsent
		out.tracef("No GPS block in exiftool output")
		return out
	}

	latVal, hasLat := fields["GPSLatitude"]
	latRef, hasLatRef := fields["GPSLatitudeRef"]
	lonVal, hasLon := fields["GPSLongitude"]
	lonRef, hasLonRef := fields["GPSLongitudeRef"]
	if !hasLat || !hasLatRef || !hasLon || !hasLonRef {
		out.GPS = GPSIncomplete
		out.tracef("GPS block missing coordinates (has tags: %s)", strings.Join(gpsKeys, ", "))
		return out
	}

	location, err := func() (string, error) {
		lat, err := valueComponents(latVal)
		if err != nil {
			return "", fmt.Errorf("latitude: %w", err)
		}
		lon, err := valueComponents(lonVal)
		if err != nil {
			return "", fmt.Errorf("longitude: %w", err)
		}
		return resolveLocation(lat, fmt.Sprint(latRef), lon, fmt.Sprint(lonRef))
	}()
	if err != nil {
		out.GPS = GPSConversionFailed
		out.tracef("GPS coords exist but exiftool conversion failed (%v)", err)
		return out
	}

	out.GPS = GPSResolved
	out.Location = location
	out.tracef("GPS extracted via exiftool")
	return out
}

func (r *ExiftoolReader) extract(path string) (map[string]interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.src == nil {
		return nil, errNotRunning
	}

	results := r.src.ExtractMetadata(path)
	if len(results) == 0 {
		return nil, fmt.Errorf("no result for %s", path)
	}
	if results[0].Err != nil {
		return nil, results[0].Err
	}
	return results[0].Fields, nil
}

// valueComponents decodes the representations exiftool emits for a coordinate:
// JSON numbers (decimal degrees), DMS strings, "num/den" strings, and arrays.
func valueComponents(v interface{}) ([]Component, error) {
	var parts []Component

	switch val := v.(type) {
	case float64:
		parts = []Component{Plain(val)}
	case int:
		parts = []Component{Plain(val)}
	case int64:
		parts = []Component{Plain(val)}
	case string:
		var err error
		parts, err = stringComponents(val)
		if err != nil {
			return nil, err
		}
	case []interface{}:
		for _, item := range val {
			sub, err := valueComponents(item)
			if err != nil {
				return nil, err
			}
			parts = append(parts, sub...)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported value type %T", ErrConversion, v)
	}

	// Pad decimal degrees or degrees + decimal minutes to a full triple.
	switch len(parts) {
	case 0:
		return nil, fmt.Errorf("%w: no numeric components", ErrConversion)
	case 1:
		parts = append(parts, Plain(0), Plain(0))
	case 2:
		parts = append(parts, Plain(0))
	}
	return parts, nil
}

func stringComponents(s string) ([]Component, error) {
	matches := numberToken.FindAllStringSubmatch(s, -1)
	parts := make([]Component, 0, len(matches))

	for _, m := range matches {
		if m[2] == "" {
			f, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrConversion, err)
			}
			parts = append(parts, Plain(f))
			continue
		}

		num, numErr := strconv.ParseInt(m[1], 10, 64)
		den, denErr := strconv.ParseInt(m[2], 10, 64)
		if numErr == nil && denErr == nil {
			parts = append(parts, Rational{Num: num, Den: den})
			continue
		}

		// Fractional numerator or denominator.
		fn, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConversion, err)
		}
		fd, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConversion, err)
		}
		if fd == 0 {
			parts = append(parts, Plain(0))
		} else {
			parts = append(parts, Plain(fn/fd))
		}
	}

	return parts, nil
}

// trimDateSuffix drops sub-second and time zone suffixes exiftool appends,
// e.g. "2023:05:10 14:22:01.25+02:00".
func trimDateSuffix(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= len(exifDateLayout) {
		return s
	}
	switch s[len(exifDateLayout)] {
	case '.', '+', '-', 'Z':
		return s[:len(exifDateLayout)]
	}
	return s
}

func keysWithPrefix(fields map[string]interface{}, prefix string) []string {
	var keys []string
	for k := range fields {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func hasAnyKey(fields map[string]interface{}, keys []string) bool {
	for _, k := range keys {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}
