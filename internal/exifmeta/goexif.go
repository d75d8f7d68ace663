package exifmeta

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"autotagger/internal/filesystem"
)

// ReaderGoexif is the name of the primary reader.
const ReaderGoexif = "goexif"

// dateFields lists the date tags in priority order.
var dateFields = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTimeDigitized,
	exif.DateTime,
}

// GoexifReader decodes EXIF blocks in-process with rwcarlsen/goexif.
type GoexifReader struct {
	retry filesystem.RetryConfig
}

// NewGoexifReader returns the primary, in-process reader.
func NewGoexifReader() *GoexifReader {
	return &GoexifReader{retry: filesystem.DefaultRetryConfig()}
}

// Name implements Reader.
func (r *GoexifReader) Name() string { return ReaderGoexif }

// Read implements Reader.
func (r *GoexifReader) Read(ctx context.Context, path string) Reading {
	var out Reading

	f, err := filesystem.OpenWithRetry(ctx, path, r.retry)
	if err != nil {
		out.Err = err
		out.tracef("goexif error: %v", err)
		return out
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		out.GPS = GPSAbsent
		if err != nil {
			out.tracef("goexif: No EXIF data (%v)", err)
		} else {
			out.tracef("goexif: No EXIF data")
		}
		return out
	}
	if err != nil {
		out.tracef("goexif: partial EXIF (%v)", err)
	}

	names := &fieldCollector{}
	_ = x.Walk(names)
	if len(names.all) == 0 {
		out.GPS = GPSAbsent
		out.tracef("goexif: No EXIF data")
		return out
	}

	out.Found = true
	out.tracef("goexif found %d EXIF tags", len(names.all))

	for _, field := range dateFields {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		raw, err := tag.StringVal()
		if err != nil {
			continue
		}
		if t, ok := parseExifDate(raw); ok {
			out.Date = t
			out.DateTag = string(field)
			out.tracef("Date extracted via goexif (%s)", field)
			break
		}
	}

	r.readLocation(x, names, &out)
	return out
}

func (r *GoexifReader) readLocation(x *exif.Exif, names *fieldCollector, out *Reading) {
	_, ptrErr := x.Get(exif.GPSInfoIFDPointer)
	gpsTags := names.gps()
	if ptrErr != nil && len(gpsTags) == 0 {
		out.GPS = GPSAbsent
		out.tracef("No GPS block")
		return
	}

	latTag, latErr := x.Get(exif.GPSLatitude)
	latRefTag, latRefErr := x.Get(exif.GPSLatitudeRef)
	lonTag, lonErr := x.Get(exif.GPSLongitude)
	lonRefTag, lonRefErr := x.Get(exif.GPSLongitudeRef)
	if latErr != nil || latRefErr != nil || lonErr != nil || lonRefErr != nil {
		out.GPS = GPSIncomplete
		out.tracef("GPS block present but no coordinates (tags: %s)", strings.Join(gpsTags, ", "))
		return
	}

	location, err := func() (string, error) {
		lat, err := tagComponents(latTag)
		if err != nil {
			return "", fmt.Errorf("latitude: %w", err)
		}
		lon, err := tagComponents(lonTag)
		if err != nil {
			return "", fmt.Errorf("longitude: %w", err)
		}
		latRef, _ := latRefTag.StringVal()
		lonRef, _ := lonRefTag.StringVal()
		return resolveLocation(lat, latRef, lon, lonRef)
	}()
	if err != nil {
		out.GPS = GPSConversionFailed
		out.tracef("GPS coords exist but failed to convert (%v)", err)
		return
	}

	out.GPS = GPSResolved
	out.Location = location
	out.tracef("GPS extracted via goexif")
}

// tagComponents converts a numeric TIFF tag to coordinate components.
func tagComponents(tag *tiff.Tag) ([]Component, error) {
	n := int(tag.Count)
	parts := make([]Component, 0, n)

	switch tag.Format() {
	case tiff.RatVal:
		for i := 0; i < n; i++ {
			num, den, err := tag.Rat2(i)
			if err != nil {
				return nil, err
			}
			parts = append(parts, Rational{Num: num, Den: den})
		}
	case tiff.IntVal:
		for i := 0; i < n; i++ {
			v, err := tag.Int64(i)
			if err != nil {
				return nil, err
			}
			parts = append(parts, Plain(v))
		}
	case tiff.FloatVal:
		for i := 0; i < n; i++ {
			v, err := tag.Float(i)
			if err != nil {
				return nil, err
			}
			parts = append(parts, Plain(v))
		}
	default:
		return nil, fmt.Errorf("%w: unsupported tag format %v", ErrConversion, tag.Format())
	}

	return parts, nil
}

// fieldCollector records the names of every decoded field.
type fieldCollector struct {
	all []string
}

// Walk implements exif.Walker.
func (c *fieldCollector) Walk(name exif.FieldName, _ *tiff.Tag) error {
	c.all = append(c.all, string(name))
	return nil
}

// gps returns the sorted GPS field names, excluding the IFD pointer itself.
func (c *fieldCollector) gps() []string {
	var out []string
	for _, name := range c.all {
		if strings.HasPrefix(name, "GPS") && name != string(exif.GPSInfoIFDPointer) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
