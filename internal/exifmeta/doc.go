/*
Package exifmeta derives a capture time and a GPS location for an image file.

An Extractor consults Readers in priority order. GoexifReader decodes the
EXIF block in-process; ExiftoolReader asks a long-lived exiftool process and
backfills whatever the first reader could not produce. When no reader yields
a date the file modification time is used, then the wall clock.

	readers := []exifmeta.Reader{exifmeta.NewGoexifReader()}
	if et, err := exifmeta.NewExiftoolReader(""); err == nil {
	    defer et.Close()
	    readers = append(readers, et)
	}
	md := exifmeta.NewExtractor(readers...).Extract(ctx, path)
	// md.CaptureTime "2023-05-10T14:22:01", md.Location "40.446194, -79.982222"

# Dates

Date tags are tried in the order DateTimeOriginal, DateTimeDigitized,
DateTime (exiftool: DateTimeOriginal, CreateDate, ModifyDate). Each must match
"YYYY:MM:DD HH:MM:SS"; values that do not are skipped.

# Locations

A location needs the GPS block plus latitude, latitude reference, longitude
and longitude reference. Components may be rationals or plain numbers; a zero
denominator counts as 0. "S" and "W" produce negative values. The result is
formatted as "%.6f, %.6f".

Metadata.GPS classifies the outcome (absent, incomplete, conversion failed,
resolved) and Metadata.Trace records each step for the run log.
*/
package exifmeta
