// Package exiftest writes minimal JPEG files carrying EXIF and GPS blocks
// for tests.
package exiftest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

// TIFF field types.
const (
	typeASCII    = 2
	typeLong     = 4
	typeRational = 5
)

// Tag numbers used by the fixtures.
const (
	tagDateTime          = 0x0132
	tagExifIFDPointer    = 0x8769
	tagGPSIFDPointer     = 0x8825
	tagDateTimeOriginal  = 0x9003
	tagDateTimeDigitized = 0x9004
	tagGPSVersionID      = 0x0000
	tagGPSLatitudeRef    = 0x0001
	tagGPSLatitude       = 0x0002
	tagGPSLongitudeRef   = 0x0003
	tagGPSLongitude      = 0x0004
)

// DMS is a degree/minute/second triple of rationals.
type DMS [3][2]uint32

// GPS describes a GPS IFD. Empty refs and nil coordinates are omitted,
// which produces an incomplete block.
type GPS struct {
	LatRef string
	Lat    *DMS
	LonRef string
	Lon    *DMS

	// LatText, when set, writes GPSLatitude as an ASCII value instead of
	// rationals, as some broken writers do.
	LatText string
}

// Fixture describes the EXIF content of a synthesized JPEG. Empty date
// strings are omitted. A nil GPS omits the GPS IFD entirely.
type Fixture struct {
	DateTime          string
	DateTimeOriginal  string
	DateTimeDigitized string
	GPS               *GPS
}

// Pittsburgh is 40°26'46.30"N 79°58'56"W, "40.446194, -79.982222".
func Pittsburgh() *GPS {
	return &GPS{
		LatRef: "N",
		Lat:    &DMS{{40, 1}, {26, 1}, {4630, 100}},
		LonRef: "W",
		Lon:    &DMS{{79, 1}, {58, 1}, {56, 1}},
	}
}

// Sydney is 33°52'7.68"S 151°12'33.6"E, "-33.868800, 151.209333".
func Sydney() *GPS {
	return &GPS{
		LatRef: "S",
		Lat:    &DMS{{33, 1}, {52, 1}, {768, 100}},
		LonRef: "E",
		Lon:    &DMS{{151, 1}, {12, 1}, {336, 10}},
	}
}

// WriteJPEG writes a JPEG containing f's EXIF block to dir/name and returns its path.
func WriteJPEG(t testing.TB, dir, name string, f Fixture) string {
	t.Helper()
	return WriteFile(t, dir, name, JPEG(f))
}

// WriteFile writes data to dir/name, creating parent directories.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// SetMtime sets both access and modification time of path.
func SetMtime(t testing.TB, path string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Failed to set mtime on %s: %v", path, err)
	}
}

// JPEG returns SOI + APP1(Exif) + EOI.
func JPEG(f Fixture) []byte {
	payload := append([]byte("Exif\x00\x00"), TIFF(f)...)

	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(payload)+2))
	buf.Write(payload)
	buf.Write([]byte{0xFF, 0xD9})
	return buf.Bytes()
}

// PlainJPEG returns a JPEG marker sequence with no APP1 segment.
func PlainJPEG() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xD9}
}

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
	// sub, when set, makes this entry a pointer to that IFD.
	sub *ifd
}

type ifd struct {
	entries []entry
	offset  uint32
}

func (d *ifd) size() uint32 {
	n := uint32(2 + 12*len(d.entries) + 4)
	for _, e := range d.entries {
		if len(e.data) > 4 {
			n += uint32(len(e.data))
			if len(e.data)%2 == 1 {
				n++
			}
		}
	}
	return n
}

func ascii(tag uint16, s string) entry {
	data := append([]byte(s), 0)
	return entry{tag: tag, typ: typeASCII, count: uint32(len(data)), data: data}
}

func rationals(tag uint16, dms DMS) entry {
	data := make([]byte, 0, 24)
	for _, r := range dms {
		data = binary.LittleEndian.AppendUint32(data, r[0])
		data = binary.LittleEndian.AppendUint32(data, r[1])
	}
	return entry{tag: tag, typ: typeRational, count: 3, data: data}
}

func pointer(tag uint16, sub *ifd) entry {
	return entry{tag: tag, typ: typeLong, count: 1, sub: sub}
}

// TIFF returns a little-endian TIFF structure with IFD0, an Exif IFD and
// an optional GPS IFD.
func TIFF(f Fixture) []byte {
	ifd0 := &ifd{}
	exifIFD := &ifd{}
	var gpsIFD *ifd

	if f.DateTime != "" {
		ifd0.entries = append(ifd0.entries, ascii(tagDateTime, f.DateTime))
	}
	if f.DateTimeOriginal != "" {
		exifIFD.entries = append(exifIFD.entries, ascii(tagDateTimeOriginal, f.DateTimeOriginal))
	}
	if f.DateTimeDigitized != "" {
		exifIFD.entries = append(exifIFD.entries, ascii(tagDateTimeDigitized, f.DateTimeDigitized))
	}

	if f.GPS != nil {
		gpsIFD = &ifd{}
		gpsIFD.entries = append(gpsIFD.entries, entry{tag: tagGPSVersionID, typ: 1, count: 4, data: []byte{2, 2, 0, 0}})
		if f.GPS.LatRef != "" {
			gpsIFD.entries = append(gpsIFD.entries, ascii(tagGPSLatitudeRef, f.GPS.LatRef))
		}
		switch {
		case f.GPS.LatText != "":
			gpsIFD.entries = append(gpsIFD.entries, ascii(tagGPSLatitude, f.GPS.LatText))
		case f.GPS.Lat != nil:
			gpsIFD.entries = append(gpsIFD.entries, rationals(tagGPSLatitude, *f.GPS.Lat))
		}
		if f.GPS.LonRef != "" {
			gpsIFD.entries = append(gpsIFD.entries, ascii(tagGPSLongitudeRef, f.GPS.LonRef))
		}
		if f.GPS.Lon != nil {
			gpsIFD.entries = append(gpsIFD.entries, rationals(tagGPSLongitude, *f.GPS.Lon))
		}
		ifd0.entries = append(ifd0.entries, pointer(tagGPSIFDPointer, gpsIFD))
	}

	ifds := []*ifd{ifd0}
	if len(exifIFD.entries) > 0 {
		ifd0.entries = append(ifd0.entries, pointer(tagExifIFDPointer, exifIFD))
		ifds = append(ifds, exifIFD)
	}
	if gpsIFD != nil {
		ifds = append(ifds, gpsIFD)
	}

	offset := uint32(8)
	for _, d := range ifds {
		sort.Slice(d.entries, func(i, j int) bool { return d.entries[i].tag < d.entries[j].tag })
		d.offset = offset
		offset += d.size()
	}

	out := []byte{'I', 'I', 0x2A, 0x00}
	out = binary.LittleEndian.AppendUint32(out, 8)
	for _, d := range ifds {
		out = d.appendTo(out)
	}
	return out
}

func (d *ifd) appendTo(out []byte) []byte {
	dataOffset := d.offset + uint32(2+12*len(d.entries)+4)
	var overflow []byte

	out = binary.LittleEndian.AppendUint16(out, uint16(len(d.entries)))
	for _, e := range d.entries {
		out = binary.LittleEndian.AppendUint16(out, e.tag)
		out = binary.LittleEndian.AppendUint16(out, e.typ)
		out = binary.LittleEndian.AppendUint32(out, e.count)

		switch {
		case e.sub != nil:
			out = binary.LittleEndian.AppendUint32(out, e.sub.offset)
		case len(e.data) > 4:
			out = binary.LittleEndian.AppendUint32(out, dataOffset+uint32(len(overflow)))
			overflow = append(overflow, e.data...)
			if len(e.data)%2 == 1 {
				overflow = append(overflow, 0)
			}
		default:
			var inline [4]byte
			copy(inline[:], e.data)
			out = append(out, inline[:]...)
		}
	}
	out = binary.LittleEndian.AppendUint32(out, 0)
	return append(out, overflow...)
}
