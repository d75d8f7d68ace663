// Package mediatypes holds the image extension allow-list and related helpers
// shared by the scanner and the HTTP layer.
//
// This package has no dependencies beyond the standard library so that any
// other package can import it without creating import cycles.
//
//	if mediatypes.IsImage(entry.Name()) {
//	    // candidate for tagging
//	}
//
// Matching is case-insensitive: "IMG_0001.JPG" and "img_0001.jpg" are both
// accepted. Formats outside the allow-list are never scanned.
package mediatypes
