// Package handlers provides the HTTP control API for autotagger.
//
// It includes handlers for:
//   - Starting, cancelling and polling a tagging run
//   - Listing the tags of a tagged folder and the photos carrying a tag
//   - Looking up one photo with its tags
//   - Health, liveness, version and Prometheus metrics
//
// Tag queries open the library database inside the requested folder
// read-side only; they never create a library.
package handlers
