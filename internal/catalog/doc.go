// ABOUTME: Event catalog package for gravitational-wave detections
// ABOUTME: Reads events from GraceDB or a local TSV file for display
// Package catalog loads the gravitational-wave events shown alongside the
// installation. Events come either from the GraceDB superevent API, with
// immutable documents cached on disk, or from a local tab-separated file.
package catalog
