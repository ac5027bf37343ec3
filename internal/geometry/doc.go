// Package geometry resolves crop rectangles into the fixed-media parameters the
// rendering backend expects, and models the page range being processed.
//
// A rectangle is given in PDF points either as an origin plus extent
// (RectFormExtent) or as two opposite corners (RectFormCorners). Resolution is
// pure arithmetic: zero or negative extents are passed through untouched so the
// rendering backend's exit status remains the single authority on validity.
package geometry
