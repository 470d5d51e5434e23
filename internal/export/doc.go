// Package export renders an estimate as a downloadable spreadsheet or PDF.
//
// Both renderings are pure projections of an already-loaded model.Estimate;
// nothing here talks to the backend.
package export
