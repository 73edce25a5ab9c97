// Package textutil provides text helpers shared by the ingest pipeline and the
// server. Slug turns a video file name into the stable identifier used in
// catalog entries and URLs.
package textutil
