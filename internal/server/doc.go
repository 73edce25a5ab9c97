// Package server serves a persisted catalog over HTTP: an index page listing
// every video, the video files and their subtitles by slug, and static assets
// from the public directory.
package server
