// Package config loads, normalizes, and validates subreel configuration data.
//
// It supplies repository defaults that mirror the fixed project layout
// (assets/videos in, assets/video-files and assets/videos.json out), expands
// tilde shortcuts, reads TOML files, and rejects layouts where the managed work
// directory would swallow the source videos or the catalog.
//
// Always obtain settings through this package so the ingest pipeline, the
// server, and the CLI agree on the same paths.
package config
