// Package services defines shared utilities consumed by the ingest pipeline
// and its external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - The Wrap helper that tags failures with a classification marker while
//     keeping stage and operation context in the message.
//
// Tool-specific clients live in subpackages (see mkvtoolnix).
package services
