// Package preflight provides readiness checks for the external binaries and
// filesystem paths that subreel depends on.
//
// These checks run in two contexts:
//   - The ingest command calls CheckSystemDeps before scanning so a missing
//     mkvtoolnix install fails fast instead of as a probe failure on the
//     first file.
//   - The CLI "subreel doctor" command renders RunAll and CheckSystemDeps as
//     a status report.
package preflight
