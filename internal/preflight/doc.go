// Package preflight provides readiness checks for the filesystem paths
// filecycle depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll before it starts scheduling rotations and
//     logs every failed check as a warning.
//   - The CLI "filecycle doctor" command prints every result.
package preflight
