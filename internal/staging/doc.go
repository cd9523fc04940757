// Package staging inspects and cleans up the hidden folders an interrupted
// rotation leaves under the rotation root.
//
// Discard folders hold a replaced same-day snapshot and are always safe to
// remove. Staging folders hold working content that never reached its
// snapshot name; Restore publishes them under the date they were staged.
package staging
