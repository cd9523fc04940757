// Package journal records rotation runs in a SQLite database under the
// state directory.
//
// Every rotate or prune run gets a row when it starts and is completed when
// it finishes. A row that never received a finish timestamp marks a run that
// was interrupted, which usually means a hidden staging folder may remain
// under the rotation root.
package journal
