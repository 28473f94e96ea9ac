// Package audit records every scrub run in a local audit trail.
//
// History rewrites cannot be undone, so each run (including dry runs and
// aborted runs) appends one entry describing what was attempted, which steps
// completed and how it ended.
//
// # Log Format
//
// The log is stored as JSON Lines inside the repository's git dir, where it
// is never committed and survives the history rewrite:
//
//	.git/scrub/audit.jsonl
//
// Each entry contains:
//   - Timestamp (microseconds, UTC) and a run ID
//   - The git user.email of whoever ran it
//   - The file, backup path and remote involved
//   - The completed steps, final status and error text
//
// # Failure Handling
//
// Logging is best-effort. Log returns an error so callers can warn about it,
// but no run should fail because the trail could not be written.
//
// # Reading Logs
//
// Use ReadEntries to parse the log for display. Malformed lines are skipped
// to tolerate partial writes.
package audit
