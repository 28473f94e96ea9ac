// Package utils provides shared helpers used across scrub.
//
// # Filesystem Utilities
//
//   - CopyFile: copies a file, preserving permission bits
//   - ResolvePath, RelativeToRepo: map configured paths onto the repository
//
// # System Utilities
//
//   - GetUsername, GetHostname, Identity: who is running the command
//
// # String Utilities
//
//   - Pluralize, ShortHash: output formatting
//
// # Terminal Utilities
//
//   - IsTerminal: terminal detection
//   - Confirm, WaitForEnter: interactive prompts that honour cancellation
package utils
