// Package configs resolves the settings a scrub run uses.
//
// Settings come from four layers, each overriding the one before it:
//
//   - Built-in defaults (.env, .gitignore, origin)
//   - The project file .scrub.toml at the repository root
//   - SCRUB_* environment variables
//   - Command-line flags that were explicitly set
//
// The first three layers are merged by Resolve. Flags are applied by the
// cmd package, which knows which ones the user changed.
//
// # Project File
//
// The project file holds a single [scrub] table:
//
//	[scrub]
//	file = ".env"
//	ignore_file = ".gitignore"
//	remote = "origin"
//	aggressive_gc = false
//
// Use WriteProjectConfig to create it and LoadProjectConfig to read it.
package configs
