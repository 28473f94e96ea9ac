// Package ignore reads and appends gitignore-style rule files.
//
// Matching follows the subset of gitignore semantics that matters when
// deciding whether a path is already excluded: comments and blank lines are
// skipped, a leading "/" anchors a pattern to the root, patterns without a
// slash match at any depth, a trailing "/" matches directories, "!" negates,
// and the last matching line wins. Glob evaluation uses doublestar.
package ignore
