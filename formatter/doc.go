// Package formatter expands command templates against a configuration
// mapping.
//
// # Template syntax
//
// A template is plain text with substitution fields in braces:
//
//	borg create {verbose} {-e exclude} {repository}::{archive} {paths}
//
// Two kinds of fields exist:
//
//   - {KEY} substitutes the value of KEY
//   - {FLAG KEY} substitutes the value of KEY prefixed with FLAG, where FLAG
//     is any token starting with a dash (-e, --keep-daily). Tokens after KEY
//     are ignored.
//
// Literal braces are written as {{ and }}.
//
// # Value rules
//
//   - true renders as --key-name (underscores become dashes), false renders
//     nothing
//   - nil, "", empty lists and missing keys render nothing
//   - numeric zero is a value and renders as 0
//   - lists are joined with spaces; in a flagged field the flag is repeated
//     for every element (-e a -e b)
//
// Whitespace left behind by empty fields is collapsed, so the result is a
// single-spaced, trimmed command line.
//
// # Caching
//
// Rendered templates are memoized per Formatter. Mutating the configuration
// through Config() or calling Invalidate() drops the memo; writing to the
// map held elsewhere does not, and the stale rendering is served until one
// of those is called.
package formatter
