// Package abcmd holds build information shared by the abcmd packages and
// the wrapper binaries built on top of them.
package abcmd

// Version is the current abcmd release.
const Version = "0.4.0"
