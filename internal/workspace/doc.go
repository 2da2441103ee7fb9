// Package workspace holds a loaded reference and obfuscated schema pair and
// implements the operations of the interactive matcher on top of it: search,
// unique signature listings, exact matches, perfect mappables and sequential
// matching sessions.
//
// A Workspace is built once per configuration and is read-only afterwards,
// apart from its search cache.
package workspace
