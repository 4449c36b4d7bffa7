// Package ident defines the identifiers used by the pend storage engine.
//
// A ContentID is the lowercase hex SHA-256 digest of a blob's exact bytes.
// Pointer identifiers share the same shape so both can be sharded into
// the same directory layout.
//
// This package is the only input-sanitization boundary of the engine:
// every store operation calls Check before it builds a filesystem path,
// which is what keeps crafted identifiers from escaping the store root.
package ident
