// Package store provides content-addressed blob storage with a mutable
// pointer slot per well-known identifier.
//
// Two backends implement Store:
//   - MemoryStore: process-local maps, nothing survives a restart
//   - FileStore: durable directory tree rooted at a configured path
//
// # On-disk layout (FileStore)
//
//	<root>/content/<aa>/<bb>/<ccc>/<rest>   read-only blob files (0400)
//	<root>/pointers/<aa>/<bb>/<ccc>/<rest>  files holding one ContentID (0600)
//	<root>/tmp/                             in-flight writes only
//
// Identifiers are split 2/2/3/rest so no single directory grows without
// bound. Shard directories are created lazily with 0700.
//
// # Write protocol
//
// Blobs are streamed into a uniquely named temp file while a SHA-256
// digest accumulates. Commit chmods the temp file read-only and either
// renames it into its shard path or, if that path already exists, deletes
// it. A blob path is therefore either absent or complete. Pointers are
// replaced the same way (temp file + rename), never rewritten in place.
//
// The store assumes a single writer. No locks are taken around renames;
// atomicity is delegated to rename(2) within one filesystem.
package store
