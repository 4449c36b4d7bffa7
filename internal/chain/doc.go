// Package chain implements undo history on top of a content store.
//
// Every saved state is a snapshot blob:
//
//	<previous snapshot id> "\n" <payload>
//
// Snapshots link backward in time and, because a snapshot's id is the
// hash of bytes that already contain its predecessor's id, the chain is
// acyclic by construction. One pointer (HeadPointer by default) names the
// current snapshot. Save appends and moves the pointer forward; Undo moves
// it to the predecessor; Load moves it to any snapshot, which is what
// makes a past revision live again.
//
// The first snapshot of a fresh history links to EmptySentinel. A
// well-known seed snapshot (empty payload, linking to EmptySentinel)
// stands in for "no history yet" so a new store loads cleanly.
//
// Two Chains sharing one pointer race last-writer-wins. Both snapshots
// stay reachable by id; only the pointer forgets one branch. No locking
// is done here.
package chain
