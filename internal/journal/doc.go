// Package journal provides a SQLite-backed log of pointer moves.
//
// Every Load, Save and Undo made through a chain.Chain can be recorded
// here, giving an audit trail of which snapshot was live when, including
// branches the pointer has since forgotten.
//
// The journal is append-only. Rows are ordered by seq, an INTEGER
// PRIMARY KEY assigned by SQLite; wall-clock time is never stored, so two
// journals built from the same moves are identical.
//
// # Database Configuration
//
//   - WAL mode: readers never block the single writer
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - one open connection: SQLite allows one writer at a time
package journal
