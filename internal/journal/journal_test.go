package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/pend/internal/chain"
	"github.com/roach88/pend/internal/ident"
	"github.com/roach88/pend/internal/store"
)

// createTestJournal opens a journal in a temp directory.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer j.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/journal.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	j := &Journal{db: nil}
	if err := j.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestPragmas(t *testing.T) {
	j := createTestJournal(t)

	tests := []struct {
		name, want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
	}
	for _, tt := range tests {
		if err := j.verifyPragma(tt.name, tt.want); err != nil {
			t.Error(err)
		}
	}
}

func TestSchema_Version(t *testing.T) {
	j := createTestJournal(t)

	var version int
	if err := j.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("failed to get user_version: %v", err)
	}
	if version != schemaVersion {
		t.Errorf("user_version = %d, want %d", version, schemaVersion)
	}
}

func TestSchema_Indexes(t *testing.T) {
	j := createTestJournal(t)

	for _, idx := range []string{"idx_transitions_pointer", "idx_transitions_to"} {
		var name string
		err := j.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx,
		).Scan(&name)
		if err != nil {
			t.Errorf("index %s missing: %v", idx, err)
		}
	}
}

func TestOpen_ReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := j.Record(ctx, chain.Transition{Op: chain.OpLoad, Pointer: chain.HeadPointer, To: chain.SeedID}); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	j.Close()

	j, err = Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer j.Close()

	entries, err := j.Entries(ctx, "", 0)
	if err != nil {
		t.Fatalf("Entries() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries after reopen, want 1", len(entries))
	}
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion+1)); err != nil {
		t.Fatalf("failed to set user_version: %v", err)
	}
	db.Close()

	if j, err := Open(path); err == nil {
		j.Close()
		t.Error("expected error opening a journal from a newer version")
	}
}

func TestWrite_AssignsIncreasingSeq(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	var last int64
	for i, op := range []chain.Op{chain.OpLoad, chain.OpSave, chain.OpUndo} {
		e, err := j.Write(ctx, chain.Transition{Op: op, Pointer: chain.HeadPointer, To: chain.SeedID})
		if err != nil {
			t.Fatalf("Write() %d failed: %v", i, err)
		}
		if e.Seq <= last {
			t.Errorf("seq %d not greater than previous %d", e.Seq, last)
		}
		last = e.Seq
	}
}

func TestWrite_RejectsUnknownOp(t *testing.T) {
	j := createTestJournal(t)

	_, err := j.Write(context.Background(), chain.Transition{Op: "redo", Pointer: chain.HeadPointer, To: chain.SeedID})
	if err == nil {
		t.Error("expected CHECK constraint failure for unknown op")
	}
}

func TestEntries_NewestFirstAndFiltered(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	other := ident.PointerFor("other")

	moves := []chain.Transition{
		{Op: chain.OpLoad, Pointer: chain.HeadPointer, To: chain.SeedID},
		{Op: chain.OpLoad, Pointer: other, To: chain.SeedID},
		{Op: chain.OpSave, Pointer: chain.HeadPointer, From: chain.SeedID, To: ident.Sum([]byte("x"))},
	}
	for _, m := range moves {
		if err := j.Record(ctx, m); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}

	all, err := j.Entries(ctx, "", 0)
	if err != nil {
		t.Fatalf("Entries() failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d entries, want 3", len(all))
	}
	if all[0].Op != chain.OpSave || all[0].From != chain.SeedID {
		t.Errorf("newest entry = %+v, want the save", all[0])
	}

	head, err := j.Entries(ctx, chain.HeadPointer, 0)
	if err != nil {
		t.Fatalf("Entries() failed: %v", err)
	}
	if len(head) != 2 {
		t.Errorf("got %d head entries, want 2", len(head))
	}

	limited, err := j.Entries(ctx, "", 1)
	if err != nil {
		t.Fatalf("Entries() failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d entries", len(limited))
	}
}

func TestEntries_EmptyJournal(t *testing.T) {
	j := createTestJournal(t)

	entries, err := j.Entries(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("Entries() failed: %v", err)
	}
	if entries == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestLatest(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	if _, ok, err := j.Latest(ctx, chain.HeadPointer); err != nil || ok {
		t.Fatalf("Latest() on empty journal = ok %v, err %v", ok, err)
	}

	want := ident.Sum([]byte("latest"))
	if err := j.Record(ctx, chain.Transition{Op: chain.OpLoad, Pointer: chain.HeadPointer, To: chain.SeedID}); err != nil {
		t.Fatal(err)
	}
	if err := j.Record(ctx, chain.Transition{Op: chain.OpSave, Pointer: chain.HeadPointer, From: chain.SeedID, To: want}); err != nil {
		t.Fatal(err)
	}

	e, ok, err := j.Latest(ctx, chain.HeadPointer)
	if err != nil || !ok {
		t.Fatalf("Latest() = ok %v, err %v", ok, err)
	}
	if e.To != want {
		t.Errorf("Latest().To = %s, want %s", e.To, want)
	}
}

func TestJournalRecordsChainMoves(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	c := chain.New(store.NewMemoryStore(), chain.WithRecorder(j))

	if _, err := c.Load(ctx, ""); err != nil {
		t.Fatal(err)
	}
	saved, err := c.Save(ctx, []byte("2012-05-09,Hand in homework,true"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Undo(ctx); err != nil {
		t.Fatal(err)
	}

	entries, err := j.Entries(ctx, chain.HeadPointer, 0)
	if err != nil {
		t.Fatal(err)
	}
	var ops []chain.Op
	for _, e := range entries {
		ops = append(ops, e.Op)
	}
	want := []chain.Op{chain.OpUndo, chain.OpSave, chain.OpLoad}
	if len(ops) != len(want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("ops[%d] = %s, want %s", i, ops[i], want[i])
		}
	}

	visits, err := j.Visits(ctx, chain.SeedID)
	if err != nil {
		t.Fatal(err)
	}
	if len(visits) != 2 {
		t.Errorf("seed was live %d times, want 2 (load, undo)", len(visits))
	}

	visits, err = j.Visits(ctx, saved.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(visits) != 1 || visits[0].Op != chain.OpSave {
		t.Errorf("visits of saved snapshot = %+v", visits)
	}
}
