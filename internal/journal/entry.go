package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/pend/internal/chain"
	"github.com/roach88/pend/internal/ident"
)

// Entry is one recorded transition.
type Entry struct {
	Seq     int64           `json:"seq"`
	Op      chain.Op        `json:"op"`
	Pointer ident.ContentID `json:"pointer"`
	From    ident.ContentID `json:"from,omitempty"`
	To      ident.ContentID `json:"to"`
}

var _ chain.Recorder = (*Journal)(nil)

// Record appends t to the journal. Implements chain.Recorder.
func (j *Journal) Record(ctx context.Context, t chain.Transition) error {
	_, err := j.Write(ctx, t)
	return err
}

// Write appends t and returns the stored entry with its seq.
func (j *Journal) Write(ctx context.Context, t chain.Transition) (Entry, error) {
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO transitions (op, pointer, from_id, to_id)
		VALUES (?, ?, ?, ?)
	`,
		string(t.Op),
		string(t.Pointer),
		string(t.From),
		string(t.To),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("write transition: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("write transition: %w", err)
	}
	return Entry{Seq: seq, Op: t.Op, Pointer: t.Pointer, From: t.From, To: t.To}, nil
}

// Entries returns transitions newest first. An empty pointer selects all
// pointers; limit <= 0 means no limit.
//
// Returns an empty slice (not nil) if nothing was recorded.
func (j *Journal) Entries(ctx context.Context, pointer ident.ContentID, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, op, pointer, from_id, to_id
		FROM transitions
		WHERE ? = '' OR pointer = ?
		ORDER BY seq DESC
		LIMIT ?
	`, string(pointer), string(pointer), limit)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return entries, nil
}

// Latest returns the newest transition for pointer. ok is false if none
// was recorded.
func (j *Journal) Latest(ctx context.Context, pointer ident.ContentID) (Entry, bool, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT seq, op, pointer, from_id, to_id
		FROM transitions
		WHERE pointer = ?
		ORDER BY seq DESC
		LIMIT 1
	`, string(pointer))
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Visits returns the transitions that made id live, oldest first.
func (j *Journal) Visits(ctx context.Context, id ident.ContentID) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, op, pointer, from_id, to_id
		FROM transitions
		WHERE to_id = ?
		ORDER BY seq ASC
	`, string(id))
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visits: %w", err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e                 Entry
		op, ptr, from, to string
	)
	if err := s.Scan(&e.Seq, &op, &ptr, &from, &to); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan transition: %w", err)
	}
	e.Op = chain.Op(op)
	e.Pointer = ident.ContentID(ptr)
	e.From = ident.ContentID(from)
	e.To = ident.ContentID(to)
	return e, nil
}
