// Package pgstore is a PostgreSQL-backed exec.StorageAccess
// implementation, exercising fetchSubset/countAll against real range
// queries the way SPEC_FULL.md's domain stack table names pgx for
// (spec §6's StorageAccess contract, B "jackc/pgx/v5").
package pgstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/model"
)

// RowMapper lets an embedder describe how rows of one Postgres table map
// onto record type S: which columns exist, how to build a record from a
// scanned row, and how to read a column's value back off a record (used
// to build ORDER BY / WHERE parameter lists).
type RowMapper[S any] interface {
	Columns() []string
	ScanRow(rows pgx.Rows) (S, error)
	ColumnValue(rec S, column string) any
}

// Store is a StorageAccess backed by one Postgres table.
type Store[S any] struct {
	pool     *pgxpool.Pool
	table    string
	typeInfo model.TypeInfo
	mapper   RowMapper[S]
}

// New builds a Store over table, using pool for every query.
func New[S any](pool *pgxpool.Pool, table string, typeInfo model.TypeInfo, mapper RowMapper[S]) *Store[S] {
	return &Store[S]{pool: pool, table: table, typeInfo: typeInfo, mapper: mapper}
}

func (s *Store[S]) StorableType() model.TypeInfo         { return s.typeInfo }
func (s *Store[S]) AllIndexes() []model.IndexDescriptor  { return s.typeInfo.Indexes() }
func (s *Store[S]) StorageDelegate(model.IndexDescriptor) (exec.Node[S], bool) { return nil, false }

// CountAll runs a plain COUNT(*). It returns -1 only when the query or
// the scan of its result fails.
func (s *Store[S]) CountAll() int64 {
	var n int64
	row := s.pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+s.table)
	if err := row.Scan(&n); err != nil {
		return -1
	}
	return n
}

func (s *Store[S]) FetchAll() (exec.Cursor[S], error) {
	cols := strings.Join(s.mapper.Columns(), ", ")
	rows, err := s.pool.Query(context.Background(), fmt.Sprintf("SELECT %s FROM %s", cols, s.table))
	if err != nil {
		return nil, fmt.Errorf("pgstore: fetch all from %s: %w", s.table, err)
	}
	return &pgCursor[S]{rows: rows, mapper: s.mapper}, nil
}

// FetchSubset builds `WHERE col1 = $1 AND ... AND colK <start/end op> $N
// ORDER BY ... col [DESC]` against index's property sequence.
func (s *Store[S]) FetchSubset(index model.IndexDescriptor, identityValues []any,
	startBoundary exec.Boundary, startValue any,
	endBoundary exec.Boundary, endValue any,
	reverseRange, reverseOrder bool) (exec.Cursor[S], error) {

	cols := strings.Join(s.mapper.Columns(), ", ")
	var where []string
	var args []any
	argN := 0

	nextArg := func(v any) string {
		argN++
		args = append(args, v)
		return fmt.Sprintf("$%d", argN)
	}

	for i, v := range identityValues {
		where = append(where, fmt.Sprintf("%s = %s", columnFor(index, i), nextArg(v)))
	}

	rangePos := len(identityValues)
	if rangePos < index.Len() {
		col := columnFor(index, rangePos)
		startB, endB := startBoundary, endBoundary
		startV, endV := startValue, endValue
		if reverseRange {
			startB, endB = endB, startB
			startV, endV = endV, startV
		}
		if op, ok := boundaryOp(startB, true); ok && startV != nil {
			where = append(where, fmt.Sprintf("%s %s %s", col, op, nextArg(startV)))
		}
		if op, ok := boundaryOp(endB, false); ok && endV != nil {
			where = append(where, fmt.Sprintf("%s %s %s", col, op, nextArg(endV)))
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s", cols, s.table)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if orderClause := orderBy(index, reverseOrder); orderClause != "" {
		query += " " + orderClause
	}

	rows, err := s.pool.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgstore: fetch subset from %s via %s: %w", s.table, index.Name, err)
	}
	return &pgCursor[S]{rows: rows, mapper: s.mapper}, nil
}

// IndexEntryQuery is unsupported: this adapter always fetches full rows,
// never a covering-index tuple without the base row.
func (s *Store[S]) IndexEntryQuery(model.IndexDescriptor) (exec.IndexEntryQuery, bool) {
	return nil, false
}

func (s *Store[S]) FetchFromIndexEntryQuery(index model.IndexDescriptor, _ exec.BoundQuery) (exec.Cursor[S], error) {
	return nil, fmt.Errorf("pgstore: no index-entry query support for %s", index.Name)
}

// CreateSortBuffer returns an in-memory slice-backed buffer; the
// compressed-and-memory-mapped spill strategy lives in
// storageadapters/sortspill for callers that need it.
func (s *Store[S]) CreateSortBuffer() exec.SortBuffer[S] { return &memSortBuffer[S]{} }

// RenderNative renders the same WHERE/ORDER BY shape FetchSubset would
// issue for index and bound, with literal values interpolated directly
// rather than passed as query parameters — this is diagnostic text, never
// executed. Satisfies exec.NativeRenderer.
func (s *Store[S]) RenderNative(index model.IndexDescriptor, bound exec.IndexBound, reverseOrder bool) string {
	cols := strings.Join(s.mapper.Columns(), ", ")
	query := fmt.Sprintf("SELECT %s FROM %s", cols, s.table)

	var where []string
	for i, v := range bound.IdentityValues {
		where = append(where, fmt.Sprintf("%s = %v", columnFor(index, i), v))
	}
	rangePos := len(bound.IdentityValues)
	if rangePos < index.Len() {
		col := columnFor(index, rangePos)
		if op, ok := boundaryOp(bound.StartBoundary, true); ok && bound.StartValue != nil {
			where = append(where, fmt.Sprintf("%s %s %v", col, op, bound.StartValue))
		}
		if op, ok := boundaryOp(bound.EndBoundary, false); ok && bound.EndValue != nil {
			where = append(where, fmt.Sprintf("%s %s %v", col, op, bound.EndValue))
		}
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if orderClause := orderBy(index, reverseOrder); orderClause != "" {
		query += " " + orderClause
	}
	return query
}

func columnFor(index model.IndexDescriptor, pos int) string {
	return index.Properties[pos].Property.Leaf()
}

func boundaryOp(b exec.Boundary, isStart bool) (string, bool) {
	switch b {
	case exec.BoundaryInclusive:
		if isStart {
			return ">=", true
		}
		return "<=", true
	case exec.BoundaryExclusive:
		if isStart {
			return ">", true
		}
		return "<", true
	default:
		return "", false
	}
}

func orderBy(index model.IndexDescriptor, reverse bool) string {
	if index.Len() == 0 {
		return ""
	}
	parts := make([]string, index.Len())
	for i, e := range index.Properties {
		dir := "ASC"
		if e.Direction == model.Descending {
			dir = "DESC"
		}
		if reverse {
			if dir == "ASC" {
				dir = "DESC"
			} else {
				dir = "ASC"
			}
		}
		parts[i] = fmt.Sprintf("%s %s", e.Property.Leaf(), dir)
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

type pgCursor[S any] struct {
	rows   pgx.Rows
	mapper RowMapper[S]
}

func (c *pgCursor[S]) Next() (S, bool, error) {
	var zero S
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			return zero, false, err
		}
		return zero, false, nil
	}
	rec, err := c.mapper.ScanRow(c.rows)
	if err != nil {
		return zero, false, err
	}
	return rec, true, nil
}

func (c *pgCursor[S]) Close() error {
	c.rows.Close()
	return nil
}

// memSortBuffer accumulates records in memory and sorts them with
// sort.SliceStable; used when no spill adapter is configured.
type memSortBuffer[S any] struct {
	items []S
}

func (b *memSortBuffer[S]) Add(s S) { b.items = append(b.items, s) }

func (b *memSortBuffer[S]) Sorted(less func(a, b S) bool) exec.Cursor[S] {
	sort.SliceStable(b.items, func(i, j int) bool { return less(b.items[i], b.items[j]) })
	return &sliceCursor[S]{items: b.items}
}

func (b *memSortBuffer[S]) Close() error { b.items = nil; return nil }

type sliceCursor[S any] struct {
	items []S
	pos   int
}

func (c *sliceCursor[S]) Next() (S, bool, error) {
	var zero S
	if c.pos >= len(c.items) {
		return zero, false, nil
	}
	rec := c.items[c.pos]
	c.pos++
	return rec, true, nil
}

func (c *sliceCursor[S]) Close() error { return nil }
