package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

type fakeRow struct {
	scanFunc func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	return r.scanFunc(dest...)
}

// rowFromValues builds a Row whose Scan copies the given values into the
// destinations, converting where needed (e.g. string into a status type).
func rowFromValues(values ...any) Row {
	return fakeRow{scanFunc: func(dest ...any) error {
		if len(dest) != len(values) {
			return fmt.Errorf("scan expected %d destinations, got %d", len(values), len(dest))
		}
		for i, value := range values {
			if err := assignValue(dest[i], value); err != nil {
				return fmt.Errorf("scan destination %d: %w", i, err)
			}
		}
		return nil
	}}
}

func assignValue(dest, value any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return errors.New("destination must be a non-nil pointer")
	}
	elem := dv.Elem()
	if value == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(elem.Type()) {
		elem.Set(v)
		return nil
	}
	if v.Type().ConvertibleTo(elem.Type()) {
		elem.Set(v.Convert(elem.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %s to %s", v.Type(), elem.Type())
}

type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	values := r.rows[r.idx-1]
	if len(dest) != len(values) {
		return fmt.Errorf("scan expected %d destinations, got %d", len(values), len(dest))
	}
	for i, value := range values {
		if err := assignValue(dest[i], value); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRows) Close() {}

func (r *fakeRows) Err() error { return r.err }

type fakeCommandTag struct {
	rowsAffected int64
}

func (t fakeCommandTag) RowsAffected() int64 { return t.rowsAffected }

type fakeDB struct {
	QueryRowFunc func(ctx context.Context, sql string, args ...any) Row
	QueryFunc    func(ctx context.Context, sql string, args ...any) (Rows, error)
	ExecFunc     func(ctx context.Context, sql string, args ...any) (CommandTag, error)
	BeginFunc    func(ctx context.Context) (Tx, error)
}

func (db *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) Row {
	if db.QueryRowFunc == nil {
		return fakeRow{scanFunc: func(dest ...any) error {
			return fmt.Errorf("unexpected QueryRow: %q", sql)
		}}
	}
	return db.QueryRowFunc(ctx, sql, args...)
}

func (db *fakeDB) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	if db.QueryFunc == nil {
		return nil, fmt.Errorf("unexpected Query: %q", sql)
	}
	return db.QueryFunc(ctx, sql, args...)
}

func (db *fakeDB) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	if db.ExecFunc == nil {
		return nil, fmt.Errorf("unexpected Exec: %q", sql)
	}
	return db.ExecFunc(ctx, sql, args...)
}

func (db *fakeDB) Begin(ctx context.Context) (Tx, error) {
	if db.BeginFunc == nil {
		return nil, errors.New("unexpected Begin")
	}
	return db.BeginFunc(ctx)
}

type fakeTx struct {
	QueryRowFunc func(ctx context.Context, sql string, args ...any) Row
	QueryFunc    func(ctx context.Context, sql string, args ...any) (Rows, error)
	ExecFunc     func(ctx context.Context, sql string, args ...any) (CommandTag, error)
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (tx *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) Row {
	if tx.QueryRowFunc == nil {
		return fakeRow{scanFunc: func(dest ...any) error {
			return fmt.Errorf("unexpected tx QueryRow: %q", sql)
		}}
	}
	return tx.QueryRowFunc(ctx, sql, args...)
}

func (tx *fakeTx) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	if tx.QueryFunc == nil {
		return nil, fmt.Errorf("unexpected tx Query: %q", sql)
	}
	return tx.QueryFunc(ctx, sql, args...)
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	if tx.ExecFunc == nil {
		return nil, fmt.Errorf("unexpected tx Exec: %q", sql)
	}
	return tx.ExecFunc(ctx, sql, args...)
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	if tx.CommitFunc == nil {
		return nil
	}
	return tx.CommitFunc(ctx)
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if tx.RollbackFunc == nil {
		return nil
	}
	return tx.RollbackFunc(ctx)
}
