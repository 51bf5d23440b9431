package workloads

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"stress/internal/benchmark"
)

// WriteFile times writing size bytes to a fresh file in dir and syncing it
// to disk.
func WriteFile(dir string, size int) func(*benchmark.B) {
	return func(b *benchmark.B) {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i)
		}
		b.SetBytes(uint64(size))
		b.Tag("size", strconv.Itoa(size))

		path := filepath.Join(dir, fmt.Sprintf("stress-write-%d.bin", b.Iteration()))
		defer os.Remove(path)

		err := b.MeasureErr(func() error {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if _, err := f.Write(data); err != nil {
				f.Close()
				return err
			}
			if err := f.Sync(); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		})
		if err != nil {
			b.Logf("write %s: %v", path, err)
		}
	}
}

// SQLiteTxn times inserting rows into a fresh SQLite database inside one
// committed transaction.
func SQLiteTxn(dir string, rows int) func(*benchmark.B) {
	return func(b *benchmark.B) {
		path := filepath.Join(dir, fmt.Sprintf("stress-txn-%d.db", b.Iteration()))
		defer os.Remove(path)

		db, err := sql.Open("sqlite", path)
		if err != nil {
			fail(b, fmt.Errorf("open %s: %w", path, err))
			return
		}
		defer db.Close()
		db.SetMaxOpenConns(1)
		if _, err := db.Exec(`CREATE TABLE kv (k INTEGER PRIMARY KEY, v TEXT NOT NULL)`); err != nil {
			fail(b, fmt.Errorf("create table: %w", err))
			return
		}

		b.SetElements(uint64(rows))
		b.Tag("rows", strconv.Itoa(rows))
		err = b.MeasureErr(func() error {
			tx, err := db.Begin()
			if err != nil {
				return err
			}
			defer tx.Rollback()
			stmt, err := tx.Prepare(`INSERT INTO kv (k, v) VALUES (?, ?)`)
			if err != nil {
				return err
			}
			defer stmt.Close()
			for i := range rows {
				if _, err := stmt.Exec(i, "value_"+strconv.Itoa(i)); err != nil {
					return err
				}
			}
			return tx.Commit()
		})
		if err != nil {
			b.Logf("sqlite transaction: %v", err)
		}
	}
}

// fail reports a setup error as the failure of the benchmark's timed region,
// so the Runner sees an error instead of a missing measurement.
func fail(b *benchmark.B, err error) {
	_ = b.MeasureErr(func() error { return err })
}
