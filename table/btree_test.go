package table

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"btreedb/pager"
)

func openTemp(t *testing.T) (*Table, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	tbl, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return tbl, path
}

func selectAll(t *testing.T, tbl *Table) []Row {
	t.Helper()
	var rows []Row
	if err := tbl.SelectAll(func(r Row) error {
		rows = append(rows, r)
		return nil
	}); err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	return rows
}

func TestEmptyTableRoundTrip(t *testing.T) {
	tbl, path := openTemp(t)

	if rows := selectAll(t, tbl); len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
	if err := tbl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Size() != pager.PageSize {
		t.Errorf("file length = %d, want exactly one page (%d)", fi.Size(), int64(pager.PageSize))
	}

	tbl2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if rows := selectAll(t, tbl2); len(rows) != 0 {
		t.Fatalf("expected no rows after reopen, got %d", len(rows))
	}
}

func TestInsertAndSelectSingleRow(t *testing.T) {
	tbl, _ := openTemp(t)
	row := Row{ID: 1, Username: "alice", Email: "alice@example.com"}

	res, err := tbl.Insert(row)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if res != InsertSuccess {
		t.Fatalf("Insert result = %v, want InsertSuccess", res)
	}

	rows := selectAll(t, tbl)
	if len(rows) != 1 || rows[0] != row {
		t.Fatalf("SelectAll = %+v, want [%+v]", rows, row)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	tbl, path := openTemp(t)
	want := []Row{
		{ID: 1, Username: "one", Email: "one@example.com"},
		{ID: 2, Username: "two", Email: "two@example.com"},
		{ID: 3, Username: "three", Email: "three@example.com"},
	}
	for _, r := range want {
		if _, err := tbl.Insert(r); err != nil {
			t.Fatalf("Insert(%v): %v", r, err)
		}
	}
	if err := tbl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := selectAll(t, reopened)
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestInsertRejectsDuplicateKey(t *testing.T) {
	tbl, _ := openTemp(t)
	row := Row{ID: 7, Username: "dup", Email: "dup@example.com"}

	res, err := tbl.Insert(row)
	if err != nil || res != InsertSuccess {
		t.Fatalf("first insert: res=%v err=%v", res, err)
	}

	res, err = tbl.Insert(Row{ID: 7, Username: "other", Email: "other@example.com"})
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if res != InsertDuplicateKey {
		t.Fatalf("second insert result = %v, want InsertDuplicateKey", res)
	}

	rows := selectAll(t, tbl)
	if len(rows) != 1 {
		t.Fatalf("expected exactly one row after duplicate rejection, got %d", len(rows))
	}
	if rows[0] != row {
		t.Errorf("surviving row = %+v, want %+v (original insert wins)", rows[0], row)
	}
}

func TestOutOfOrderInsertPreservesSortedSelect(t *testing.T) {
	tbl, _ := openTemp(t)
	order := []uint32{3, 1, 2}
	for _, id := range order {
		r := Row{ID: id, Username: fmt.Sprintf("u%d", id), Email: fmt.Sprintf("u%d@example.com", id)}
		if _, err := tbl.Insert(r); err != nil {
			t.Fatalf("Insert(%d): %v", id, err)
		}
	}

	rows := selectAll(t, tbl)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, want := range []uint32{1, 2, 3} {
		if rows[i].ID != want {
			t.Errorf("row %d ID = %d, want %d", i, rows[i].ID, want)
		}
	}
}

func TestLeafSplitAfterFourteenInserts(t *testing.T) {
	tbl, _ := openTemp(t)
	for id := uint32(1); id <= 14; id++ {
		r := Row{ID: id, Username: fmt.Sprintf("u%d", id), Email: fmt.Sprintf("u%d@example.com", id)}
		res, err := tbl.Insert(r)
		if err != nil {
			t.Fatalf("Insert(%d): %v", id, err)
		}
		if res != InsertSuccess {
			t.Fatalf("Insert(%d) result = %v, want InsertSuccess", id, res)
		}
	}

	rows := selectAll(t, tbl)
	if len(rows) != 14 {
		t.Fatalf("expected 14 rows after split, got %d", len(rows))
	}
	for i, r := range rows {
		if r.ID != uint32(i+1) {
			t.Errorf("row %d ID = %d, want %d", i, r.ID, i+1)
		}
	}

	var buf bytes.Buffer
	if err := tbl.PrintTree(&buf, 0, 0); err != nil {
		t.Fatalf("PrintTree: %v", err)
	}
	dump := buf.String()

	if !bytes.Contains(buf.Bytes(), []byte("- internal (size 1)")) {
		t.Errorf("expected root to become an internal node with one key, got:\n%s", dump)
	}
	if n := bytes.Count(buf.Bytes(), []byte("- leaf (size 7)")); n != 2 {
		t.Errorf("expected two leaves of size 7 after the split, found %d, dump:\n%s", n, dump)
	}
}

// TestRejectedNonRootSplitLeavesTableUnchanged pins down a sequencing
// bug: a leaf split that turns out to need a non-root split must bail
// out before redistributing any cells, so a later insert that hits
// ErrUnsupportedSplit cannot make previously-inserted, previously-
// selectable rows disappear.
func TestRejectedNonRootSplitLeavesTableUnchanged(t *testing.T) {
	tbl, _ := openTemp(t)

	// 1..14 fills the root leaf and forces the one supported root
	// split: an internal root with two 7-cell leaf children.
	for id := uint32(1); id <= 14; id++ {
		r := Row{ID: id, Username: fmt.Sprintf("u%d", id), Email: fmt.Sprintf("u%d@example.com", id)}
		if res, err := tbl.Insert(r); err != nil || res != InsertSuccess {
			t.Fatalf("Insert(%d): res=%v err=%v", id, res, err)
		}
	}

	// 15..20 grows the right leaf to 13 cells (full, but still a single
	// split away from needing a non-root split).
	for id := uint32(15); id <= 20; id++ {
		r := Row{ID: id, Username: fmt.Sprintf("u%d", id), Email: fmt.Sprintf("u%d@example.com", id)}
		if res, err := tbl.Insert(r); err != nil || res != InsertSuccess {
			t.Fatalf("Insert(%d): res=%v err=%v", id, res, err)
		}
	}

	before := selectAll(t, tbl)
	if len(before) != 20 {
		t.Fatalf("expected 20 rows before the rejected split, got %d", len(before))
	}

	// 21 would split the now-full, non-root right leaf.
	_, err := tbl.Insert(Row{ID: 21, Username: "u21", Email: "u21@example.com"})
	if err != ErrUnsupportedSplit {
		t.Fatalf("Insert(21) error = %v, want ErrUnsupportedSplit", err)
	}

	after := selectAll(t, tbl)
	if len(after) != 20 {
		t.Fatalf("expected 20 rows to survive the rejected split, got %d", len(after))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("row %d changed after rejected split: was %+v, now %+v", i, before[i], after[i])
		}
	}
}
