package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avoronina/wb-finance-data/internal/report"
)

const testSchema = "../../db/schema.sql"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), testSchema, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// batch adapts a fixed slice of raw rows to the RowSource shape.
func batch(rows ...report.RawRow) RowSource {
	return func(ctx context.Context, fn func(report.RawRow) error) error {
		for _, r := range rows {
			if err := fn(r); err != nil {
				return err
			}
		}
		return nil
	}
}

type storedRow struct {
	nmID      sql.NullInt64
	article   sql.NullString
	quantity  sql.NullFloat64
	penalty   sql.NullFloat64
	costPrice sql.NullFloat64
}

func readRow(t *testing.T, s *Store, rrdID int64) storedRow {
	t.Helper()
	var r storedRow
	err := s.db.QueryRow(
		"SELECT nm_id, article, quantity, penalty, cost_price FROM wb_rrd WHERE rrd_id = ?", rrdID,
	).Scan(&r.nmID, &r.article, &r.quantity, &r.penalty, &r.costPrice)
	if err != nil {
		t.Fatalf("read row %d: %v", rrdID, err)
	}
	return r
}

func rowCount(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM wb_rrd").Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func TestMergeAll_InsertThenMerge(t *testing.T) {
	s := openTestStore(t)

	count, err := s.MergeAll(context.Background(), batch(
		report.RawRow{"rrd_id": float64(1), "article": "A", "quantity": float64(2)},
		report.RawRow{"rrd_id": float64(1), "quantity": float64(3)},
	))
	if err != nil {
		t.Fatalf("MergeAll: %v", err)
	}
	if count != 1 {
		t.Fatalf("unique count = %d, want 1", count)
	}

	row := readRow(t, s, 1)
	if !row.article.Valid || row.article.String != "A" {
		t.Errorf("article = %v, want A (null input must not blank it)", row.article)
	}
	if row.quantity.Float64 != 5 {
		t.Errorf("quantity = %v, want 5", row.quantity.Float64)
	}
}

func TestMergeAll_DoubleApplyDoublesAccumulables(t *testing.T) {
	s := openTestStore(t)
	rows := batch(report.RawRow{"rrd_id": float64(1), "quantity": float64(2), "penalty": float64(1.5)})

	for i := 0; i < 2; i++ {
		if _, err := s.MergeAll(context.Background(), rows); err != nil {
			t.Fatalf("MergeAll run %d: %v", i+1, err)
		}
	}

	row := readRow(t, s, 1)
	if row.quantity.Float64 != 4 || row.penalty.Float64 != 3 {
		t.Fatalf("re-applied batch must sum, not overwrite: quantity=%v penalty=%v",
			row.quantity.Float64, row.penalty.Float64)
	}
}

func TestMergeAll_NmIDLastWriteWins(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.MergeAll(context.Background(), batch(
		report.RawRow{"rrd_id": float64(1), "nm_id": float64(100)},
		report.RawRow{"rrd_id": float64(1)},
	)); err != nil {
		t.Fatalf("MergeAll: %v", err)
	}

	if row := readRow(t, s, 1); row.nmID.Valid {
		t.Fatalf("nm_id = %d, want NULL (no coalesce for nm_id)", row.nmID.Int64)
	}
}

func TestMergeAll_DescriptiveOrderSensitivity(t *testing.T) {
	first := report.RawRow{"rrd_id": float64(1), "article": "A", "quantity": float64(2)}
	second := report.RawRow{"rrd_id": float64(1), "article": "B", "quantity": float64(3)}

	tests := []struct {
		name        string
		rows        RowSource
		wantArticle string
	}{
		{"A then B", batch(first, second), "B"},
		{"B then A", batch(second, first), "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openTestStore(t)
			if _, err := s.MergeAll(context.Background(), tt.rows); err != nil {
				t.Fatalf("MergeAll: %v", err)
			}
			row := readRow(t, s, 1)
			if row.article.String != tt.wantArticle {
				t.Errorf("article = %q, want %q (last non-null wins)", row.article.String, tt.wantArticle)
			}
			// Sums are order-independent.
			if row.quantity.Float64 != 5 {
				t.Errorf("quantity = %v, want 5 regardless of order", row.quantity.Float64)
			}
		})
	}
}

func TestMergeAll_CostPriceNeverOverwritten(t *testing.T) {
	s := openTestStore(t)

	_, err := s.db.Exec(
		"INSERT INTO wb_rrd (rrd_id, cost_price, quantity) VALUES (7, 9.99, 1)")
	if err != nil {
		t.Fatalf("seed row: %v", err)
	}

	if _, err := s.MergeAll(context.Background(), batch(
		report.RawRow{"rrd_id": float64(7), "cost_price": float64(123.45), "quantity": float64(1)},
	)); err != nil {
		t.Fatalf("MergeAll: %v", err)
	}

	row := readRow(t, s, 7)
	if !row.costPrice.Valid || row.costPrice.Float64 != 9.99 {
		t.Fatalf("cost_price = %v, want 9.99 preserved", row.costPrice)
	}
	if row.quantity.Float64 != 2 {
		t.Fatalf("quantity = %v, want 2", row.quantity.Float64)
	}
}

func TestMergeAll_UniqueCountPerDistinctID(t *testing.T) {
	s := openTestStore(t)

	count, err := s.MergeAll(context.Background(), batch(
		report.RawRow{"rrd_id": float64(4)},
		report.RawRow{"rrd_id": float64(4)},
		report.RawRow{"rrd_id": float64(4)},
	))
	if err != nil {
		t.Fatalf("MergeAll: %v", err)
	}
	if count != 1 {
		t.Fatalf("unique count = %d, want 1", count)
	}
}

func TestMergeAll_SkipsUnusableIdentity(t *testing.T) {
	s := openTestStore(t)

	count, err := s.MergeAll(context.Background(), batch(
		report.RawRow{"rrd_id": "not-a-number", "quantity": float64(5)},
		report.RawRow{"quantity": float64(5)},
	))
	if err != nil {
		t.Fatalf("unusable rrd_id must not error: %v", err)
	}
	if count != 0 {
		t.Fatalf("unique count = %d, want 0", count)
	}
	if n := rowCount(t, s); n != 0 {
		t.Fatalf("stored %d rows, want 0", n)
	}
}

func TestMergeAll_RollsBackWholeBatchOnError(t *testing.T) {
	s := openTestStore(t)
	boom := errors.New("transport died mid-stream")

	src := func(ctx context.Context, fn func(report.RawRow) error) error {
		if err := fn(report.RawRow{"rrd_id": float64(1), "quantity": float64(2)}); err != nil {
			return err
		}
		return boom
	}

	if _, err := s.MergeAll(context.Background(), src); !errors.Is(err, boom) {
		t.Fatalf("got %v, want source error", err)
	}
	if n := rowCount(t, s); n != 0 {
		t.Fatalf("partial batch left %d durable rows, want 0", n)
	}
}

func TestMergeAll_SchemaReapplyIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s, err := Open(path, testSchema, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := s.MergeAll(context.Background(), batch(report.RawRow{"rrd_id": float64(1)})); err != nil {
		t.Fatalf("MergeAll: %v", err)
	}
	s.Close()

	s2, err := Open(path, testSchema, nil)
	if err != nil {
		t.Fatalf("reopen against existing database: %v", err)
	}
	defer s2.Close()
	if n := rowCount(t, s2); n != 1 {
		t.Fatalf("schema re-apply lost data: %d rows, want 1", n)
	}
}

func TestOpenReadOnly_MissingFile(t *testing.T) {
	if _, err := OpenReadOnly(filepath.Join(t.TempDir(), "absent.db")); err == nil {
		t.Fatal("expected error for missing database file")
	}
}

func TestLatestRows_OrderAndProjection(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.MergeAll(context.Background(), batch(
		report.RawRow{"rrd_id": float64(1), "date": "2024-01-10", "retail_amount": float64(10)},
		report.RawRow{"rrd_id": float64(2), "date": "2024-01-20", "retail_amount": float64(20)},
		report.RawRow{"rrd_id": float64(3), "date": "2024-01-15", "retail_amount": float64(15)},
	)); err != nil {
		t.Fatalf("MergeAll: %v", err)
	}

	rows, err := s.LatestRows(context.Background(), 2)
	if err != nil {
		t.Fatalf("LatestRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].RRDID != 2 || rows[1].RRDID != 3 {
		t.Fatalf("rows not ordered by date desc: %d, %d", rows[0].RRDID, rows[1].RRDID)
	}
	if rows[0].RetailAmount == nil || *rows[0].RetailAmount != 20 {
		t.Fatalf("retail_amount = %v, want 20", rows[0].RetailAmount)
	}
}

func TestBuildUpsertSQL_StrategyRendering(t *testing.T) {
	want := []string{
		"nm_id = excluded.nm_id",
		"article = COALESCE(excluded.article, wb_rrd.article)",
		"quantity = COALESCE(wb_rrd.quantity, 0) + COALESCE(excluded.quantity, 0)",
		"cost_price = wb_rrd.cost_price",
		"ON CONFLICT(rrd_id)",
	}
	for _, fragment := range want {
		if !strings.Contains(upsertSQL, fragment) {
			t.Errorf("upsert SQL missing %q\n%s", fragment, upsertSQL)
		}
	}
}
