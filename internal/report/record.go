// Package report defines the canonical RRD record shape written to the
// wb_rrd table and the normalization rules that produce it from raw API
// rows.
//
// Every column declares a merge strategy. The store generates its upsert
// statement from the field table, so adding a column means adding one
// entry here — the merge routine never changes.
package report

// RawRow is a decoded JSON row exactly as the statistics API returns it.
// It exists only in transit between the client and the normalizer.
type RawRow map[string]any

// MergeStrategy describes how a column behaves when a record arrives for
// an rrd_id that already has a stored row.
type MergeStrategy int

const (
	// Replace overwrites the stored value unconditionally, nulls included.
	Replace MergeStrategy = iota
	// CoalesceToExisting overwrites only when the incoming value is non-null.
	CoalesceToExisting
	// Add sums the incoming value into the stored one (null counts as 0).
	Add
	// NeverOverwrite keeps the stored value verbatim. Used for columns
	// maintained out of band that ingestion must not clobber.
	NeverOverwrite
)

// KeyColumn is the primary key of the wb_rrd table and the pagination
// cursor of the remote API.
const KeyColumn = "rrd_id"

// Field pairs a wb_rrd column with its merge strategy.
type Field struct {
	Column string
	Merge  MergeStrategy
}

// Fields lists every non-key column in table order.
var Fields = []Field{
	{"nm_id", Replace},
	{"article", CoalesceToExisting},
	{"barcode", CoalesceToExisting},
	{"subject", CoalesceToExisting},
	{"brand", CoalesceToExisting},
	{"sa_name", CoalesceToExisting},
	{"tech_size", CoalesceToExisting},
	{"income_id", CoalesceToExisting},
	{"sale_id", CoalesceToExisting},
	{"quantity", Add},
	{"retail_price", Add},
	{"retail_amount", Add},
	{"ppvz_for_pay", Add},
	{"delivery_rub", Add},
	{"logistics", Add},
	{"wb_commission", Add},
	{"return_amount", Add},
	{"penalty", Add},
	{"date", CoalesceToExisting},
	{"cost_price", NeverOverwrite},
}

// Columns returns every wb_rrd column, key first, in table order.
func Columns() []string {
	cols := make([]string, 0, len(Fields)+1)
	cols = append(cols, KeyColumn)
	for _, f := range Fields {
		cols = append(cols, f.Column)
	}
	return cols
}

// Record is the fixed-shape normalized form of one RawRow. Pointer fields
// map to SQL NULL when nil. Accumulable numerics are plain float64 — a
// missing or unparseable value contributes 0, never NULL.
type Record struct {
	RRDID    *int64
	NmID     *int64
	Article  *string
	Barcode  *string
	Subject  *string
	Brand    *string
	SAName   *string
	TechSize *string
	IncomeID *int64
	SaleID   *int64

	Quantity     float64
	RetailPrice  float64
	RetailAmount float64
	PpvzForPay   float64
	DeliveryRub  float64
	Logistics    float64
	WBCommission float64
	ReturnAmount float64
	Penalty      float64

	Date *string

	// CostPrice is populated by an out-of-band process; normalization
	// always leaves it nil and the merge never overwrites it.
	CostPrice *float64
}

// FieldValues returns the record's values in Columns() order, ready to
// bind to the generated upsert statement.
func (r *Record) FieldValues() []any {
	return []any{
		r.RRDID,
		r.NmID,
		r.Article,
		r.Barcode,
		r.Subject,
		r.Brand,
		r.SAName,
		r.TechSize,
		r.IncomeID,
		r.SaleID,
		r.Quantity,
		r.RetailPrice,
		r.RetailAmount,
		r.PpvzForPay,
		r.DeliveryRub,
		r.Logistics,
		r.WBCommission,
		r.ReturnAmount,
		r.Penalty,
		r.Date,
		r.CostPrice,
	}
}
