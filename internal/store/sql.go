package store

import (
	"fmt"
	"strings"

	"github.com/avoronina/wb-finance-data/internal/report"
)

const tableName = "wb_rrd"

var upsertSQL = buildUpsertSQL()

// buildUpsertSQL renders the single-statement merge from the report field
// table. Strategies map to SQL as:
//
//	Replace            col = excluded.col
//	CoalesceToExisting col = COALESCE(excluded.col, wb_rrd.col)
//	Add                col = COALESCE(wb_rrd.col, 0) + COALESCE(excluded.col, 0)
//	NeverOverwrite     col = wb_rrd.col
func buildUpsertSQL() string {
	cols := report.Columns()
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")

	sets := make([]string, 0, len(report.Fields))
	for _, f := range report.Fields {
		var set string
		switch f.Merge {
		case report.Replace:
			set = fmt.Sprintf("%s = excluded.%s", f.Column, f.Column)
		case report.CoalesceToExisting:
			set = fmt.Sprintf("%s = COALESCE(excluded.%s, %s.%s)", f.Column, f.Column, tableName, f.Column)
		case report.Add:
			set = fmt.Sprintf("%s = COALESCE(%s.%s, 0) + COALESCE(excluded.%s, 0)", f.Column, tableName, f.Column, f.Column)
		case report.NeverOverwrite:
			set = fmt.Sprintf("%s = %s.%s", f.Column, tableName, f.Column)
		default:
			panic(fmt.Sprintf("unknown merge strategy for column %s", f.Column))
		}
		sets = append(sets, set)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		tableName,
		strings.Join(cols, ", "),
		placeholders,
		report.KeyColumn,
		strings.Join(sets, ", "),
	)
}
