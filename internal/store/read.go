package store

import (
	"context"
	"fmt"
)

// LatestRow is the column subset the read API projects per report row.
type LatestRow struct {
	RRDID        int64    `json:"rrd_id"`
	NmID         *int64   `json:"nm_id"`
	Article      *string  `json:"article"`
	Barcode      *string  `json:"barcode"`
	Subject      *string  `json:"subject"`
	RetailAmount *float64 `json:"retail_amount"`
	PpvzForPay   *float64 `json:"ppvz_for_pay"`
	DeliveryRub  *float64 `json:"delivery_rub"`
	Logistics    *float64 `json:"logistics"`
	Date         *string  `json:"date"`
}

// LatestRows returns the most recent limit rows ordered by date
// descending.
func (s *Store) LatestRows(ctx context.Context, limit int) ([]LatestRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rrd_id, nm_id, article, barcode, subject,
		       retail_amount, ppvz_for_pay, delivery_rub,
		       logistics, date
		FROM wb_rrd
		ORDER BY date DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query latest rows: %w", err)
	}
	defer rows.Close()

	result := make([]LatestRow, 0, limit)
	for rows.Next() {
		var r LatestRow
		if err := rows.Scan(
			&r.RRDID, &r.NmID, &r.Article, &r.Barcode, &r.Subject,
			&r.RetailAmount, &r.PpvzForPay, &r.DeliveryRub,
			&r.Logistics, &r.Date,
		); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}
	return result, nil
}
