package report

import "strconv"

// Normalize converts a raw API row into the fixed Record shape. It is
// total: every field is populated (possibly nil) no matter what the row
// contained, and it never fails. A record with a nil RRDID is unusable;
// dropping it is the caller's decision.
func Normalize(raw RawRow) Record {
	return Record{
		RRDID:    IntField(raw, "rrd_id"),
		NmID:     IntField(raw, "nm_id"),
		Article:  stringField(raw, "article"),
		Barcode:  stringField(raw, "barcode"),
		Subject:  stringField(raw, "subject"),
		Brand:    stringField(raw, "brand"),
		SAName:   stringField(raw, "sa_name"),
		TechSize: stringField(raw, "tech_size"),
		IncomeID: IntField(raw, "income_id"),
		SaleID:   IntField(raw, "sale_id"),

		Quantity:     floatField(raw, "quantity"),
		RetailPrice:  floatField(raw, "retail_price"),
		RetailAmount: floatField(raw, "retail_amount"),
		PpvzForPay:   floatField(raw, "ppvz_for_pay"),
		DeliveryRub:  floatField(raw, "delivery_rub"),
		Logistics:    floatField(raw, "logistics"),
		WBCommission: floatField(raw, "wb_commission"),
		ReturnAmount: floatField(raw, "return_amount"),
		Penalty:      floatField(raw, "penalty"),

		Date: stringField(raw, "date"),

		CostPrice: nil,
	}
}

// IntField reads an identity field with permissive-to-null coercion:
// missing, empty, or unparseable values become nil. Exported because the
// pagination client reads rrd_id off raw rows to advance its cursor.
func IntField(raw RawRow, key string) *int64 {
	switch v := raw[key].(type) {
	case float64:
		n := int64(v)
		return &n
	case int64:
		return &v
	case int:
		n := int64(v)
		return &n
	case string:
		if v == "" {
			return nil
		}
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return &n
		}
		return nil
	default:
		return nil
	}
}

// floatField reads an accumulable numeric field. Missing, empty, or
// unparseable values contribute 0 rather than failing the row — the
// additive merge makes "no contribution" a safe default.
func floatField(raw RawRow, key string) float64 {
	switch v := raw[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		if v == "" {
			return 0
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		return 0
	default:
		return 0
	}
}

// stringField passes descriptive fields through unmodified; anything that
// is not a string maps to nil.
func stringField(raw RawRow, key string) *string {
	if s, ok := raw[key].(string); ok {
		return &s
	}
	return nil
}
