package types

import (
	"database/sql/driver"
	"encoding/json"
	"sort"
)

// ReservationLine is one (sku, qty) claim inside a reservation.
type ReservationLine struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

// ReservationLines is the ordered line list of a reservation, stored as JSONB.
type ReservationLines []ReservationLine

// Value serializes the lines to JSON.
func (l *ReservationLines) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan decodes JSONB into the line list.
func (l *ReservationLines) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded ReservationLines
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*l = decoded
	return nil
}

// SortedBySKU returns a copy ordered by SKU. Lock acquisition uses the copy
// so every transaction locks stock rows in the same global order; the stored
// record keeps the caller's ordering.
func (l ReservationLines) SortedBySKU() ReservationLines {
	sorted := make(ReservationLines, len(l))
	copy(sorted, l)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SKU < sorted[j].SKU })
	return sorted
}
