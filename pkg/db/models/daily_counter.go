package models

// DailyCounter backs the per-day order number sequence. The row is incremented
// with an atomic upsert so concurrent creations never observe the same value.
type DailyCounter struct {
	Day   string `gorm:"column:day;primaryKey"`
	Value int64  `gorm:"column:value;not null;default:0"`
}
