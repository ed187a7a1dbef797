package models

import "time"

// SearchHistoryEntry records a past search. (term, mode) is unique. Seq
// increases on every save and orders entries saved within the same instant.
type SearchHistoryEntry struct {
	Term       string    `gorm:"column:term;primaryKey"`
	Mode       string    `gorm:"column:mode;primaryKey"`
	SearchedAt time.Time `gorm:"column:searched_at;not null"`
	Seq        int64     `gorm:"column:seq;not null;default:0"`
}

func (SearchHistoryEntry) TableName() string { return "search_history" }
