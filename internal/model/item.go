package model

import "time"

// Item is a row of the key-value table that stands in for browser local storage.
type Item struct {
	Key       string `gorm:"column:item_key;type:varchar(255);primaryKey"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
