package models

import (
	"time"
)

// StoredImage is one row of the content-store index. The ID is the hex
// SHA-256 of the raw upload, so identical bytes always map to one row.
type StoredImage struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	Filename  string    `gorm:"not null" json:"filename"` // "<id><ext>" on the blob backend
	Mime      string    `json:"mime"`
	CreatedAt time.Time `json:"created_at"`
}
