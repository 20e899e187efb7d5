package models

import "time"

// MaxNoteLength bounds the free text attached to a daily log entry.
const MaxNoteLength = 500

// DailyLogEntry is one off-chain note for (owner, calendar day). Entries are
// append-only; nothing in this system mutates or deletes them.
type DailyLogEntry struct {
	ID           string    `json:"id"`
	OwnerAddress string    `json:"ownerAddress"`
	Date         string    `json:"date"` // YYYY-MM-DD, local day boundary
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"createdAt"`
}
