package types

import "time"

// CVLanguage is a written language a CV can be authored in. Stored lower
// case and soft-deleted rather than removed.
type CVLanguage struct {
	ID           int       `json:"id" db:"id"`
	Language     string    `json:"language" db:"language"`
	StatusDelete bool      `json:"-" db:"status_delete"`
	CreatedDate  time.Time `json:"created_date" db:"created_date"`
	ModifiedDate time.Time `json:"modified_date" db:"modified_date"`
}
