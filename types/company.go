package types

// Company is the organization profile attached to a company-role user.
type Company struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Email       string `json:"email" db:"email"`
	LogoKey     string `json:"logo_key" db:"logo_key"`
	Status      string `json:"status" db:"status"`
	// CoordinateID is the user coordinating the company account.
	CoordinateID int  `json:"coordinate" db:"coordinate_id"`
	StatusDelete bool `json:"-" db:"status_delete"`
}
