package types

import "time"

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Email is the user's email address. At most one non-deleted user may
	// hold a given email.
	Email string `json:"email" db:"email"`

	// Name, PaternalSurname and MothersMaidenName make up the legal name.
	Name              string `json:"name" db:"name"`
	PaternalSurname   string `json:"paternal_surname" db:"paternal_surname"`
	MothersMaidenName string `json:"mothers_maiden_name" db:"mothers_maiden_name"`

	// AboutMe is a short free-form profile blurb.
	AboutMe string `json:"about_me" db:"about_me"`

	// Birthdate is nil until the user completes their profile.
	Birthdate *time.Time `json:"birthdate" db:"birthdate"`

	Phone  string `json:"phone" db:"phone"`
	Gender string `json:"gender" db:"gender"`

	// PhotoKey is the object-storage key of the profile photo.
	PhotoKey string `json:"photo_key" db:"photo_key"`

	Subscribed bool `json:"subscribed" db:"subscribed"`

	// Status is the job-seeking status shown on the profile.
	Status string `json:"status" db:"status"`

	// RoleID references the role this account registered under.
	RoleID int  `json:"-" db:"role_id"`
	Role   Role `json:"role" db:"-"`

	// AddressID is nil until the user registers an address.
	AddressID *int     `json:"-" db:"address_id"`
	Address   *Address `json:"address,omitempty" db:"-"`

	// HiddenFields lists profile fields an administrator has hidden.
	HiddenFields []string `json:"hidden_fields" db:"hidden_fields"`

	IsSuperuser bool `json:"-" db:"is_superuser"`
	IsActive    bool `json:"-" db:"is_active"`

	// StatusDelete marks the account as soft-deleted. Deleted accounts
	// keep their row but cannot log in.
	StatusDelete bool `json:"-" db:"status_delete"`

	// LastLogin feeds the access-code derivation: any login invalidates
	// codes issued against the previous value.
	LastLogin *time.Time `json:"last_login,omitempty" db:"last_login"`

	DateJoined time.Time `json:"date_joined" db:"date_joined"`
}

// Address is the user's postal address. Soft-deleted alongside its user.
type Address struct {
	ID           int    `json:"id" db:"id"`
	Street       string `json:"street" db:"street"`
	NumInt       int    `json:"num_int" db:"num_int"`
	NumExt       int    `json:"num_ext" db:"num_ext"`
	Suburb       string `json:"suburb" db:"suburb"`
	Town         string `json:"town" db:"town"`
	State        string `json:"state" db:"state"`
	Country      string `json:"country" db:"country"`
	ZipCode      string `json:"zip_code" db:"zip_code"`
	StatusDelete bool   `json:"-" db:"status_delete"`
}
