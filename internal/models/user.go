package models

// User identifies the authenticated caller of the receipt API.
//
// Accounts are managed by an external identity service; this module only
// sees the ID and email carried in a validated bearer token.
type User struct {
	// ID is the unique identifier for the user.
	ID string

	// Email is the user's email address.
	Email string
}
