package model

// User is a locally persisted profile for an identity-provider account.
// UID is the provider's subject identifier and the key goals refer to.
type User struct {
	ID       string `json:"id" db:"id"`
	UID      string `json:"uid" db:"uid"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email" db:"email"`
	PhotoURL string `json:"photoURL" db:"photo_url"`
}

// NewUser is a validated user creation record.
type NewUser struct {
	UID      string `json:"uid"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoURL"`
}
