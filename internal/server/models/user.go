package models

// User is a registered account. Password holds the argon2id hash, never the
// plaintext.
type User struct {
	ID       int64  `json:"-"`
	Name     string `json:"name"`
	Password string `json:"-"`
}

// UserCreate is the input for creating a user row. Password must already be hashed.
type UserCreate struct {
	Name     string
	Password string
}

// UserUpdate carries the mutable user fields.
type UserUpdate struct {
	Name string
}
