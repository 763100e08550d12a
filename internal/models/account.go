package models

import "time"

// Account is the persisted identity record for one user. Username is the
// primary key; Email is a unique secondary key. PasswordHash is whatever the
// configured hasher produced at registration or reset time.
type Account struct {
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"password_hash"`
	SecurityQuestion string    `json:"security_question"`
	SecurityAnswer   string    `json:"security_answer"`
	Birthday         string    `json:"birthday"`
	CreatedAt        time.Time `json:"created_at"`
}

// Registration carries the caller-supplied fields for a new account.
// The password is plaintext here; it is hashed before an Account is built.
type Registration struct {
	Username         string
	Email            string
	Password         string
	SecurityQuestion string
	SecurityAnswer   string
	Birthday         string
}

// ProfileUpdate carries the fields for an account update. Username selects
// the account and cannot change. An empty NewPassword keeps the stored hash.
type ProfileUpdate struct {
	Username         string
	Email            string
	NewPassword      string
	SecurityQuestion string
	SecurityAnswer   string
	Birthday         string
}
