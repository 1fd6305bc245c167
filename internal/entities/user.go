package entities

import "time"

// User is a record in the remote "users" collection. The ID is the
// store-assigned key and is attached client-side after a fetch; it is
// not part of the stored record itself.
//
// Password carries the bcrypt hash of the user's password, never the
// plaintext.
type User struct {
	ID        string    `json:"id,omitempty"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}
