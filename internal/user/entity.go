package user

import "time"

// User is an assignee. Accounts, passwords and sessions live elsewhere; the
// board only needs to know that an id refers to someone.
type User struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

type CreateUserRequest struct {
	Name string `json:"name"`
}
