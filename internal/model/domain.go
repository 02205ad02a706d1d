package model

// Domain is a topical category a user can subscribe to.
type Domain struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
