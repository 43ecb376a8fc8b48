package domain

// Member is a library member who can borrow books.
// The member's user identity (display name, unique email) is stored inline.
type Member struct {
	Entity
	Name  string `json:"name"`
	Email string `json:"email"`
}
