package domain

// Author is a book author. An author owns zero or more books.
type Author struct {
	Entity
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName returns the author's display name.
func (a *Author) FullName() string {
	if a.FirstName == "" {
		return a.LastName
	}
	return a.FirstName + " " + a.LastName
}
