package domain

// Book is a catalog title with a physical copy count.
//
// AvailableCopies tracks copies not currently on loan and is mutated only
// by loan issuance (decrement) and return (increment), always inside the
// same transaction as the loan write. Invariant:
// 0 <= AvailableCopies <= TotalCopies.
type Book struct {
	Entity
	Title           string `json:"title"`
	ISBN            string `json:"isbn"`
	AuthorID        string `json:"author_id"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
}

// HasAvailableCopies reports whether at least one copy can be loaned out.
func (b *Book) HasAvailableCopies() bool {
	return b.AvailableCopies >= 1
}
