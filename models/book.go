package models

// Book is the only record the library stores. Every field is nullable on the wire.
type Book struct {
	ID              *int64  `json:"id" db:"id"`
	Title           *string `json:"title" db:"title"`
	Author          *string `json:"author" db:"author"`
	PublicationYear *int    `json:"publicationYear" db:"publication_year"`
}

// WithID returns a copy of the book carrying the given id.
func (b *Book) WithID(id Id) *Book {
	book := *b
	i := int64(id)
	book.ID = &i
	return &book
}

// Id returns the book id and whether one has been assigned.
func (b *Book) Id() (Id, bool) {
	if b == nil || b.ID == nil {
		return 0, false
	}
	return Id(*b.ID), true
}
