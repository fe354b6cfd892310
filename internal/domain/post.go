package domain

// Post is a single discussion entry pulled from the content source.
// Posts are ephemeral: they exist for the duration of one pipeline cycle.
type Post struct {
	ID        string
	Title     string
	Body      string
	Permalink string
}
