package pages

// Banner is the header shown above every signed-in page.
type Banner struct {
	Title   string
	Tagline string

	store SessionStore
}

// NewBanner creates the header.
func NewBanner(store SessionStore) *Banner {
	return &Banner{
		Title:   "Conference Spotter",
		Tagline: "Helping You Find Your Next Academic Conference",
		store:   store,
	}
}

// Logout forgets the stored session.
func (b *Banner) Logout() error {
	return b.store.Clear()
}
