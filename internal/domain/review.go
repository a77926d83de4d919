package domain

// Author identifies the user who wrote a review. Legacy rows may carry
// no author at all, so Review holds a pointer.
type Author struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type Review struct {
	ID     string  `json:"_id"`
	Text   string  `json:"text"`
	Rating int     `json:"rating"` // 1..5
	Author *Author `json:"user,omitempty"`
}

// OwnedBy reports whether the review was written by the given user.
// An absent author or empty user id never matches.
func (r Review) OwnedBy(userID string) bool {
	return userID != "" && r.Author != nil && r.Author.ID == userID
}
