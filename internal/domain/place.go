package domain

// FavoritePlace is a user-owned entry in the favorites collection.
// IDs are assigned by the server; a place without an ID has not been
// confirmed yet and must not appear in the local list.
type FavoritePlace struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	ImageRef    string `json:"image"` // server-relative path, resolve against the base URL
	Description string `json:"description"`
}
