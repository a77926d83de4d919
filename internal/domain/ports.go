package domain

import (
	"context"
	"io"
)

// Gateway is the typed surface of the remote guide API. Every
// authenticated call reads the bearer token at call time.
type Gateway interface {
	ListFavorites(ctx context.Context) ([]FavoritePlace, error)
	CreateFavorite(ctx context.Context, name, filename string, image io.Reader, description string) (FavoritePlace, error)
	DeleteFavorite(ctx context.Context, id string) error

	ListReviews(ctx context.Context) ([]Review, error)
	CreateReview(ctx context.Context, text string, rating int) (Review, error)
	DeleteReview(ctx context.Context, id string) error
}

// TokenSource yields the current bearer token, or "" when logged out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// SessionReader is what the controllers and the CLI chrome need from
// the session store: read access and change notifications. Mutation
// (Save/Logout) stays on the concrete store.
type SessionReader interface {
	TokenSource
	UserID(ctx context.Context) (string, error)
	OnChange(fn func())
}
