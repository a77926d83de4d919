package app

import (
	"bytes"
	"context"
	"io"
	"sync"

	"padharo_guide/internal/domain"
)

// FavoritesController owns the user's favorite-places list and the
// pending add-a-place form. Writes are confirmed, never speculative:
// the list only changes after the server has acknowledged the mutation.
type FavoritesController struct {
	gw      domain.Gateway
	session domain.SessionReader

	mu     sync.Mutex
	closed bool
	places []domain.FavoritePlace

	// pending form fields; the image is buffered so a failed Submit can
	// retry with the original bytes instead of a drained reader
	name        string
	filename    string
	image       []byte
	description string
}

func NewFavoritesController(gw domain.Gateway, session domain.SessionReader) *FavoritesController {
	return &FavoritesController{gw: gw, session: session}
}

// Refresh replaces the local list with the server's view.
func (c *FavoritesController) Refresh(ctx context.Context) error {
	places, err := c.gw.ListFavorites(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.places = places
	return nil
}

// SetForm stages the pending input for the next Submit. The image is
// read in full here; every Submit attempt uploads these same bytes.
func (c *FavoritesController) SetForm(name, filename string, image io.Reader, description string) error {
	var data []byte
	if image != nil {
		var err error
		data, err = io.ReadAll(image)
		if err != nil {
			return err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name, c.filename, c.image, c.description = name, filename, data, description
	return nil
}

// Submit validates the staged form and creates the favorite on the
// server. All three fields and a session are required; any of them
// missing short-circuits before a request is sent. On success the
// server-returned place (carrying its assigned id) is appended and the
// form cleared; on failure the form is kept so the user can retry.
func (c *FavoritesController) Submit(ctx context.Context) error {
	c.mu.Lock()
	name, filename, image, description := c.name, c.filename, c.image, c.description
	c.mu.Unlock()

	if name == "" || len(image) == 0 || description == "" {
		return domain.Validationf("please enter a place name, upload an image, and write a description")
	}
	tok, err := c.session.Token(ctx)
	if err != nil {
		return err
	}
	if tok == "" {
		return domain.Validationf("you must be logged in to add a favorite")
	}

	// Fresh reader per attempt: a failed call must not leave the staged
	// image half-consumed for the retry.
	created, err := c.gw.CreateFavorite(ctx, name, filename, bytes.NewReader(image), description)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	// Append against the freshest list; a completion racing a Remove
	// must not resurrect a stale snapshot.
	c.places = append(c.places, created)
	c.name, c.filename, c.image, c.description = "", "", nil, ""
	return nil
}

// Remove deletes a favorite on the server and only then prunes it
// locally. Deliberately not optimistic: the list never shows an entry
// as gone until the server has confirmed the deletion.
func (c *FavoritesController) Remove(ctx context.Context, id string) error {
	if err := c.gw.DeleteFavorite(ctx, id); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	kept := c.places[:0:0]
	for _, p := range c.places {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	c.places = kept
	return nil
}

// Places returns a snapshot of the current list in display order.
func (c *FavoritesController) Places() []domain.FavoritePlace {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.FavoritePlace, len(c.places))
	copy(out, c.places)
	return out
}

// Close disposes the controller; completions arriving afterwards are
// no-ops instead of mutating state behind a torn-down view.
func (c *FavoritesController) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
