package app

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"padharo_guide/internal/domain"
)

// anonymousBadge marks reviews whose author is unknown.
const anonymousBadge = "A"

// ReviewsController owns the site's review list (append order, oldest
// first) and the pending draft. The delete affordance is gated on
// ownership decoded from the session token; that gate is advisory only
// and the server's verdict always wins.
type ReviewsController struct {
	gw      domain.Gateway
	session domain.SessionReader

	mu         sync.Mutex
	closed     bool
	submitting bool
	reviews    []domain.Review

	// pending draft
	text   string
	rating int
}

func NewReviewsController(gw domain.Gateway, session domain.SessionReader) *ReviewsController {
	return &ReviewsController{gw: gw, session: session}
}

// Refresh loads the review list. Public read: works logged out.
func (c *ReviewsController) Refresh(ctx context.Context) error {
	reviews, err := c.gw.ListReviews(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.reviews = reviews
	return nil
}

// SetDraft stages the pending review input.
func (c *ReviewsController) SetDraft(text string, rating int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text, c.rating = text, rating
}

// Submitting reports whether a submit call is in flight.
func (c *ReviewsController) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Submit validates the draft and posts the review. Invalid input never
// reaches the network. The submitting flag blocks duplicate submits for
// the duration of the call and is always cleared on completion, success
// or failure. Success appends the server-returned review and clears the
// draft; failure keeps the draft.
func (c *ReviewsController) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return domain.Validationf("a review is already being submitted")
	}
	text, rating := c.text, c.rating
	if text == "" || rating < 1 || rating > 5 {
		c.mu.Unlock()
		return domain.Validationf("please enter a review and a rating from 1 to 5")
	}
	c.submitting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	tok, err := c.session.Token(ctx)
	if err != nil {
		return err
	}
	if tok == "" {
		return domain.Validationf("you must be logged in to leave a review")
	}

	created, err := c.gw.CreateReview(ctx, text, rating)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.reviews = append(c.reviews, created)
	c.text, c.rating = "", 0
	return nil
}

// Remove deletes a review. The client-side ownership gate rejects
// reviews the session user did not write; the server re-checks and a
// 403 from it leaves the list unchanged either way. The local entry is
// pruned only after confirmed deletion.
func (c *ReviewsController) Remove(ctx context.Context, id string) error {
	uid, err := c.session.UserID(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	for _, r := range c.reviews {
		if r.ID == id && !r.OwnedBy(uid) {
			c.mu.Unlock()
			return domain.ErrForbidden
		}
	}
	c.mu.Unlock()

	if err := c.gw.DeleteReview(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	kept := c.reviews[:0:0]
	for _, r := range c.reviews {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	c.reviews = kept
	return nil
}

// CanDelete reports whether the delete affordance should be shown:
// a session must exist and its user id must match the review's author.
func (c *ReviewsController) CanDelete(ctx context.Context, r domain.Review) bool {
	uid, err := c.session.UserID(ctx)
	if err != nil {
		return false
	}
	return r.OwnedBy(uid)
}

// Badge returns the reviewer marker: the author's first character
// upper-cased, or the fixed anonymous marker.
func Badge(r domain.Review) string {
	if r.Author == nil || r.Author.Name == "" {
		return anonymousBadge
	}
	first, _ := utf8.DecodeRuneInString(r.Author.Name)
	return strings.ToUpper(string(first))
}

// Reviews returns a snapshot of the list in display order.
func (c *ReviewsController) Reviews() []domain.Review {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Review, len(c.reviews))
	copy(out, c.reviews)
	return out
}

// Close disposes the controller; late completions become no-ops.
func (c *ReviewsController) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
