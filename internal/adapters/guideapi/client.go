// internal/adapters/guideapi/client.go
package guideapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"padharo_guide/internal/adapters/observability"
	"padharo_guide/internal/domain"
)

// Client is the typed wrapper over the guide REST API. The bearer token
// comes from tokens at call time, never from construction time, so a
// token refreshed between calls is always honored.
type Client struct {
	base   string
	hc     *http.Client
	tokens domain.TokenSource
	rl     *rate.Limiter
}

func New(base string, tokens domain.TokenSource, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		hc:     &http.Client{Timeout: 20 * time.Second},
		tokens: tokens,
		rl:     rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ImageURL resolves a server-relative image reference against the base URL.
func (c *Client) ImageURL(ref string) string {
	if ref == "" {
		return ""
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.base + ref
}

// ---- Favorites ----

func (c *Client) ListFavorites(ctx context.Context) ([]domain.FavoritePlace, error) {
	var out []domain.FavoritePlace
	err := c.do(ctx, "list_favorites", http.MethodGet, c.base+"/api/favorites", true, "", nil, &out)
	return out, err
}

func (c *Client) CreateFavorite(ctx context.Context, name, filename string, image io.Reader, description string) (domain.FavoritePlace, error) {
	var out domain.FavoritePlace
	if name == "" || image == nil || description == "" {
		return out, domain.Validationf("place name, image and description are all required")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("name", name); err != nil {
		return out, err
	}
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return out, err
	}
	if _, err := io.Copy(fw, image); err != nil {
		return out, err
	}
	if err := mw.WriteField("description", description); err != nil {
		return out, err
	}
	if err := mw.Close(); err != nil {
		return out, err
	}

	err = c.do(ctx, "create_favorite", http.MethodPost, c.base+"/api/favorites", true, mw.FormDataContentType(), &body, &out)
	return out, err
}

func (c *Client) DeleteFavorite(ctx context.Context, id string) error {
	return c.do(ctx, "delete_favorite", http.MethodDelete, c.base+"/api/favorites/"+id, true, "", nil, nil)
}

// ---- Reviews ----

// ListReviews is a public read; no token is attached.
func (c *Client) ListReviews(ctx context.Context) ([]domain.Review, error) {
	var out []domain.Review
	err := c.do(ctx, "list_reviews", http.MethodGet, c.base+"/api/reviews", false, "", nil, &out)
	return out, err
}

func (c *Client) CreateReview(ctx context.Context, text string, rating int) (domain.Review, error) {
	var out domain.Review
	if text == "" {
		return out, domain.Validationf("review text is required")
	}
	if rating < 1 || rating > 5 {
		return out, domain.Validationf("rating must be between 1 and 5")
	}
	b, err := json.Marshal(map[string]any{"text": text, "rating": rating})
	if err != nil {
		return out, err
	}
	err = c.do(ctx, "create_review", http.MethodPost, c.base+"/api/reviews", true, "application/json", bytes.NewReader(b), &out)
	return out, err
}

func (c *Client) DeleteReview(ctx context.Context, id string) error {
	return c.do(ctx, "delete_review", http.MethodDelete, c.base+"/api/reviews/"+id, true, "", nil, nil)
}

// ---- Internals ----

// serverError is the API's error body shape; message is optional.
type serverError struct {
	Message string `json:"message"`
}

// do issues a single request with client-side rate limiting and maps the
// response status onto the domain error set. Transport failures become
// ErrNetwork and are never retried here; re-submission is the user's call.
func (c *Client) do(ctx context.Context, endpoint, method, url string, auth bool, contentType string, body io.Reader, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}

	var bearer string
	if auth {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			// Session storage trouble is transport-adjacent; keep it
			// inside the closed error set.
			return fmt.Errorf("%w: reading session token: %v", domain.ErrNetwork, err)
		}
		if tok == "" {
			// Short-circuit: no point sending a request the server must reject.
			return domain.ErrUnauthorized
		}
		bearer = tok
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "padharo-guide/1.0")
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("guideapi", endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("guideapi", endpoint, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)

	case http.StatusNoContent:
		return nil

	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		// Surface the server's message when it sends one.
		var se serverError
		if err := json.NewDecoder(resp.Body).Decode(&se); err == nil && se.Message != "" {
			return &domain.ValidationError{Msg: se.Message}
		}
		return domain.Validationf("the server rejected the request")

	case http.StatusUnauthorized:
		return domain.ErrUnauthorized

	case http.StatusForbidden:
		return domain.ErrForbidden

	case http.StatusNotFound:
		return domain.ErrNotFound

	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}
