package app_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"padharo_guide/internal/app"
	"padharo_guide/internal/domain"
)

func author(id, name string) *domain.Author { return &domain.Author{ID: id, Name: name} }

func TestReviewsSubmit_AppendsInSubmissionOrder(t *testing.T) {
	n := 0
	gw := &fakeGateway{
		createReview: func(text string, rating int) (domain.Review, error) {
			n++
			return domain.Review{ID: string(rune('0' + n)), Text: text, Rating: rating, Author: author("u1", "Asha")}, nil
		},
	}
	ctl := app.NewReviewsController(gw, &fakeSession{token: "tok", userID: "u1"})

	ctl.SetDraft("lovely stepwells", 5)
	if err := ctl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	ctl.SetDraft("good food", 4)
	if err := ctl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	got := ctl.Reviews()
	if len(got) != 2 || got[0].Text != "lovely stepwells" || got[1].Text != "good food" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if ctl.Submitting() {
		t.Fatal("submitting flag must clear after completion")
	}
}

func TestReviewsSubmit_InvalidDraftNeverReachesNetwork(t *testing.T) {
	cases := []struct {
		text   string
		rating int
	}{
		{"", 3},
		{"text", 0},
		{"text", 6},
		{"text", -1},
	}
	for _, tc := range cases {
		gw := &fakeGateway{}
		ctl := app.NewReviewsController(gw, &fakeSession{token: "tok"})
		ctl.SetDraft(tc.text, tc.rating)

		err := ctl.Submit(context.Background())
		if !domain.IsValidation(err) {
			t.Fatalf("case %+v: expected validation error, got %v", tc, err)
		}
		if gw.callCount() != 0 {
			t.Fatalf("case %+v: expected no network call", tc)
		}
	}
}

func TestReviewsSubmit_LoggedOutFailsWithoutNetworkCall(t *testing.T) {
	gw := &fakeGateway{}
	ctl := app.NewReviewsController(gw, &fakeSession{token: ""})
	ctl.SetDraft("nice", 5)

	err := ctl.Submit(context.Background())
	if !domain.IsValidation(err) {
		t.Fatalf("expected must-log-in validation error, got %v", err)
	}
	if gw.callCount() != 0 {
		t.Fatal("expected no network call")
	}
}

func TestReviewsSubmit_SubmittingFlagBlocksDuplicatesAndAlwaysClears(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeGateway{
		createReview: func(text string, rating int) (domain.Review, error) {
			<-release
			return domain.Review{}, domain.ErrNetwork
		},
	}
	ctl := app.NewReviewsController(gw, &fakeSession{token: "tok"})
	ctl.SetDraft("nice", 5)

	done := make(chan error, 1)
	go func() { done <- ctl.Submit(context.Background()) }()

	for !ctl.Submitting() {
		runtime.Gosched()
	}
	// duplicate submit while in flight is rejected locally
	if err := ctl.Submit(context.Background()); !domain.IsValidation(err) {
		t.Fatalf("expected duplicate-submit rejection, got %v", err)
	}

	close(release)
	if err := <-done; !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected network failure, got %v", err)
	}
	// guaranteed cleanup: the flag clears on failure too
	if ctl.Submitting() {
		t.Fatal("submitting flag must clear after failure")
	}
	// the draft survives a failed submit for retry
	gw.createReview = func(text string, rating int) (domain.Review, error) {
		return domain.Review{ID: "r1", Text: text, Rating: rating}, nil
	}
	if err := ctl.Submit(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestReviews_DeleteAffordanceVisibility(t *testing.T) {
	mine := domain.Review{ID: "r1", Author: author("u1", "Asha")}
	theirs := domain.Review{ID: "r2", Author: author("u2", "Bina")}
	anonymous := domain.Review{ID: "r3"}

	cases := []struct {
		name    string
		session *fakeSession
		review  domain.Review
		want    bool
	}{
		{"owner", &fakeSession{token: "tok", userID: "u1"}, mine, true},
		{"other user", &fakeSession{token: "tok", userID: "u1"}, theirs, false},
		{"anonymous review", &fakeSession{token: "tok", userID: "u1"}, anonymous, false},
		{"no session", &fakeSession{}, mine, false},
	}
	for _, tc := range cases {
		ctl := app.NewReviewsController(&fakeGateway{}, tc.session)
		if got := ctl.CanDelete(context.Background(), tc.review); got != tc.want {
			t.Fatalf("%s: CanDelete = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestReviewsRemove_OwnershipGateRejectsLocally(t *testing.T) {
	gw := &fakeGateway{
		listReviews: func() ([]domain.Review, error) {
			return []domain.Review{{ID: "r1", Author: author("u2", "Bina")}}, nil
		},
	}
	ctl := app.NewReviewsController(gw, &fakeSession{token: "tok", userID: "u1"})
	if err := ctl.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	calls := gw.callCount()

	if err := ctl.Remove(context.Background(), "r1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if gw.callCount() != calls {
		t.Fatal("client-side gate must not issue a delete request")
	}
	if len(ctl.Reviews()) != 1 {
		t.Fatal("list must be unchanged")
	}
}

func TestReviewsRemove_ServerForbiddenLeavesListUnchanged(t *testing.T) {
	// The local gate is advisory: a review not in the local list slips
	// past it, and the server's verdict must still leave state intact.
	gw := &fakeGateway{
		listReviews:  func() ([]domain.Review, error) { return []domain.Review{{ID: "r9", Author: author("u1", "Asha")}}, nil },
		deleteReview: func(id string) error { return domain.ErrForbidden },
	}
	ctl := app.NewReviewsController(gw, &fakeSession{token: "tok", userID: "u1"})
	if err := ctl.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := ctl.Remove(context.Background(), "r1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden from server, got %v", err)
	}
	if len(ctl.Reviews()) != 1 {
		t.Fatal("list must be unchanged after a server rejection")
	}
}

func TestReviewsRemove_ConfirmedDeletePrunesById(t *testing.T) {
	gw := &fakeGateway{
		listReviews: func() ([]domain.Review, error) {
			return []domain.Review{
				{ID: "r1", Author: author("u1", "Asha")},
				{ID: "r2", Author: author("u1", "Asha")},
			}, nil
		},
		deleteReview: func(id string) error { return nil },
	}
	ctl := app.NewReviewsController(gw, &fakeSession{token: "tok", userID: "u1"})
	if err := ctl.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := ctl.Remove(context.Background(), "r1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got := ctl.Reviews()
	if len(got) != 1 || got[0].ID != "r2" {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestBadge(t *testing.T) {
	if got := app.Badge(domain.Review{Author: author("u1", "asha")}); got != "A" {
		t.Fatalf("badge: %q", got)
	}
	if got := app.Badge(domain.Review{Author: author("u1", "Ürgüp")}); got != "Ü" {
		t.Fatalf("badge: %q", got)
	}
	if got := app.Badge(domain.Review{}); got != "A" {
		t.Fatalf("anonymous badge: %q", got)
	}
	if got := app.Badge(domain.Review{Author: author("u1", "")}); got != "A" {
		t.Fatalf("empty-name badge: %q", got)
	}
}
