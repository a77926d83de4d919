package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"padharo_guide/internal/adapters/guideapi"
	"padharo_guide/internal/adapters/observability"
	"padharo_guide/internal/app"
	"padharo_guide/internal/domain"
	"padharo_guide/internal/session"
	"padharo_guide/internal/shared"
)

const usage = `usage: guide <command>

  login <token>                      install an issued bearer token
  logout                             clear the session
  whoami                             show the current session
  watch                              print session changes until interrupted
  favorites list
  favorites add -name N -image PATH -desc TEXT
  favorites remove <id>
  reviews list
  reviews add -text TEXT -rating 1..5
  reviews remove <id>`

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	store := session.NewFromAddr(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.SessionKey, cfg.SessionChannel)
	defer store.Close()

	client, err := guideapi.New(cfg.GuideBase, store, cfg.ClientRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize guide API client")
	}

	ctx := context.Background()
	if err := run(ctx, os.Args[1:], store, client); err != nil {
		fmt.Fprintln(os.Stderr, render(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, store *session.Store, client *guideapi.Client) error {
	switch args[0] {
	case "login":
		if len(args) < 2 {
			return domain.Validationf("login needs the issued token")
		}
		return store.Save(ctx, args[1])

	case "logout":
		return store.Logout(ctx)

	case "whoami":
		uid, err := store.UserID(ctx)
		if err != nil {
			return err
		}
		if uid == "" {
			fmt.Println("not logged in")
			return nil
		}
		fmt.Println("logged in as", uid)
		return nil

	case "watch":
		return watch(ctx, store)

	case "favorites":
		return favoritesCmd(ctx, args[1:], store, client)

	case "reviews":
		return reviewsCmd(ctx, args[1:], store, client)

	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// watch mirrors the header chrome: it re-reads the session on every
// change notification, whichever process caused it.
func watch(ctx context.Context, store *session.Store) error {
	print := func() {
		uid, err := store.UserID(ctx)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("session read failed")
		case uid == "":
			fmt.Println("session: logged out")
		default:
			fmt.Println("session: logged in as", uid)
		}
	}
	print()
	store.OnChange(print)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
	return nil
}

func favoritesCmd(ctx context.Context, args []string, store *session.Store, client *guideapi.Client) error {
	if len(args) == 0 {
		return domain.Validationf("favorites needs a subcommand: list, add, remove")
	}
	ctl := app.NewFavoritesController(client, store)
	defer ctl.Close()

	switch args[0] {
	case "list":
		if err := ctl.Refresh(ctx); err != nil {
			return err
		}
		for _, p := range ctl.Places() {
			fmt.Printf("%s  %s\n    %s\n    %s\n", p.ID, p.Name, client.ImageURL(p.ImageRef), p.Description)
		}
		return nil

	case "add":
		fs := flag.NewFlagSet("favorites add", flag.ContinueOnError)
		name := fs.String("name", "", "place name")
		imagePath := fs.String("image", "", "path to the image file")
		desc := fs.String("desc", "", "description")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		var img *os.File
		if *imagePath != "" {
			f, err := os.Open(*imagePath)
			if err != nil {
				return err
			}
			defer f.Close()
			img = f
		}
		var serr error
		if img == nil {
			serr = ctl.SetForm(*name, "", nil, *desc)
		} else {
			serr = ctl.SetForm(*name, filepath.Base(*imagePath), img, *desc)
		}
		if serr != nil {
			return serr
		}
		if err := ctl.Submit(ctx); err != nil {
			return err
		}
		places := ctl.Places()
		fmt.Println("added", places[len(places)-1].ID)
		return nil

	case "remove":
		if len(args) < 2 {
			return domain.Validationf("favorites remove needs an id")
		}
		if err := ctl.Refresh(ctx); err != nil {
			return err
		}
		return ctl.Remove(ctx, args[1])

	default:
		return fmt.Errorf("unknown favorites subcommand %q", args[0])
	}
}

func reviewsCmd(ctx context.Context, args []string, store *session.Store, client *guideapi.Client) error {
	if len(args) == 0 {
		return domain.Validationf("reviews needs a subcommand: list, add, remove")
	}
	ctl := app.NewReviewsController(client, store)
	defer ctl.Close()

	switch args[0] {
	case "list":
		if err := ctl.Refresh(ctx); err != nil {
			return err
		}
		for _, r := range ctl.Reviews() {
			name := "Anonymous"
			if r.Author != nil && r.Author.Name != "" {
				name = r.Author.Name
			}
			line := fmt.Sprintf("[%s] %s  %s  %s", app.Badge(r), name, stars(r.Rating), r.Text)
			if c := ctl.CanDelete(ctx, r); c {
				line += "  [deletable: " + r.ID + "]"
			}
			fmt.Println(line)
		}
		return nil

	case "add":
		fs := flag.NewFlagSet("reviews add", flag.ContinueOnError)
		text := fs.String("text", "", "review text")
		rating := fs.Int("rating", 0, "rating 1..5")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		ctl.SetDraft(*text, *rating)
		return ctl.Submit(ctx)

	case "remove":
		if len(args) < 2 {
			return domain.Validationf("reviews remove needs an id")
		}
		if err := ctl.Refresh(ctx); err != nil {
			return err
		}
		return ctl.Remove(ctx, args[1])

	default:
		return fmt.Errorf("unknown reviews subcommand %q", args[0])
	}
}

func stars(n int) string { return strings.Repeat("★", n) }

// render maps the closed error set onto one-line user-facing messages.
func render(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "please log in first"
	case errors.Is(err, domain.ErrForbidden):
		return "you don't have permission to do that"
	case errors.Is(err, domain.ErrNotFound):
		return "that entry is already gone; refresh to reconcile"
	case errors.Is(err, domain.ErrNetwork):
		return "network trouble; try again"
	default:
		return err.Error()
	}
}
