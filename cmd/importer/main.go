package main

import (
	"context"
	"encoding/csv"
	"flag"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"padharo_guide/internal/adapters/guideapi"
	"padharo_guide/internal/adapters/observability"
	"padharo_guide/internal/session"
	"padharo_guide/internal/shared"
)

// importer bulk-uploads favorite places from a CSV manifest with the
// columns: name, image path, description. Rows fail independently.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	manifest := flag.String("manifest", "favorites.csv", "CSV manifest: name,image,description")
	flag.Parse()

	log.Info().
		Str("base", cfg.GuideBase).
		Int("workers", cfg.Workers).
		Str("manifest", *manifest).
		Msg("importer starting")

	store := session.NewFromAddr(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.SessionKey, cfg.SessionChannel)
	defer store.Close()

	client, err := guideapi.New(cfg.GuideBase, store, cfg.ClientRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize guide API client")
	}

	f, err := os.Open(*manifest)
	if err != nil {
		log.Fatal().Err(err).Msg("open manifest failed")
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		log.Fatal().Err(err).Msg("read manifest failed")
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var ok, failed int64

	for i, row := range rows {
		if len(row) < 3 {
			log.Warn().Int("row", i+1).Msg("skipping short row")
			continue
		}
		name, imagePath, desc := row[0], row[1], row[2]

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(row int, name, imagePath, desc string) {
			defer wg.Done()
			defer sem.Release(1)

			img, err := os.Open(imagePath)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				log.Warn().Int("row", row).Err(err).Msg("open image failed")
				return
			}
			defer img.Close()

			created, err := client.CreateFavorite(ctx, name, filepath.Base(imagePath), img, desc)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				log.Warn().Int("row", row).Str("name", name).Err(err).Msg("import failed")
				return
			}
			atomic.AddInt64(&ok, 1)
			log.Info().Int("row", row).Str("id", created.ID).Str("name", created.Name).Msg("import ok")
		}(i+1, name, imagePath, desc)
	}

	wg.Wait()
	log.Info().Int64("ok", ok).Int64("failed", failed).Msg("import completed")
}
