package main

import (
	"context"
	"database/sql"
	"math/rand"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"tatler/internal/adapters/csvsource"
	"tatler/internal/adapters/observability"
	"tatler/internal/app"
	"tatler/internal/domain"
	"tatler/internal/shared"
	mysqlrepo "tatler/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)
	log.Info().Str("file", cfg.CSVFile).Msg("importer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	src, err := csvsource.Open(cfg.CSVFile)
	if err != nil {
		log.Fatal().Err(err).Msg("open csv source failed")
	}
	defer src.Close()

	repo := mysqlrepo.New(db)
	gen := app.NewMockData(rand.New(rand.NewSource(time.Now().UnixNano())), nil)
	imp := app.NewImportService(repo, gen, nil)

	sum, err := imp.Run(ctx, src)
	if err != nil {
		log.Fatal().Err(err).Msg("import aborted")
	}

	observability.ObserveImport("skipped", sum.Skipped)
	observability.ObserveImport("inserted", sum.Inserted)
	observability.ObserveImport("duplicate", sum.Duplicates)
	observability.ObserveImport("failed", sum.Failed)

	if sum.Sample != nil {
		log.Info().Interface("sample", sampleView(*sum.Sample)).Msg("first normalized document")
	}
	log.Info().
		Int("read", sum.Read).
		Int("skipped", sum.Skipped).
		Int("inserted", sum.Inserted).
		Int("duplicates", sum.Duplicates).
		Int("failed", sum.Failed).
		Msg("import completed")
}

// sampleView trims the sample document for the run log.
func sampleView(r domain.Restaurant) map[string]any {
	return map[string]any{
		"restaurant_id": r.RestaurantID,
		"name":          r.Name,
		"cuisine":       r.Cuisine,
		"borough":       r.Borough,
		"address":       r.Address,
		"price_range":   r.PriceRange,
		"grades":        len(r.Grades),
		"comments":      len(r.Comments),
	}
}
