package main

import (
	"flag"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"oxygen-dispatch-service/internal/adapters/repositories"
	"oxygen-dispatch-service/internal/config"
	"oxygen-dispatch-service/internal/platform/db"
)

// dbtool creates the schema and optionally seeds demo deliveries.
// Usage: dbtool [-seed path/to/deliveries.json]
func main() {
	seedPath := flag.String("seed", "", "JSON file with demo deliveries (optional)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	database, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer database.Close()

	if err := repositories.InitSchema(database); err != nil {
		log.Fatal().Err(err).Msg("init schema")
	}
	log.Info().Msg("schema ready")

	path := *seedPath
	if path == "" {
		path = config.Get("SEED_PATH", "")
	}
	if path == "" {
		return
	}
	if err := repositories.SeedFromJSON(database, path); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("seed deliveries")
	}
	log.Info().Str("path", path).Msg("seed loaded")
}
