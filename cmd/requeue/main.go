// Command requeue moves dead-lettered catalog jobs back onto their queue,
// e.g. after fixing the SMTP settings.
//
//	go run ./cmd/requeue -n 100
package main

import (
	"context"
	"flag"
	"os"

	"tienda/internal/config"
	"tienda/internal/infra"
	"tienda/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	n := flag.Int("n", 100, "máximo de trabajos a reencolar")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	moved, err := worker.Requeue(context.Background(), rdb, worker.QueueCatalogo, *n)
	if err != nil {
		log.Fatal().Err(err).Int("reencolados", moved).Msg("requeue")
	}
	log.Info().Int("reencolados", moved).Str("queue", worker.QueueCatalogo).Msg("listo")
}
