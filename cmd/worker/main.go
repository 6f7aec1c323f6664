package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"main/internal/ledger"
	"main/internal/model"
	"main/internal/ops"
	"main/internal/oracle"
	"main/internal/queue"
	"main/internal/store"
	"main/internal/worker"
	"main/pkg/conn"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to JSON config")
	migrate := flag.Bool("migrate", true, "Run schema migration on startup")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := conn.NewPostgres(loaded.Postgres)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pg.Close()

	if *migrate {
		if err := pg.DB().AutoMigrate(
			&model.Transaction{},
			&model.LedgerAccount{},
			&model.SpotPrice{},
			&model.Gold96Price{},
		); err != nil {
			log.Fatalf("migrate schema: %v", err)
		}
	}

	rc, err := conn.NewRedis(ctx, loaded.Redis)
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	defer rc.Close()

	w := worker.New(
		queue.NewManager(rc.Redis(), loaded.Queue.Name, loaded.Queue.StatusTTL),
		store.NewPG(pg.DB()),
		ledger.NewPG(pg.DB()),
		oracle.NewPG(pg.DB()),
		worker.Config{
			DequeueTimeout: loaded.Worker.DequeueTimeout,
			IdleDelay:      loaded.Worker.IdleDelay,
			ErrorDelay:     loaded.Worker.ErrorDelay,
		},
	)

	log.Printf("execution worker started, queue %s", loaded.Queue.Name)
	w.Run(ctx)
	log.Printf("execution worker stopped")
}
