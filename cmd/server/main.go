package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wolftag/internal/achievements"
	"wolftag/internal/auth"
	"wolftag/internal/config"
	"wolftag/internal/game"
	"wolftag/internal/httpapi"
	"wolftag/internal/moderation"
	"wolftag/internal/room"
	"wolftag/internal/stats"
	"wolftag/internal/ws"
)

func main() {
	_ = godotenv.Load() // .env is optional
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	table, err := achievements.Load(cfg.AchievementsFile)
	if err != nil {
		logger.Fatal("achievements table", zap.Error(err))
	}

	// Without a database the game still runs: guests only, stats writes go
	// to a throwaway in-memory store.
	var store stats.Store
	var authSvc *auth.Service
	var accounts ws.AccountResolver
	if cfg.DatabaseURL != "" {
		db, err := stats.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("stats db", zap.Error(err))
		}
		store = db
		authSvc = auth.NewService(db)
		accounts = db
	} else {
		logger.Warn("DATABASE_URL not set; accounts and persistent stats disabled")
		store = stats.NewMemory()
	}

	var classifier moderation.Classifier
	if cfg.ModerationEnabled() {
		classifier = &moderation.Sightengine{
			APIUser:   cfg.SightengineUser,
			APISecret: cfg.SightengineSecret,
		}
	} else {
		logger.Warn("classifier credentials not set; background uploads will be rejected")
	}
	pipeline := moderation.NewPipeline(classifier, moderation.DefaultThresholds(), int(cfg.MaxUploadBytes))

	queue := stats.NewQueue(store, table, logger)

	rules := game.Rules{TagTolerance: cfg.TagTolerance, TagCooldown: cfg.TagCooldown}
	state := game.NewState(rules, rand.New(rand.NewSource(time.Now().UnixNano())))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rm := room.NewRoom(ctx, state, pipeline, queue, table, room.Config{
		NormalCooldown:   cfg.NormalCooldown,
		PenaltyCooldown:  cfg.PenaltyCooldown,
		AFKThreshold:     cfg.AFKThreshold,
		SweepPeriod:      cfg.SweepPeriod,
		PlaceholderImage: cfg.PlaceholderImage,
	}, logger)
	queue.OnUnlock(rm.NotifyUnlock)

	// Read limit leaves headroom for the base64 framing around the image cap.
	handler := httpapi.SetupRoutes(rm, authSvc, accounts, cfg.MaxUploadBytes+cfg.MaxUploadBytes/2, logger)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: handler}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		queue.Close() // room stops via ctx; drain pending stats writes
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}
