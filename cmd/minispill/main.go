// Command minispill runs a scripted drawing round against a real Redis,
// playing both the main-screen and phone roles in one process. It exists to
// exercise the full wiring end to end; the library carries no server of its
// own.
package main

import (
	"context"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/spillkveld/minispill/internal/batch"
	"github.com/spillkveld/minispill/internal/config"
	"github.com/spillkveld/minispill/internal/heartbeat"
	"github.com/spillkveld/minispill/internal/joinlink"
	"github.com/spillkveld/minispill/internal/models"
	"github.com/spillkveld/minispill/internal/services/drawing"
	"github.com/spillkveld/minispill/internal/store"
	"github.com/spillkveld/minispill/internal/timer"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := config.Load()
	clock := clockwork.NewRealClock()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	sessionStore, err := store.NewRedis(&store.Config{
		RedisClient: redisClient,
		Clock:       clock,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create session store")
	}

	drawingService, err := drawing.NewService(&drawing.Config{
		Store:             sessionStore,
		Clock:             clock,
		Logger:            logger,
		DisconnectTimeout: cfg.DisconnectTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create drawing service")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Main screen: create the session and show the join link
	created, err := drawingService.CreateSession(ctx, &drawing.CreateSessionInput{
		Word:       "giraffe",
		Difficulty: models.DifficultyMedium,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create session")
	}

	link, err := joinlink.Build(cfg.JoinBaseURL, created.SessionID)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build join link")
	}
	logger.Info().Str("session_id", created.SessionID).Str("join_link", link).
		Int("timer_sec", created.TimerDurationSec).Msg("session created")

	// Main screen: watch derived state
	states, stopWatch, err := drawingService.Watch(ctx, &drawing.WatchInput{SessionID: created.SessionID})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to watch session")
	}
	defer stopWatch()

	go func() {
		var resets timer.ResetTracker
		for state := range states {
			if resets.Observe(state.TimerResetAt) {
				logger.Info().Msg("countdown restarted")
			}
			logger.Info().Str("phase", string(state.Phase)).
				Int("strokes", len(state.Strokes)).
				Bool("drawer_connected", state.DrawerConnected).
				Dur("remaining", state.Timer.Remaining).
				Msg("snapshot")
		}
	}()

	// Phone: join, start heartbeating, ready up
	joined, err := drawingService.Join(ctx, &drawing.JoinInput{SessionID: created.SessionID})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to join")
	}

	beater, err := heartbeat.NewBeater(&heartbeat.Config{
		Store:     sessionStore,
		Clock:     clock,
		Logger:    logger,
		SessionID: created.SessionID,
		Fields:    []string{models.FieldLastHeartbeat, models.FieldPlayerHeartbeat},
		Interval:  cfg.HeartbeatInterval,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create heartbeat")
	}
	beater.Start(ctx)
	defer beater.Stop()

	if _, err := drawingService.Ready(ctx, &drawing.ReadyInput{
		SessionID: created.SessionID,
		PlayerID:  joined.PlayerID,
	}); err != nil {
		logger.Fatal().Err(err).Msg("failed to ready")
	}

	// Phone: draw a couple of strokes through the batcher
	batcher, err := batch.NewBatcher(&batch.Config{
		Clock: clock,
		Flush: func(stroke models.Stroke) error {
			_, err := drawingService.AppendStroke(ctx, &drawing.AppendStrokeInput{
				SessionID: created.SessionID,
				Stroke:    stroke,
			})
			return err
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create batcher")
	}

	for i := 0; i < 3; i++ {
		batcher.PointerDown(0.2, 0.2+float64(i)*0.1)
		batcher.PointerMove(0.5, 0.5)
		batcher.PointerMove(0.8, 0.3+float64(i)*0.1)
		if err := batcher.PointerUp(); err != nil {
			logger.Error().Err(err).Msg("stroke lost")
		}
		time.Sleep(500 * time.Millisecond)
	}

	if err := drawingService.ClearStrokes(ctx, &drawing.ClearStrokesInput{SessionID: created.SessionID}); err != nil {
		logger.Error().Err(err).Msg("failed to clear")
	}

	if err := drawingService.ResetTimer(ctx, &drawing.ResetTimerInput{SessionID: created.SessionID}); err != nil {
		logger.Error().Err(err).Msg("failed to reset timer")
	}

	// Main screen: end the round and tear the session down
	if err := drawingService.End(ctx, &drawing.EndInput{SessionID: created.SessionID}); err != nil {
		logger.Error().Err(err).Msg("failed to end")
	}
	time.Sleep(time.Second)
	if err := drawingService.Teardown(ctx, &drawing.TeardownInput{SessionID: created.SessionID}); err != nil {
		logger.Error().Err(err).Msg("failed to tear down")
	}

	logger.Info().Msg("round complete")
}
