package cron

import (
	"context"
	"log"
	"time"

	"tillpoint/config"
	otpRepo "tillpoint/database/repository/otp"
	sessionRepo "tillpoint/database/repository/session"

	"github.com/hibiken/asynq"
)

const (
	TypeCodePurge    = "otp:purge"
	TypeSessionSweep = "session:sweep"
)

// InitMaintenanceWorker runs the async maintenance worker in background:
// a periodic purge of expired one-time codes and a nightly sweep that flags
// register sessions left open past a full day.
func InitMaintenanceWorker(codes otpRepo.OTPRepository, sessions sessionRepo.SessionRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisWorkerDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCodePurge, handleCodePurge(codes))
	mux.HandleFunc(TypeSessionSweep, handleSessionSweep(sessions))

	scheduler := asynq.NewScheduler(redisOpts, nil)
	if _, err := scheduler.Register("@every 15m", asynq.NewTask(TypeCodePurge, nil)); err != nil {
		log.Fatalf("[MaintenanceWorker] failed to register code purge: %v", err)
	}
	if _, err := scheduler.Register("0 3 * * *", asynq.NewTask(TypeSessionSweep, nil)); err != nil {
		log.Fatalf("[MaintenanceWorker] failed to register session sweep: %v", err)
	}

	// Start async worker with retry logic
	go func() {
		log.Println("[MaintenanceWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[MaintenanceWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[MaintenanceWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()

	go func() {
		if err := scheduler.Run(); err != nil {
			log.Printf("[MaintenanceWorker] scheduler stopped: %v", err)
		}
	}()
}

// handleCodePurge removes code records an hour past expiry. Keeping them a
// little while after expiry helps support answer "did a code ever arrive"
// questions.
func handleCodePurge(codes otpRepo.OTPRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		removed, err := codes.PurgeExpired(time.Now().Add(-1 * time.Hour))
		if err != nil {
			log.Printf("[MaintenanceWorker] code purge failed: %v", err)
			return err
		}
		if removed > 0 {
			log.Printf("[MaintenanceWorker] purged %d expired one-time codes", removed)
		}
		return nil
	}
}

// handleSessionSweep flags sessions still open a full day after opening. No
// auto-close: closing needs an ending cash count only a human can do.
func handleSessionSweep(sessions sessionRepo.SessionRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		flagged, err := sessions.FlagOverdue(time.Now().Add(-24 * time.Hour))
		if err != nil {
			log.Printf("[MaintenanceWorker] session sweep failed: %v", err)
			return err
		}
		if flagged > 0 {
			log.Printf("[MaintenanceWorker] flagged %d overdue open sessions", flagged)
		}
		return nil
	}
}
