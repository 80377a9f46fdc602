// Command sweeper finds due access review reminders and dispatches them.
// Run with -once from an external scheduler, or let it run on its own cron
// schedule (-schedule, default daily at 08:00).
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/cruxmailweb/access-management-tool/internal/config"
	"github.com/cruxmailweb/access-management-tool/internal/database"
	"github.com/cruxmailweb/access-management-tool/internal/logger"
	"github.com/cruxmailweb/access-management-tool/internal/services"
)

func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	schedule := flag.String("schedule", "0 8 * * *", "cron schedule for recurring sweeps")
	flag.Parse()

	_ = godotenv.Load()

	log := logger.Get()
	cfg := config.Load()

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	dispatcher := services.NewEmailService(cfg, log)
	sweeper := services.NewReminderSweeper(db, dispatcher, services.SystemClock(), log, cfg.SweepInterval)

	if *once {
		stats := sweeper.RunOnce()
		log.WithFields(map[string]interface{}{
			"due":    stats.Due,
			"sent":   stats.Sent,
			"errors": stats.Errors,
		}).Info("Sweep finished")
		if stats.Errors > 0 {
			os.Exit(1)
		}
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(*schedule, func() { sweeper.RunOnce() }); err != nil {
		log.WithError(err).Fatal("Invalid cron schedule")
	}
	c.Start()
	log.WithField("schedule", *schedule).Info("Sweeper scheduled")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	<-c.Stop().Done()
	log.Info("Sweeper stopped")
}
