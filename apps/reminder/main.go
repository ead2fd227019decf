package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	ucli "github.com/urfave/cli/v2"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/reminder"
	logsvc "github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/services/logger"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/storage/localstate"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "REMINDER : ", log.LstdFlags), conf)

	app := &ucli.App{
		Name:  "reminder",
		Usage: "Show the daily study reminder on this machine.",
		Flags: []ucli.Flag{
			&ucli.StringFlag{Name: "state", Value: conf.Reminder.StatePath, Usage: "Path of the sqlite file holding the reminder flags."},
			&ucli.IntFlag{Name: "hour", Value: conf.Reminder.Hour, Usage: "Local hour (0-23) of the reminder."},
			&ucli.StringFlag{Name: "permission", Value: conf.Reminder.Permission, Usage: "Notification permission: granted, denied or unasked."},
		},
		Action: func(c *ucli.Context) error {
			store, err := localstate.Open(c.String("state"))
			if err != nil {
				return err
			}
			defer store.Close()

			sched := reminder.NewScheduler(
				store,
				newConsoleNotifier(os.Stdout, c.String("permission")),
				logger,
				reminder.WithHour(c.Int("hour")),
			)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			interval := conf.Reminder.Interval
			if interval <= 0 {
				interval = time.Hour
			}
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			logger.Info("reminder started")
			run(ctx, sched, ticker.C, logger)
			logger.Info("reminder stopped")
			return nil
		},
		Commands: []*ucli.Command{
			{
				Name:      "streak",
				Usage:     "Record the current study streak, in days.",
				ArgsUsage: "DAYS",
				Action: func(c *ucli.Context) error {
					days, err := strconv.Atoi(c.Args().First())
					if err != nil || days < 0 {
						return fmt.Errorf("streak must be a non-negative number of days (got %q)", c.Args().First())
					}
					store, err := localstate.Open(c.String("state"))
					if err != nil {
						return err
					}
					defer store.Close()
					return errors.Wrap(store.Set(reminder.StreakKey, strconv.Itoa(days)), "saving streak")
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal(fmt.Sprintf("reminder: %v", err), err)
	}
}

type scheduler interface {
	Schedule() (time.Time, bool)
	Cancel()
}

// run re-arms the reminder on every tick until ctx is done.
// Schedule keeps an armed timer for the same target, so ticks are cheap.
func run(ctx context.Context, sched scheduler, tick <-chan time.Time, logger core.Logger) {
	arm := func() {
		if target, ok := sched.Schedule(); ok {
			logger.Debug(fmt.Sprintf("next reminder at %s", target.Format(time.RFC3339)))
		}
	}

	arm()
	for {
		select {
		case <-ctx.Done():
			sched.Cancel()
			return
		case <-tick:
			arm()
		}
	}
}
