package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/websitekoning/koning-api/libs/config"
	"github.com/websitekoning/koning-api/services/site-service/internal/admission"
	"github.com/websitekoning/koning-api/services/site-service/internal/booking"
	"github.com/websitekoning/koning-api/services/site-service/internal/policy"
	"github.com/websitekoning/koning-api/services/site-service/internal/storage/postgres"
)

func newSlotsCmd() *cobra.Command {
	var date string

	c := &cobra.Command{
		Use:   "slots",
		Short: "Print the bookable start times of a day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg policy.Config
			if err := config.Parse(&cfg); err != nil {
				return err
			}
			p, err := policy.New(cfg)
			if err != nil {
				return err
			}
			day, err := time.ParseInLocation(time.DateOnly, date, p.Location())
			if err != nil {
				return fmt.Errorf("invalid --date %q (want YYYY-MM-DD)", date)
			}

			ctx := cmd.Context()
			pool, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			// FreeSlots never notifies, so no notifier is wired.
			svc := booking.NewService(admission.New(p), postgres.NewAppointmentRepository(pool), nil, nil, nil)
			slots, err := svc.FreeSlots(ctx, day.Year(), day.Month(), day.Day(), time.Now())
			if err != nil {
				return err
			}
			for _, s := range slots {
				fmt.Fprintf(cmd.OutOrStdout(), "%s - %s\n", s.Format("15:04"), s.Add(p.SlotDuration()).Format("15:04"))
			}
			if len(slots) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no free slots")
			}
			return nil
		},
	}
	c.Flags().StringVar(&date, "date", time.Now().Format(time.DateOnly), "day to inspect (YYYY-MM-DD)")
	return c
}
