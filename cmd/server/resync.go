package main

import (
	"errors"
	"fmt"

	"github.com/ahsanfayaz52/hopperhelps/internal/journal"
	"github.com/spf13/cobra"
)

var (
	resyncUser  string
	resyncEmail string
	resyncDate  string
)

var resyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Rebuild day summaries from notes",
	Long: `Recompute the mood summary of one day, or of every day a user has
written about, from the stored notes. Use it to repair summaries left stale by
a failed synchronization.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if resyncUser == "" && resyncEmail == "" {
			return errors.New("one of --user or --email is required")
		}

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		userID := resyncUser
		if userID == "" {
			u, err := a.users.GetByEmail(ctx, resyncEmail)
			if err != nil {
				return fmt.Errorf("find user %s: %w", resyncEmail, err)
			}
			userID = u.ID
		}

		out := cmd.OutOrStdout()
		if resyncDate != "" {
			res, err := a.journal.Synchronize(ctx, userID, resyncDate)
			if err != nil {
				return err
			}
			if err := res.StepErr(journal.StepSynchronize); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s synchronized\n", resyncDate)
			return nil
		}

		report, err := a.journal.ResyncUser(ctx, userID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d days checked, %d changed, %d failed\n", report.Days, report.Changed, len(report.Failed))
		for _, day := range report.Failed {
			fmt.Fprintf(out, "  failed: %s\n", day)
		}
		if len(report.Failed) > 0 {
			return fmt.Errorf("%d days could not be synchronized", len(report.Failed))
		}
		return nil
	},
}

func init() {
	resyncCmd.Flags().StringVar(&resyncUser, "user", "", "User id")
	resyncCmd.Flags().StringVar(&resyncEmail, "email", "", "User email, instead of --user")
	resyncCmd.Flags().StringVar(&resyncDate, "date", "", "Only this day (YYYY-MM-DD)")
	rootCmd.AddCommand(resyncCmd)
}
