package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/parse"
	"github.com/roach88/invoicer/internal/store"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Date     string
	Activity int64
}

// LoggedTime is the result of log and amend.
type LoggedTime struct {
	model.TimeEntry
	Tickets []model.Ticket `json:"tickets"`
}

func (l LoggedTime) String() string {
	return fmt.Sprintf("time %d: %s - %s %s",
		l.ID,
		l.Start.Format(model.TimestampLayout),
		l.End.Format(model.TimestampLayout),
		l.Description,
	)
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log <range> <description> [ticket...]",
		Short: "Record a time entry",
		Long: `Record a span of work.

The range is a start time plus a duration (9+1.5) or an end time minus a
duration (17:30-2). Durations are in hours and rounded to the minute. The
entry is placed on --date, which defaults to today.

Example:
  invoicer log 9+1.5 "Deploy pipeline" OPS-12
  invoicer log --date 2024-05-02 --activity 3 13:30-0.5 "Standup"`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", "", "day of the entry, YYYY-MM-DD (default today)")
	cmd.Flags().Int64Var(&opts.Activity, "activity", 0, "invoice activity to bill against")

	return cmd
}

func runLog(cmd *cobra.Command, opts *LogOptions, args []string) error {
	formatter := opts.formatter(cmd)

	span, err := parse.ParseTimeRange(args[0])
	if err != nil {
		return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, "invalid time range", err)
	}

	description := strings.TrimSpace(args[1])
	if description == "" {
		return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, "description must not be empty", nil)
	}

	tickets := make([]model.Ticket, 0, len(args)-2)
	for _, arg := range args[2:] {
		t, err := model.ParseTicket(arg)
		if err != nil {
			return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, "invalid ticket", err)
		}
		tickets = append(tickets, t)
	}

	day := opts.today()
	if opts.Date != "" {
		if day, err = parse.Date(opts.Date); err != nil {
			return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, "invalid --date", err)
		}
	}

	start, end := span.On(day)
	hours := span.Hours()
	entry := model.TimeEntry{
		Start:       start,
		End:         end,
		Description: description,
		Duration:    &hours,
	}
	if cmd.Flags().Changed("activity") {
		activity := opts.Activity
		entry.ActivityID = &activity
	}

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	err = st.Update(cmd.Context(), func(w *store.Writer) error {
		id, err := w.InsertTime(cmd.Context(), entry)
		if err != nil {
			return err
		}
		entry.ID = id
		return w.AttachTickets(cmd.Context(), id, tickets)
	})
	if err != nil {
		return formatter.Fail("failed to log time", err)
	}

	return formatter.Success(LoggedTime{TimeEntry: entry, Tickets: tickets})
}
