package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/parse"
	"github.com/roach88/invoicer/internal/store"
)

// AmendOptions holds flags for the amend command.
type AmendOptions struct {
	*RootOptions
	Description string
}

// NewAmendCommand creates the amend command.
func NewAmendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AmendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "amend <time-id> [token...]",
		Short: "Change a recorded time entry",
		Long: `Change a recorded time entry.

Each token is recognized in this order:
  12            activity number to bill against
  OPS-3         ticket to attach
  2024-05-01    move the entry to this day
  9+1.5         replace the time range
  "fix bug"     replace the description (must contain a space)

Use --desc for a single-word description.

Example:
  invoicer amend 41 3 OPS-7 "pair on release"
  invoicer amend 41 2024-05-02 --desc Standup`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAmend(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Description, "desc", "", "replace the description")

	return cmd
}

func runAmend(cmd *cobra.Command, opts *AmendOptions, args []string) error {
	formatter := opts.formatter(cmd)

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, fmt.Sprintf("invalid time id %q", args[0]), nil)
	}

	amendment, err := parse.ParseAmendment(args[1:])
	if err != nil {
		return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, "invalid amendment", err)
	}
	if cmd.Flags().Changed("desc") {
		if amendment.Description != nil {
			return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, "description given both as token and --desc", nil)
		}
		desc := opts.Description
		amendment.Description = &desc
	}
	if amendment.IsEmpty() {
		return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, "nothing to amend", nil)
	}

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	var amended model.TimeEntry
	err = st.Update(cmd.Context(), func(w *store.Writer) error {
		entry, err := w.TimeByID(cmd.Context(), id)
		if err != nil {
			return err
		}
		amended = amendment.Apply(entry)
		if err := w.AmendTime(cmd.Context(), amended); err != nil {
			return err
		}
		return w.AttachTickets(cmd.Context(), id, amendment.Tickets)
	})
	if err != nil {
		return formatter.Fail(fmt.Sprintf("failed to amend time %d", id), err)
	}

	formatter.VerboseLog("amended time %d", id)
	return formatter.Success(LoggedTime{TimeEntry: amended, Tickets: amendment.Tickets})
}
