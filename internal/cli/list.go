package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/invoicer/internal/aggregate"
	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/parse"
	"github.com/roach88/invoicer/internal/render"
	"github.com/roach88/invoicer/internal/store"
)

// ListOptions holds flags for the list subcommands.
type ListOptions struct {
	*RootOptions
	Month    string
	Invoice  int64
	Unbilled bool
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List time entries, activities or invoices",
	}

	cmd.AddCommand(newListTimeCommand(rootOpts))
	cmd.AddCommand(newListActivityCommand(rootOpts))
	cmd.AddCommand(newListInvoiceCommand(rootOpts))

	return cmd
}

func newListTimeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "time",
		Short:         "List time entries with their tickets",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			filter := aggregate.AllTimes()
			if opts.Month != "" {
				m, err := parse.Month(opts.Month)
				if err != nil {
					return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, "invalid --month", err)
				}
				filter = aggregate.TimesInMonth(m)
			}
			if opts.Unbilled {
				filter = filter.And(aggregate.UnbilledTimes())
			}

			return runList(cmd, opts, func(ctx context.Context, r *store.Reader) (any, error) {
				return aggregate.BuildTimeListing(ctx, r, filter)
			}, func(t *render.Table, v any) error {
				return t.WriteTimes(cmd.OutOrStdout(), v.([]model.TimeWithTickets))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Month, "month", "", "only entries starting in this month (YYYY-MM)")
	cmd.Flags().BoolVar(&opts.Unbilled, "unbilled", false, "only entries not billed against an activity")

	return cmd
}

func newListActivityCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "activity",
		Short:         "List invoice activities with their rolled-up hours and tickets",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			filter := aggregate.AllActivities()
			switch {
			case cmd.Flags().Changed("invoice"):
				filter = aggregate.ActivitiesOfInvoice(opts.Invoice)
			case opts.Month != "":
				m, err := parse.Month(opts.Month)
				if err != nil {
					return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, "invalid --month", err)
				}
				filter = aggregate.ActivitiesInMonth(m)
			}

			return runList(cmd, opts, func(ctx context.Context, r *store.Reader) (any, error) {
				return aggregate.BuildActivityRollups(ctx, r, filter)
			}, func(t *render.Table, v any) error {
				return t.WriteActivities(cmd.OutOrStdout(), v.([]model.ActivityWithRollup))
			})
		},
	}

	cmd.Flags().Int64Var(&opts.Invoice, "invoice", 0, "only activities of this invoice")
	cmd.Flags().StringVar(&opts.Month, "month", "", "only activities invoiced for this month (YYYY-MM)")
	cmd.MarkFlagsMutuallyExclusive("invoice", "month")

	return cmd
}

func newListInvoiceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "invoice [number|YYYY-MM]",
		Short:         "List invoices with their totals",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			filter := aggregate.AllInvoices()
			if len(args) == 1 {
				ident, err := parse.Ident(args[0])
				if err != nil {
					return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, "invalid invoice identifier", err)
				}
				filter = ident.Filter()
			}

			return runList(cmd, opts, func(ctx context.Context, r *store.Reader) (any, error) {
				return aggregate.BuildInvoiceDocuments(ctx, r, filter)
			}, func(t *render.Table, v any) error {
				return t.WriteInvoices(cmd.OutOrStdout(), v.([]model.InvoiceDocument))
			})
		},
	}

	return cmd
}

// runList loads inside one read transaction and prints the result as JSON
// or as a text table.
func runList(
	cmd *cobra.Command,
	opts *ListOptions,
	load func(context.Context, *store.Reader) (any, error),
	table func(*render.Table, any) error,
) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	var result any
	err = st.Read(cmd.Context(), func(r *store.Reader) error {
		var err error
		result, err = load(cmd.Context(), r)
		return err
	})
	if err != nil {
		return formatter.Fail("failed to list", err)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return table(render.NewTable(opts.Config.Invoice.Locale), result)
}
