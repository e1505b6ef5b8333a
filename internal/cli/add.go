package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/parse"
	"github.com/roach88/invoicer/internal/store"
)

// AddOptions holds flags for the add subcommands.
type AddOptions struct {
	*RootOptions
	ID      string
	Created string
}

// Added is the result of an add command.
type Added struct {
	Kind string `json:"kind"`
	Key  string `json:"key"`
}

func (a Added) String() string {
	return fmt.Sprintf("added %s %s", a.Kind, a.Key)
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add projects, recipients, invoices and activities",
	}

	cmd.AddCommand(newAddProjectCommand(rootOpts))
	cmd.AddCommand(newAddRecipientCommand(rootOpts))
	cmd.AddCommand(newAddInvoiceCommand(rootOpts))
	cmd.AddCommand(newAddActivityCommand(rootOpts))

	return cmd
}

func newAddProjectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	return &cobra.Command{
		Use:           "project <key> <name>",
		Short:         "Add a ticket project",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			// The key must be usable in a KEY-NUM ticket reference.
			parsed, err := model.ParseTicket(args[0] + "-1")
			if err != nil {
				return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, fmt.Sprintf("invalid project key %q", args[0]), nil)
			}

			p := model.Project{Key: parsed.ProjectKey, Name: args[1]}
			return runAdd(cmd, opts, Added{Kind: "project", Key: p.Key}, func(w *store.Writer) error {
				return w.InsertProject(cmd.Context(), p)
			})
		},
	}
}

func newAddRecipientCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "recipient <name> <address>",
		Short: "Add an invoice recipient",
		Long: `Add an invoice recipient. Write line breaks in the address as \n.

Example:
  invoicer add recipient "Acme Ltd" '1 Road\nTown' --id acme`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := opts.ID
			if id == "" {
				id = opts.newID()
			}

			r := model.Recipient{ID: id, Name: args[0], Address: args[1]}
			return runAdd(cmd, opts, Added{Kind: "recipient", Key: r.ID}, func(w *store.Writer) error {
				return w.InsertRecipient(cmd.Context(), r)
			})
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "recipient id (default random UUID)")

	return cmd
}

func newAddInvoiceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "invoice <number> <YYYY-MM> <recipient-id>",
		Short:         "Add an invoice for a billing month",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			num, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, fmt.Sprintf("invalid invoice number %q", args[0]), nil)
			}
			month, err := parse.Month(args[1])
			if err != nil {
				return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, "invalid month", err)
			}

			inv := model.Invoice{Number: num, Month: month, RecipientID: args[2]}
			if opts.Created != "" {
				created, err := parse.Date(opts.Created)
				if err != nil {
					return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, "invalid --created", err)
				}
				inv.Created = &created
			}

			return runAdd(cmd, opts, Added{Kind: "invoice", Key: args[0]}, func(w *store.Writer) error {
				return w.InsertInvoice(cmd.Context(), inv)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Created, "created", "", "issue date, YYYY-MM-DD (default: date of generation)")

	return cmd
}

func newAddActivityCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	return &cobra.Command{
		Use:           "activity <number> <invoice> <description> <unit-price>",
		Short:         "Add an activity to an invoice",
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			num, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, fmt.Sprintf("invalid activity number %q", args[0]), nil)
			}
			invoice, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, fmt.Sprintf("invalid invoice number %q", args[1]), nil)
			}
			price, err := strconv.ParseFloat(args[3], 64)
			if err != nil || price < 0 {
				return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, fmt.Sprintf("invalid unit price %q", args[3]), nil)
			}

			a := model.Activity{Number: num, InvoiceNumber: invoice, Description: args[2], UnitPrice: price}
			return runAdd(cmd, opts, Added{Kind: "activity", Key: args[0]}, func(w *store.Writer) error {
				return w.InsertActivity(cmd.Context(), a)
			})
		},
	}
}

func runAdd(cmd *cobra.Command, opts *AddOptions, added Added, insert func(*store.Writer) error) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.Update(cmd.Context(), insert); err != nil {
		return formatter.Fail("failed to add "+added.Kind, err)
	}
	return formatter.Success(added)
}
