package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/invoicer/internal/aggregate"
	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/parse"
	"github.com/roach88/invoicer/internal/render"
	"github.com/roach88/invoicer/internal/store"
)

// GenerateOptions holds flags for the generate subcommands.
type GenerateOptions struct {
	*RootOptions
	Output string
}

// GeneratedFile is the result of a generate command.
type GeneratedFile struct {
	Path    string `json:"path"`
	Invoice int64  `json:"invoice"`
}

func (g GeneratedFile) String() string {
	return fmt.Sprintf("wrote %s", g.Path)
}

// NewGenerateCommand creates the generate command and its invoice and
// timesheet subcommands.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate invoice documents",
	}

	cmd.AddCommand(newGenerateInvoiceCommand(rootOpts))
	cmd.AddCommand(newGenerateTimesheetCommand(rootOpts))

	return cmd
}

func newGenerateInvoiceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoice [number|YYYY-MM]",
		Short: "Render an invoice as PDF",
		Long: `Render one invoice as a PDF.

The invoice is identified by its number or by its billing month, which
defaults to the current month. The identifier must match exactly one invoice.

Example:
  invoicer generate invoice 4
  invoicer gen invoice 2024-05 -o may.pdf`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args, render.InvoiceFilename, func(w io.Writer, doc model.InvoiceDocument) error {
				return render.WriteInvoicePDF(w, doc, render.PDFOptions{
					Issuer:   opts.issuer(),
					Today:    opts.today(),
					Compress: true,
				})
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output path (default {year}-{month}-tax-invoice-{num}.pdf)")

	return cmd
}

func newGenerateTimesheetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "timesheet [number|YYYY-MM]",
		Short: "Export an invoice's time entries as CSV",
		Long: `Export the time entries billed on one invoice as CSV, ordered by start.

Example:
  invoicer generate timesheet 4
  invoicer gen timesheet -o - 2024-05`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args, render.TimesheetFilename, func(w io.Writer, doc model.InvoiceDocument) error {
				return render.WriteTimesheet(w, aggregate.Timesheet(doc))
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output path, - for stdout (default {year}-{month}-timesheet-{num}.csv)")

	return cmd
}

func (o *GenerateOptions) issuer() render.Issuer {
	inv := o.Config.Invoice
	return render.Issuer{
		Name:             inv.IssuerName,
		Address:          inv.IssuerAddress,
		Currency:         inv.Currency,
		Locale:           inv.Locale,
		PaymentTermsDays: inv.PaymentTermsDays,
	}
}

func runGenerate(
	cmd *cobra.Command,
	opts *GenerateOptions,
	args []string,
	defaultName func(model.Invoice) string,
	write func(io.Writer, model.InvoiceDocument) error,
) error {
	formatter := opts.formatter(cmd)

	ident, err := parse.IdentOrDefault(args, opts.today())
	if err != nil {
		return formatter.FailWith(ErrCodeInvalidArg, ExitFailure, "invalid invoice identifier", err)
	}

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	doc, err := loadInvoice(cmd.Context(), st, ident)
	if err != nil {
		return formatter.Fail("failed to load invoice", err)
	}
	formatter.VerboseLog("invoice %d: %d activities, %.2f hours", doc.Number, len(doc.Activities), doc.TotalDuration())

	if opts.Output == "-" {
		if err := write(cmd.OutOrStdout(), doc); err != nil {
			return formatter.FailWith(ErrCodeWriteFailed, ExitCommandError, "failed to render", err)
		}
		return nil
	}

	path := opts.Output
	if path == "" {
		path = filepath.Join(opts.Config.Output.Dir, defaultName(doc.Invoice))
	}
	if err := writeFile(path, func(w io.Writer) error { return write(w, doc) }); err != nil {
		return formatter.FailWith(ErrCodeWriteFailed, ExitCommandError, "failed to write "+path, err)
	}

	return formatter.Success(GeneratedFile{Path: path, Invoice: doc.Number})
}

// loadInvoice builds the documents matching ident and requires exactly one.
func loadInvoice(ctx context.Context, st *store.Store, ident parse.DocIdent) (model.InvoiceDocument, error) {
	var doc model.InvoiceDocument
	err := st.Read(ctx, func(r *store.Reader) error {
		docs, err := aggregate.BuildInvoiceDocuments(ctx, r, ident.Filter())
		if err != nil {
			return err
		}
		doc, err = aggregate.ExactlyOne("invoice", ident, docs)
		return err
	})
	return doc, err
}

// writeFile renders into path, removing the partial file when rendering fails.
func writeFile(path string, fill func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return fill(f)
}
