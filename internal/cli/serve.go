package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/roach88/invoicer/internal/api"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve invoices and activities over a read-only HTTP API",
		Long: `Serve invoice documents and activity rollups as JSON.

Routes:
  GET /api/invoices?num=N|month=YYYY-MM
  GET /api/invoices/:num
  GET /api/invoices/:num/timesheet.csv
  GET /api/activities?invoice=N|month=YYYY-MM`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	formatter := opts.formatter(cmd)

	addr := opts.Addr
	if addr == "" {
		addr = opts.Config.Server.Addr
	}

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	server := api.New(st, opts.Config.Server.CORSOrigins)
	if err := server.Run(ctx, addr); err != nil {
		return formatter.FailWith(ErrCodeGeneric, ExitCommandError, "server failed", err)
	}
	return nil
}
