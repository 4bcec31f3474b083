package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"poms/internal/adapters/exchange"
	"poms/internal/blob"
	"poms/internal/core"
	"poms/pkg/domain"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "poms",
		Short:         "Pediatric oncology management store",
		SilenceUsage:  true,
	}
	root.PersistentFlags().String("config", "", "config file (yaml, json or toml)")
	root.AddCommand(serveCmd(), initCmd(), statsCmd(), exportCmd(), importCmd(), resetCmd(), clearCmd(), adminFeeCmd())
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// warnOnly reports a persistence failure and lets the command succeed; the
// change stands in memory for the rest of the process.
func warnOnly(a *app, err error) error {
	if err != nil && domain.IsPersistence(err) {
		a.logger.Warn().Err(err).Msg("change not saved")
		return nil
	}
	return err
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Open the store, loading sample data when it is empty",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			svc, closeFn, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			st := svc.Stats(cmd.Context())
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d patients, %d doctors, %d rooms, %d bills\n",
				st.TotalPatients, st.TotalDoctors, st.TotalRooms, st.Bills)
			return err
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard statistics as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			svc, closeFn, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return writeJSON(cmd.OutOrStdout(), svc.Stats(cmd.Context()))
		},
	}
}

func exportCmd() *cobra.Command {
	var (
		out    string
		toBlob bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all data as a JSON document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, closeFn, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()
			if toBlob {
				store, err := blob.Open(ctx, a.cfg.BlobSettings())
				if err != nil {
					return err
				}
				info, err := exchange.New(svc, store, a.logger).Export(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), info.Key)
				return err
			}
			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return exchange.Encode(w, svc.Export(ctx))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&toBlob, "blob", false, "store the export in the configured blob store")
	return cmd
}

func importCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace all data with an export document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" && len(args) == 0 {
				return fmt.Errorf("a file or --key is required")
			}
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, closeFn, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()
			if key != "" {
				store, err := blob.Open(ctx, a.cfg.BlobSettings())
				if err != nil {
					return err
				}
				_, err = exchange.New(svc, store, a.logger).ImportKey(ctx, key)
				return warnOnly(a, err)
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			snapshot, err := exchange.Decode(f)
			if err != nil {
				return err
			}
			_, err = svc.Import(ctx, snapshot)
			return warnOnly(a, err)
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "import a stored export by blob key")
	return cmd
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace all data with the sample dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			svc, closeFn, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			_, err = svc.ResetToSeed(cmd.Context())
			return warnOnly(a, err)
		},
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			svc, closeFn, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			_, err = svc.ClearAll(cmd.Context())
			return warnOnly(a, err)
		},
	}
}

func adminFeeCmd() *cobra.Command {
	var (
		patient     int
		amount      float64
		description string
	)
	cmd := &cobra.Command{
		Use:   "admin-fee",
		Short: "Charge an administrative fee to a patient",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			svc, closeFn, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			bill, _, err := svc.ChargeAdminFee(cmd.Context(), patient, amount, description)
			if err := warnOnly(a, err); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), bill)
		},
	}
	cmd.Flags().IntVar(&patient, "patient", 0, "patient id")
	cmd.Flags().Float64Var(&amount, "amount", core.DefaultAdminFee, "fee amount (at least 100)")
	cmd.Flags().StringVar(&description, "description", "", "bill description")
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}
