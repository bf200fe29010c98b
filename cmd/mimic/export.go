package main

import (
	"fmt"
	"os"

	"github.com/mimicbot/mimic"
	"github.com/mimicbot/mimic/internal/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exportCookiesCmd runs the configured flow and writes the worker's cookie
// jar to a file, for handing a session to other tooling.
var exportCookiesCmd = &cobra.Command{
	Use:   "export-cookies",
	Short: "Run the workflow and write the resulting cookie jar as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetString("config"))
		if err != nil {
			return err
		}
		applyLogging(cfg.Logging)

		out := viper.GetString("out")
		if out == "" {
			out = cfg.CookiesExport
		}
		if out == "" {
			return fmt.Errorf("export-cookies: --out or cookies_export is required")
		}

		docs, err := mimic.LoadStepDocs(cfg.Flow.Dir)
		if err != nil {
			return fmt.Errorf("load steps from %s: %w", cfg.Flow.Dir, err)
		}
		worker := mimic.NewWorker()
		mimic.RegisterStepDocs(worker.Steps(), docs, nil)

		runner := &mimic.Runner{
			Worker:            worker,
			FollowErrorRoutes: cfg.Flow.FollowErrorRoutes,
			MaxSteps:          cfg.Flow.MaxSteps,
		}
		if _, err := runner.Run(cmd.Context(), cfg.Flow.Start); err != nil {
			return err
		}

		data, err := worker.Context().Requester().ExportCookies()
		if err != nil {
			return fmt.Errorf("export cookies: %w", err)
		}
		if err := os.WriteFile(out, data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		common.GetLogger().WithComponent("cli").Info("cookie jar written", "path", out)
		return nil
	},
}

func init() {
	exportCookiesCmd.Flags().String("out", "", "path to write the cookie jar JSON")
	_ = viper.BindPFlag("out", exportCookiesCmd.Flags().Lookup("out"))
	rootCmd.AddCommand(exportCookiesCmd)
}
