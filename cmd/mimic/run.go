package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mimicbot/mimic"
	"github.com/mimicbot/mimic/internal/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a workflow from its YAML step definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetString("config"))
		if err != nil {
			return err
		}
		applyLogging(cfg.Logging)
		return runFlow(cmd.Context(), cfg)
	},
}

func applyLogging(lc LoggingConfig) {
	level := common.ParseLogLevel(lc.Level)
	if strings.EqualFold(strings.TrimSpace(lc.Format), "json") {
		common.SetDefaultLogger(common.NewJSONLogger(level))
		return
	}
	common.SetDefaultLogger(common.NewLogger(level))
}

func runFlow(ctx context.Context, cfg *ConfigDoc) error {
	logger := common.GetLogger().WithComponent("cli")

	for i := range cfg.Auth {
		a := cfg.Auth[i]
		if _, err := a.Acquire(ctx); err != nil {
			return fmt.Errorf("acquire auth %q: %w", a.Name, err)
		}
		logger.Info("credential acquired", "name", a.Name, "type", a.Type)
	}

	docs, err := mimic.LoadStepDocs(cfg.Flow.Dir)
	if err != nil {
		return fmt.Errorf("load steps from %s: %w", cfg.Flow.Dir, err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no step definitions in %s", cfg.Flow.Dir)
	}
	logger.Info("steps loaded", "dir", cfg.Flow.Dir, "count", len(docs))

	worker := mimic.NewWorker()
	mimic.RegisterStepDocs(worker.Steps(), docs, nil)

	runner := &mimic.Runner{
		Worker:            worker,
		SaveResponseBody:  cfg.Store.SaveResponseBody,
		FollowErrorRoutes: cfg.Flow.FollowErrorRoutes,
		MaxSteps:          cfg.Flow.MaxSteps,
	}
	if cfg.Store.Driver != "" || cfg.Store.DSN != "" || cfg.Store.Path != "" {
		st, serr := mimic.OpenStore(cfg.Store.Config)
		if serr != nil {
			return fmt.Errorf("open store: %w", serr)
		}
		defer func() { _ = st.Close() }()
		runner.Store = st
	}

	results, runErr := runner.Run(ctx, cfg.Flow.Start)
	for _, res := range results {
		if res.Err != nil {
			logger.Warn("step failed", "step", res.Step, "elapsed_ms", res.ElapsedMS, "error", res.Err)
			continue
		}
		logger.Info("step finished", "step", res.Step, "elapsed_ms", res.ElapsedMS)
	}

	if cfg.CookiesExport != "" {
		if data, cerr := worker.Context().Requester().ExportCookies(); cerr == nil {
			if werr := os.WriteFile(cfg.CookiesExport, data, 0o600); werr != nil {
				logger.Warn("unable to write cookie export", "path", cfg.CookiesExport, "error", werr)
			}
		} else {
			logger.Warn("unable to export cookies", "error", cerr)
		}
	}
	return runErr
}
