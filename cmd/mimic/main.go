package main

import (
	"os"

	"github.com/mimicbot/mimic/internal/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "mimic",
	Short: "Run step-based HTTP workflows defined in YAML files",
}

func init() {
	v := viper.GetViper()
	v.SetDefault("config", "./config/config.yaml")

	// Environment variable support: MIMIC_CONFIG, ...
	v.SetEnvPrefix("MIMIC")
	v.AutomaticEnv()

	rootCmd.PersistentFlags().String("config", v.GetString("config"), "path to the workflow config yaml")
	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		common.GetLogger().Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
