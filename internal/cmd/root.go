// Package cmd implements the cpm command-line interface.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meikuraledutech/cpm"
	"github.com/meikuraledutech/cpm/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "cpm",
	Short: "Critical path scheduling for activity lists",
	Long: `cpm reads a list of activities, each with a duration in days and the
activities it depends on, and schedules them back to back. It reports the
finish day and every longest (critical) chain of work through the project.

Projects can be analyzed from a YAML or JSON file, watched for changes, or
served over HTTP backed by PostgreSQL.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/cpm/cpm.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cpm")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CPM")
	// CPM_ANALYSIS_MAX_PATHS for analysis.max_paths
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.ReadInConfig()
}

// addAnalysisFlags registers the per-run overrides of the analysis section.
func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().String("mode", "", "schedule mode: topological or insertion")
	cmd.Flags().String("unresolved", "", "unknown predecessor policy: ignore, warn or reject")
	cmd.Flags().Int("max-paths", 0, "maximum number of enumerated paths")
	cmd.Flags().Int("max-depth", 0, "maximum path length")
}

// loadOptions merges the configuration file, environment and flags.
func loadOptions(cmd *cobra.Command) (*config.Config, cpm.Options, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cpm.Options{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Analysis.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("unresolved") {
		cfg.Analysis.Unresolved, _ = flags.GetString("unresolved")
	}
	if flags.Changed("max-paths") {
		cfg.Analysis.MaxPaths, _ = flags.GetInt("max-paths")
	}
	if flags.Changed("max-depth") {
		cfg.Analysis.MaxDepth, _ = flags.GetInt("max-depth")
	}

	opts, err := cfg.Options()
	if err != nil {
		return nil, cpm.Options{}, err
	}
	return cfg, opts, nil
}
