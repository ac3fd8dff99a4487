package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/cpm"
	"github.com/meikuraledutech/cpm/internal/projectfile"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Schedule a project file and print its critical paths",
	Long: `Analyze reads a YAML or JSON project file and prints every activity with
its start and end day, followed by the critical and other paths.

A project file lists activities with their predecessors and duration:

  name: launch
  activities:
    - {activity: A, predecessor: none, et: 5}
    - {activity: B, predecessor: A, et: 3}`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var analyzeFormat string

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "text", "output format: text or json")
	addAnalysisFlags(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeFormat != "text" && analyzeFormat != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", analyzeFormat)
	}
	_, opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	name, r, err := analyzeFile(args[0], opts)
	if err != nil {
		return err
	}
	if analyzeFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), name, r)
	}
	renderText(cmd.OutOrStdout(), name, r)
	return nil
}

// analyzeFile loads path and computes its result.
func analyzeFile(path string, opts cpm.Options) (string, *cpm.Result, error) {
	f, err := projectfile.Load(path)
	if err != nil {
		return "", nil, err
	}
	r, err := cpm.Evaluate(f.Activities, opts)
	if err != nil {
		return f.Name, nil, err
	}
	return f.Name, r, nil
}

func writeJSON(w io.Writer, name string, r *cpm.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Name string `json:"name"`
		*cpm.Result
	}{name, r})
}
