package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfroyo/refdata/pkg/config"
	"github.com/openfroyo/refdata/pkg/policy"
	"github.com/openfroyo/refdata/pkg/refdata"
)

// validateReport is the JSON form of a validate run.
type validateReport struct {
	Revision   string               `json:"revision"`
	Source     string               `json:"source"`
	Counts     map[refdata.Kind]int `json:"counts"`
	Allowed    bool                 `json:"allowed"`
	FailOn     policy.Severity      `json:"fail_on,omitempty"`
	Violations []policy.Violation   `json:"violations"`
	Errors     []string             `json:"errors,omitempty"`
}

func newValidateCommand() *cobra.Command {
	var (
		failOn     string
		noPolicies bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate seed files and run snapshot policies",
		Long: `Validate loads every configured seed, checks it against the seed schema
and evaluates the snapshot policies. Nothing is published.

The command exits non-zero when a violation reaches the fail-on severity.`,
		Example: `  # Validate the seeds named in the config file
  refdata validate -c refdata.yaml

  # Validate a seed directory, failing on warnings too
  refdata validate --seed ./seed --fail-on warning`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, func(cfg *config.Config) {
				if failOn != "" {
					cfg.Policy.FailOn = failOn
				}
				if noPolicies {
					cfg.Policy.Enabled = false
				}
			})
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.loader.Load(ctx)
			if err != nil {
				return err
			}

			report := validateReport{
				Revision:   res.Snapshot.Revision(),
				Source:     res.Snapshot.Source(),
				Counts:     res.Snapshot.Counts(),
				Allowed:    res.Allowed(),
				Violations: []policy.Violation{},
			}
			if res.Policy != nil {
				report.FailOn = res.Policy.FailOn
				report.Violations = append(report.Violations, res.Policy.Violations...)
				report.Errors = res.Policy.Errors
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if err := printJSON(out, report); err != nil {
					return err
				}
			} else {
				if len(report.Violations) > 0 {
					table := newTable(out, []string{"Policy", "Severity", "Resource", "Message"})
					for _, v := range report.Violations {
						table.Append([]string{v.Policy, string(v.Severity), v.Resource, v.Message})
					}
					table.Render()
				}
				for _, msg := range report.Errors {
					fmt.Fprintf(out, "policy error: %s\n", msg)
				}
				fmt.Fprintf(out, "%d records from %s, %d violation(s)\n",
					totalCount(report.Counts), report.Source, len(report.Violations))
			}

			if !report.Allowed {
				return fmt.Errorf("validation failed: %d blocking violation(s)", len(res.Policy.Blocking()))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&failOn, "fail-on", "", "lowest severity that fails validation (info, warning, error, critical)")
	cmd.Flags().BoolVar(&noPolicies, "no-policies", false, "skip policy evaluation")

	return cmd
}

func totalCount(counts map[refdata.Kind]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
