package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/genesisproject/genesis/pkg/cliconfig"
	"github.com/genesisproject/genesis/pkg/di"
	"github.com/genesisproject/genesis/pkg/notify"
	"github.com/genesisproject/genesis/pkg/plan"
)

func newSecretsCmd(runtime *di.Runtime, settingsViper *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage an environment's secrets against the credentials store.",
	}

	cmd.AddCommand(newSecretsActionCmd(runtime, settingsViper, plan.ActionAdd, "add", "Create any missing secrets."))
	cmd.AddCommand(newSecretsActionCmd(runtime, settingsViper, plan.ActionRecreate, "recreate", "Recreate every secret, respecting fixed plans."))
	cmd.AddCommand(newSecretsActionCmd(runtime, settingsViper, plan.ActionRenew, "renew", "Renew every renewable secret (x509 certificates)."))
	cmd.AddCommand(newSecretsActionCmd(runtime, settingsViper, plan.ActionRemove, "remove", "Remove every secret."))
	cmd.AddCommand(newSecretsValidateCmd(runtime, settingsViper))

	return cmd
}

func newSecretsActionCmd(runtime *di.Runtime, settingsViper *viper.Viper, action plan.Action, use, short string) *cobra.Command {
	var filterRaw string

	cmd := &cobra.Command{
		Use:   use + " <environment>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: di.RunEWithRuntime(runtime, func(cmd *cobra.Command, _ di.Injector) error {
			settings, err := cliconfig.Load(settingsViper)
			if err != nil {
				return err
			}

			environment := cmd.Flags().Args()[0]

			ctx := cmd.Context()

			envCtx, err := loadEnvironment(ctx, settings.Workdir, environment, settings)
			if err != nil {
				return err
			}

			plans := envCtx.Plans

			if filterRaw != "" {
				filter, err := plan.ParseFilter(filterRaw)
				if err != nil {
					return fmt.Errorf("parse filter: %w", err)
				}

				plans = filterPlans(plans, filter)
			}

			executor := plan.NewExecutor(storeRunner{client: envCtx.Client})

			out := cmd.OutOrStdout()

			return executor.Run(ctx, plans, action, func(e plan.Event) {
				reportExecutorEvent(out, e)
			})
		}),
	}

	cmd.Flags().StringVar(&filterRaw, "filter", "", "restrict the batch to paths matching /pattern/[i], optionally negated with a leading !")

	return cmd
}

func newSecretsValidateCmd(runtime *di.Runtime, settingsViper *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <environment>",
		Short: "Validate stored secrets against their plans without mutating anything.",
		Args:  cobra.ExactArgs(1),
		RunE: di.RunEWithRuntime(runtime, func(cmd *cobra.Command, _ di.Injector) error {
			settings, err := cliconfig.Load(settingsViper)
			if err != nil {
				return err
			}

			environment := cmd.Flags().Args()[0]

			envCtx, err := loadEnvironment(cmd.Context(), settings.Workdir, environment, settings)
			if err != nil {
				return err
			}

			results, err := (storeChecker{envCtx: envCtx}).Check(cmd.Context())
			if err != nil {
				return fmt.Errorf("validate secrets: %w", err)
			}

			return reportValidation(cmd.OutOrStdout(), results)
		}),
	}

	return cmd
}

func filterPlans(plans []plan.Plan, filter *plan.Filter) []plan.Plan {
	out := make([]plan.Plan, 0, len(plans))

	for _, p := range plans {
		if filter.Match(p.Path) {
			out = append(out, p)
		}
	}

	return out
}

func reportExecutorEvent(out io.Writer, e plan.Event) {
	switch e.Kind {
	case plan.EventEmpty:
		notify.Infof(out, "no plans to execute")
	case plan.EventInit:
		notify.Titlef(out, "", "executing %d plan(s)", e.Total)
	case plan.EventStartItem:
		notify.Activityf(out, "[%d/%d] %s", e.Index+1, e.Total, e.Plan)
	case plan.EventDoneItem:
		reportOutcome(out, e)
	case plan.EventAbort:
		notify.Errorf(out, "[%d/%d] %s: aborted: %s", e.Index+1, e.Total, e.Plan, e.Outcome.Detail)
	case plan.EventCompleted:
		notify.Successf(out, "completed %d plan(s)", e.Total)
	}
}

func reportOutcome(out io.Writer, e plan.Event) {
	switch e.Outcome.Result {
	case plan.ResultOK:
		notify.Successf(out, "[%d/%d] %s: ok", e.Index+1, e.Total, e.Plan)
	case plan.ResultSkipped:
		reason := "already present"
		if e.Outcome.Detail != "" {
			reason = e.Outcome.Detail
		}

		notify.Infof(out, "[%d/%d] %s: skipped (%s)", e.Index+1, e.Total, e.Plan, reason)
	case plan.ResultError:
		notify.Errorf(out, "[%d/%d] %s: %s", e.Index+1, e.Total, e.Plan, e.Outcome.Detail)
	}
}

func reportValidation(out io.Writer, results []plan.ValidationResult) error {
	var failed int

	for _, r := range results {
		switch r.Status {
		case plan.StatusOK:
			notify.Successf(out, "%s: %s", r.Plan, r.Message)
		case plan.StatusSkipped:
			notify.Infof(out, "%s: skipped", r.Plan)
		case plan.StatusWarn:
			notify.Warningf(out, "%s: %s", r.Plan, r.Message)
		case plan.StatusMissing, plan.StatusError:
			notify.Errorf(out, "%s: %s", r.Plan, r.Message)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d plan(s) failed validation", failed, len(results))
	}

	return nil
}
