package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func rruleCmd(a *app) *cobra.Command {
	var flags ruleFlags

	cmd := &cobra.Command{
		Use:     "rrule",
		Short:   "Print a rule as an RFC 5545 RRULE value",
		Example: `  recur rrule --freq weekly --interval 2 --days mon,wed --count 10 --start 2025-01-06`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, _, err := flags.build(cmd)
			if err != nil {
				return err
			}
			text, err := rule.RRULE()
			if err != nil {
				return err
			}
			a.logger.Debug("converted rule", "frequency", rule.Frequency, "rrule", text)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	flags.register(cmd)

	return cmd
}
