package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ukaji3/btmap-go/pkg/btmap"
)

func newSheetsCmd(f *flags, logger **zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets [corpus]",
		Short: "List every sheet of the corpus with its classification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions(f, *logger)
			if err != nil {
				return err
			}
			reports, err := btmap.Classify(args[0], opts)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WORKBOOK\tSHEET\tDECISION\tEFORMS\tSF\tREASON")
			for _, r := range reports {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.Workbook, r.Sheet, r.Decision, r.Binding.EformsList(), r.Binding.SFNotice, r.Reason)
			}
			return tw.Flush()
		},
	}
}
