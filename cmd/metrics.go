package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"svdstego/converter"
	"svdstego/metrics"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics [original] [other]",
	Short: "Print PSNR, RMSE, SQNR, SSIM and per-channel correlation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		original, err := converter.Load(args[0])
		if err != nil {
			return err
		}
		other, err := converter.Load(args[1])
		if err != nil {
			return err
		}
		report, err := metrics.Compare(original, other)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}
