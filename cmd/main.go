package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"svdstego"
)

var (
	logLevel string
	jsonLogs bool

	waveletName   string
	scale         float64
	resizePayload bool
)

var rootCmd = &cobra.Command{
	Use:   "svdstego",
	Short: "Hide an image inside another image using DWT + SVD",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
	SilenceUsage: true,
}

func setupLogging() error {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	if !jsonLogs {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return nil
}

// addStegoFlags 编码/解码共用的算法参数
func addStegoFlags(cmd *cobra.Command) {
	def := svdstego.DefaultOptions()
	cmd.Flags().StringVar(&waveletName, "wavelet", def.Wavelet, "wavelet name (haar, db1..db30)")
	cmd.Flags().Float64Var(&scale, "scale", def.Scale, "embedding scale")
}

func newStego() (*svdstego.Stego, error) {
	return svdstego.New(svdstego.Options{
		Wavelet:       waveletName,
		Scale:         scale,
		ResizePayload: resizePayload,
	})
}

func main() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit JSON logs instead of console output")

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
