package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"svdstego"
	"svdstego/converter"
)

var outDir string

// run: 编码 -> 保存 -> 指标 -> 从保存的隐写图像解码，一次完成
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Encode, report quality metrics and decode in one pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newStego()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}

		carrier, err := converter.Load(carrierPath)
		if err != nil {
			return err
		}
		payload, err := loadPayload(carrier)
		if err != nil {
			return err
		}

		stego, sess, err := s.Encode(carrier, payload)
		if err != nil {
			return err
		}
		stegoFile := filepath.Join(outDir, "steganographic_image.png")
		if err := converter.Save(stegoFile, stego); err != nil {
			return err
		}
		if err := svdstego.SaveSession(filepath.Join(outDir, "session.sess"), sess); err != nil {
			return err
		}
		log.Info().Str("path", stegoFile).Msg("steganographic image saved")

		report, err := s.Compare(carrier, stego)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report.String())

		// 从磁盘重新读取，和分开运行 encode/decode 的结果一致
		saved, err := converter.Load(stegoFile)
		if err != nil {
			return err
		}
		recovered, err := s.Decode(saved, sess)
		if err != nil {
			return err
		}
		recoveredFile := filepath.Join(outDir, "decoded_hidden_image.png")
		if err := converter.Save(recoveredFile, recovered); err != nil {
			return err
		}

		if payload.SameShape(recovered) {
			hidden, err := s.Compare(payload, recovered)
			if err != nil {
				return err
			}
			log.Info().EmbedObject(hidden).Msg("payload vs recovered")
		}
		log.Info().Str("path", recoveredFile).Msg("decoded hidden image saved")
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&carrierPath, "carrier", "", "carrier (cover) image")
	runCmd.Flags().StringVar(&payloadPath, "payload", "", "payload image to hide")
	runCmd.Flags().StringVar(&payloadQR, "payload-qr", "", "hide a QR code of this text instead of a payload image")
	runCmd.Flags().StringVar(&outDir, "out-dir", "dist", "output directory")
	runCmd.Flags().BoolVar(&resizePayload, "resize", false, "resize the payload to the carrier size when they differ")
	_ = runCmd.MarkFlagRequired("carrier")
	addStegoFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
