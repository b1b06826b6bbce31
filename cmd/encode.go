package main

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"svdstego"
	"svdstego/converter"
)

var (
	carrierPath string
	payloadPath string
	payloadQR   string
	stegoOut    string
	sessionPath string
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Embed a payload image into a carrier image",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newStego()
		if err != nil {
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
		if err := converter.Save(stegoOut, stego); err != nil {
			return err
		}
		if err := svdstego.SaveSession(sessionPath, sess); err != nil {
			return err
		}
		log.Info().Str("stego", stegoOut).Str("session", sessionPath).Msg("stego image saved")

		report, err := s.Compare(carrier, stego)
		if err != nil {
			return err
		}
		log.Info().EmbedObject(report).Msg("carrier vs stego")
		return nil
	},
}

// loadPayload 从文件读取载荷，或者用 --payload-qr 生成与载体同尺寸的二维码
func loadPayload(carrier *converter.Image) (*converter.Image, error) {
	switch {
	case payloadQR != "" && payloadPath != "":
		return nil, errors.New("use either --payload or --payload-qr, not both")
	case payloadQR != "":
		return converter.QRPayload(payloadQR, carrier.Height, carrier.Width)
	case payloadPath != "":
		return converter.Load(payloadPath)
	default:
		return nil, errors.New("one of --payload or --payload-qr is required")
	}
}

func init() {
	encodeCmd.Flags().StringVar(&carrierPath, "carrier", "", "carrier (cover) image")
	encodeCmd.Flags().StringVar(&payloadPath, "payload", "", "payload image to hide")
	encodeCmd.Flags().StringVar(&payloadQR, "payload-qr", "", "hide a QR code of this text instead of a payload image")
	encodeCmd.Flags().StringVarP(&stegoOut, "out", "o", "stego.png", "stego image output (.png, .bmp, .tiff)")
	encodeCmd.Flags().StringVar(&sessionPath, "session", "stego.sess", "session file needed for decoding")
	encodeCmd.Flags().BoolVar(&resizePayload, "resize", false, "resize the payload to the carrier size when they differ")
	_ = encodeCmd.MarkFlagRequired("carrier")
	addStegoFlags(encodeCmd)
	rootCmd.AddCommand(encodeCmd)
}
