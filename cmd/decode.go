package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"svdstego"
	"svdstego/converter"
)

var (
	stegoPath    string
	recoveredOut string
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Recover the payload from a stego image and its session file",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := svdstego.LoadSession(sessionPath)
		if err != nil {
			return err
		}
		// 算法参数以会话为准，除非用户显式指定
		if !cmd.Flags().Changed("wavelet") {
			waveletName = sess.Wavelet()
		}
		if !cmd.Flags().Changed("scale") {
			scale = sess.Scale()
		}
		s, err := newStego()
		if err != nil {
			return err
		}

		stego, err := converter.Load(stegoPath)
		if err != nil {
			return err
		}
		recovered, err := s.Decode(stego, sess)
		if err != nil {
			return err
		}
		if err := converter.Save(recoveredOut, recovered); err != nil {
			return err
		}
		log.Info().Str("out", recoveredOut).Msg("payload recovered")
		return nil
	},
}

func init() {
	decodeCmd.Flags().StringVar(&stegoPath, "stego", "stego.png", "stego image")
	decodeCmd.Flags().StringVar(&sessionPath, "session", "stego.sess", "session file written by encode")
	decodeCmd.Flags().StringVarP(&recoveredOut, "out", "o", "recovered.png", "recovered payload output")
	addStegoFlags(decodeCmd)
	rootCmd.AddCommand(decodeCmd)
}
