package cmd

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/aman-zulfiqar/credit-program/internal/instruction"
)

var decodeEncoding string

var decodeCmd = &cobra.Command{
	Use:   "decode [data]",
	Short: "Decode credit program instruction data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := decodeData(args[0], decodeEncoding)
		if err != nil {
			return err
		}
		ix, err := instruction.Unpack(raw)
		if err != nil {
			return err
		}

		out := map[string]any{"tag": uint8(ix.Tag()), "instruction": ix.Tag().String()}
		switch v := ix.(type) {
		case instruction.Swap:
			out["usdc_amount"] = v.USDCAmount
			out["bono_amount_threshold"] = v.BonoAmountThreshold
		case instruction.ReadBonoPrice:
			out["bono_amount"] = v.BonoAmount
		}
		return printJSON(cmd, out)
	},
}

func decodeData(s, encoding string) ([]byte, error) {
	s = strings.TrimSpace(s)
	switch encoding {
	case "hex":
		return hex.DecodeString(strings.TrimPrefix(s, "0x"))
	case "base64":
		return base64.StdEncoding.DecodeString(s)
	case "base58":
		return base58.Decode(s)
	default:
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}
}

func init() {
	decodeCmd.Flags().StringVar(&decodeEncoding, "encoding", "hex", "hex, base64 or base58")
	rootCmd.AddCommand(decodeCmd)
}
