package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aman-zulfiqar/credit-program/internal/orca"
)

var poolsLive bool

var authorityCmd = &cobra.Command{
	Use:   "authority",
	Short: "Print the program's signing PDA",
	Long:  `Derive the signing authority from the configured program id. The authority owns the BONO account that receives swapped tokens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		a := d.builder.Authority()
		return printJSON(cmd, map[string]any{
			"program_id": d.builder.ProgramID().String(),
			"authority":  a.Address.String(),
			"bump":       a.Bump,
		})
	},
}

var poolsCmd = &cobra.Command{
	Use:   "pools",
	Short: "List registered pools",
	Long:  `List the pool registry. With --live each whirlpool account is fetched and its spot price and liquidity are added. A pool that cannot be read keeps its row with an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		type row struct {
			Name       string   `json:"name"`
			Address    string   `json:"address"`
			TokenMintA string   `json:"token_mint_a"`
			TokenMintB string   `json:"token_mint_b"`
			TickArrays []string `json:"tick_arrays,omitempty"`

			Price            string `json:"price,omitempty"`
			SqrtPrice        string `json:"sqrt_price,omitempty"`
			Liquidity        string `json:"liquidity,omitempty"`
			TickCurrentIndex *int32 `json:"tick_current_index,omitempty"`
			Error            string `json:"error,omitempty"`
		}
		var rows []row
		for _, p := range d.pools.GetAllPools() {
			r := row{
				Name:       p.Name,
				Address:    p.Address.String(),
				TokenMintA: p.TokenMintA.String(),
				TokenMintB: p.TokenMintB.String(),
			}
			if p.TickArrays != nil {
				for _, t := range p.TickArrays {
					r.TickArrays = append(r.TickArrays, t.String())
				}
			}
			if poolsLive {
				state, err := orca.RefreshPoolState(cmd.Context(), d.orca, &p)
				if err != nil {
					logger.WithError(err).WithField("pool", p.Name).Warn("pool refresh failed")
					r.Error = err.Error()
				} else {
					tick := state.Whirlpool.TickCurrentIndex
					r.Price = orca.Display(state.Price())
					r.SqrtPrice = state.Whirlpool.SqrtPrice.String()
					r.Liquidity = state.Whirlpool.Liquidity.String()
					r.TickCurrentIndex = &tick
				}
			}
			rows = append(rows, r)
		}
		return printJSON(cmd, rows)
	},
}

func init() {
	rootCmd.AddCommand(authorityCmd)
	rootCmd.AddCommand(poolsCmd)

	poolsCmd.Flags().BoolVar(&poolsLive, "live", false, "fetch each whirlpool and report its spot price")
}
