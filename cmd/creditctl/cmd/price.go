package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aman-zulfiqar/credit-program/internal/client"
	"github.com/aman-zulfiqar/credit-program/internal/orca"
)

var (
	pricePool   string
	priceAmount uint64
	priceSend   bool
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Read the USDC value of a BONO amount",
	Long: `Run ReadBonoPrice against a whirlpool.

By default the instruction is executed locally against live account data.
With --send it is submitted by the configured wallet and the report is read
back from the transaction logs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if priceSend {
			exec, cleanup, err := d.executor(ctx, false)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := exec.ReadBonoPrice(ctx, pricePool, priceAmount)
			if err != nil {
				if res != nil {
					for _, l := range res.Logs {
						fmt.Fprintln(cmd.ErrOrStderr(), l)
					}
				}
				return err
			}
			return printJSON(cmd, res)
		}

		pool, err := d.pools.FindPoolByName(pricePool)
		if err != nil {
			return err
		}
		ix, err := d.builder.ReadBonoPrice(pool.Address, priceAmount)
		if err != nil {
			return err
		}
		sim, err := d.simulator.Simulate(ctx, ix)
		if err != nil {
			return err
		}
		if !sim.Success {
			_ = printJSON(cmd, sim)
			return fmt.Errorf("read price failed: %s", sim.Error)
		}
		return printJSON(cmd, map[string]any{
			"quote": client.LocalQuote(pool, sim.Report),
			"logs":  sim.Logs,
		})
	},
}

func init() {
	priceCmd.Flags().StringVar(&pricePool, "pool", orca.BonoUSDCPoolName, "pool name")
	priceCmd.Flags().Uint64Var(&priceAmount, "amount", 1_000_000_000, "BONO amount in raw units")
	priceCmd.Flags().BoolVar(&priceSend, "send", false, "submit the instruction instead of running it locally")
	rootCmd.AddCommand(priceCmd)
}
