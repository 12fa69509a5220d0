package cmd

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/aman-zulfiqar/credit-program/internal/client"
	"github.com/aman-zulfiqar/credit-program/internal/orca"
)

var (
	swapPool        string
	swapUSDC        uint64
	swapSlippageBps uint16
	swapThreshold   uint64
	swapTickArrays  []string
	swapDryRun      bool
	swapRemoteSim   bool
)

var swapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Swap USDC for BONO through the credit program",
	Long: `Quote the pool, build a Swap instruction signed by the configured wallet
and submit it. The BONO threshold defaults to the quoted output less the
slippage tolerance.

With --dry-run the instruction is executed locally and nothing is sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		params := client.SwapParams{
			PoolName:    swapPool,
			USDCAmount:  swapUSDC,
			SlippageBps: swapSlippageBps,
		}
		if cmd.Flags().Changed("threshold") {
			params.Threshold = &swapThreshold
		}
		if len(swapTickArrays) > 0 {
			if len(swapTickArrays) != 3 {
				return fmt.Errorf("--tick-arrays needs exactly 3 addresses, got %d", len(swapTickArrays))
			}
			var ticks [3]solana.PublicKey
			for i, s := range swapTickArrays {
				if ticks[i], err = solana.PublicKeyFromBase58(strings.TrimSpace(s)); err != nil {
					return fmt.Errorf("tick array %d: %w", i, err)
				}
			}
			params.TickArrays = &ticks
		}

		exec, cleanup, err := d.executor(ctx, swapRemoteSim)
		if err != nil {
			return err
		}
		defer cleanup()

		if swapDryRun {
			prepared, err := exec.PrepareSwap(ctx, params)
			if err != nil {
				return err
			}
			sim, err := d.simulator.Simulate(ctx, prepared.Instruction)
			if err != nil {
				return err
			}
			if err := printJSON(cmd, map[string]any{
				"quote":      prepared.Quote,
				"threshold":  prepared.Threshold,
				"simulation": sim,
			}); err != nil {
				return err
			}
			if !sim.Success {
				return fmt.Errorf("simulation failed: %s", sim.Error)
			}
			return nil
		}

		res, err := exec.ExecuteSwap(ctx, params)
		if res != nil {
			_ = printJSON(cmd, res)
		}
		return err
	},
}

func init() {
	swapCmd.Flags().StringVar(&swapPool, "pool", orca.BonoUSDCPoolName, "pool name")
	swapCmd.Flags().Uint64Var(&swapUSDC, "usdc", 0, "USDC amount in raw units")
	swapCmd.Flags().Uint16Var(&swapSlippageBps, "slippage-bps", client.DefaultSlippageBps, "slippage tolerance in bps (100 = 1%)")
	swapCmd.Flags().Uint64Var(&swapThreshold, "threshold", 0, "minimum BONO out in raw units, overrides the quote")
	swapCmd.Flags().StringSliceVar(&swapTickArrays, "tick-arrays", nil, "three comma separated tick array addresses")
	swapCmd.Flags().BoolVar(&swapDryRun, "dry-run", false, "execute locally, do not send")
	swapCmd.Flags().BoolVar(&swapRemoteSim, "simulate", false, "run simulateTransaction before sending")
	_ = swapCmd.MarkFlagRequired("usdc")
	rootCmd.AddCommand(swapCmd)
}
