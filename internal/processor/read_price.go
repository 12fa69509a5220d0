package processor

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"

	"github.com/aman-zulfiqar/credit-program/internal/host"
	"github.com/aman-zulfiqar/credit-program/internal/instruction"
	"github.com/aman-zulfiqar/credit-program/internal/orca"
	"github.com/aman-zulfiqar/credit-program/internal/schema"
)

// PriceReport is what ReadBonoPrice logs.
type PriceReport struct {
	SqrtPriceX64 uint128.Uint128
	Price        decimal.Decimal
	BonoAmount   uint64
	USDCValue    decimal.Decimal
}

// PriceLine and ValueLine render the report the way the program logs it.
func (r *PriceReport) PriceLine() string { return orca.Display(r.Price) }
func (r *PriceReport) ValueLine() string { return orca.Display(r.USDCValue) }

func (r *PriceReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SqrtPriceX64 string `json:"sqrt_price_x64"`
		Price        string `json:"price"`
		BonoAmount   uint64 `json:"bono_amount"`
		USDCValue    string `json:"usdc_value"`
	}{r.SqrtPriceX64.String(), r.PriceLine(), r.BonoAmount, r.ValueLine()})
}

// ComputePriceReport prices bonoAmount against a decoded BONO/USDC pool.
func ComputePriceReport(w *orca.Whirlpool, bonoAmount uint64) *PriceReport {
	price := orca.PriceFromSqrt(w.SqrtPrice, orca.BonoDecimals, orca.USDCDecimals)
	return &PriceReport{
		SqrtPriceX64: w.SqrtPrice,
		Price:        price,
		BonoAmount:   bonoAmount,
		USDCValue:    orca.ValueOf(price, bonoAmount, orca.BonoDecimals),
	}
}

// readBonoPrice reports the USDC value of a BONO amount at the pool price.
// It issues no invocations.
func (p *Processor) readBonoPrice(accounts []*host.AccountInfo, args instruction.ReadBonoPrice) (*PriceReport, error) {
	acc, err := schema.ParseReadPriceAccounts(accounts)
	if err != nil {
		return nil, err
	}

	w, err := orca.ParseWhirlpool(acc.Whirlpool.Data)
	if err != nil {
		return nil, err
	}

	report := ComputePriceReport(w, args.BonoAmount)
	host.Logf(p.logger, "Whirlpool account sqrt_price_x64: %s", report.SqrtPriceX64)
	host.Logf(p.logger, "Whirlpool account ui_price: %s", report.PriceLine())
	host.Logf(p.logger, "BONO amount in u64: %d", report.BonoAmount)
	host.Logf(p.logger, "BONO amount in USDC: %s", report.ValueLine())
	return report, nil
}
