package client

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aman-zulfiqar/credit-program/internal/models"
)

const programLogPrefix = "Program log: "

const (
	sqrtPriceLabel  = "Whirlpool account sqrt_price_x64: "
	uiPriceLabel    = "Whirlpool account ui_price: "
	bonoAmountLabel = "BONO amount in u64: "
	usdcValueLabel  = "BONO amount in USDC: "
)

// ParsePriceLogs extracts the price report from ReadBonoPrice transaction
// logs. Lines may carry the runtime's "Program log: " prefix.
func ParsePriceLogs(logs []string) (*models.PriceQuote, error) {
	q := &models.PriceQuote{}
	var found int
	for _, line := range logs {
		line = strings.TrimPrefix(line, programLogPrefix)
		switch {
		case strings.HasPrefix(line, sqrtPriceLabel):
			q.SqrtPriceX64 = strings.TrimPrefix(line, sqrtPriceLabel)
			found |= 1
		case strings.HasPrefix(line, uiPriceLabel):
			q.Price = strings.TrimPrefix(line, uiPriceLabel)
			found |= 2
		case strings.HasPrefix(line, bonoAmountLabel):
			n, err := strconv.ParseUint(strings.TrimPrefix(line, bonoAmountLabel), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bono amount log: %w", err)
			}
			q.BonoAmount = n
			found |= 4
		case strings.HasPrefix(line, usdcValueLabel):
			q.USDCValue = strings.TrimPrefix(line, usdcValueLabel)
			found |= 8
		}
	}
	if found != 15 {
		return nil, fmt.Errorf("price report not found in %d log lines", len(logs))
	}
	return q, nil
}
