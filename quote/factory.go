package quote

import (
	"fmt"

	"github.com/yangrq1018/safemoney-bot/config"
)

func NewProviderFromConfig(c *config.Config) (PriceSource, error) {
	pc := c.Quote.Provider
	switch pc.Type {
	case "coingecko":
		for _, code := range Codes(c.Coins) {
			if _, ok := coinGeckoIDs[code]; !ok {
				return nil, fmt.Errorf("coingecko: unsupported coin %q", code)
			}
		}
		return NewCoinGecko(
			pc.BaseURL,
			pc.APIKey,
			pc.UserAgent,
			Code(c.Fiat()),
			pc.Timeout,
		), nil
	case "":
		return nil, fmt.Errorf("quote.provider.type is required")
	default:
		return nil, fmt.Errorf("unknown quote provider: %s", pc.Type)
	}
}
