package main

import (
	"time"

	"github.com/yangrq1018/safemoney-bot/quote"
	"github.com/yangrq1018/safemoney-bot/telegram"
	"github.com/yangrq1018/safemoney-bot/telegram/coin"
)

// commands are the modules the bot serves
func commands(source quote.PriceSource, converter quote.Converter, coins []quote.Code, loc *time.Location) []telegram.Command {
	return []telegram.Command{
		coin.NewCoin(source, converter,
			coin.WithCoins(coins),
			coin.WithLocation(loc),
		),
	}
}
