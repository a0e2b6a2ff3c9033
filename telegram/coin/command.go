package coin

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yangrq1018/safemoney-bot/quote"
	"github.com/yangrq1018/safemoney-bot/util"
)

const (
	commandStart   = "/start"
	commandMenu    = "/menu"
	commandConvert = "/convert"
)

var (
	ErrUsage         = errors.New("usage: /convert <amount> <from> <to>")
	ErrInvalidAmount = errors.New("amount is not a finite number")
)

type ConversionRequest struct {
	Amount float64
	From   quote.Code
	To     quote.Code
}

// ParseConvert parses "<command> <amount> <from> <to>", tokens split on any whitespace.
// The caller has matched the /convert prefix, the first token is not inspected.
// Codes are upper-cased, membership is checked by the caller.
func ParseConvert(text string) (ConversionRequest, error) {
	args := strings.Fields(text)
	if len(args) != 4 {
		return ConversionRequest{}, ErrUsage
	}
	d, err := decimal.NewFromString(args[1])
	if err != nil {
		return ConversionRequest{}, ErrInvalidAmount
	}
	amount, _ := d.Float64()
	if !util.IsFinite(amount) {
		return ConversionRequest{}, ErrInvalidAmount
	}
	return ConversionRequest{
		Amount: amount,
		From:   quote.Code(strings.ToUpper(args[2])),
		To:     quote.Code(strings.ToUpper(args[3])),
	}, nil
}
