package coin

import (
	"strings"

	"github.com/yangrq1018/safemoney-bot/quote"
)

type ActionKind int

const (
	Unknown ActionKind = iota
	ShowPrices
	ShowConversionMenu
	ConvertToFiat   // Code → TRY
	ConvertFromFiat // TRY → Code
	ShowMainMenu
)

const (
	dataPrices         = "prices"
	dataConversionMenu = "convert_menu"
	dataMainMenu       = "main_menu"
	prefixToFiat       = "convert_to_try_"
	prefixFromFiat     = "convert_from_try_"
)

// Action is what a button press asks for, Code is set for the two conversion prompts
type Action struct {
	Kind ActionKind
	Code quote.Code
}

// ParseCallbackData decodes the data of an inline button. Anything unrecognized is Unknown.
func ParseCallbackData(data string) Action {
	switch {
	case data == dataPrices:
		return Action{Kind: ShowPrices}
	case data == dataConversionMenu:
		return Action{Kind: ShowConversionMenu}
	case data == dataMainMenu:
		return Action{Kind: ShowMainMenu}
	case strings.HasPrefix(data, prefixToFiat) && len(data) > len(prefixToFiat):
		return Action{Kind: ConvertToFiat, Code: quote.Code(strings.TrimPrefix(data, prefixToFiat))}
	case strings.HasPrefix(data, prefixFromFiat) && len(data) > len(prefixFromFiat):
		return Action{Kind: ConvertFromFiat, Code: quote.Code(strings.TrimPrefix(data, prefixFromFiat))}
	}
	return Action{Kind: Unknown}
}

// Data is the callback data ParseCallbackData maps back to a, empty for Unknown
func (a Action) Data() string {
	switch a.Kind {
	case ShowPrices:
		return dataPrices
	case ShowConversionMenu:
		return dataConversionMenu
	case ShowMainMenu:
		return dataMainMenu
	case ConvertToFiat:
		return prefixToFiat + a.Code.String()
	case ConvertFromFiat:
		return prefixFromFiat + a.Code.String()
	}
	return ""
}
