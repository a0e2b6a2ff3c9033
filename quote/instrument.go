package quote

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

type instrumentedSource struct {
	PriceSource
	requests *prometheus.CounterVec
}

// InstrumentSource counts Quotes calls on requests, labelled op="quotes" and result ok/error
func InstrumentSource(src PriceSource, requests *prometheus.CounterVec) PriceSource {
	if requests == nil {
		return src
	}
	return &instrumentedSource{PriceSource: src, requests: requests}
}

func (s *instrumentedSource) Quotes(ctx context.Context, codes []Code) (Quotes, error) {
	q, err := s.PriceSource.Quotes(ctx, codes)
	s.requests.WithLabelValues("quotes", resultLabel(err)).Inc()
	return q, err
}

type instrumentedConverter struct {
	Converter
	requests *prometheus.CounterVec
}

// InstrumentConverter counts conversions on requests, labelled by direction and result
func InstrumentConverter(c Converter, requests *prometheus.CounterVec) Converter {
	if requests == nil {
		return c
	}
	return &instrumentedConverter{Converter: c, requests: requests}
}

func (c *instrumentedConverter) FiatToCrypto(ctx context.Context, amount float64, code Code) (float64, error) {
	v, err := c.Converter.FiatToCrypto(ctx, amount, code)
	c.requests.WithLabelValues("fiat_to_crypto", resultLabel(err)).Inc()
	return v, err
}

func (c *instrumentedConverter) CryptoToFiat(ctx context.Context, amount float64, code Code) (float64, error) {
	v, err := c.Converter.CryptoToFiat(ctx, amount, code)
	c.requests.WithLabelValues("crypto_to_fiat", resultLabel(err)).Inc()
	return v, err
}
