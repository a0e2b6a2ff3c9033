package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Prices come from GET /simple/price?ids=<coin ids>&vs_currencies=<fiat>

const defaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// coinGeckoIDs maps tickers to CoinGecko coin ids
var coinGeckoIDs = map[Code]string{
	BTC:  "bitcoin",
	USDT: "tether",
	TRX:  "tron",
	XMR:  "monero",
	DOGE: "dogecoin",
}

type CoinGecko struct {
	baseURL   string
	apiKey    string // optional
	userAgent string
	fiat      Code
	client    *http.Client
}

type cgResp map[string]map[string]float64

func NewCoinGecko(baseURL, apiKey, userAgent string, fiat Code, timeout time.Duration) *CoinGecko {
	if baseURL == "" {
		baseURL = defaultCoinGeckoURL
	}
	if fiat == "" {
		fiat = TRY
	}
	// one host, a handful of idle connections is plenty
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: timeout}).DialContext,
		MaxIdleConnsPerHost: 4,
		TLSHandshakeTimeout: timeout,
	}
	return &CoinGecko{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    strings.TrimSpace(apiKey),
		userAgent: userAgent,
		fiat:      fiat,
		client: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
	}
}

func (c *CoinGecko) Name() string { return "coingecko" }

func (c *CoinGecko) Quotes(ctx context.Context, codes []Code) (Quotes, error) {
	ids := make([]string, 0, len(codes))
	byID := make(map[string]Code, len(codes))
	for _, code := range codes {
		id, ok := coinGeckoIDs[code]
		if !ok {
			return nil, fmt.Errorf("coingecko: unknown coin %s", code)
		}
		ids = append(ids, id)
		byID[id] = code
	}
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", c.fiat.Key())

	u := fmt.Sprintf("%s/simple/price?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("x-cg-pro-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("coingecko: rate limited (%d)", resp.StatusCode)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("coingecko: http %d", resp.StatusCode)
	}

	var data cgResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("coingecko: decode: %w", err)
	}
	quotes := make(Quotes, len(data))
	for id, prices := range data {
		code, ok := byID[id]
		if !ok {
			continue
		}
		if v, ok := prices[c.fiat.Key()]; ok {
			quotes[code.Key()] = v
		}
	}
	return quotes, nil
}
