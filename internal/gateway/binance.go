package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cryptodash/internal/model"
)

// DefaultBaseURL is the public Binance REST endpoint.
const DefaultBaseURL = "https://api.binance.com"

// BinanceGateway implements Gateway against the Binance REST API.
// Market-data endpoints are public; the API key header is only sent
// when configured.
type BinanceGateway struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewBinanceGateway creates a gateway with optional proxy support.
func NewBinanceGateway(baseURL, apiKey, proxyURL string) *BinanceGateway {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &BinanceGateway{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
	}
}

func (g *BinanceGateway) Name() string { return "binance" }

// binanceTicker is the /api/v3/ticker/24hr response shape. Binance
// encodes all prices as strings.
type binanceTicker struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	LowPrice           string `json:"lowPrice"`
	HighPrice          string `json:"highPrice"`
	Volume             string `json:"volume"`
	WeightedAvgPrice   string `json:"weightedAvgPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
}

func (g *BinanceGateway) GetTicker(ctx context.Context, symbol string) (model.Ticker, error) {
	endpoint := fmt.Sprintf("%s/api/v3/ticker/24hr?symbol=%s", g.BaseURL, url.QueryEscape(symbol))
	body, err := g.get(ctx, endpoint)
	if err != nil {
		return model.Ticker{}, &Error{Op: "ticker " + symbol, Err: err}
	}
	var bt binanceTicker
	if err := json.Unmarshal(body, &bt); err != nil {
		return model.Ticker{}, &Error{Op: "decode ticker " + symbol, Err: err}
	}
	t := model.Ticker{Symbol: bt.Symbol}
	fields := []struct {
		dst  *float64
		src  string
		name string
	}{
		{&t.LastPrice, bt.LastPrice, "lastPrice"},
		{&t.LowPrice, bt.LowPrice, "lowPrice"},
		{&t.HighPrice, bt.HighPrice, "highPrice"},
		{&t.Volume, bt.Volume, "volume"},
		{&t.WeightedAvgPrice, bt.WeightedAvgPrice, "weightedAvgPrice"},
		{&t.PriceChangePercent, bt.PriceChangePercent, "priceChangePercent"},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.src, 64)
		if err != nil {
			return model.Ticker{}, &Error{Op: "parse ticker " + f.name, Err: err}
		}
		*f.dst = v
	}
	return t, nil
}

func (g *BinanceGateway) GetCandles(ctx context.Context, symbol string, interval model.Interval, limit int) ([]model.Candle, error) {
	endpoint := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&limit=%d",
		g.BaseURL, url.QueryEscape(symbol), interval, limit)
	return g.fetchCandles(ctx, endpoint)
}

func (g *BinanceGateway) GetHistoricalCandles(ctx context.Context, symbol string, interval model.Interval, start, end time.Time, limit int) ([]model.Candle, error) {
	endpoint := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&startTime=%d&endTime=%d&limit=%d",
		g.BaseURL, url.QueryEscape(symbol), interval, start.UnixMilli(), end.UnixMilli(), limit)
	return g.fetchCandles(ctx, endpoint)
}

func (g *BinanceGateway) fetchCandles(ctx context.Context, endpoint string) ([]model.Candle, error) {
	body, err := g.get(ctx, endpoint)
	if err != nil {
		return nil, &Error{Op: "klines", Err: err}
	}
	// Binance kline rows are 12-element arrays mixing numbers and
	// strings: [openTime, open, high, low, close, volume, closeTime,
	// quoteVolume, trades, takerBase, takerQuote, ignore].
	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &Error{Op: "decode klines", Err: err}
	}
	candles := make([]model.Candle, 0, len(rows))
	for i, row := range rows {
		c, err := parseKlineRow(row)
		if err != nil {
			return nil, &Error{Op: fmt.Sprintf("parse kline row %d", i), Err: err}
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func parseKlineRow(row []json.RawMessage) (model.Candle, error) {
	if len(row) < 6 {
		return model.Candle{}, fmt.Errorf("kline row has %d fields, want at least 6", len(row))
	}
	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return model.Candle{}, fmt.Errorf("open time: %w", err)
	}
	c := model.Candle{Time: time.UnixMilli(openTime).UTC()}
	fields := []struct {
		dst  *float64
		raw  json.RawMessage
		name string
	}{
		{&c.Open, row[1], "open"},
		{&c.High, row[2], "high"},
		{&c.Low, row[3], "low"},
		{&c.Close, row[4], "close"},
		{&c.Volume, row[5], "volume"},
	}
	for _, f := range fields {
		var s string
		if err := json.Unmarshal(f.raw, &s); err != nil {
			return model.Candle{}, fmt.Errorf("%s: %w", f.name, err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.Candle{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return c, nil
}

func (g *BinanceGateway) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if g.APIKey != "" {
		req.Header.Set("X-MBX-APIKEY", g.APIKey)
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
