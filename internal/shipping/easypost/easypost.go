package easypost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid   = errors.New("easypost config invalid")
	ErrRequestFailed   = errors.New("easypost request failed")
	ErrResponseInvalid = errors.New("easypost response invalid")
)

const (
	defaultAPIBaseURL = "https://api.easypost.com/v2"
	defaultFromZip    = "90210"
	defaultToZip      = "10001"
	defaultTimeout    = 15 * time.Second
	ouncesPerPound    = 16
)

// Config EasyPost 配置。
type Config struct {
	APIKey         string
	APIBaseURL     string
	DefaultFromZip string
	DefaultToZip   string
}

// RateInput 运费估算输入，Weight 单位为磅。
type RateInput struct {
	Weight  decimal.Decimal
	FromZip string
	ToZip   string
}

// Rate 单个承运商报价。
type Rate struct {
	Carrier string          `json:"carrier"`
	Service string          `json:"service"`
	Rate    decimal.Decimal `json:"rate"`
}

// RateQuote 报价列表（升序）与最低价。
type RateQuote struct {
	Rates      []Rate           `json:"rates"`
	LowestRate *decimal.Decimal `json:"lowestRate"`
}

// Client EasyPost API 客户端。
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient 创建客户端，api key 为空时返回 ErrConfigInvalid。
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	cfg.normalize()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api_key is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("%w: api_base_url is invalid", ErrConfigInvalid)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient}, nil
}

// Rates 创建 shipment 并返回按价格升序的报价。
func (c *Client) Rates(ctx context.Context, input RateInput) (*RateQuote, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !input.Weight.IsPositive() {
		return nil, fmt.Errorf("%w: weight must be positive", ErrConfigInvalid)
	}
	fromZip := strings.TrimSpace(input.FromZip)
	if fromZip == "" {
		fromZip = c.cfg.DefaultFromZip
	}
	toZip := strings.TrimSpace(input.ToZip)
	if toZip == "" {
		toZip = c.cfg.DefaultToZip
	}

	ounces, _ := input.Weight.Mul(decimal.NewFromInt(ouncesPerPound)).Float64()
	payload := map[string]interface{}{
		"shipment": map[string]interface{}{
			"from_address": map[string]string{"zip": fromZip},
			"to_address":   map[string]string{"zip": toZip},
			"parcel":       map[string]float64{"weight": ounces},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request failed", ErrRequestFailed)
	}

	respBody, statusCode, err := c.doJSONRequest(ctx, http.MethodPost, "/shipments", body)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		if msg := readErrorMessage(respBody); msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrRequestFailed, msg)
		}
		return nil, fmt.Errorf("%w: create shipment status %d", ErrRequestFailed, statusCode)
	}

	var shipment struct {
		Rates []struct {
			Carrier string `json:"carrier"`
			Service string `json:"service"`
			Rate    string `json:"rate"`
		} `json:"rates"`
	}
	if err := json.Unmarshal(respBody, &shipment); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}

	quote := &RateQuote{Rates: make([]Rate, 0, len(shipment.Rates))}
	for _, r := range shipment.Rates {
		amount, err := decimal.NewFromString(strings.TrimSpace(r.Rate))
		if err != nil {
			continue
		}
		quote.Rates = append(quote.Rates, Rate{Carrier: r.Carrier, Service: r.Service, Rate: amount})
	}
	sort.SliceStable(quote.Rates, func(i, j int) bool {
		return quote.Rates[i].Rate.LessThan(quote.Rates[j].Rate)
	})
	if len(quote.Rates) > 0 {
		lowest := quote.Rates[0].Rate
		quote.LowestRate = &lowest
	}
	return quote, nil
}

func (c *Config) normalize() {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.APIBaseURL = strings.TrimSpace(c.APIBaseURL)
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultAPIBaseURL
	}
	c.DefaultFromZip = strings.TrimSpace(c.DefaultFromZip)
	if c.DefaultFromZip == "" {
		c.DefaultFromZip = defaultFromZip
	}
	c.DefaultToZip = strings.TrimSpace(c.DefaultToZip)
	if c.DefaultToZip == "" {
		c.DefaultToZip = defaultToZip
	}
}

func (c *Client) doJSONRequest(ctx context.Context, method, path string, body []byte) ([]byte, int, error) {
	endpoint := strings.TrimRight(c.cfg.APIBaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.SetBasicAuth(c.cfg.APIKey, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return respBody, resp.StatusCode, nil
}

func readErrorMessage(body []byte) string {
	var raw struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return ""
	}
	return strings.TrimSpace(raw.Error.Message)
}
