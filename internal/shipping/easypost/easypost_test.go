package easypost

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRatesSortedWithDefaults(t *testing.T) {
	var payload struct {
		Shipment struct {
			FromAddress map[string]string  `json:"from_address"`
			ToAddress   map[string]string  `json:"to_address"`
			Parcel      map[string]float64 `json:"parcel"`
		} `json:"shipment"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/shipments" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if user, _, ok := r.BasicAuth(); !ok || user != "ep_key" {
			t.Errorf("expected basic auth with api key")
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload failed: %v", err)
		}
		_, _ = w.Write([]byte(`{"rates":[
			{"carrier":"UPS","service":"Ground","rate":"12.40"},
			{"carrier":"USPS","service":"Priority","rate":"7.58"},
			{"carrier":"FedEx","service":"Home","rate":"bad"}
		]}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "ep_key", APIBaseURL: server.URL + "/v2"}, server.Client())
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	quote, err := client.Rates(context.Background(), RateInput{Weight: decimal.NewFromFloat(1.5)})
	if err != nil {
		t.Fatalf("rates failed: %v", err)
	}
	if payload.Shipment.Parcel["weight"] != 24 {
		t.Fatalf("expected weight converted to ounces, got %v", payload.Shipment.Parcel["weight"])
	}
	if payload.Shipment.FromAddress["zip"] != "90210" || payload.Shipment.ToAddress["zip"] != "10001" {
		t.Fatalf("unexpected default zips: %+v", payload.Shipment)
	}
	if len(quote.Rates) != 2 || quote.Rates[0].Carrier != "USPS" {
		t.Fatalf("unexpected rates: %+v", quote.Rates)
	}
	if quote.LowestRate == nil || quote.LowestRate.String() != "7.58" {
		t.Fatalf("unexpected lowest rate: %v", quote.LowestRate)
	}
}

func TestRatesErrors(t *testing.T) {
	if _, err := NewClient(Config{}, nil); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"code":"ADDRESS.ZIP.INVALID","message":"Invalid zip"}}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "ep_key", APIBaseURL: server.URL}, server.Client())
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	_, err = client.Rates(context.Background(), RateInput{Weight: decimal.NewFromInt(1), ToZip: "x"})
	if !errors.Is(err, ErrRequestFailed) || err.Error() != "easypost request failed: Invalid zip" {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.Rates(context.Background(), RateInput{}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for zero weight, got %v", err)
	}
}

func TestRatesEmptyHasNoLowest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rates":[]}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "ep_key", APIBaseURL: server.URL}, server.Client())
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	quote, err := client.Rates(context.Background(), RateInput{Weight: decimal.NewFromInt(2)})
	if err != nil {
		t.Fatalf("rates failed: %v", err)
	}
	if quote.LowestRate != nil || len(quote.Rates) != 0 {
		t.Fatalf("expected empty quote, got %+v", quote)
	}
}
