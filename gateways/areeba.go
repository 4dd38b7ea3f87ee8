package gateways

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"readiq/config"

	"github.com/go-resty/resty/v2"
)

// CheckoutSession is the result of a gateway checkout initiation: the
// gateway-assigned id used to match the completion callback, and the hosted
// payment page the browser is redirected to.
type CheckoutSession struct {
	SessionID   string
	RedirectURL string
}

// Areeba talks to the Areeba hosted-checkout API (Mastercard Gateway flavour).
type Areeba struct {
	client     *resty.Client
	baseURL    string
	merchantID string
	apiKey     string
	returnURL  string
}

func NewAreeba(cfg *config.Config) *Areeba {
	return &Areeba{
		client:     resty.New().SetTimeout(15 * time.Second),
		baseURL:    cfg.AreebaBaseURL,
		merchantID: cfg.AreebaMerchantID,
		apiKey:     cfg.AreebaAPIKey,
		returnURL:  cfg.AreebaReturnURL,
	}
}

// CreateSession initiates a hosted checkout session for the given order.
func (g *Areeba) CreateSession(orderID string, amount uint, description string) (*CheckoutSession, error) {
	body := map[string]interface{}{
		"apiOperation": "INITIATE_CHECKOUT",
		"interaction": map[string]interface{}{
			"operation": "PURCHASE",
			"returnUrl": g.returnURL,
		},
		"order": map[string]interface{}{
			"id":          orderID,
			"amount":      amount,
			"currency":    "IQD",
			"description": description,
		},
	}

	url := fmt.Sprintf("%s/api/rest/version/72/merchant/%s/session", g.baseURL, g.merchantID)
	resp, err := g.client.R().
		SetBasicAuth("merchant."+g.merchantID, g.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(url)
	if err != nil {
		return nil, fmt.Errorf("areeba session request failed: %w", err)
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		return nil, fmt.Errorf("areeba session request returned %d: %s", resp.StatusCode(), resp.String())
	}

	var out struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
		SuccessIndicator string `json:"successIndicator"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to parse areeba response: %w", err)
	}
	if out.Session.ID == "" {
		return nil, fmt.Errorf("areeba response missing session id")
	}

	return &CheckoutSession{
		SessionID:   out.Session.ID,
		RedirectURL: fmt.Sprintf("%s/checkout/pay/%s", g.baseURL, out.Session.ID),
	}, nil
}

// VerifySignature checks the HMAC-SHA256 signature Areeba sends with each
// webhook notification against the merchant secret.
func (g *Areeba) VerifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.apiKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
