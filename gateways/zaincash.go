package gateways

import (
	"encoding/json"
	"fmt"
	"time"

	"readiq/config"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v4"
)

// ZainCash talks to the ZainCash transaction API. Both directions use JWTs
// signed with the merchant secret: the init payload we send and the callback
// token ZainCash posts back.
type ZainCash struct {
	client      *resty.Client
	baseURL     string
	merchantID  string
	secret      string
	msisdn      string
	redirectURL string
}

// ZainCashResult is the decoded callback token.
type ZainCashResult struct {
	Status        string
	OrderID       string
	TransactionID string
}

func NewZainCash(cfg *config.Config) *ZainCash {
	return &ZainCash{
		client:      resty.New().SetTimeout(15 * time.Second),
		baseURL:     cfg.ZainCashBaseURL,
		merchantID:  cfg.ZainCashMerchantID,
		secret:      cfg.ZainCashSecret,
		msisdn:      cfg.ZainCashMsisdn,
		redirectURL: cfg.ZainCashRedirect,
	}
}

// CreateTransaction initiates a ZainCash transaction and returns the hosted
// payment URL.
func (g *ZainCash) CreateTransaction(orderID string, amount uint, serviceType string) (*CheckoutSession, error) {
	nowUnix := time.Now().Unix()
	claims := jwt.MapClaims{
		"amount":      amount,
		"serviceType": serviceType,
		"msisdn":      g.msisdn,
		"orderId":     orderID,
		"redirectUrl": g.redirectURL,
		"iat":         nowUnix,
		"exp":         nowUnix + 60*60*4,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(g.secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign zaincash payload: %w", err)
	}

	resp, err := g.client.R().
		SetFormData(map[string]string{
			"token":      token,
			"merchantId": g.merchantID,
			"lang":       "ar",
		}).
		Post(g.baseURL + "/transaction/init")
	if err != nil {
		return nil, fmt.Errorf("zaincash init request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("zaincash init returned %d: %s", resp.StatusCode(), resp.String())
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to parse zaincash response: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("zaincash response missing transaction id")
	}

	return &CheckoutSession{
		SessionID:   out.ID,
		RedirectURL: g.baseURL + "/transaction/pay?id=" + out.ID,
	}, nil
}

// ParseCallbackToken verifies and decodes the token ZainCash appends to the
// redirect back to us after the customer finishes (or cancels) payment.
func (g *ZainCash) ParseCallbackToken(tokenString string) (*ZainCashResult, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(g.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid zaincash callback token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid zaincash callback payload")
	}

	result := &ZainCashResult{}
	result.Status, _ = claims["status"].(string)
	result.OrderID, _ = claims["orderid"].(string)
	result.TransactionID, _ = claims["id"].(string)
	if result.OrderID == "" {
		return nil, fmt.Errorf("zaincash callback missing order id")
	}
	return result, nil
}
