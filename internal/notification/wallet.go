package notification

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2/google"
	oauthjwt "golang.org/x/oauth2/jwt"
)

const walletScope = "https://www.googleapis.com/auth/wallet_object.issuer"

// WalletClient talks to the Google Wallet objects API and signs
// save-to-wallet URLs.
type WalletClient struct {
	issuerID     string
	classSuffix  string
	serviceEmail string
	privateKey   *rsa.PrivateKey
	baseURL      string
	httpClient   *http.Client
}

// NewWalletClient builds a client from service account credentials. The
// HTTP client carries an OAuth2 token source for the wallet issuer
// scope.
func NewWalletClient(issuerID, classSuffix, serviceEmail, privateKeyPEM, baseURL string) (*WalletClient, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse wallet private key: %w", err)
	}

	conf := &oauthjwt.Config{
		Email:      serviceEmail,
		PrivateKey: []byte(privateKeyPEM),
		Scopes:     []string{walletScope},
		TokenURL:   google.JWTTokenURL,
	}

	return &WalletClient{
		issuerID:     issuerID,
		classSuffix:  classSuffix,
		serviceEmail: serviceEmail,
		privateKey:   key,
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   conf.Client(context.Background()),
	}, nil
}

// ObjectID derives a stable wallet object ID for a member's pass in a
// group. Reissuing for the same pair updates the same object instead of
// piling up new ones.
func (c *WalletClient) ObjectID(userID int64, groupName string) string {
	sanitized := strings.NewReplacer("@", "_", ".", "_", " ", "_").
		Replace(fmt.Sprintf("%d%s", userID, groupName))
	return fmt.Sprintf("%s.%s", c.issuerID, sanitized)
}

type localizedString struct {
	DefaultValue languageValue `json:"defaultValue"`
}

type languageValue struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

type textModule struct {
	ID     string `json:"id,omitempty"`
	Header string `json:"header"`
	Body   string `json:"body"`
}

type barcode struct {
	Type          string `json:"type"`
	Value         string `json:"value"`
	AlternateText string `json:"alternateText"`
}

type walletObject struct {
	ID              string           `json:"id,omitempty"`
	ClassID         string           `json:"classId,omitempty"`
	State           string           `json:"state,omitempty"`
	CardTitle       *localizedString `json:"cardTitle,omitempty"`
	Header          *localizedString `json:"header,omitempty"`
	HexBackground   string           `json:"hexBackgroundColor,omitempty"`
	TextModulesData []textModule     `json:"textModulesData"`
	Barcode         *barcode         `json:"barcode,omitempty"`
}

func enUS(value string) *localizedString {
	return &localizedString{DefaultValue: languageValue{Language: "en-US", Value: value}}
}

// UpsertObject creates the member's pass object or patches its balance
// modules if it already exists.
func (c *WalletClient) UpsertObject(ctx context.Context, data PassData) (string, error) {
	objectID := c.ObjectID(data.UserID, data.GroupName)
	objectURL := fmt.Sprintf("%s/genericObject/%s", c.baseURL, objectID)

	update := &walletObject{
		TextModulesData: []textModule{
			{ID: "owed", Header: "OWED", Body: fmt.Sprintf("%.2f", data.Owed)},
			{ID: "get_back", Header: "GET_BACK", Body: fmt.Sprintf("%.2f", data.GetBack)},
		},
		Barcode: &barcode{
			Type:          "QR_CODE",
			Value:         fmt.Sprintf("%d", data.UserID),
			AlternateText: "Balance Details",
		},
	}

	exists, err := c.objectExists(ctx, objectURL)
	if err != nil {
		return "", err
	}

	if exists {
		if err := c.send(ctx, http.MethodPatch, objectURL, update); err != nil {
			return "", err
		}
		return objectID, nil
	}

	update.ID = objectID
	update.ClassID = fmt.Sprintf("%s.%s", c.issuerID, c.classSuffix)
	update.State = "ACTIVE"
	update.CardTitle = enUS(data.GroupName)
	update.Header = enUS(data.UserName)
	update.HexBackground = "#4285f4"

	if err := c.send(ctx, http.MethodPost, c.baseURL+"/genericObject", update); err != nil {
		return "", err
	}
	return objectID, nil
}

func (c *WalletClient) objectExists(ctx context.Context, objectURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, objectURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build wallet request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to check wallet object: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK, nil
}

func (c *WalletClient) send(ctx context.Context, method, url string, payload *walletObject) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode wallet object: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build wallet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call wallet api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("wallet api returned %d: %s", resp.StatusCode, detail)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// CreateReceiptObject posts a one-off receipt pass. Each call creates a
// fresh object; the uuid suffix keeps reuploads of the same receipt
// from colliding.
func (c *WalletClient) CreateReceiptObject(ctx context.Context, data ReceiptData) (string, error) {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	objectID := fmt.Sprintf("%s.%d_%s", c.issuerID, data.UserID, suffix)

	payload := &walletObject{
		ID:        objectID,
		ClassID:   fmt.Sprintf("%s.receipt_class", c.issuerID),
		State:     "ACTIVE",
		CardTitle: enUS("Receipt Summary"),
		Header:    enUS(data.Title),
		TextModulesData: []textModule{
			{Header: "Receipt Summary", Body: data.Summary},
			{Header: "Total Amount", Body: fmt.Sprintf("%s %.2f", data.Currency, data.Amount)},
		},
		Barcode: &barcode{
			Type:          "QR_CODE",
			Value:         data.Summary,
			AlternateText: "Receipt Details",
		},
	}

	if err := c.send(ctx, http.MethodPost, c.baseURL+"/genericObject", payload); err != nil {
		return "", err
	}
	return objectID, nil
}

// SaveURL signs a save-to-wallet JWT for the object and wraps it in the
// pay.google.com save link.
func (c *WalletClient) SaveURL(objectID string) (string, error) {
	claims := jwt.MapClaims{
		"iss": c.serviceEmail,
		"aud": "google",
		"typ": "savetowallet",
		"iat": time.Now().Unix(),
		"payload": map[string]interface{}{
			"genericObjects": []map[string]string{
				{"id": objectID},
			},
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign save url: %w", err)
	}
	return "https://pay.google.com/gp/v/save/" + token, nil
}
