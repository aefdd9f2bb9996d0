package notification

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func testWalletClient(t *testing.T, baseURL string, httpClient *http.Client) (*WalletClient, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WalletClient{
		issuerID:     "3388000000000000000",
		classSuffix:  "balance-pass",
		serviceEmail: "passes@project.iam.gserviceaccount.com",
		privateKey:   key,
		baseURL:      baseURL,
		httpClient:   httpClient,
	}, key
}

func TestObjectID(t *testing.T) {
	c, _ := testWalletClient(t, "", nil)

	got := c.ObjectID(7, "Trip to Goa")
	want := "3388000000000000000.7Trip_to_Goa"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// Stable: the same pair always maps to the same object.
	if again := c.ObjectID(7, "Trip to Goa"); again != got {
		t.Errorf("object id not stable: %q vs %q", got, again)
	}
}

func TestSaveURL(t *testing.T) {
	c, key := testWalletClient(t, "", nil)

	url, err := c.SaveURL("3388000000000000000.7Trip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(url, "https://pay.google.com/gp/v/save/") {
		t.Fatalf("unexpected url prefix: %q", url)
	}

	tokenString := strings.TrimPrefix(url, "https://pay.google.com/gp/v/save/")
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil || !token.Valid {
		t.Fatalf("token does not verify: %v", err)
	}

	claims := token.Claims.(jwt.MapClaims)
	if claims["typ"] != "savetowallet" {
		t.Errorf("typ = %v, want savetowallet", claims["typ"])
	}
	if claims["iss"] != "passes@project.iam.gserviceaccount.com" {
		t.Errorf("iss = %v, want service account email", claims["iss"])
	}
	payload := claims["payload"].(map[string]interface{})
	objects := payload["genericObjects"].([]interface{})
	obj := objects[0].(map[string]interface{})
	if obj["id"] != "3388000000000000000.7Trip" {
		t.Errorf("object id in token = %v", obj["id"])
	}
}

func TestUpsertObjectCreatesWhenMissing(t *testing.T) {
	var created walletObject
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPost:
			if err := json.NewDecoder(r.Body).Decode(&created); err != nil {
				t.Errorf("decode payload: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	c, _ := testWalletClient(t, srv.URL, srv.Client())
	objectID, err := c.UpsertObject(context.Background(), PassData{
		UserID:    2,
		UserName:  "Bob",
		GroupName: "Trip",
		Owed:      33.33,
		GetBack:   0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if objectID != "3388000000000000000.2Trip" {
		t.Errorf("object id = %q", objectID)
	}

	if created.State != "ACTIVE" {
		t.Errorf("state = %q, want ACTIVE", created.State)
	}
	if created.ClassID != "3388000000000000000.balance-pass" {
		t.Errorf("class id = %q", created.ClassID)
	}
	if created.CardTitle.DefaultValue.Value != "Trip" || created.Header.DefaultValue.Value != "Bob" {
		t.Errorf("title/header = %+v / %+v", created.CardTitle, created.Header)
	}
	if len(created.TextModulesData) != 2 || created.TextModulesData[0].Body != "33.33" {
		t.Errorf("text modules = %+v", created.TextModulesData)
	}
}

func TestUpsertObjectPatchesWhenPresent(t *testing.T) {
	var patched bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusOK)
		case http.MethodPatch:
			patched = true
			var body walletObject
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode payload: %v", err)
			}
			// A patch only refreshes balances, never identity fields.
			if body.ClassID != "" || body.State != "" {
				t.Errorf("patch carries identity fields: %+v", body)
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	c, _ := testWalletClient(t, srv.URL, srv.Client())
	if _, err := c.UpsertObject(context.Background(), PassData{UserID: 2, GroupName: "Trip"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !patched {
		t.Error("expected PATCH for existing object")
	}
}

func TestCreateReceiptObject(t *testing.T) {
	var created walletObject
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&created); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := testWalletClient(t, srv.URL, srv.Client())
	first, err := c.CreateReceiptObject(context.Background(), ReceiptData{
		UserID:   2,
		Title:    "Corner Grocery",
		Summary:  "Weekly groceries",
		Amount:   54.2,
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ClassID != "3388000000000000000.receipt_class" {
		t.Errorf("class id = %q", created.ClassID)
	}
	if created.TextModulesData[1].Body != "USD 54.20" {
		t.Errorf("amount module = %+v", created.TextModulesData[1])
	}

	second, err := c.CreateReceiptObject(context.Background(), ReceiptData{UserID: 2, Title: "x", Summary: "y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Error("receipt object ids must be unique per issuance")
	}
}

func TestUpsertObjectAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c, _ := testWalletClient(t, srv.URL, srv.Client())
	if _, err := c.UpsertObject(context.Background(), PassData{UserID: 2, GroupName: "Trip"}); err == nil {
		t.Fatal("expected error on 403")
	}
}
