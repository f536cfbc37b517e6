package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// createAccount is a shortcut for the account creation request used by the
// transfer and report flows.
func (app *testApp) createAccount(t *testing.T, token, name, currency string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"type":"cash","currency":%q}`, name, currency)
	rec := app.request("POST", "/api/v1/accounts", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account failed: %d %s", rec.Code, rec.Body.String())
	}
	acct := parseJSON(t, rec)["account"].(map[string]interface{})
	return acct["id"].(string)
}

func TestTransferFlow_SameCurrency(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "xfer@test.com", "password123")

	fromID := app.createAccount(t, token, "Wallet", "UZS")
	toID := app.createAccount(t, token, "Card", "UZS")

	rec := app.request("POST", "/api/v1/transfers",
		fmt.Sprintf(`{"from_account_id":%q,"to_account_id":%q,"amount_from":"250000","note":"Top up card"}`,
			fromID, toID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	transfer := parseJSON(t, rec)["transfer"].(map[string]interface{})
	transferID := transfer["id"].(string)
	if transfer["amount_to"].(string) != "250000" {
		t.Errorf("expected amount_to 250000, got %v", transfer["amount_to"])
	}
	if _, ok := transfer["rate"]; ok {
		t.Errorf("expected no rate on same-currency transfer, got %v", transfer["rate"])
	}

	// The transfer materialized as two transactions.
	rec = app.request("GET", "/api/v1/transactions", "", token)
	txs := parseJSON(t, rec)["data"].([]interface{})
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	types := map[string]string{}
	for _, raw := range txs {
		tx := raw.(map[string]interface{})
		types[tx["type"].(string)] = tx["account_id"].(string)
	}
	if types["expense"] != fromID {
		t.Errorf("expected expense leg on source account")
	}
	if types["income"] != toID {
		t.Errorf("expected income leg on destination account")
	}

	// Fetch the transfer with its legs preloaded.
	rec = app.request("GET", "/api/v1/transfers/"+transferID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	fetched := parseJSON(t, rec)["transfer"].(map[string]interface{})
	if fetched["out_tx"] == nil || fetched["in_tx"] == nil {
		t.Error("expected both transaction legs preloaded")
	}

	// Delete it and verify the legs disappear with it.
	rec = app.request("DELETE", "/api/v1/transfers/"+transferID, "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", "/api/v1/transactions", "", token)
	if remaining := parseJSON(t, rec)["data"].([]interface{}); len(remaining) != 0 {
		t.Errorf("expected no transactions after transfer delete, got %d", len(remaining))
	}
}

func TestTransferFlow_CrossCurrency(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "fx@test.com", "password123")

	usdID := app.createAccount(t, token, "USD stash", "USD")
	uzsID := app.createAccount(t, token, "Wallet", "UZS")

	// Without amount_to the transfer is rejected.
	rec := app.request("POST", "/api/v1/transfers",
		fmt.Sprintf(`{"from_account_id":%q,"to_account_id":%q,"amount_from":"100"}`, usdID, uzsID), token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "AMOUNT_TO_REQUIRED" {
		t.Errorf("expected AMOUNT_TO_REQUIRED, got %v", errObj["code"])
	}

	// With an explicit converted amount it succeeds and each leg keeps
	// its own currency.
	rec = app.request("POST", "/api/v1/transfers",
		fmt.Sprintf(`{"from_account_id":%q,"to_account_id":%q,"amount_from":"100","amount_to":"1265000","rate":"12650"}`,
			usdID, uzsID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/transactions", "", token)
	for _, raw := range parseJSON(t, rec)["data"].([]interface{}) {
		tx := raw.(map[string]interface{})
		switch tx["type"] {
		case "expense":
			if tx["currency"] != "USD" || tx["amount"].(string) != "100" {
				t.Errorf("unexpected expense leg: %v", tx)
			}
		case "income":
			if tx["currency"] != "UZS" || tx["amount"].(string) != "1265000" {
				t.Errorf("unexpected income leg: %v", tx)
			}
		}
	}
}

func TestTransferFlow_SameAccountRejected(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "same@test.com", "password123")

	acctID := app.createAccount(t, token, "Only account", "UZS")

	rec := app.request("POST", "/api/v1/transfers",
		fmt.Sprintf(`{"from_account_id":%q,"to_account_id":%q,"amount_from":"1000"}`, acctID, acctID), token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "SAME_ACCOUNT_TRANSFER" {
		t.Errorf("expected SAME_ACCOUNT_TRANSFER, got %v", errObj["code"])
	}
}

func TestTransferFlow_ListScopedToUser(t *testing.T) {
	app := setupApp(t)
	aliceToken, _ := app.registerUser(t, "alice@test.com", "password123")
	bobToken, _ := app.registerUser(t, "bob@test.com", "password123")

	fromID := app.createAccount(t, aliceToken, "A", "UZS")
	toID := app.createAccount(t, aliceToken, "B", "UZS")
	app.request("POST", "/api/v1/transfers",
		fmt.Sprintf(`{"from_account_id":%q,"to_account_id":%q,"amount_from":"5000"}`, fromID, toID), aliceToken)

	rec := app.request("GET", "/api/v1/transfers", "", bobToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if data := parseJSON(t, rec)["data"].([]interface{}); len(data) != 0 {
		t.Errorf("expected no transfers for other user, got %d", len(data))
	}
}
