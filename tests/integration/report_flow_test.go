package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func (app *testApp) createCategory(t *testing.T, token, name, categoryType string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"type":%q}`, name, categoryType)
	rec := app.request("POST", "/api/v1/categories", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category failed: %d %s", rec.Code, rec.Body.String())
	}
	cat := parseJSON(t, rec)["category"].(map[string]interface{})
	return cat["id"].(string)
}

func (app *testApp) createTransaction(t *testing.T, token, accountID, categoryID, txType, amount, date string) {
	t.Helper()
	body := fmt.Sprintf(`{"account_id":%q,"category_id":%q,"type":%q,"amount":%q,"date":%q}`,
		accountID, categoryID, txType, amount, date)
	rec := app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestReportFlow_SummaryPerCurrency(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "summary@test.com", "password123")

	uzsID := app.createAccount(t, token, "Wallet", "UZS")
	usdID := app.createAccount(t, token, "USD stash", "USD")
	salaryID := app.createCategory(t, token, "Salary", "income")
	foodID := app.createCategory(t, token, "Food", "expense")

	app.createTransaction(t, token, uzsID, salaryID, "income", "5000000", "2025-02-01T00:00:00Z")
	app.createTransaction(t, token, uzsID, foodID, "expense", "1500000", "2025-02-05T00:00:00Z")
	app.createTransaction(t, token, usdID, salaryID, "income", "300", "2025-02-10T00:00:00Z")

	rec := app.request("GET", "/api/v1/reports/summary", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)["summary"].(map[string]interface{})
	byCurrency := summary["by_currency"].([]interface{})
	if len(byCurrency) != 2 {
		t.Fatalf("expected 2 currencies, got %d", len(byCurrency))
	}

	// Primary currency first.
	uzs := byCurrency[0].(map[string]interface{})
	if uzs["currency"] != "UZS" {
		t.Fatalf("expected UZS first, got %v", uzs["currency"])
	}
	if uzs["balance"].(string) != "3500000" {
		t.Errorf("expected UZS balance 3500000, got %v", uzs["balance"])
	}

	usd := byCurrency[1].(map[string]interface{})
	if usd["balance"].(string) != "300" {
		t.Errorf("expected USD balance 300, got %v", usd["balance"])
	}

	// No stored USD rate: combined balance falls back to the UZS part.
	if summary["total_balance"].(string) != "3500000" {
		t.Errorf("expected total balance 3500000, got %v", summary["total_balance"])
	}
}

func TestReportFlow_SummaryDateFilter(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "filter@test.com", "password123")

	acctID := app.createAccount(t, token, "Wallet", "UZS")
	foodID := app.createCategory(t, token, "Food", "expense")

	app.createTransaction(t, token, acctID, foodID, "expense", "100000", "2025-01-15T00:00:00Z")
	app.createTransaction(t, token, acctID, foodID, "expense", "200000", "2025-03-15T00:00:00Z")

	rec := app.request("GET", "/api/v1/reports/summary?from_date=2025-03-01&to_date=2025-03-31", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)["summary"].(map[string]interface{})
	uzs := summary["by_currency"].([]interface{})[0].(map[string]interface{})
	if uzs["expense"].(string) != "200000" {
		t.Errorf("expected only March expense 200000, got %v", uzs["expense"])
	}
}

func TestReportFlow_YearlyBreakdown(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "yearly@test.com", "password123")

	acctID := app.createAccount(t, token, "Wallet", "UZS")
	salaryID := app.createCategory(t, token, "Salary", "income")
	rentID := app.createCategory(t, token, "Rent", "expense")

	app.createTransaction(t, token, acctID, salaryID, "income", "5000000", "2025-01-05T00:00:00Z")
	app.createTransaction(t, token, acctID, rentID, "expense", "2000000", "2025-01-10T00:00:00Z")
	app.createTransaction(t, token, acctID, rentID, "expense", "2000000", "2025-06-10T00:00:00Z")

	rec := app.request("GET", "/api/v1/reports/yearly?year=2025&currency=UZS", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	breakdown := parseJSON(t, rec)["breakdown"].(map[string]interface{})
	months := breakdown["months"].([]interface{})
	if len(months) != 12 {
		t.Fatalf("expected 12 months, got %d", len(months))
	}
	jan := months[0].(map[string]interface{})
	if jan["month"] != "2025-01" || jan["income"].(string) != "5000000" || jan["expense"].(string) != "2000000" {
		t.Errorf("unexpected January bucket: %v", jan)
	}
	jun := months[5].(map[string]interface{})
	if jun["expense"].(string) != "2000000" {
		t.Errorf("unexpected June bucket: %v", jun)
	}

	top := breakdown["top_expense_categories"].([]interface{})
	if len(top) != 1 {
		t.Fatalf("expected 1 top category, got %d", len(top))
	}
	rent := top[0].(map[string]interface{})
	if rent["name"] != "Rent" || rent["total"].(string) != "4000000" {
		t.Errorf("unexpected top category: %v", rent)
	}
}

func TestReportFlow_YearlyRequiresCurrency(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "nocur@test.com", "password123")

	rec := app.request("GET", "/api/v1/reports/yearly?year=2025", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReportFlow_AccountBalances(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "balances@test.com", "password123")

	acctID := app.createAccount(t, token, "Wallet", "UZS")
	salaryID := app.createCategory(t, token, "Salary", "income")
	foodID := app.createCategory(t, token, "Food", "expense")

	app.createTransaction(t, token, acctID, salaryID, "income", "1000000", "2025-02-01T00:00:00Z")
	app.createTransaction(t, token, acctID, foodID, "expense", "400000", "2025-02-02T00:00:00Z")

	rec := app.request("GET", "/api/v1/reports/balances", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	balances := parseJSON(t, rec)["balances"].([]interface{})
	if len(balances) != 1 {
		t.Fatalf("expected 1 account, got %d", len(balances))
	}
	wallet := balances[0].(map[string]interface{})
	if wallet["balance"].(string) != "600000" {
		t.Errorf("expected balance 600000, got %v", wallet["balance"])
	}
	if wallet["currency"] != "UZS" {
		t.Errorf("expected currency UZS, got %v", wallet["currency"])
	}
}
