package adminapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/restokit/restos/internal/pos"
	"github.com/restokit/restos/internal/webserver"
)

func newTestContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &webserver.TokenClaims{OprId: 7, Level: LevelCashier})
	c.Set(webserver.ContextKeyPrincipal, token)
	return c, rec
}

func TestFailSaleErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation error",
			err:        &pos.ValidationError{Field: "items", Reason: "basket must not be empty"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name: "insufficient inventory",
			err: &pos.InsufficientInventoryError{Items: []pos.ItemShortages{{
				MenuItem: "Chicken Tikka",
				Shortages: []pos.Shortage{{
					Ingredient: "Chicken",
					Required:   decimal.RequireFromString("2.5"),
					Available:  decimal.RequireFromString("2.0"),
					Shortage:   decimal.RequireFromString("0.5"),
					Unit:       "kg",
				}},
			}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INSUFFICIENT_INVENTORY",
		},
		{
			name:       "access denied",
			err:        pos.ErrAccessDenied,
			wantStatus: http.StatusForbidden,
			wantCode:   "ACCESS_DENIED",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(t, "")
			if err := failSaleError(c, tc.err); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.wantStatus {
				t.Fatalf("status: got %d, want %d", rec.Code, tc.wantStatus)
			}
			var envelope map[string]interface{}
			if err := jsoniter.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}
			if envelope["code"] != tc.wantCode {
				t.Fatalf("code: got %v, want %s", envelope["code"], tc.wantCode)
			}
		})
	}
}

func TestFailSaleErrorKeepsShortageDetail(t *testing.T) {
	c, rec := newTestContext(t, "")
	err := failSaleError(c, &pos.InsufficientInventoryError{Items: []pos.ItemShortages{{
		MenuItem: "Chicken Tikka",
		Shortages: []pos.Shortage{{
			Ingredient: "Chicken",
			Required:   decimal.RequireFromString("2.5"),
			Available:  decimal.RequireFromString("2.0"),
			Shortage:   decimal.RequireFromString("0.5"),
			Unit:       "kg",
		}},
	}}})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	for _, fragment := range []string{"Chicken", "2.5", "0.5", "kg"} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("shortage detail %q missing from response %s", fragment, body)
		}
	}
}

func TestToSaleRequestMapsPayload(t *testing.T) {
	c, _ := newTestContext(t, "")
	payload := &createSalePayload{
		BranchId:        42,
		CustomerName:    "Ali",
		CustomerContact: "0300-1234567",
		PaymentMethod:   "cash",
		DiscountAmount:  "150.50",
		OfflineId:       "offline-1",
		Items: []saleItemPayload{
			{MenuItemId: 1, Quantity: 2},
			{MenuItemId: 2, Quantity: 1},
		},
	}
	req, err := toSaleRequest(c, payload)
	if err != nil {
		t.Fatalf("toSaleRequest: %v", err)
	}
	if req.BranchId != 42 || req.CashierId != 7 {
		t.Fatalf("ids: branch %d cashier %d", req.BranchId, req.CashierId)
	}
	if !req.DiscountAmount.Equal(decimal.RequireFromString("150.50")) {
		t.Fatalf("discount: got %s", req.DiscountAmount)
	}
	if len(req.Items) != 2 || req.Items[0].Quantity != 2 {
		t.Fatalf("items: %+v", req.Items)
	}
}

func TestToSaleRequestRejectsBadDiscount(t *testing.T) {
	c, _ := newTestContext(t, "")
	payload := &createSalePayload{
		BranchId:       42,
		PaymentMethod:  "cash",
		DiscountAmount: "not-a-number",
	}
	if _, err := toSaleRequest(c, payload); err == nil {
		t.Fatal("expected error for malformed discount")
	}
}
