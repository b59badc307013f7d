package e2e

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roomstay/internal/config"
	"roomstay/internal/database"
	"roomstay/internal/gateway"
	"roomstay/internal/middleware"
	"roomstay/internal/modules/auth"
	"roomstay/internal/modules/booking"
	"roomstay/internal/modules/catalog"
	"roomstay/internal/modules/notification"
	"roomstay/internal/modules/payment"
	"roomstay/internal/modules/refund"
	jwtsvc "roomstay/internal/pkg/jwt"
	"roomstay/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testKeyID         = "key_test_x1"
	testKeySecret     = "test_key_secret"
	testWebhookSecret = "test_webhook_secret"
)

type testSuite struct {
	router     *gin.Engine
	db         *gorm.DB
	gatewaySrv *httptest.Server
}

type apiResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *errorDetail           `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// stubGateway mimics the order/payment/refund endpoints the client calls.
func stubGateway(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Receipt  string `json:"receipt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order_e2e_1",
			"amount":   in.Amount,
			"currency": in.Currency,
			"receipt":  in.Receipt,
			"status":   "created",
		})
	})
	mux.HandleFunc("/v1/payments/pay_e2e_1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":          "pay_e2e_1",
			"order_id":    "order_e2e_1",
			"method":      "upi",
			"amount":      1500000,
			"captured_at": time.Now().Unix(),
		})
	})
	mux.HandleFunc("/v1/payments/pay_e2e_1/refund", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Amount int64 `json:"amount"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		amount := in.Amount
		if amount == 0 {
			amount = 1500000
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":         "rfnd_e2e_1",
			"payment_id": "pay_e2e_1",
			"amount":     amount,
		})
	})
	return httptest.NewServer(mux)
}

func setupSuite(t *testing.T) *testSuite {
	t.Helper()

	db, err := database.Connect(fmt.Sprintf("file:e2e_%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err, "connect test database")
	require.NoError(t, database.Migrate(db), "migrate test database")

	gatewaySrv := stubGateway(t)
	t.Cleanup(gatewaySrv.Close)

	cfg := &config.PaymentRuntimeConfig{
		GatewayKeyID:         testKeyID,
		GatewayKeySecret:     testKeySecret,
		GatewayWebhookSecret: testWebhookSecret,
		GatewayBaseURL:       gatewaySrv.URL,
		GatewayTimeout:       5 * time.Second,
		Currency:             "INR",
		RefundWindow:         720 * time.Hour,
	}

	gw := gateway.NewClient(gateway.ClientConfig{
		KeyID:         cfg.GatewayKeyID,
		KeySecret:     cfg.GatewayKeySecret,
		WebhookSecret: cfg.GatewayWebhookSecret,
		BaseURL:       cfg.GatewayBaseURL,
		Timeout:       cfg.GatewayTimeout,
	}, nil)

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	j := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)

	notifService := notification.NewService(notification.NewRepository(db), nil, nil)

	authHandler := auth.NewHandler(auth.NewService(userRepo, j))
	catalogHandler := catalog.NewHandler(catalog.NewService(roomRepo))
	bookingHandler := booking.NewHandler(booking.NewService(bookingRepo, paymentRepo, roomRepo, notifService, nil))
	paymentHandler := payment.NewHandler(payment.NewService(paymentRepo, bookingRepo, gw, notifService, cfg, nil), nil)
	refundHandler := refund.NewHandler(refund.NewService(paymentRepo, bookingRepo, gw, notifService, cfg.RefundWindow, nil), nil)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	authHandler.RegisterPublicRoutes(v1)
	catalogHandler.RegisterPublicRoutes(v1)
	paymentHandler.RegisterPublicRoutes(v1)

	protected := v1.Group("/")
	protected.Use(middleware.Auth(j))
	{
		authHandler.RegisterProtectedRoutes(protected)
		bookingHandler.RegisterRoutes(protected)
		paymentHandler.RegisterProtectedRoutes(protected)
		refundHandler.RegisterRoutes(protected)

		owner := protected.Group("/")
		owner.Use(middleware.RequireRole("owner"))
		catalogHandler.RegisterOwnerRoutes(owner)
	}

	return &testSuite{router: r, db: db, gatewaySrv: gatewaySrv}
}

func (s *testSuite) request(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func parse(t *testing.T, w *httptest.ResponseRecorder) *apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return &resp
}

func (s *testSuite) register(t *testing.T, name, email, role string) string {
	t.Helper()
	w := s.request(t, http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"name": name, "email": email, "password": "secret123", "role": role,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, "register %s: %s", email, w.Body.String())
	resp := parse(t, w)
	token, _ := resp.Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func signWebhook(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *testSuite) sendWebhook(t *testing.T, event string, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"event": event, "payload": payload})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Gateway-Signature", signWebhook(body))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestBookingPaymentLifecycle(t *testing.T) {
	s := setupSuite(t)

	ownerToken := s.register(t, "Kiran", "kiran@rooms.in", "owner")
	seekerToken := s.register(t, "Asha", "asha@example.in", "seeker")

	// Owner lists a room at Rs 15,000/month.
	w := s.request(t, http.MethodPost, "/api/v1/rooms", map[string]interface{}{
		"title": "1BHK near Indiranagar metro", "city": "Bengaluru", "rent": 1500000,
	}, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	roomID := int64(parse(t, w).Data["id"].(float64))

	// Seeker requests the room for a month.
	checkIn := time.Now().AddDate(0, 0, 7).Format(time.RFC3339)
	checkOut := time.Now().AddDate(0, 1, 7).Format(time.RFC3339)
	w = s.request(t, http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"room_id": roomID, "check_in": checkIn, "check_out": checkOut,
	}, seekerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := parse(t, w).Data
	bookingID := int64(data["id"].(float64))
	assert.Equal(t, "pending", data["status"])

	// Seeker opens a payment order.
	w = s.request(t, http.MethodPost, "/api/v1/payments/order", map[string]interface{}{
		"booking_id": bookingID,
	}, seekerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	order := parse(t, w).Data
	assert.Equal(t, "order_e2e_1", order["order_id"])
	assert.Equal(t, float64(1500000), order["amount"])
	assert.Equal(t, testKeyID, order["key_id"])

	// Gateway captures the payment, backdated ten days so the later refund
	// exercises a realistic window.
	capturedAt := time.Now().Add(-10 * 24 * time.Hour).Unix()
	w = s.sendWebhook(t, "payment.captured", map[string]interface{}{
		"payment_id": "pay_e2e_1", "order_id": "order_e2e_1", "method": "upi", "captured_at": capturedAt,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Replay of the same event is a no-op.
	w = s.sendWebhook(t, "payment.captured", map[string]interface{}{
		"payment_id": "pay_e2e_1", "order_id": "order_e2e_1", "method": "upi", "captured_at": capturedAt,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Booking reflects the capture.
	w = s.request(t, http.MethodGet, "/api/v1/bookings/my", nil, seekerToken)
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Len(t, listResp.Data, 1)
	assert.Equal(t, "paid", listResp.Data[0]["status"])

	// Confirming before identity verification is rejected.
	w = s.request(t, http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d/status", bookingID), map[string]interface{}{
		"status": "confirmed",
	}, ownerToken)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	// Seeker submits an identity document; owner verifies it.
	w = s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/identity", bookingID), map[string]interface{}{
		"document_number": "2345 6789 0124", "file_url": "https://cdn.example.com/docs/asha.pdf",
	}, seekerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.request(t, http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d/identity/verify", bookingID), nil, ownerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Now the confirmation goes through.
	w = s.request(t, http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d/status", bookingID), map[string]interface{}{
		"status": "confirmed",
	}, ownerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Full refund cancels the booking.
	w = s.request(t, http.MethodPost, "/api/v1/payments/refund", map[string]interface{}{
		"booking_id": bookingID, "reason": "plans changed",
	}, seekerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	refundData := parse(t, w).Data
	assert.Equal(t, "rfnd_e2e_1", refundData["refund_id"])
	assert.Equal(t, float64(1500000), refundData["refund_amount"])

	w = s.request(t, http.MethodGet, "/api/v1/bookings/my", nil, seekerToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Len(t, listResp.Data, 1)
	assert.Equal(t, "cancelled", listResp.Data[0]["status"])

	// A second refund attempt conflicts.
	w = s.request(t, http.MethodPost, "/api/v1/payments/refund", map[string]interface{}{
		"booking_id": bookingID,
	}, seekerToken)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	s := setupSuite(t)

	body := []byte(`{"event":"payment.captured","payload":{"order_id":"order_e2e_1"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set("X-Gateway-Signature", "deadbeef")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSecondOrderForSameBookingRejected(t *testing.T) {
	s := setupSuite(t)

	ownerToken := s.register(t, "Kiran", "kiran@rooms.in", "owner")
	seekerToken := s.register(t, "Asha", "asha@example.in", "seeker")

	w := s.request(t, http.MethodPost, "/api/v1/rooms", map[string]interface{}{
		"title": "Studio flat", "city": "Mumbai", "rent": 2200000,
	}, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	roomID := int64(parse(t, w).Data["id"].(float64))

	w = s.request(t, http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"room_id":   roomID,
		"check_in":  time.Now().AddDate(0, 0, 7).Format(time.RFC3339),
		"check_out": time.Now().AddDate(0, 1, 7).Format(time.RFC3339),
	}, seekerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	bookingID := int64(parse(t, w).Data["id"].(float64))

	w = s.request(t, http.MethodPost, "/api/v1/payments/order", map[string]interface{}{"booking_id": bookingID}, seekerToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.request(t, http.MethodPost, "/api/v1/payments/order", map[string]interface{}{"booking_id": bookingID}, seekerToken)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := setupSuite(t)

	w := s.request(t, http.MethodGet, "/api/v1/bookings/my", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.request(t, http.MethodPost, "/api/v1/payments/order", map[string]interface{}{"booking_id": 1}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
