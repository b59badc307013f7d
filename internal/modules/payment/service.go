package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roomstay/internal/config"
	"roomstay/internal/domain"
	"roomstay/internal/gateway"
	"roomstay/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	payments paymentRepo
	bookings bookingStore
	gw       gateway.Gateway
	notifs   Notifier
	loggerf  func(format string, args ...interface{})

	keyID    string
	currency string
}

func NewService(payments paymentRepo, bookings bookingStore, gw gateway.Gateway, notifs Notifier, cfg *config.PaymentRuntimeConfig, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		payments: payments,
		bookings: bookings,
		gw:       gw,
		notifs:   notifs,
		loggerf:  loggerf,
		keyID:    cfg.GatewayKeyID,
		currency: cfg.Currency,
	}
}

// CreateOrder opens a gateway order for a pending booking and records the
// Payment in created state. A booking with an open created/pending payment is
// rejected until that attempt resolves.
func (s *Service) CreateOrder(ctx context.Context, seekerID int64, req CreateOrderRequest) (*CreateOrderResponse, error) {
	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("booking lookup failed: %w", err)
	}
	if b.SeekerID != seekerID {
		return nil, ErrForbidden
	}
	if b.Status != domain.BookingPending {
		return nil, ErrNotPayable
	}
	if b.Payment.Status == domain.PaymentViewCompleted || b.Payment.Status == domain.PaymentViewRefunded {
		return nil, ErrNotPayable
	}

	receipt := "rcpt_" + uuid.NewString()
	order, err := s.gw.CreateOrder(ctx, gateway.CreateOrderInput{
		Amount:   b.Payment.Amount,
		Currency: s.currency,
		Receipt:  receipt,
		Notes:    map[string]string{"booking_id": fmt.Sprintf("%d", b.ID)},
	})
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	p := &domain.Payment{
		BookingID:      b.ID,
		PayerID:        seekerID,
		GatewayOrderID: order.ID,
		Receipt:        receipt,
		Amount:         b.Payment.Amount,
		Currency:       s.currency,
		Status:         domain.PaymentCreated,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrOutstandingPayment) {
			return nil, ErrOrderOutstanding
		}
		return nil, fmt.Errorf("save payment failed: %w", err)
	}
	if err := s.bookings.SetOrder(ctx, b.ID, order.ID); err != nil {
		s.loggerf("level=error msg=failed to mirror order onto booking booking_id=%d order_id=%s err=%v", b.ID, order.ID, err)
	}

	s.loggerf("level=info msg=gateway order created booking_id=%d order_id=%s amount=%d", b.ID, order.ID, p.Amount)
	return &CreateOrderResponse{OrderID: order.ID, Amount: p.Amount, Currency: p.Currency, KeyID: s.keyID}, nil
}

// VerifyPayment handles the client's post-checkout confirmation. The client
// is a different trust boundary from the gateway: a bad signature here is a
// potential forged confirmation, so the payment attempt is marked failed.
func (s *Service) VerifyPayment(ctx context.Context, seekerID int64, req VerifyRequest) (*VerifyResponse, error) {
	if !s.gw.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature) {
		s.loggerf("level=warn msg=client verification signature mismatch order_id=%s payment_id=%s", req.OrderID, req.PaymentID)
		changed, err := s.payments.MarkFailedIf(ctx, req.OrderID, "signature_mismatch", "client supplied an invalid signature")
		if err != nil {
			s.loggerf("level=error msg=failed to mark payment failed order_id=%s err=%v", req.OrderID, err)
		}
		if changed {
			if p, perr := s.payments.GetByGatewayOrderID(ctx, req.OrderID); perr == nil {
				if berr := s.bookings.SyncPaymentFailed(ctx, p.BookingID); berr != nil {
					s.loggerf("level=error msg=failed to mirror failed payment booking_id=%d err=%v", p.BookingID, berr)
				}
			}
		}
		return nil, ErrInvalidSignature
	}

	p, err := s.payments.GetByGatewayOrderID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.PayerID != seekerID {
		return nil, ErrForbidden
	}

	// Fetch authoritative capture details; the client-supplied ids alone are
	// not trusted for amount or capture time.
	details, err := s.gw.FetchPayment(ctx, req.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("fetch payment: %w", err)
	}
	if details.OrderID != "" && details.OrderID != p.GatewayOrderID {
		return nil, ErrForbidden
	}
	if details.Amount != p.Amount {
		s.loggerf("level=error msg=captured amount mismatch order_id=%s captured=%d expected=%d", req.OrderID, details.Amount, p.Amount)
		return nil, ErrAmountMismatch
	}

	if err := s.applyCapture(ctx, p, details.ID, details.Method, "", details.CapturedAt); err != nil {
		return nil, err
	}
	return &VerifyResponse{Status: string(domain.PaymentCompleted)}, nil
}

type webhookEnvelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type capturedPayload struct {
	PaymentID  string `json:"payment_id"`
	OrderID    string `json:"order_id"`
	Method     string `json:"method"`
	CapturedAt int64  `json:"captured_at"`
}

type failedPayload struct {
	OrderID          string `json:"order_id"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

type orderPaidPayload struct {
	OrderID    string `json:"order_id"`
	AmountPaid int64  `json:"amount_paid"`
}

// HandleWebhook verifies and applies one gateway event. Events are delivered
// at least once and possibly out of order; every branch converges under
// replay. Errors returned from here mean "retry me" to the gateway, so
// unrecognized orders and unknown event types are swallowed after logging.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gw.VerifyWebhookSignature(body, signature) {
		s.loggerf("level=warn msg=webhook signature mismatch")
		return ErrInvalidSignature
	}

	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		s.loggerf("level=error msg=malformed webhook body err=%v", err)
		return nil
	}

	switch env.Event {
	case "payment.captured":
		return s.handleCaptured(ctx, env.Payload, string(body))
	case "payment.failed":
		return s.handleFailed(ctx, env.Payload)
	case "order.paid":
		return s.handleOrderPaid(ctx, env.Payload)
	default:
		s.loggerf("level=info msg=ignoring unknown webhook event event=%s", env.Event)
		return nil
	}
}

func (s *Service) handleCaptured(ctx context.Context, payload json.RawMessage, rawBody string) error {
	var ev capturedPayload
	if err := json.Unmarshal(payload, &ev); err != nil {
		s.loggerf("level=error msg=malformed payment.captured payload err=%v", err)
		return nil
	}

	p, err := s.payments.GetByGatewayOrderID(ctx, ev.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No matching record can ever appear; failing would make the
			// gateway retry forever.
			s.loggerf("level=warn msg=payment.captured for unknown order order_id=%s", ev.OrderID)
			return nil
		}
		return err
	}
	if p.Status == domain.PaymentCompleted || p.Status == domain.PaymentRefunded {
		s.loggerf("level=info msg=payment.captured replay ignored order_id=%s status=%s", ev.OrderID, p.Status)
		return nil
	}

	capturedAt := time.Unix(ev.CapturedAt, 0).UTC()
	return s.applyCapture(ctx, p, ev.PaymentID, ev.Method, rawBody, capturedAt)
}

func (s *Service) handleFailed(ctx context.Context, payload json.RawMessage) error {
	var ev failedPayload
	if err := json.Unmarshal(payload, &ev); err != nil {
		s.loggerf("level=error msg=malformed payment.failed payload err=%v", err)
		return nil
	}

	p, err := s.payments.GetByGatewayOrderID(ctx, ev.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.loggerf("level=warn msg=payment.failed for unknown order order_id=%s", ev.OrderID)
			return nil
		}
		return err
	}

	changed, err := s.payments.MarkFailedIf(ctx, ev.OrderID, ev.ErrorCode, ev.ErrorDescription)
	if err != nil {
		return err
	}
	if !changed {
		// Late failure for an already-captured or refunded payment.
		s.loggerf("level=info msg=payment.failed ignored for terminal payment order_id=%s status=%s", ev.OrderID, p.Status)
		return nil
	}
	if err := s.bookings.SyncPaymentFailed(ctx, p.BookingID); err != nil {
		s.loggerf("level=error msg=failed to mirror failed payment booking_id=%d err=%v", p.BookingID, err)
	}
	return nil
}

// handleOrderPaid is reconciliation only: the event arrives alongside
// payment.captured and carries the amount the gateway believes was paid.
func (s *Service) handleOrderPaid(ctx context.Context, payload json.RawMessage) error {
	var ev orderPaidPayload
	if err := json.Unmarshal(payload, &ev); err != nil {
		s.loggerf("level=error msg=malformed order.paid payload err=%v", err)
		return nil
	}

	p, err := s.payments.GetByGatewayOrderID(ctx, ev.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.loggerf("level=warn msg=order.paid for unknown order order_id=%s", ev.OrderID)
			return nil
		}
		return err
	}
	if ev.AmountPaid != p.Amount {
		s.loggerf("level=error msg=order.paid amount discrepancy order_id=%s paid=%d expected=%d", ev.OrderID, ev.AmountPaid, p.Amount)
	}
	return nil
}

// applyCapture is the single capture path shared by the webhook and the
// client verification handler. The Payment write is a conditional update, so
// whichever caller lands second is a no-op; only the first writer advances
// the booking and notifies the owner.
func (s *Service) applyCapture(ctx context.Context, p *domain.Payment, paymentID, method, rawBody string, capturedAt time.Time) error {
	changed, err := s.payments.MarkCompletedIf(ctx, p.GatewayOrderID, paymentID, method, rawBody, capturedAt)
	if err != nil {
		return err
	}

	// The booking mirror write is idempotent; running it on replays heals a
	// stale cached view left by a crash between the two writes.
	if err := s.bookings.SyncPaymentCaptured(ctx, p.BookingID, paymentID, capturedAt); err != nil {
		s.loggerf("level=error msg=failed to mirror captured payment booking_id=%d err=%v", p.BookingID, err)
	}

	if !changed {
		s.loggerf("level=info msg=idempotent capture already applied order_id=%s", p.GatewayOrderID)
		return nil
	}

	s.loggerf("level=info msg=payment captured order_id=%s payment_id=%s method=%s", p.GatewayOrderID, paymentID, method)
	if s.notifs != nil {
		b, berr := s.bookings.GetByID(ctx, p.BookingID)
		if berr == nil && b != nil {
			_ = s.notifs.NotifyPaymentCompleted(ctx, b.OwnerID, b.ID, p.Amount)
		}
	}
	return nil
}
