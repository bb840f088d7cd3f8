package billing

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ytza/ytza/internal/config"
	creditsdomain "github.com/ytza/ytza/internal/credits/domain"
	"github.com/ytza/ytza/internal/observability/logger"
	"github.com/ytza/ytza/internal/providers/stripe"
	purchasedomain "github.com/ytza/ytza/internal/purchase/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrEmailMismatch     = errors.New("session_email_mismatch")
	ErrPaymentIncomplete = errors.New("payment_not_completed")
	ErrUnknownPlan       = creditsdomain.ErrUnknownPlan
	ErrBillingDisabled   = errors.New("billing_not_configured")
)

const webhookDedupTTL = 24 * time.Hour

type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type VerifyResult struct {
	Success bool   `json:"success"`
	Plan    string `json:"plan"`
	Balance int    `json:"balance"`
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Config    config.Config
	Plans     *config.PlansConfigHolder
	Stripe    *stripe.Client
	Verifier  *stripe.WebhookVerifier
	Redis     *redis.Client `optional:"true"`
	Credits   creditsdomain.Service
	Purchases purchasedomain.Service
}

// Service drives paid plans: hosted checkout, post-payment verification,
// and webhook-driven credit grants. Both the verify path and the webhook
// can credit a session; the purchases table's unique session constraint is
// what makes them race-safe.
type Service struct {
	log       *zap.Logger
	cfg       config.Config
	plans     *config.PlansConfigHolder
	stripe    *stripe.Client
	verifier  *stripe.WebhookVerifier
	redis     *redis.Client
	credits   creditsdomain.Service
	purchases purchasedomain.Service
}

func New(p Params) *Service {
	return &Service{
		log:       p.Log.Named("billing"),
		cfg:       p.Config,
		plans:     p.Plans,
		stripe:    p.Stripe,
		verifier:  p.Verifier,
		redis:     p.Redis,
		credits:   p.Credits,
		purchases: p.Purchases,
	}
}

// CreateCheckout opens a Stripe checkout for a paid plan. An empty plan
// name selects the default subscription plan.
func (s *Service) CreateCheckout(ctx context.Context, userID, email, planName string) (CheckoutResult, error) {
	if !s.stripe.Enabled() {
		return CheckoutResult{}, ErrBillingDisabled
	}

	if strings.TrimSpace(planName) == "" {
		planName = "pro"
	}
	plan, ok := s.plans.Lookup(planName)
	if !ok || plan.PriceCents <= 0 {
		return CheckoutResult{}, ErrUnknownPlan
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, stripe.CheckoutParams{
		PlanName:     plan.Name,
		PriceCents:   plan.PriceCents,
		Credits:      plan.Credits,
		UserID:       userID,
		UserEmail:    email,
		Subscription: plan.PurchaseType == purchasedomain.TypeSubscription,
		SuccessURL:   s.cfg.CheckoutSuccessURL,
		CancelURL:    s.cfg.CheckoutCancelURL,
	})
	if err != nil {
		return CheckoutResult{}, err
	}
	return CheckoutResult{SessionID: session.ID, URL: session.URL}, nil
}

// VerifyPayment confirms a completed checkout from the success redirect.
// The session's payer email must match the authenticated user.
func (s *Service) VerifyPayment(ctx context.Context, userID, email, sessionID string) (VerifyResult, error) {
	if !s.stripe.Enabled() {
		return VerifyResult{}, ErrBillingDisabled
	}

	session, err := s.stripe.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return VerifyResult{}, err
	}
	if !session.Paid() {
		return VerifyResult{}, ErrPaymentIncomplete
	}
	if !strings.EqualFold(strings.TrimSpace(session.Email()), strings.TrimSpace(email)) {
		return VerifyResult{}, ErrEmailMismatch
	}

	planName := session.Metadata["plan_name"]
	plan, ok := s.plans.Lookup(planName)
	if !ok {
		return VerifyResult{}, ErrUnknownPlan
	}

	if err := s.credit(ctx, userID, plan, session.ID, session.AmountTotal); err != nil {
		return VerifyResult{}, err
	}

	balance, err := s.credits.Balance(ctx, userID)
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{Success: true, Plan: plan.Name, Balance: balance}, nil
}

// HandleWebhook processes a raw Stripe event. Signature failures reject the
// request; duplicate or irrelevant events acknowledge without work.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	if err := s.verifier.Verify(payload, headers); err != nil {
		return err
	}

	event, err := s.verifier.Parse(payload)
	if err != nil {
		if errors.Is(err, stripe.ErrEventIgnored) {
			return nil
		}
		return err
	}

	if !s.claimEvent(ctx, event.EventID) {
		logger.FromContext(ctx).Info("duplicate webhook delivery skipped",
			zap.String("event_id", event.EventID),
		)
		return nil
	}

	plan, ok := s.plans.Lookup(event.PlanName)
	if !ok {
		s.log.Warn("webhook references unknown plan",
			zap.String("plan", event.PlanName),
			zap.String("session_id", event.SessionID),
		)
		return nil
	}

	return s.credit(ctx, event.UserID, plan, event.SessionID, event.AmountTotal)
}

// credit records the purchase and grants credits exactly once per session.
// The unique stripe_session_id constraint is the idempotency barrier.
func (s *Service) credit(ctx context.Context, userID string, plan config.Plan, sessionID string, amountCents int64) error {
	_, err := s.purchases.Record(ctx, purchasedomain.RecordRequest{
		UserID:          userID,
		AmountCents:     amountCents,
		CreditsAdded:    plan.Credits,
		PurchaseType:    plan.PurchaseType,
		StripeSessionID: sessionID,
	})
	if errors.Is(err, purchasedomain.ErrDuplicateSession) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.credits.Grant(ctx, userID, plan.Credits, plan.Tier); err != nil {
		return err
	}

	s.log.Info("credits granted",
		zap.String("user_id", userID),
		zap.String("plan", plan.Name),
		zap.Int("credits", plan.Credits),
	)
	return nil
}

// claimEvent dedupes webhook deliveries across instances via SETNX. Without
// Redis it reports true and the session constraint catches duplicates.
func (s *Service) claimEvent(ctx context.Context, eventID string) bool {
	if s.redis == nil || eventID == "" {
		return true
	}
	ok, err := s.redis.SetNX(ctx, "webhook:stripe:"+eventID, 1, webhookDedupTTL).Result()
	if err != nil {
		s.log.Warn("webhook dedup check failed, processing anyway", zap.Error(err))
		return true
	}
	return ok
}
