// Package service builds the response envelope for each extension point.
package service

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strconv"
	"time"

	"custom-auth-extension/backend/internal/extension/domain"
	"custom-auth-extension/backend/internal/telemetry"
)

const (
	promoCodeMin = 1236
	promoCodeMax = 9873 // exclusive

	loyaltyNumberMin = 123467
	loyaltyNumberMax = 999989 // exclusive
	loyaltyDaysMin   = 30
	loyaltyDaysMax   = 365 // exclusive

	loyaltySinceLayout = "02 January 2006"
	prefillCountry     = "es"
)

var (
	loyaltyTiers = []string{"Silver", "Gold", "Platinum", "Diamond"}
	customRoles  = []string{"Writer", "Editor"}
)

// Rand is the source of demo values. It has no security role.
type Rand interface {
	// IntN returns a uniform value in [0, n).
	IntN(n int) int
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int { return rand.IntN(n) }

// OtpNotifier receives each one-time code handed to OtpSend.
type OtpNotifier interface {
	NotifyOtp(ctx context.Context, n domain.OtpNotification) error
}

// OtpNotifierFunc adapts a function to OtpNotifier.
type OtpNotifierFunc func(ctx context.Context, n domain.OtpNotification) error

// NotifyOtp satisfies OtpNotifier.
func (f OtpNotifierFunc) NotifyOtp(ctx context.Context, n domain.OtpNotification) error { return f(ctx, n) }

// Options configure a Service. The zero value is usable.
type Options struct {
	// StartDelay blocks AttributeCollectionStart for exactly this long before it responds.
	StartDelay time.Duration
	// TokenClaims turns on claim emission at token issuance start.
	TokenClaims bool
	APIVersion  string
	Notifiers   []OtpNotifier
	// OnNotifyFailure is called after a notifier fails or panics.
	OnNotifyFailure func(ctx context.Context, err error)

	Rand  Rand
	Now   func() time.Time
	Sleep func(time.Duration)
	// Async runs fire-and-forget work. Defaults to telemetry.Go.
	Async func(ctx context.Context, label string, fn func(context.Context) error)
}

// Service implements the four extension handlers. It holds no mutable state.
type Service struct {
	opts Options
}

// New returns a Service for opts, filling unset dependencies with defaults.
func New(opts Options) *Service {
	if opts.Rand == nil {
		opts.Rand = defaultRand{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Async == nil {
		opts.Async = telemetry.Go
	}
	return &Service{opts: opts}
}

// AttributeCollectionStart pre-fills the country and a fresh promo code after the configured delay.
func (s *Service) AttributeCollectionStart(ctx context.Context, req domain.Request[domain.AttributeCollectionStartData]) domain.Response {
	if d := s.opts.StartDelay; d > 0 {
		log.Printf("extension: attributecollectionstart: simulating delay of %s", d)
		s.opts.Sleep(d)
	}
	n := promoCodeMin + s.opts.Rand.IntN(promoCodeMax-promoCodeMin)
	return domain.NewResponse(domain.AttributeCollectionStart, domain.SetPrefillValues{
		Inputs: domain.PrefillInputs{
			Country:   prefillCountry,
			PromoCode: fmt.Sprintf("Promo code #%d", n),
		},
	})
}

// AttributeCollectionSubmit accepts every submission. Submitted attributes are not validated.
func (s *Service) AttributeCollectionSubmit(ctx context.Context, req domain.Request[domain.AttributeCollectionSubmitData]) domain.Response {
	return domain.NewResponse(domain.AttributeCollectionSubmit, domain.ContinueWithDefaultBehavior{Point: domain.AttributeCollectionSubmit})
}

// OtpSend hands the code to every notifier in the background and acknowledges immediately.
// Notifier failures never change the response.
func (s *Service) OtpSend(ctx context.Context, req domain.Request[domain.OtpSendData]) domain.Response {
	n := req.Data.Notification()
	for _, notifier := range s.opts.Notifiers {
		if notifier == nil {
			continue
		}
		s.opts.Async(ctx, "extension: otpsend", func(ctx context.Context) error {
			s.deliver(ctx, notifier, n)
			return nil
		})
	}
	return domain.NewResponse(domain.OtpSend, domain.ContinueWithDefaultBehavior{Point: domain.OtpSend})
}

// deliver runs one notifier, turning a panic into an error. Errors are logged and reported, never returned.
func (s *Service) deliver(ctx context.Context, notifier OtpNotifier, n domain.OtpNotification) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("notifier panic: %v", r)
			}
		}()
		return notifier.NotifyOtp(ctx, n)
	}()
	if err == nil {
		return
	}
	log.Printf("extension: otpsend: notify failed for correlation %q: %v", n.CorrelationID, err)
	if s.opts.OnNotifyFailure != nil {
		s.opts.OnNotifyFailure(ctx, err)
	}
}

// TokenIssuanceStart returns ProvideClaimsForToken. Claims stay empty unless TokenClaims is set.
func (s *Service) TokenIssuanceStart(ctx context.Context, req domain.Request[domain.TokenIssuanceStartData]) domain.Response {
	correlationID := req.Data.AuthenticationContext.CorrelationID
	log.Printf("extension: tokenissuancestart: correlation %q", correlationID)
	if !s.opts.TokenClaims {
		return domain.NewResponse(domain.TokenIssuanceStart, domain.ProvideClaimsForToken{})
	}
	return domain.NewResponse(domain.TokenIssuanceStart, domain.ProvideClaimsForToken{Claims: s.claims(correlationID)})
}

func (s *Service) claims(correlationID string) domain.TokenClaims {
	r := s.opts.Rand
	days := loyaltyDaysMin + r.IntN(loyaltyDaysMax-loyaltyDaysMin)
	return domain.TokenClaims{
		CorrelationID: correlationID,
		APIVersion:    s.opts.APIVersion,
		LoyaltyNumber: strconv.Itoa(loyaltyNumberMin + r.IntN(loyaltyNumberMax-loyaltyNumberMin)),
		LoyaltySince:  s.opts.Now().AddDate(0, 0, -days).Format(loyaltySinceLayout),
		LoyaltyTier:   loyaltyTiers[r.IntN(len(loyaltyTiers))],
		CustomRoles:   append([]string(nil), customRoles...),
	}
}
