package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/taha-association/links-backend/internal/gate/domain"
)

// CredentialStore is the gate's persistence slot.
type CredentialStore interface {
	Get(ctx context.Context) (*domain.Credential, error)
	Save(ctx context.Context, cred *domain.Credential) error
	Clear(ctx context.Context) error
}

// Challenger abstracts the platform authenticator. Implementations decide
// whether a challenge response proves user verification; the gate converts
// any error into a denial, never a crash.
type Challenger interface {
	Challenge(ctx context.Context, device domain.Device, input domain.ChallengeInput) (credentialID string, err error)
}

// AssertionChallenger accepts any non-empty platform assertion. The gate is
// a device-capability check, not a cryptographic protocol; the real
// verification already happened on the device.
type AssertionChallenger struct{}

func (AssertionChallenger) Challenge(ctx context.Context, device domain.Device, input domain.ChallengeInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if input.Assertion == "" {
		return "", errors.New("missing platform assertion")
	}
	if input.CredentialID != "" {
		return input.CredentialID, nil
	}
	return uuid.NewString(), nil
}

// GateService runs the access-gate state machine:
//
//	Unknown -> Granted (desktop bypass)
//	        -> Granted (valid stored credential, mobile)
//	        -> NeedsChallenge -> Authenticating -> Granted | Denied
//	NeedsChallenge -> Granted (explicit skip, no credential stored)
//
// The gate is advisory; a denial always leaves skip available.
type GateService struct {
	creds      CredentialStore
	challenger Challenger
	limiter    *rate.Limiter
	timeout    time.Duration

	mu     sync.Mutex
	state  domain.State
	method domain.GrantMethod
}

type Options struct {
	ChallengeTimeout  time.Duration
	AttemptsPerMinute int
}

func NewGateService(creds CredentialStore, challenger Challenger, opts Options) *GateService {
	if opts.ChallengeTimeout == 0 {
		opts.ChallengeTimeout = 60 * time.Second
	}
	if opts.AttemptsPerMinute == 0 {
		opts.AttemptsPerMinute = 5
	}
	return &GateService{
		creds:      creds,
		challenger: challenger,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.AttemptsPerMinute)), opts.AttemptsPerMinute),
		timeout:    opts.ChallengeTimeout,
		state:      domain.StateUnknown,
	}
}

// Probe evaluates the gate for the given device. Desktop devices bypass the
// gate regardless of any stored credential. Mobile devices pass when a
// stored credential is still inside its validity window.
func (s *GateService) Probe(ctx context.Context, device domain.Device) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !device.IsMobile() {
		s.state = domain.StateGranted
		s.method = domain.MethodDesktopBypass
		return domain.Status{State: s.state, Method: s.method}
	}

	cred, err := s.creds.Get(ctx)
	if err == nil && cred.Valid(time.Now()) {
		s.state = domain.StateGranted
		s.method = domain.MethodCredential
		return domain.Status{State: s.state, Method: s.method}
	}
	if err != nil && !errors.Is(err, domain.ErrNoCredential) {
		log.Printf("[warn] operation=gate.probe error=%v", err)
	}

	s.state = domain.StateNeedsChallenge
	s.method = ""
	return domain.Status{State: s.state}
}

// Authenticate runs the platform challenge. Every failure mode converts to
// a Denied status with the underlying reason; the caller is expected to
// offer Skip as the escape hatch.
func (s *GateService) Authenticate(ctx context.Context, device domain.Device, input domain.ChallengeInput) domain.Status {
	if !device.IsMobile() {
		return s.deny("biometric authentication is only available on mobile devices")
	}
	if s.challenger == nil {
		return s.deny("biometric authentication is not available on this device")
	}
	if !s.limiter.Allow() {
		return s.deny("too many authentication attempts")
	}

	s.mu.Lock()
	s.state = domain.StateAuthenticating
	s.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	credentialID, err := s.challenger.Challenge(cctx, device, input)
	if err != nil {
		return s.deny(err.Error())
	}
	if credentialID == "" {
		credentialID = uuid.NewString()
	}

	cred := &domain.Credential{
		Authenticated: true,
		Timestamp:     time.Now().UnixMilli(),
		CredentialID:  credentialID,
	}
	if err := s.creds.Save(ctx, cred); err != nil {
		return s.deny("failed to store credential: " + err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.StateGranted
	s.method = domain.MethodChallenge
	return domain.Status{State: s.state, Method: s.method}
}

// Skip grants access without storing a credential. Policy choice: the gate
// is advisory, not enforced.
func (s *GateService) Skip() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.StateGranted
	s.method = domain.MethodSkip
	return domain.Status{State: s.state, Method: s.method}
}

// Logout clears the stored credential. It only applies to grants backed by
// one; a bypass or skip grant has nothing to clear and returns
// ErrNoCredential.
func (s *GateService) Logout(ctx context.Context) error {
	s.mu.Lock()
	method := s.method
	s.mu.Unlock()

	if method != domain.MethodCredential && method != domain.MethodChallenge {
		return domain.ErrNoCredential
	}

	if err := s.creds.Clear(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.StateUnknown
	s.method = ""
	return nil
}

func (s *GateService) deny(reason string) domain.Status {
	log.Printf("[warn] operation=gate.authenticate denied reason=%q", reason)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.StateDenied
	s.method = ""
	return domain.Status{State: domain.StateDenied, Reason: reason}
}
