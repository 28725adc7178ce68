package domain

import (
	"regexp"
	"time"
)

// State is the gate's position in its entry state machine.
type State string

const (
	StateUnknown        State = "unknown"
	StateNeedsChallenge State = "needs_challenge"
	StateAuthenticating State = "authenticating"
	StateGranted        State = "granted"
	StateDenied         State = "denied"
)

// GrantMethod records how a Granted state was reached. Logout only makes
// sense for grants backed by a stored credential.
type GrantMethod string

const (
	MethodDesktopBypass GrantMethod = "desktop_bypass"
	MethodCredential    GrantMethod = "credential"
	MethodChallenge     GrantMethod = "challenge"
	MethodSkip          GrantMethod = "skip"
)

// CredentialTTL is the validity window of a stored credential, measured
// from its timestamp. Expiry is checked at read time, never proactively.
const CredentialTTL = 24 * time.Hour

// Credential is the locally stored authentication record. Timestamp is
// unix milliseconds.
type Credential struct {
	Authenticated bool   `json:"authenticated"`
	Timestamp     int64  `json:"timestamp"`
	CredentialID  string `json:"credentialId"`
}

// Valid reports whether the credential still grants access at the given time.
func (c Credential) Valid(now time.Time) bool {
	if !c.Authenticated {
		return false
	}
	age := now.Sub(time.UnixMilli(c.Timestamp))
	return age >= 0 && age < CredentialTTL
}

var mobileUA = regexp.MustCompile(`(?i)android|webos|iphone|ipad|ipod|blackberry|iemobile|opera mini`)

// Device is the probed capability profile of the requesting device.
type Device struct {
	UserAgent    string
	HasTouch     bool
	ScreenWidth  int
	ScreenHeight int
}

// IsMobile matches mobile user agents, or touch devices with mobile-like
// screen dimensions.
func (d Device) IsMobile() bool {
	if mobileUA.MatchString(d.UserAgent) {
		return true
	}
	smallScreen := (d.ScreenWidth > 0 && d.ScreenWidth <= 768) ||
		(d.ScreenHeight > 0 && d.ScreenHeight <= 768)
	return d.HasTouch && smallScreen
}

// Status is the externally visible gate state.
type Status struct {
	State  State       `json:"state"`
	Method GrantMethod `json:"method,omitempty"`
	Reason string      `json:"reason,omitempty"`
}

// ChallengeInput carries the platform authenticator's response. The gate is
// advisory: the assertion is checked for presence, not verified
// cryptographically.
type ChallengeInput struct {
	CredentialID string `json:"credentialId"`
	Assertion    string `json:"assertion"`
}
