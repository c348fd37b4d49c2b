package api

import (
	"context"
	"net/http"

	"github.com/siftscience/sift-cli/internal/validation"
)

// Send starts a verification: the service delivers a one-time passcode to
// $send_to.
func (s VerificationService) Send(ctx context.Context, props map[string]any, opts CallOptions) (*Response, error) {
	return verify(ctx, s, "verification.send", "/verification/send", validation.VerificationSend, props, opts)
}

// Resend delivers a new passcode for the user's pending verification.
func (s VerificationService) Resend(ctx context.Context, props map[string]any, opts CallOptions) (*Response, error) {
	return verify(ctx, s, "verification.resend", "/verification/resend", validation.VerificationResend, props, opts)
}

// Check submits the passcode the user entered.
func (s VerificationService) Check(ctx context.Context, props map[string]any, opts CallOptions) (*Response, error) {
	return verify(ctx, s, "verification.check", "/verification/check", validation.VerificationCheck, props, opts)
}

func verify(ctx context.Context, r Requester, operation, resource string, check func(map[string]any) error, props map[string]any, opts CallOptions) (*Response, error) {
	if err := check(props); err != nil {
		return nil, rejected(operation, err)
	}
	return r.Do(ctx, &Request{
		Operation: operation,
		Method:    http.MethodPost,
		URL:       r.v1Path(resource),
		Body:      props,
		Auth:      AuthBasic,
		Timeout:   opts.Timeout,
		Version:   opts.Version,
	})
}
