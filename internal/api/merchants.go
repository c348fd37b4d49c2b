package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/siftscience/sift-cli/internal/validation"
)

const merchantsResource = "/psp_management/merchants"

// MerchantListOptions page through merchant profiles. BatchToken comes
// from the previous page's "next_ref".
type MerchantListOptions struct {
	CallOptions

	BatchSize  int
	BatchToken string
}

// List returns one page of PSP merchant profiles.
func (s MerchantsService) List(ctx context.Context, opts MerchantListOptions) (*Response, error) {
	const operation = "merchants.list"
	target, err := s.accountPath(merchantsResource)
	if err != nil {
		return nil, rejected(operation, err)
	}

	q := url.Values{}
	if opts.BatchSize > 0 {
		q.Set("batch_size", strconv.Itoa(opts.BatchSize))
	}
	if opts.BatchToken != "" {
		q.Set("batch_token", opts.BatchToken)
	}
	return s.Do(ctx, &Request{
		Operation: operation,
		Method:    http.MethodGet,
		URL:       target,
		Query:     q,
		Auth:      AuthBasic,
		Timeout:   opts.Timeout,
	})
}

// Get returns one merchant profile.
func (s MerchantsService) Get(ctx context.Context, merchantID string, opts CallOptions) (*Response, error) {
	return merchant(ctx, s, "merchants.get", http.MethodGet, merchantID, nil, opts)
}

// Create registers a new merchant profile.
func (s MerchantsService) Create(ctx context.Context, props map[string]any, opts CallOptions) (*Response, error) {
	const operation = "merchants.create"
	target, err := s.accountPath(merchantsResource)
	if err != nil {
		return nil, rejected(operation, err)
	}
	if err := validation.NonEmptyMapping("properties", props); err != nil {
		return nil, rejected(operation, err)
	}
	return s.Do(ctx, &Request{
		Operation: operation,
		Method:    http.MethodPost,
		URL:       target,
		Body:      props,
		Auth:      AuthBasic,
		Timeout:   opts.Timeout,
	})
}

// Update replaces a merchant profile.
func (s MerchantsService) Update(ctx context.Context, merchantID string, props map[string]any, opts CallOptions) (*Response, error) {
	return merchant(ctx, s, "merchants.update", http.MethodPut, merchantID, props, opts)
}

func merchant(ctx context.Context, r Requester, operation, method, merchantID string, body map[string]any, opts CallOptions) (*Response, error) {
	base, err := r.accountPath(merchantsResource)
	if err != nil {
		return nil, rejected(operation, err)
	}
	if err := validation.NonEmptyID("merchant_id", merchantID); err != nil {
		return nil, rejected(operation, err)
	}
	if method == http.MethodPut {
		if err := validation.NonEmptyMapping("properties", body); err != nil {
			return nil, rejected(operation, err)
		}
	}
	req := &Request{
		Operation: operation,
		Method:    method,
		URL:       base + "/" + escapePath(merchantID),
		Auth:      AuthBasic,
		Timeout:   opts.Timeout,
	}
	if body != nil {
		req.Body = body
	}
	return r.Do(ctx, req)
}
