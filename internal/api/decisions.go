package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/siftscience/sift-cli/internal/validation"
)

// DecisionListOptions page and filter the decisions catalog.
type DecisionListOptions struct {
	CallOptions

	Limit      int
	From       int
	AbuseTypes []string
}

// List returns the decisions configured for an entity type
// (GET /v3/accounts/{account_id}/decisions).
func (s DecisionsService) List(ctx context.Context, entityType string, opts DecisionListOptions) (*Response, error) {
	return listDecisions(ctx, s, entityType, opts)
}

func listDecisions(ctx context.Context, r Requester, entityType string, opts DecisionListOptions) (*Response, error) {
	const operation = "decisions.list"
	target, err := r.accountPath("/decisions")
	if err != nil {
		return nil, rejected(operation, err)
	}
	if err := validation.EntityType(entityType); err != nil {
		return nil, rejected(operation, err)
	}
	if err := validation.AbuseTypes(opts.AbuseTypes); err != nil {
		return nil, rejected(operation, err)
	}

	q := url.Values{}
	q.Set("entity_type", entityType)
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.From > 0 {
		q.Set("from", strconv.Itoa(opts.From))
	}
	if len(opts.AbuseTypes) > 0 {
		q.Set("abuse_types", strings.Join(opts.AbuseTypes, ","))
	}

	return r.Do(ctx, &Request{
		Operation: operation,
		Method:    http.MethodGet,
		URL:       target,
		Query:     q,
		Auth:      AuthBasic,
		Timeout:   opts.Timeout,
	})
}

// entity names one decision target. ids are checked in order and escaped
// into alternating collection/id segments.
type entity struct {
	operation string
	names     []string
	ids       []string
	paths     []string
}

func (e entity) resource(r Requester) (string, error) {
	base, err := r.accountPath("")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(base)
	for i, id := range e.ids {
		if err := validation.NonEmptyID(e.names[i], id); err != nil {
			return "", err
		}
		b.WriteString("/" + e.paths[i] + "/" + escapePath(id))
	}
	b.WriteString("/decisions")
	return b.String(), nil
}

func userEntity(op, userID string) entity {
	return entity{op, []string{"user_id"}, []string{userID}, []string{"users"}}
}

func orderEntity(op, orderID string) entity {
	return entity{op, []string{"order_id"}, []string{orderID}, []string{"orders"}}
}

func userOrderEntity(op, userID, orderID string) entity {
	return entity{op, []string{"user_id", "order_id"}, []string{userID, orderID}, []string{"users", "orders"}}
}

func sessionEntity(op, userID, sessionID string) entity {
	return entity{op, []string{"user_id", "session_id"}, []string{userID, sessionID}, []string{"users", "sessions"}}
}

func contentEntity(op, userID, contentID string) entity {
	return entity{op, []string{"user_id", "content_id"}, []string{userID, contentID}, []string{"users", "content"}}
}

func getDecisions(ctx context.Context, r Requester, e entity, opts CallOptions) (*Response, error) {
	target, err := e.resource(r)
	if err != nil {
		return nil, rejected(e.operation, err)
	}
	return r.Do(ctx, &Request{
		Operation: e.operation,
		Method:    http.MethodGet,
		URL:       target,
		Auth:      AuthBasic,
		Timeout:   opts.Timeout,
	})
}

func applyDecision(ctx context.Context, r Requester, e entity, props map[string]any, opts CallOptions) (*Response, error) {
	target, err := e.resource(r)
	if err != nil {
		return nil, rejected(e.operation, err)
	}
	if err := validation.DecisionProperties(props); err != nil {
		return nil, rejected(e.operation, err)
	}
	return r.Do(ctx, &Request{
		Operation: e.operation,
		Method:    http.MethodPost,
		URL:       target,
		Body:      props,
		Auth:      AuthBasic,
		Timeout:   opts.Timeout,
	})
}

// User returns the decisions currently applied to a user.
func (s DecisionsService) User(ctx context.Context, userID string, opts CallOptions) (*Response, error) {
	return getDecisions(ctx, s, userEntity("decisions.user", userID), opts)
}

// Order returns the decisions currently applied to an order.
func (s DecisionsService) Order(ctx context.Context, orderID string, opts CallOptions) (*Response, error) {
	return getDecisions(ctx, s, orderEntity("decisions.order", orderID), opts)
}

// Session returns the decisions currently applied to a user's session.
func (s DecisionsService) Session(ctx context.Context, userID, sessionID string, opts CallOptions) (*Response, error) {
	return getDecisions(ctx, s, sessionEntity("decisions.session", userID, sessionID), opts)
}

// Content returns the decisions currently applied to a user's content.
func (s DecisionsService) Content(ctx context.Context, userID, contentID string, opts CallOptions) (*Response, error) {
	return getDecisions(ctx, s, contentEntity("decisions.content", userID, contentID), opts)
}

// ApplyUser applies a decision to a user.
func (s DecisionsService) ApplyUser(ctx context.Context, userID string, props map[string]any, opts CallOptions) (*Response, error) {
	return applyDecision(ctx, s, userEntity("decisions.apply_user", userID), props, opts)
}

// ApplyOrder applies a decision to one of a user's orders.
func (s DecisionsService) ApplyOrder(ctx context.Context, userID, orderID string, props map[string]any, opts CallOptions) (*Response, error) {
	return applyDecision(ctx, s, userOrderEntity("decisions.apply_order", userID, orderID), props, opts)
}

// ApplySession applies a decision to one of a user's sessions.
func (s DecisionsService) ApplySession(ctx context.Context, userID, sessionID string, props map[string]any, opts CallOptions) (*Response, error) {
	return applyDecision(ctx, s, sessionEntity("decisions.apply_session", userID, sessionID), props, opts)
}

// ApplyContent applies a decision to one piece of a user's content.
func (s DecisionsService) ApplyContent(ctx context.Context, userID, contentID string, props map[string]any, opts CallOptions) (*Response, error) {
	return applyDecision(ctx, s, contentEntity("decisions.apply_content", userID, contentID), props, opts)
}
