package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/siftscience/sift-cli/internal/validation"
)

// ScoreOptions filter a score lookup.
type ScoreOptions struct {
	CallOptions

	AbuseTypes              []string
	IncludeScorePercentiles bool
}

func (o ScoreOptions) query() url.Values {
	q := url.Values{}
	if len(o.AbuseTypes) > 0 {
		q.Set("abuse_types", strings.Join(o.AbuseTypes, ","))
	}
	if o.IncludeScorePercentiles {
		q.Set("fields", "SCORE_PERCENTILES")
	}
	return q
}

// Score computes a fresh score for the user (GET /score/{user_id}).
func (s ScoresService) Score(ctx context.Context, userID string, opts ScoreOptions) (*Response, error) {
	return getScore(ctx, s, "scores.score", userID, opts, scoreResource)
}

// UserScore returns the latest stored score without recomputing it
// (GET /users/{user_id}/score).
func (s ScoresService) UserScore(ctx context.Context, userID string, opts ScoreOptions) (*Response, error) {
	return getScore(ctx, s, "scores.user_score", userID, opts, userScoreResource)
}

func scoreResource(userID string) string {
	return "/score/" + escapePath(userID)
}

func userScoreResource(userID string) string {
	return "/users/" + escapePath(userID) + "/score"
}

func getScore(ctx context.Context, r Requester, operation, userID string, opts ScoreOptions, resource func(string) string) (*Response, error) {
	if err := validation.NonEmptyID("user_id", userID); err != nil {
		return nil, rejected(operation, err)
	}
	if err := validation.AbuseTypes(opts.AbuseTypes); err != nil {
		return nil, rejected(operation, err)
	}

	return r.Do(ctx, &Request{
		Operation: operation,
		Method:    http.MethodGet,
		URL:       r.versionedPath(opts.Version, resource(userID)),
		Query:     opts.query(),
		Auth:      AuthBasic,
		Timeout:   opts.Timeout,
		Version:   opts.Version,
	})
}

// RescoreOptions limit which abuse types are rescored.
type RescoreOptions struct {
	CallOptions

	AbuseTypes []string
}

// Rescore asks the service to recompute and store the user's score
// (POST /users/{user_id}/score).
func (s ScoresService) Rescore(ctx context.Context, userID string, opts RescoreOptions) (*Response, error) {
	return rescore(ctx, s, userID, opts)
}

func rescore(ctx context.Context, r Requester, userID string, opts RescoreOptions) (*Response, error) {
	const operation = "scores.rescore"
	if err := validation.NonEmptyID("user_id", userID); err != nil {
		return nil, rejected(operation, err)
	}
	if err := validation.AbuseTypes(opts.AbuseTypes); err != nil {
		return nil, rejected(operation, err)
	}

	q := url.Values{}
	if len(opts.AbuseTypes) > 0 {
		q.Set("abuse_types", strings.Join(opts.AbuseTypes, ","))
	}
	return r.Do(ctx, &Request{
		Operation: operation,
		Method:    http.MethodPost,
		URL:       r.versionedPath(opts.Version, userScoreResource(userID)),
		Query:     q,
		Auth:      AuthBasic,
		Timeout:   opts.Timeout,
		Version:   opts.Version,
	})
}
