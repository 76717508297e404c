package codeforces

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/growthlens/internal/domain/model"
	"github.com/okian/growthlens/pkg/logger"
	"github.com/okian/growthlens/pkg/metrics"
)

// API method names.
const (
	MethodUserRating = "user.rating"
	MethodUserStatus = "user.status"

	statusOK = "OK"

	// participantContestant marks submissions made during a live contest.
	participantContestant = "CONTESTANT"
)

// Cache stores raw API results keyed by method and handle.
type Cache interface {
	Get(ctx context.Context, method, handle string) ([]byte, bool, error)
	Put(ctx context.Context, method, handle string, payload []byte) error
}

// Client calls the Codeforces API with retry, backoff and a shared throttle.
// A Client is safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	timeout  time.Duration
	attempts int
	backoff  time.Duration
	throttle *throttle
	cache    Cache
	logger   logger.Logger
}

// New creates a Client with configuration options.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		http:     &http.Client{},
		timeout:  DefaultTimeout,
		attempts: DefaultAttempts,
		backoff:  DefaultBackoff,
		throttle: newThrottle(DefaultMinInterval),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the common response wrapper of every API method.
type envelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

type apiRatingChange struct {
	OldRating               int   `json:"oldRating"`
	NewRating               int   `json:"newRating"`
	RatingUpdateTimeSeconds int64 `json:"ratingUpdateTimeSeconds"`
}

type apiSubmission struct {
	ID                  int64  `json:"id"`
	CreationTimeSeconds int64  `json:"creationTimeSeconds"`
	Verdict             string `json:"verdict"`
	PassedTestCount     int    `json:"passedTestCount"`
	Problem             struct {
		Index  string   `json:"index"`
		Type   string   `json:"type"`
		Tags   []string `json:"tags"`
		Rating int      `json:"rating"`
	} `json:"problem"`
	Author struct {
		ParticipantType string `json:"participantType"`
	} `json:"author"`
}

// Ratings returns the user's rating changes in the order the API lists them,
// which is chronological.
func (c *Client) Ratings(ctx context.Context, handle string) ([]model.RatingEvent, error) {
	raw, err := c.result(ctx, MethodUserRating, handle)
	if err != nil {
		return nil, err
	}
	var changes []apiRatingChange
	if err := json.Unmarshal(raw, &changes); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrDecode, MethodUserRating, handle, err)
	}
	events := make([]model.RatingEvent, len(changes))
	for i, ch := range changes {
		events[i] = model.RatingEvent{
			OldRating:  ch.OldRating,
			NewRating:  ch.NewRating,
			UpdateTime: ch.RatingUpdateTimeSeconds,
		}
	}
	return events, nil
}

// Submissions returns the user's practice submissions. Submissions made as
// a live contestant are skipped. Unrated problems get rating 0.
func (c *Client) Submissions(ctx context.Context, handle string) ([]model.Submission, error) {
	raw, err := c.result(ctx, MethodUserStatus, handle)
	if err != nil {
		return nil, err
	}
	var subs []apiSubmission
	if err := json.Unmarshal(raw, &subs); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrDecode, MethodUserStatus, handle, err)
	}
	out := make([]model.Submission, 0, len(subs))
	for _, s := range subs {
		if s.Author.ParticipantType == participantContestant {
			continue
		}
		tags := s.Problem.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, model.Submission{
			ID:              s.ID,
			Time:            s.CreationTimeSeconds,
			ProblemIndex:    s.Problem.Index,
			ProblemType:     s.Problem.Type,
			Tags:            tags,
			Rating:          s.Problem.Rating,
			Verdict:         s.Verdict,
			PassedTestCount: s.PassedTestCount,
		})
	}
	return out, nil
}

// result returns the raw "result" payload, from the cache when possible.
func (c *Client) result(ctx context.Context, method, handle string) (json.RawMessage, error) {
	if c.cache != nil {
		payload, ok, err := c.cache.Get(ctx, method, handle)
		switch {
		case err != nil:
			c.logger.Warn(ctx, "cache read failed", logger.String("method", method), logger.String("handle", handle), logger.Error(err))
			metrics.RecordError("cache", "read")
		case ok:
			metrics.RecordCacheLookup(true)
			return payload, nil
		default:
			metrics.RecordCacheLookup(false)
		}
	}

	var raw json.RawMessage
	err := c.withRetry(ctx, method, func(ctx context.Context) error {
		var err error
		raw, err = c.do(ctx, method, handle)
		return err
	})
	if err != nil {
		metrics.RecordError("codeforces", method)
		return nil, fmt.Errorf("%s %s: %w", method, handle, err)
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, method, handle, raw); err != nil {
			c.logger.Warn(ctx, "cache write failed", logger.String("method", method), logger.String("handle", handle), logger.Error(err))
			metrics.RecordError("cache", "write")
		}
	}
	return raw, nil
}

// do performs one throttled request and unwraps the envelope.
func (c *Client) do(ctx context.Context, method, handle string) (json.RawMessage, error) {
	if err := c.throttle.wait(ctx); err != nil {
		return nil, &permanentError{err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + "/" + method + "?" + url.Values{"handle": {handle}}.Encode()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &permanentError{err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(method, "transport_error", time.Since(start))
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordAPIRequest(method, "read_error", time.Since(start))
		return nil, fmt.Errorf("read body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		metrics.RecordAPIRequest(method, "decode_error", time.Since(start))
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if env.Status != statusOK || resp.StatusCode != http.StatusOK {
		metrics.RecordAPIRequest(method, "failed", time.Since(start))
		err := fmt.Errorf("%w: http %s: %s", ErrAPIStatus, strconv.Itoa(resp.StatusCode), env.Comment)
		// Codeforces answers 400 FAILED for unknown handles and bad arguments.
		if resp.StatusCode == http.StatusBadRequest {
			return nil, &permanentError{err: err}
		}
		return nil, err
	}
	if len(env.Result) == 0 {
		metrics.RecordAPIRequest(method, "decode_error", time.Since(start))
		return nil, fmt.Errorf("%w: missing result", ErrDecode)
	}

	metrics.RecordAPIRequest(method, "ok", time.Since(start))
	c.logger.Debug(ctx, "api call succeeded",
		logger.String("method", method),
		logger.String("handle", handle),
		logger.Duration("elapsed", time.Since(start)),
	)
	return env.Result, nil
}
