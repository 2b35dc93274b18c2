package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/voicenotify/voicenotify/pkg/events"
	"github.com/voicenotify/voicenotify/pkg/urlvalidation"
)

const maxBreakers = 10000

// Executor calls external hook endpoints with per-URL circuit breaking.
type Executor struct {
	httpClient   *http.Client
	publisher    *events.Publisher
	breakerCfg   CircuitBreakerConfig
	validateOpts []urlvalidation.Option

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

// NewExecutor creates a new hook executor.
func NewExecutor(publisher *events.Publisher, breakerCfg CircuitBreakerConfig, validateOpts ...urlvalidation.Option) *Executor {
	if breakerCfg.FailureThreshold <= 0 {
		breakerCfg.FailureThreshold = 5
	}
	if breakerCfg.ResetTimeout <= 0 {
		breakerCfg.ResetTimeout = 60 * time.Second
	}
	return &Executor{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		publisher:    publisher,
		breakerCfg:   breakerCfg,
		validateOpts: validateOpts,
		breakers:     make(map[string]*CircuitBreaker),
	}
}

func (e *Executor) getOrCreateBreaker(url string) *CircuitBreaker {
	e.mu.Lock()
	defer e.mu.Unlock()

	cb, ok := e.breakers[url]
	if ok {
		return cb
	}

	// Evict an entry if at capacity.
	if len(e.breakers) >= maxBreakers {
		for k := range e.breakers {
			delete(e.breakers, k)
			break
		}
	}

	cb = NewCircuitBreaker(e.breakerCfg)
	e.breakers[url] = cb
	return cb
}

// Execute calls the hook endpoint and returns the response.
func (e *Executor) Execute(ctx context.Context, cfg HookConfig, req HookRequest) (*HookResponse, error) {
	if err := urlvalidation.ValidateHookURL(cfg.URL, e.validateOpts...); err != nil {
		return nil, fmt.Errorf("hook URL validation: %w", err)
	}

	cb := e.getOrCreateBreaker(cfg.URL)
	if !cb.AllowRequest() {
		return nil, fmt.Errorf("hook circuit open for %s", cfg.URL)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal hook request: %w", err)
	}

	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create hook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	switch cfg.AuthType {
	case "bearer":
		httpReq.Header.Set("Authorization", "Bearer "+cfg.AuthSecret)
	case "hmac":
		httpReq.Header.Set(SignatureHeader, Sign(cfg.AuthSecret, body))
	}

	for k, v := range cfg.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		cb.RecordFailure()
		e.emitError(ctx, req.NotificationID, cfg.URL, err.Error())
		return nil, fmt.Errorf("hook request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	// Drain remainder for connection reuse.
	io.Copy(io.Discard, resp.Body)
	if err != nil {
		cb.RecordFailure()
		return nil, fmt.Errorf("read hook response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		cb.RecordFailure()
		errMsg := fmt.Sprintf("hook returned HTTP %d: %s", resp.StatusCode, string(respBody))
		e.emitError(ctx, req.NotificationID, cfg.URL, errMsg)
		return nil, fmt.Errorf("%s", errMsg)
	}

	cb.RecordSuccess()

	var hookResp HookResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &hookResp); err != nil {
			return nil, fmt.Errorf("unmarshal hook response: %w", err)
		}
	}

	if e.publisher != nil {
		_ = e.publisher.Emit(ctx, events.HookResult, req.NotificationID, &events.HookResultData{
			HookURL:    cfg.URL,
			StatusCode: resp.StatusCode,
			Response:   hookResp.Data,
		})
	}

	return &hookResp, nil
}

// BreakerState reports the circuit state for a hook URL, closed if unseen.
func (e *Executor) BreakerState(url string) State {
	e.mu.Lock()
	cb, ok := e.breakers[url]
	e.mu.Unlock()
	if !ok {
		return StateClosed
	}
	return cb.State()
}

func (e *Executor) emitError(ctx context.Context, notificationID, url, errMsg string) {
	if e.publisher == nil {
		return
	}
	_ = e.publisher.Emit(ctx, events.HookError, notificationID, &events.HookErrorData{
		HookURL: url,
		Error:   errMsg,
	})
}
