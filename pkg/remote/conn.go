// Package remote is the client for a remote SQL query engine reached over
// HTTP. A Conn sends one POST per query and translates the engine's JSON
// envelope into a result.Result.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/leapstack-labs/leapquery/pkg/result"
	"github.com/leapstack-labs/leapquery/pkg/wire"
)

// DefaultTimeout applies when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Transport performs a single HTTP exchange. Tests inject one to avoid the
// network; the default uses http.DefaultClient.
type Transport func(req *http.Request) (*http.Response, error)

// Config holds connection settings.
type Config struct {
	Endpoint  string
	Token     string
	Timeout   time.Duration
	Transport Transport
	Logger    *slog.Logger
}

// timerFunc arms fn to run after d and returns a function that disarms it.
type timerFunc func(d time.Duration, fn func()) (stop func() bool)

func afterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

// Conn is an immutable handle to a remote engine. It is safe for concurrent use.
type Conn struct {
	endpoint   string
	token      string
	timeout    time.Duration
	transport  Transport
	logger     *slog.Logger
	startTimer timerFunc
}

// New creates a Conn. No network traffic happens until a query runs.
func New(cfg Config) *Conn {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Conn{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		token:      cfg.Token,
		timeout:    timeout,
		transport:  cfg.Transport,
		logger:     logger,
		startTimer: afterFunc,
	}
}

// Endpoint returns the base URL with trailing slashes removed.
func (c *Conn) Endpoint() string { return c.endpoint }

// Timeout returns the per-request timeout.
func (c *Conn) Timeout() time.Duration { return c.timeout }

// Run substitutes params into query, sends it, and returns the translated result.
func (c *Conn) Run(ctx context.Context, query string, params ...any) (*result.Result, error) {
	values, err := wire.FromAnySlice(params)
	if err != nil {
		return nil, fmt.Errorf("convert parameters: %w", err)
	}
	return c.execute(ctx, query, values)
}

// Stream is Run with a row-by-row view over the buffered result.
func (c *Conn) Stream(ctx context.Context, query string, params ...any) (*result.Stream, error) {
	res, err := c.Run(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	return res.Stream(), nil
}

// Prepare returns a statement bound to this Conn. It does not contact the engine.
func (c *Conn) Prepare(query string) *Stmt {
	return &Stmt{conn: c, query: query}
}

var errTimerFired = errors.New("timer fired")

type roundTrip struct {
	resp *http.Response
	err  error
}

func (c *Conn) execute(ctx context.Context, query string, params []wire.Value) (*result.Result, error) {
	text := Substitute(query, params)
	start := time.Now()

	res, err := c.post(ctx, text)
	if err != nil {
		c.logger.Warn("remote query failed",
			"endpoint", c.endpoint,
			"elapsed", time.Since(start),
			"error", err)
		return nil, err
	}

	c.logger.Debug("remote query completed",
		"endpoint", c.endpoint,
		"elapsed", time.Since(start),
		"rows", res.RowCount())
	return res, nil
}

func (c *Conn) post(ctx context.Context, text string) (*result.Result, error) {
	body, err := json.Marshal(wire.QueryRequest{Query: text})
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("encode request: %w", err)}
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := c.startTimer(c.timeout, func() { cancel(errTimerFired) })
	defer stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	// The exchange runs apart from the caller so a transport that ignores
	// the request context still cannot outlive the timeout.
	done := make(chan roundTrip, 1)
	go func() {
		resp, err := c.roundTrip(req)
		done <- roundTrip{resp: resp, err: err}
	}()

	var rt roundTrip
	select {
	case rt = <-done:
	case <-ctx.Done():
		go drain(done)
		return nil, c.contextError(ctx)
	}
	if rt.err != nil {
		if ctx.Err() != nil {
			return nil, c.contextError(ctx)
		}
		return nil, &TransportError{Err: rt.err}
	}
	defer rt.resp.Body.Close()

	data, err := io.ReadAll(rt.resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, c.contextError(ctx)
		}
		return nil, &TransportError{StatusCode: rt.resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if rt.resp.StatusCode < 200 || rt.resp.StatusCode > 299 {
		return nil, &TransportError{StatusCode: rt.resp.StatusCode, Body: string(data)}
	}

	return decodeEnvelope(rt.resp.StatusCode, data)
}

func (c *Conn) roundTrip(req *http.Request) (*http.Response, error) {
	if c.transport != nil {
		return c.transport(req)
	}
	return http.DefaultClient.Do(req)
}

func (c *Conn) contextError(ctx context.Context) error {
	cause := context.Cause(ctx)
	if errors.Is(cause, errTimerFired) {
		return &TimeoutError{Timeout: c.timeout}
	}
	return fmt.Errorf("query cancelled: %w", cause)
}

func drain(done <-chan roundTrip) {
	rt := <-done
	if rt.resp != nil {
		rt.resp.Body.Close()
	}
}

func decodeEnvelope(status int, data []byte) (*result.Result, error) {
	var env wire.QueryResponse
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &TransportError{StatusCode: status, Err: fmt.Errorf("decode response: %w", err)}
	}

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "unknown error"
		}
		return nil, &ApplicationError{Message: msg}
	}

	columns := env.Columns
	if columns == nil && len(env.Data) > 0 {
		columns = env.Data[0].Keys()
	}
	return result.Translate(columns, env.Data), nil
}
