// Package natsengine drives a broker engine's control plane over NATS
// request/reply. The flattened configuration travels as a JSON object on
// fixed control subjects; whatever text the control plane replies with is
// returned untouched for the orchestrator to classify.
package natsengine

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/brokerconf/errors"
)

// Default control-plane settings
const (
	DefaultSubjectPrefix  = "$BROKER.CTL"
	DefaultRequestTimeout = 5 * time.Second
	clientName            = "brokerconf"
)

// Engine implements lifecycle.Engine over a NATS connection.
type Engine struct {
	conn     *nats.Conn
	prefix   string
	timeout  time.Duration
	logger   *slog.Logger
	ownsConn bool
}

// Option customizes an Engine
type Option func(*Engine)

// WithSubjectPrefix overrides the control subject prefix.
func WithSubjectPrefix(prefix string) Option {
	return func(e *Engine) {
		if prefix != "" {
			e.prefix = prefix
		}
	}
}

// WithRequestTimeout overrides the per-request timeout.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New wraps an existing connection. The caller keeps ownership; Shutdown
// will not close it.
func New(conn *nats.Conn, opts ...Option) (*Engine, error) {
	if conn == nil {
		return nil, errors.WrapInvalid(errors.ErrNoConnection, "Engine", "New", "check connection")
	}
	e := &Engine{
		conn:    conn,
		prefix:  DefaultSubjectPrefix,
		timeout: DefaultRequestTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Connect dials the control plane and returns an Engine that owns the
// connection; Shutdown drains and closes it.
func Connect(url string, opts ...Option) (*Engine, error) {
	conn, err := nats.Connect(url,
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, errors.WrapTransient(err, "Engine", "Connect", "connect to NATS")
	}

	e, err := New(conn, opts...)
	if err != nil {
		conn.Close()
		return nil, err
	}
	e.ownsConn = true
	return e, nil
}

// Start asks the control plane to launch the engine with the given
// configuration.
func (e *Engine) Start(ctx context.Context, config map[string]string) (string, error) {
	return e.requestConfig(ctx, e.subject("START"), config)
}

// Reload asks the control plane to hot-reload the running engine.
func (e *Engine) Reload(ctx context.Context, config map[string]string) (string, error) {
	return e.requestConfig(ctx, e.subject("RELOAD"), config)
}

// Query retrieves monitoring text for a named operation. The filter, when
// non-empty, is the request payload.
func (e *Engine) Query(ctx context.Context, operation, filter string) (string, error) {
	subject := e.subject("QUERY") + "." + operation
	msg, err := e.request(ctx, subject, []byte(filter))
	if err != nil {
		return "", err
	}
	return string(msg.Data), nil
}

// Shutdown notifies the control plane, then drains the connection when
// this engine owns it. Errors from the stop notification are returned but
// safe to ignore during disposal.
func (e *Engine) Shutdown(ctx context.Context) error {
	_, err := e.request(ctx, e.subject("SHUTDOWN"), nil)
	if err != nil {
		e.logger.Warn("Control plane shutdown request failed", "error", err)
	}

	if e.ownsConn {
		if drainErr := e.conn.Drain(); drainErr != nil {
			return errors.WrapTransient(drainErr, "Engine", "Shutdown", "drain connection")
		}
	}
	return err
}

func (e *Engine) requestConfig(ctx context.Context, subject string, config map[string]string) (string, error) {
	payload, err := json.Marshal(config)
	if err != nil {
		return "", errors.WrapInvalid(err, "Engine", "requestConfig", "encode configuration")
	}

	msg, err := e.request(ctx, subject, payload)
	if err != nil {
		return "", err
	}

	e.logger.Debug("Control plane responded", "subject", subject, "bytes", len(msg.Data))
	return string(msg.Data), nil
}

func (e *Engine) request(ctx context.Context, subject string, payload []byte) (*nats.Msg, error) {
	if e.conn == nil || e.conn.IsClosed() {
		return nil, errors.WrapTransient(errors.ErrNoConnection, "Engine", "request", "check connection")
	}

	reqCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	msg, err := e.conn.RequestWithContext(reqCtx, subject, payload)
	if err != nil {
		return nil, errors.WrapTransient(err, "Engine", "request", "request "+subject)
	}
	return msg, nil
}

func (e *Engine) subject(op string) string {
	return e.prefix + "." + op
}
