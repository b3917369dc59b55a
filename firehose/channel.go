package firehose

import (
	"context"
	"fmt"

	"github.com/beevik/etree"

	"github.com/moffa90/go-firehose/transport"
)

// Channel exchanges Firehose commands with a target.
// It is not safe for concurrent use.
type Channel struct {
	conn   transport.Conn
	config Config
}

// NewChannel creates a Channel over conn.
//
// Example:
//
//	ch := firehose.NewChannel(tr, firehose.WithLogger(logger))
//	if _, err := ch.Execute(ctx, firehose.BuildPower(firehose.PowerReset), transport.Single); err != nil {
//	    return err
//	}
func NewChannel(conn transport.Conn, opts ...Option) *Channel {
	if conn == nil {
		panic("conn cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Channel{
		conn:   conn,
		config: cfg,
	}
}

// Execute sends cmd, unless it is empty, then reads messages until the
// target answers with ACK, NAK or the programmer banner. Log lines are
// reported to the logger and do not end the exchange. An empty cmd only
// drains pending output.
//
// A NAK is returned as a *NAKError. The returned Response is the decisive
// element, with its attributes.
func (c *Channel) Execute(ctx context.Context, cmd string, mode transport.PollMode) (*Response, error) {
	name := commandElement(cmd)

	if cmd != "" {
		c.logDebug("firehose command", "command", name)
		if err := c.conn.Send(ctx, []byte(cmd)); err != nil {
			return nil, fmt.Errorf("firehose: send %s: %w", name, err)
		}
	}

	for i := 0; i < c.config.MaxResponses; i++ {
		msg, err := c.conn.Receive(ctx, mode)
		if err != nil {
			return nil, fmt.Errorf("firehose: read %s response: %w", describe(name), err)
		}

		responses, err := ParseMessage(msg)
		if err != nil {
			return nil, err
		}

		for _, r := range responses {
			switch r.Kind {
			case KindACK, KindBanner:
				c.logDebug("firehose response", "command", describe(name), "kind", r.Kind, "value", r.Value)
				return r, nil
			case KindNAK:
				return r, &NAKError{Command: name, Response: r}
			case KindLog:
				c.logInfo("target log", "value", r.Value)
			default:
				c.logDebug("ignoring element", "element", r.Element, "value", r.Value)
			}
		}
	}

	return nil, fmt.Errorf("%w: %s after %d messages", ErrTooManyResponses, describe(name), c.config.MaxResponses)
}

// ReadResponse reads one message and returns its first response or log
// element. A NAK is returned together with a *NAKError.
func (c *Channel) ReadResponse(ctx context.Context, mode transport.PollMode) (*Response, error) {
	msg, err := c.conn.Receive(ctx, mode)
	if err != nil {
		return nil, fmt.Errorf("firehose: read response: %w", err)
	}

	responses, err := ParseMessage(msg)
	if err != nil {
		return nil, err
	}

	for _, r := range responses {
		switch r.Kind {
		case KindNAK:
			return r, &NAKError{Response: r}
		case KindACK, KindLog, KindBanner:
			return r, nil
		}
	}
	return nil, &ParseError{Fragment: string(msg), Err: fmt.Errorf("no response or log element")}
}

// Response attributes used to renegotiate the host-to-target payload size.
const (
	attrMaxTx          = "MaxPayloadSizeToTargetInBytes"
	attrMaxTxSupported = "MaxPayloadSizeToTargetInBytesSupported"
)

// Configure sends configure with p and returns the parameters the target
// accepted. An ACK that reports a smaller MaxPayloadSizeToTargetInBytes lowers
// MaxTx. A NAK that reports MaxPayloadSizeToTargetInBytesSupported is retried
// once at that size.
func (c *Channel) Configure(ctx context.Context, p ConfigureParams) (ConfigureParams, error) {
	resp, err := c.Execute(ctx, BuildConfigure(p), transport.PollUntilReady)
	if err != nil {
		if !IsNAK(err) || resp == nil {
			return p, err
		}
		supported, ok := resp.Uint(attrMaxTxSupported)
		if !ok || supported == 0 || int(supported) == p.MaxTx {
			return p, err
		}

		c.logInfo("target rejected payload size, retrying", "requested", p.MaxTx, "supported", supported)
		p.MaxTx = int(supported)
		if resp, err = c.Execute(ctx, BuildConfigure(p), transport.PollUntilReady); err != nil {
			return p, err
		}
	}

	if n, ok := resp.Uint(attrMaxTx); ok && n > 0 && int(n) < p.MaxTx {
		c.logInfo("target lowered payload size", "requested", p.MaxTx, "accepted", n)
		p.MaxTx = int(n)
	}
	return p, nil
}

// commandElement returns the tag of the first element inside <data>.
func commandElement(cmd string) string {
	if cmd == "" {
		return ""
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(cmd); err != nil {
		return "command"
	}
	root := doc.Root()
	if root == nil {
		return "command"
	}
	if children := root.ChildElements(); len(children) > 0 {
		return children[0].Tag
	}
	return root.Tag
}

func describe(name string) string {
	if name == "" {
		return "pending"
	}
	return name
}

func (c *Channel) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (c *Channel) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}
