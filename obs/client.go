package obs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"obsmacros/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10 // 54 seconds

	handshakeTimeout      = 10 * time.Second
	maxMessageSize        = 4 << 20
	DefaultRequestTimeout = 10 * time.Second
)

var (
	ErrAuthFailed       = errors.New("obs: authentication failed")
	ErrNotConnected     = errors.New("obs: not connected")
	ErrAlreadyConnected = errors.New("obs: already connected")
)

// ConnectionState represents the lifecycle of the websocket session
type ConnectionState int

const (
	StateDisconnected  ConnectionState = iota // No socket
	StateConnecting                           // Dialing
	StateIdentifying                          // Socket open, Hello/Identify in progress
	StateConnected                            // Identified, requests allowed
	StateDisconnecting                        // Close requested
)

var connectionStateNames = [...]string{"DISCONNECTED", "CONNECTING", "IDENTIFYING", "CONNECTED", "DISCONNECTING"}

func (s ConnectionState) String() string {
	if s >= 0 && int(s) < len(connectionStateNames) {
		return connectionStateNames[s]
	}
	return fmt.Sprintf("ConnectionState(%d)", int(s))
}

// Client is an obs-websocket v5 session. It implements models.Remote.
type Client struct {
	RequestTimeout time.Duration

	dialer *websocket.Dialer

	// notifyMu orders transitions so listeners see them in the order
	// they happened.
	notifyMu sync.Mutex

	mu        sync.Mutex
	conn      *websocket.Conn
	state     ConnectionState
	listeners []func(ConnectionState)
	pending   map[string]chan requestResponse
	done      chan struct{}

	writeMu sync.Mutex
}

var _ models.Remote = (*Client)(nil)

func NewClient() *Client {
	return &Client{
		RequestTimeout: DefaultRequestTimeout,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
			Subprotocols:     []string{subprotocol},
		},
	}
}

// OnStateChange registers fn to be called after every state transition.
func (c *Client) OnStateChange(fn func(ConnectionState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s ConnectionState) {
	c.transition(s, nil)
}

// transition moves to s if cond, evaluated under c.mu, holds. Listeners
// must not call back into the client.
func (c *Client) transition(s ConnectionState, cond func() bool) bool {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if cond != nil && !cond() {
		c.mu.Unlock()
		return false
	}
	if c.state == s {
		c.mu.Unlock()
		return true
	}
	c.state = s
	listeners := append([]func(ConnectionState){}, c.listeners...)
	c.mu.Unlock()

	log.Printf("🔌 OBS connection: %s", s)
	for _, fn := range listeners {
		fn(s)
	}
	return true
}

// Connect dials the server and identifies with the given credentials. It
// returns only once the server accepted the identification and the read
// pump is running, so requests can be issued immediately. Wrong passwords
// yield ErrAuthFailed.
func (c *Client) Connect(ctx context.Context, creds models.Credentials) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.mu.Unlock()
	c.setState(StateConnecting)

	u := url.URL{Scheme: "ws", Host: net.JoinHostPort(creds.Host, strconv.Itoa(creds.Port))}
	conn, _, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		c.setState(StateDisconnected)
		return fmt.Errorf("failed to connect to %s: %w", u.Host, err)
	}

	c.setState(StateIdentifying)
	if err := identifySession(ctx, conn, creds.Password); err != nil {
		conn.Close()
		c.setState(StateDisconnected)
		return err
	}

	done := make(chan struct{})
	ready := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.done = done
	c.pending = make(map[string]chan requestResponse)
	c.mu.Unlock()

	go c.readPump(conn, done, ready)
	go c.pingLoop(conn, done)

	select {
	case <-ready:
	case <-done:
		return ErrNotConnected
	}
	// The server may already have hung up; the read pump then owns the
	// state and it must stay Disconnected.
	if !c.transition(StateConnected, func() bool { return c.conn == conn }) {
		return ErrNotConnected
	}
	return nil
}

func identifySession(ctx context.Context, conn *websocket.Conn, password string) error {
	deadline := time.Now().Add(handshakeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetReadDeadline(deadline)
	conn.SetWriteDeadline(deadline)

	var msg message
	if err := conn.ReadJSON(&msg); err != nil {
		return fmt.Errorf("failed to read hello: %w", err)
	}
	if msg.Op != OpHello {
		return fmt.Errorf("expected hello, got op %d", msg.Op)
	}
	var h hello
	if err := json.Unmarshal(msg.D, &h); err != nil {
		return fmt.Errorf("invalid hello: %w", err)
	}

	id := identify{RPCVersion: rpcVersion}
	if h.Authentication != nil {
		id.Authentication = authResponse(password, h.Authentication.Salt, h.Authentication.Challenge)
	}
	payload, err := encodeMessage(OpIdentify, id)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("failed to send identify: %w", err)
	}

	if err := conn.ReadJSON(&msg); err != nil {
		var ce *websocket.CloseError
		if errors.As(err, &ce) && ce.Code == CloseAuthenticationFailed {
			return ErrAuthFailed
		}
		return fmt.Errorf("failed to identify: %w", err)
	}
	if msg.Op != OpIdentified {
		return fmt.Errorf("expected identified, got op %d", msg.Op)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})
	log.Printf("✅ Identified with obs-websocket %s", h.ObsWebSocketVersion)
	return nil
}

// readPump delivers request responses to their waiting callers
func (c *Client) readPump(conn *websocket.Conn, done, ready chan struct{}) {
	defer func() {
		c.mu.Lock()
		pending := c.pending
		c.pending = nil
		c.conn = nil
		c.mu.Unlock()

		for _, ch := range pending {
			close(ch)
		}
		conn.Close()
		c.setState(StateDisconnected)
		close(done)
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	close(ready)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("OBS websocket error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("⚠️ Ignoring malformed OBS message: %v", err)
			continue
		}

		switch msg.Op {
		case OpRequestResponse:
			var resp requestResponse
			if err := json.Unmarshal(msg.D, &resp); err != nil {
				log.Printf("⚠️ Ignoring malformed OBS response: %v", err)
				continue
			}
			c.mu.Lock()
			ch, ok := c.pending[resp.RequestID]
			delete(c.pending, resp.RequestID)
			c.mu.Unlock()
			if ok {
				ch <- resp
			}
		case OpEvent:
			// Identify subscribes to no events.
		}
	}
}

func (c *Client) pingLoop(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// call sends one request and waits for its response. Without a deadline
// on ctx, RequestTimeout applies.
func (c *Client) call(ctx context.Context, requestType string, data interface{}, out interface{}) error {
	if _, ok := ctx.Deadline(); !ok && c.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.RequestTimeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", requestType, err)
	}

	id := uuid.NewString()
	ch := make(chan requestResponse, 1)

	c.mu.Lock()
	conn := c.conn
	if conn == nil || c.pending == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.pending[id] = ch
	c.mu.Unlock()

	payload, err := encodeMessage(OpRequest, request{RequestType: requestType, RequestID: id, RequestData: data})
	if err == nil {
		c.writeMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err = conn.WriteMessage(websocket.TextMessage, payload)
		c.writeMu.Unlock()
	}
	if err != nil {
		c.forget(id)
		return fmt.Errorf("failed to send %s: %w", requestType, err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return ErrNotConnected
		}
		if !resp.RequestStatus.Result {
			return &RequestError{
				RequestType: requestType,
				Code:        resp.RequestStatus.Code,
				Comment:     resp.RequestStatus.Comment,
			}
		}
		if out != nil && len(resp.ResponseData) > 0 {
			if err := json.Unmarshal(resp.ResponseData, out); err != nil {
				return fmt.Errorf("invalid %s response: %w", requestType, err)
			}
		}
		return nil
	case <-ctx.Done():
		c.forget(id)
		return fmt.Errorf("%s: %w", requestType, ctx.Err())
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		delete(c.pending, id)
	}
}

// Close ends the session and waits for the read pump to exit.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	done := c.done
	c.mu.Unlock()
	if conn == nil {
		return nil
	}

	c.setState(StateDisconnecting)
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))

	select {
	case <-done:
	case <-time.After(writeWait):
		conn.Close()
		<-done
	}
	return nil
}
