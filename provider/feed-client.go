package provider

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/spooky-finn/go-quote-service/domain/interfaces"
	promclient "github.com/spooky-finn/go-quote-service/infrastructure/prometheus"
)

var logger = log.New(os.Stdout, "[feed-client] ", log.LstdFlags)

var ErrEmptyWatchlist = errors.New("symbols must not be empty to connect socket")

type FeedState string

const (
	StateIdle         FeedState = "Idle"
	StateConnecting   FeedState = "Connecting"
	StateConnected    FeedState = "Connected"
	StateReconnecting FeedState = "Reconnecting"
	StateStopped      FeedState = "Stopped"
)

const (
	defaultRetryInterval    = 5 * time.Second
	defaultHandshakeTimeout = 5 * time.Second
	pingWriteTimeout        = 10 * time.Second
)

// FeedClient owns one persistent websocket connection to a venue. It dials
// the endpoint the venue profile builds for the watchlist, retries with a
// fixed interval until connected, and runs one listen and one keepalive
// goroutine per connection generation. Decoded books are published to the
// subscribers synchronously, so per-symbol update order matches wire order.
//
// A stopped client is terminal; build a new one to resume.
type FeedClient struct {
	profile     interfaces.VenueStreamProfile
	symbols     []string
	subscribers []interfaces.BookSubscriber

	retryInterval    time.Duration
	handshakeTimeout time.Duration

	mu    sync.Mutex
	state FeedState
	conn  *websocket.Conn

	ctx      context.Context
	cancel   context.CancelFunc
	loops    sync.WaitGroup
	stopOnce sync.Once
}

type FeedClientOption func(*FeedClient)

func WithRetryInterval(d time.Duration) FeedClientOption {
	return func(c *FeedClient) { c.retryInterval = d }
}

func WithHandshakeTimeout(d time.Duration) FeedClientOption {
	return func(c *FeedClient) { c.handshakeTimeout = d }
}

func NewFeedClient(
	profile interfaces.VenueStreamProfile,
	symbols []string,
	subscribers []interfaces.BookSubscriber,
	opts ...FeedClientOption,
) *FeedClient {
	ctx, cancel := context.WithCancel(context.Background())

	c := &FeedClient{
		profile:     profile,
		symbols:     symbols,
		subscribers: subscribers,

		retryInterval:    defaultRetryInterval,
		handshakeTimeout: defaultHandshakeTimeout,

		state:  StateIdle,
		ctx:    ctx,
		cancel: cancel,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start validates the configuration and launches the connection loop. An
// empty watchlist or a malformed endpoint fail immediately and are never
// retried; everything transport-level is retried indefinitely in the
// background.
func (c *FeedClient) Start() error {
	if len(c.symbols) == 0 {
		c.setState(StateStopped)
		return ErrEmptyWatchlist
	}

	endpoint, err := c.profile.EndpointFor(c.symbols)
	if err != nil {
		c.setState(StateStopped)
		return err
	}

	c.setState(StateConnecting)
	c.loops.Add(1)
	go c.run(endpoint)

	return nil
}

// Stop is idempotent and synchronous: it returns only after the transport is
// closed and the listen and keepalive loops have exited, so no cache write
// happens after it returns.
func (c *FeedClient) Stop() {
	c.stopOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.state = StateStopped
		c.mu.Unlock()
	})

	c.loops.Wait()
}

func (c *FeedClient) State() FeedState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *FeedClient) run(endpoint string) {
	defer c.loops.Done()
	defer c.setState(StateStopped)

	for {
		conn := c.connect(endpoint)
		if conn == nil {
			return
		}

		c.setConn(conn)
		c.setState(StateConnected)
		promclient.FeedConnectsTotal.Inc()

		keepaliveDone := make(chan struct{})
		c.loops.Add(1)
		go c.keepalive(conn, keepaliveDone)

		c.listen(conn)

		// the listen loop observed a closed or broken connection: tear the
		// whole generation down before dialing again
		close(keepaliveDone)
		conn.Close()
		c.setConn(nil)

		if c.stopping() {
			return
		}

		logger.Println("connection lost, reconnecting...")
		promclient.FeedReconnectsTotal.Inc()
		c.setState(StateReconnecting)
	}
}

// connect dials until it succeeds, waiting retryInterval between attempts.
// It returns nil once the client is stopping.
func (c *FeedClient) connect(endpoint string) *websocket.Conn {
	dialer := websocket.Dialer{HandshakeTimeout: c.handshakeTimeout}

	for {
		if c.stopping() {
			return nil
		}
		c.setState(StateConnecting)

		conn, _, err := dialer.DialContext(c.ctx, endpoint, nil)
		if err == nil {
			logger.Printf("connected to %s", endpoint)
			return conn
		}

		if c.stopping() {
			return nil
		}
		logger.Printf("connection error: %v, retrying in %s", err, c.retryInterval)

		select {
		case <-c.ctx.Done():
			return nil
		case <-time.After(c.retryInterval):
		}
	}
}

func (c *FeedClient) listen(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !c.stopping() {
				logger.Printf("read error: %v", err)
			}
			return
		}

		if !c.profile.Classify(raw) {
			continue
		}

		book, err := c.profile.Decode(raw)
		if err != nil {
			promclient.FeedDecodeErrorsTotal.Inc()
			logger.Printf("decode error: %v", err)
			continue
		}

		for _, subscriber := range c.subscribers {
			subscriber.OnBookUpdate(book)
		}
	}
}

// keepalive pings the venue at the profile's interval. A failed ping only
// ends this loop; the reconnect decision belongs to the listen loop, which
// sees the same broken connection.
func (c *FeedClient) keepalive(conn *websocket.Conn, done chan struct{}) {
	defer c.loops.Done()

	ticker := time.NewTicker(c.profile.KeepaliveInterval())
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(pingWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				logger.Printf("error while sending ping: %v", err)
				return
			}
		}
	}
}

func (c *FeedClient) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn = conn

	// Stop may have run between the dial and this call; it closed whatever
	// conn it saw, which did not include this one yet.
	if conn != nil && c.ctx.Err() != nil {
		conn.Close()
	}
}

func (c *FeedClient) setState(state FeedState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Stopped is terminal
	if c.state == StateStopped && state != StateStopped {
		return
	}
	c.state = state
}

func (c *FeedClient) stopping() bool {
	return c.ctx.Err() != nil
}
