package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"solana-token-radar/internal/domain"
)

// PumpStreamConfig configures the pump.fun-style launch feed adapter.
type PumpStreamConfig struct {
	// Endpoint is the websocket URL of the launch feed.
	Endpoint string
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the reconnect backoff.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for ping frames.
	PingInterval time.Duration
	// ReadTimeout bounds a single read from the socket.
	ReadTimeout time.Duration
	// MaxBuffered bounds the number of events held between cycles;
	// when full, the oldest events are dropped.
	MaxBuffered int
}

// DefaultPumpStreamConfig returns defaults for the launch feed.
func DefaultPumpStreamConfig(endpoint string) PumpStreamConfig {
	return PumpStreamConfig{
		Endpoint:          endpoint,
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		MaxBuffered:       4096,
	}
}

// pumpLaunch is one token-created event on the feed.
type pumpLaunch struct {
	Mint         string   `json:"mint"`
	Timestamp    int64    `json:"timestamp"` // ms
	MarketCapUSD *float64 `json:"usd_market_cap"`
}

// PumpStream is a websocket-backed adapter: the provider pushes
// token-launch events continuously, and each Fetch drains whatever
// accumulated since the previous cycle. Launches are by definition
// age-zero at event time, so the feed is the authoritative source for
// token age.
type PumpStream struct {
	cfg PumpStreamConfig
	log zerolog.Logger
	now func() time.Time

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	buf   []pumpLaunch
	bufMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup
}

// NewPumpStream connects to the launch feed and starts buffering
// events. The returned adapter must be closed at session end.
func NewPumpStream(ctx context.Context, log zerolog.Logger, cfg PumpStreamConfig) (*PumpStream, error) {
	p := &PumpStream{
		cfg:  cfg,
		log:  log.With().Str("source", "pumpstream").Logger(),
		now:  time.Now,
		done: make(chan struct{}),
	}

	if err := p.connect(ctx); err != nil {
		return nil, err
	}

	p.wg.Add(2)
	go p.readLoop()
	go p.pingLoop()

	return p, nil
}

// Name implements Adapter.
func (p *PumpStream) Name() string { return "pumpstream" }

// Fetch implements Adapter: it drains the event buffer into
// observations. The feed itself being down is not an error here, since
// the read loop reconnects on its own and an empty buffer is a valid
// result. A closed adapter is an error.
func (p *PumpStream) Fetch(ctx context.Context) ([]domain.TokenObservation, error) {
	if p.closed.Load() {
		return nil, fmt.Errorf("pumpstream: adapter closed")
	}

	p.bufMu.Lock()
	events := p.buf
	p.buf = nil
	p.bufMu.Unlock()

	observedAt := p.now().UnixMilli()

	observations := make([]domain.TokenObservation, 0, len(events))
	for _, ev := range events {
		if domain.ValidateMint(ev.Mint) == nil && !domain.MintOnCurve(ev.Mint) {
			// Launch-feed mints are keypair accounts; an off-curve
			// address is a derived account (pool, vault) mislabeled
			// as a mint.
			p.log.Debug().Str("mint", ev.Mint).Msg("off-curve mint on launch feed")
		}
		obs := domain.TokenObservation{
			Mint:       ev.Mint,
			SourceName: p.Name(),
			ObservedAt: observedAt,
		}
		if ev.Timestamp > 0 && ev.Timestamp <= observedAt {
			age := float64(observedAt-ev.Timestamp) / 1000
			obs.Attributes.AgeSeconds = &age
		}
		obs.Attributes.MarketCapUSD = ev.MarketCapUSD
		observations = append(observations, obs)
	}

	return observations, nil
}

// Close shuts the feed down and waits for the loops to exit.
func (p *PumpStream) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(p.done)

	p.connMu.Lock()
	if p.conn != nil {
		p.conn.Close()
	}
	p.connMu.Unlock()

	p.wg.Wait()
	return nil
}

func (p *PumpStream) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, p.cfg.Endpoint, nil)
	if err != nil {
		return fmt.Errorf("pumpstream: dial %s: %w", p.cfg.Endpoint, err)
	}

	if err := conn.WriteJSON(map[string]string{"method": "subscribeNewToken"}); err != nil {
		conn.Close()
		return fmt.Errorf("pumpstream: subscribe: %w", err)
	}

	p.connMu.Lock()
	p.conn = conn
	p.connMu.Unlock()
	return nil
}

func (p *PumpStream) readLoop() {
	defer p.wg.Done()

	delay := p.cfg.ReconnectDelay
	for {
		p.connMu.Lock()
		conn := p.conn
		p.connMu.Unlock()

		conn.SetReadDeadline(p.now().Add(p.cfg.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if p.closed.Load() {
				return
			}
			p.log.Warn().Err(err).Msg("feed read failed, reconnecting")

			select {
			case <-p.done:
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > p.cfg.MaxReconnectDelay {
				delay = p.cfg.MaxReconnectDelay
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			err := p.connect(ctx)
			cancel()
			if err != nil {
				p.log.Warn().Err(err).Msg("reconnect failed")
			}
			continue
		}
		delay = p.cfg.ReconnectDelay

		var ev pumpLaunch
		if err := json.Unmarshal(message, &ev); err != nil || ev.Mint == "" {
			continue // subscription acks and heartbeats land here
		}
		p.push(ev)
	}
}

func (p *PumpStream) push(ev pumpLaunch) {
	p.bufMu.Lock()
	defer p.bufMu.Unlock()

	p.buf = append(p.buf, ev)
	if over := len(p.buf) - p.cfg.MaxBuffered; over > 0 {
		p.buf = p.buf[over:]
	}
}

func (p *PumpStream) pingLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.connMu.Lock()
			conn := p.conn
			p.connMu.Unlock()
			if conn == nil {
				continue
			}
			deadline := p.now().Add(10 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				p.log.Debug().Err(err).Msg("ping failed")
			}
		}
	}
}
