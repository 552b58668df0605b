package platform

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type eventCallbackEntry struct {
	id       int
	callback EventCallback
}

type stateCallbackEntry struct {
	id       int
	callback StateCallback
}

// EventStream is a reconnecting websocket subscription to the host platform's
// UI event feed. Tile taps, dive actions and moderator commands arrive here.
type EventStream struct {
	wsURL string

	conn   *websocket.Conn
	state  StreamState
	stateM sync.RWMutex

	eventCbs []eventCallbackEntry
	stateCbs []stateCallbackEntry
	cbM      sync.RWMutex

	maxReconnectAttempts int
	reconnectDelay       time.Duration
	pingInterval         time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc

	headerProvider HeaderProvider
}

func NewEventStream(wsURL string, maxReconnectAttempts int, reconnectDelay time.Duration) *EventStream {
	return &EventStream{
		wsURL:                wsURL,
		state:                StateDisconnected,
		maxReconnectAttempts: maxReconnectAttempts,
		reconnectDelay:       reconnectDelay,
		pingInterval:         30 * time.Second,
		stopCh:               make(chan struct{}),
		eventCbs:             make([]eventCallbackEntry, 0),
		stateCbs:             make([]stateCallbackEntry, 0),
	}
}

// SetHeaderProvider injects headers into the WS handshake.
func (s *EventStream) SetHeaderProvider(h HeaderProvider) {
	s.headerProvider = h
}

func (s *EventStream) Connect(ctx context.Context) error {
	s.stateM.Lock()
	if s.state == StateConnected || s.state == StateConnecting {
		s.stateM.Unlock()
		return nil
	}
	s.stateM.Unlock()

	s.rootCtx, s.rootCancel = context.WithCancel(context.Background())
	s.setState(StateConnecting)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, s.wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      s.buildHeaders(),
	})
	if err != nil {
		s.setState(StateFailed)
		s.scheduleReconnect()
		return err
	}

	s.conn = conn
	s.setState(StateConnected)

	s.wg.Add(2)
	go s.listen()
	go s.pingLoop()
	return nil
}

func (s *EventStream) listen() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		if s.conn == nil {
			return
		}
		var ev Event
		if err := wsjson.Read(s.rootCtx, s.conn, &ev); err != nil {
			if s.isStopping() {
				return
			}
			s.setState(StateDisconnected)
			_ = s.closeConn(websocket.StatusGoingAway, "reconnect")
			s.scheduleReconnect()
			return
		}

		s.cbM.RLock()
		callbacks := make([]eventCallbackEntry, len(s.eventCbs))
		copy(callbacks, s.eventCbs)
		s.cbM.RUnlock()
		for _, entry := range callbacks {
			if entry.callback != nil {
				entry.callback(&ev)
			}
		}
	}
}

func (s *EventStream) pingLoop() {
	defer s.wg.Done()
	t := time.NewTicker(s.pingInterval)
	defer t.Stop()
	consecutivePingFailures := 0
	for {
		select {
		case <-s.stopCh:
			return
		case <-t.C:
			if s.conn == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(s.rootCtx, 3*time.Second)
			err := s.conn.Ping(ctx)
			cancel()
			if err != nil {
				consecutivePingFailures++
				if consecutivePingFailures >= 2 {
					if s.isStopping() {
						return
					}
					s.setState(StateDisconnected)
					_ = s.closeConn(websocket.StatusGoingAway, "ping failure")
					s.scheduleReconnect()
					consecutivePingFailures = 0
				}
				continue
			}
			consecutivePingFailures = 0
		}
	}
}

func (s *EventStream) scheduleReconnect() {
	if s.maxReconnectAttempts <= 0 {
		return
	}
	s.setState(StateReconnecting)

	go func() {
		for attempt := 1; attempt <= s.maxReconnectAttempts; attempt++ {
			select {
			case <-s.stopCh:
				return
			case <-time.After(s.reconnectDelay * time.Duration(attempt)):
			}

			dialCtx, cancel := context.WithTimeout(s.rootCtx, 10*time.Second)
			conn, _, err := websocket.Dial(dialCtx, s.wsURL, &websocket.DialOptions{
				CompressionMode: websocket.CompressionNoContextTakeover,
				HTTPHeader:      s.buildHeaders(),
			})
			cancel()
			if err != nil {
				continue
			}

			s.conn = conn
			s.setState(StateConnected)

			s.wg.Add(2)
			go s.listen()
			go s.pingLoop()
			return
		}
		s.setState(StateFailed)
	}()
}

func (s *EventStream) OnEvent(cb EventCallback) int {
	s.cbM.Lock()
	defer s.cbM.Unlock()
	id := len(s.eventCbs) + 1
	s.eventCbs = append(s.eventCbs, eventCallbackEntry{id: id, callback: cb})
	return id
}

func (s *EventStream) RemoveEventCallback(id int) {
	s.cbM.Lock()
	defer s.cbM.Unlock()
	for i, cb := range s.eventCbs {
		if cb.id == id {
			s.eventCbs = append(s.eventCbs[:i], s.eventCbs[i+1:]...)
			break
		}
	}
}

func (s *EventStream) OnStateChange(cb StateCallback) int {
	s.cbM.Lock()
	defer s.cbM.Unlock()
	id := len(s.stateCbs) + 1
	s.stateCbs = append(s.stateCbs, stateCallbackEntry{id: id, callback: cb})
	return id
}

func (s *EventStream) setState(state StreamState) {
	s.stateM.Lock()
	s.state = state
	s.stateM.Unlock()

	s.cbM.RLock()
	callbacks := make([]stateCallbackEntry, len(s.stateCbs))
	copy(callbacks, s.stateCbs)
	s.cbM.RUnlock()
	for _, entry := range callbacks {
		if entry.callback != nil {
			entry.callback(state)
		}
	}
}

func (s *EventStream) Close(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	_ = s.closeConn(websocket.StatusNormalClosure, "close")

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		if s.rootCancel != nil {
			s.rootCancel()
		}
		return nil
	}
}

func (s *EventStream) closeConn(code websocket.StatusCode, reason string) error {
	if s.conn == nil {
		return nil
	}
	defer func() { s.conn = nil }()
	return s.conn.Close(code, reason)
}

func (s *EventStream) isStopping() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

func (s *EventStream) buildHeaders() http.Header {
	hdr := http.Header{}
	if s.headerProvider == nil {
		return hdr
	}
	for k, v := range s.headerProvider() {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		hdr.Set(k, v)
	}
	return hdr
}
