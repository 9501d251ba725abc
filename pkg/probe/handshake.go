package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pion/interceptor"
	"github.com/pion/logging"
	"github.com/pion/webrtc/v4"
)

// Roles and message types exchanged through the relay room.
const (
	roleHost  = "host"
	roleGuest = "guest"

	msgOffer  = "offer"
	msgAnswer = "answer"

	channelLabel = "game"
	pingText     = "ping"
	pongText     = "pong"
)

// signal is the payload both peers publish to the room.
type signal struct {
	From string                    `json:"from"`
	Type string                    `json:"type"`
	SDP  webrtc.SessionDescription `json:"sdp"`
}

// HandshakeConfig configures the WebRTC handshake.
type HandshakeConfig struct {
	ICEServers []webrtc.ICEServer // Empty for local testing
	LogLevel   logging.LogLevel   // Pion log level
	LogWriter  io.Writer          // Pion log output; nil discards
	Loopback   bool               // Gather loopback candidates (single-host runs)
}

// DefaultHandshakeConfig returns a configuration for peers on one machine.
func DefaultHandshakeConfig() HandshakeConfig {
	return HandshakeConfig{
		LogLevel: logging.LogLevelWarn,
		Loopback: true,
	}
}

// newAPI builds a WebRTC API with the default interceptors and pion logging
// routed to cfg.LogWriter.
func newAPI(cfg HandshakeConfig) (*webrtc.API, error) {
	m := &webrtc.MediaEngine{}
	if err := m.RegisterDefaultCodecs(); err != nil {
		return nil, fmt.Errorf("register codecs: %w", err)
	}

	i := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(m, i); err != nil {
		return nil, fmt.Errorf("register interceptors: %w", err)
	}

	lf := logging.NewDefaultLoggerFactory()
	lf.DefaultLogLevel = cfg.LogLevel
	lf.Writer = cfg.LogWriter
	if lf.Writer == nil {
		lf.Writer = io.Discard
	}

	s := webrtc.SettingEngine{LoggerFactory: lf}
	s.SetIncludeLoopbackCandidate(cfg.Loopback)

	return webrtc.NewAPI(
		webrtc.WithMediaEngine(m),
		webrtc.WithInterceptorRegistry(i),
		webrtc.WithSettingEngine(s),
	), nil
}

// Handshake connects a host and a guest peer through the relay room: the host
// offers a data channel, the guest answers, both exchange complete-ICE SDP
// over the room, and a ping/pong crosses the open channel. It returns the
// ping round-trip time.
func Handshake(ctx context.Context, c *Client, room string, cfg HandshakeConfig) (time.Duration, error) {
	api, err := newAPI(cfg)
	if err != nil {
		return 0, err
	}
	pcCfg := webrtc.Configuration{ICEServers: cfg.ICEServers}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hostEvents, err := c.Subscribe(ctx, room)
	if err != nil {
		return 0, err
	}
	guestEvents, err := c.Subscribe(ctx, room)
	if err != nil {
		return 0, err
	}

	host, err := api.NewPeerConnection(pcCfg)
	if err != nil {
		return 0, fmt.Errorf("create host peer: %w", err)
	}
	defer host.Close()

	guest, err := api.NewPeerConnection(pcCfg)
	if err != nil {
		return 0, fmt.Errorf("create guest peer: %w", err)
	}
	defer guest.Close()

	errCh := make(chan error, 4)
	fail := func(err error) {
		select {
		case errCh <- err:
		default:
		}
	}
	rttCh := make(chan time.Duration, 1)

	// Guest echoes every ping on whichever channel the host opens.
	guest.OnDataChannel(func(dc *webrtc.DataChannel) {
		dc.OnMessage(func(msg webrtc.DataChannelMessage) {
			if string(msg.Data) == pingText {
				if err := dc.SendText(pongText); err != nil {
					fail(fmt.Errorf("guest send: %w", err))
				}
			}
		})
	})

	dc, err := host.CreateDataChannel(channelLabel, nil)
	if err != nil {
		return 0, fmt.Errorf("create data channel: %w", err)
	}
	var (
		sentMu sync.Mutex
		sentAt time.Time
	)
	dc.OnOpen(func() {
		sentMu.Lock()
		sentAt = time.Now()
		sentMu.Unlock()
		if err := dc.SendText(pingText); err != nil {
			fail(fmt.Errorf("host send: %w", err))
		}
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		if string(msg.Data) != pongText {
			return
		}
		sentMu.Lock()
		rtt := time.Since(sentAt)
		sentMu.Unlock()
		select {
		case rttCh <- rtt:
		default:
		}
	})

	for role, pc := range map[string]*webrtc.PeerConnection{roleHost: host, roleGuest: guest} {
		pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
			if state == webrtc.PeerConnectionStateFailed {
				fail(fmt.Errorf("%s connection failed", role))
			}
		})
	}

	go answerOffers(ctx, c, room, guest, guestEvents, fail)
	go acceptAnswer(ctx, host, hostEvents, fail)

	offer, err := host.CreateOffer(nil)
	if err != nil {
		return 0, fmt.Errorf("create offer: %w", err)
	}
	if err := setLocalAndGather(host, offer); err != nil {
		return 0, fmt.Errorf("host local description: %w", err)
	}
	if err := c.Publish(ctx, room, signal{From: roleHost, Type: msgOffer, SDP: *host.LocalDescription()}); err != nil {
		return 0, err
	}

	select {
	case rtt := <-rttCh:
		return rtt, nil
	case err := <-errCh:
		return 0, err
	case <-ctx.Done():
		return 0, fmt.Errorf("handshake in room %s: %w", room, ctx.Err())
	}
}

// answerOffers waits for the host's offer and publishes the guest's answer.
func answerOffers(ctx context.Context, c *Client, room string, pc *webrtc.PeerConnection, events <-chan Event, fail func(error)) {
	sig, err := next(ctx, events, roleHost, msgOffer)
	if err != nil {
		fail(fmt.Errorf("guest: %w", err))
		return
	}
	if err := pc.SetRemoteDescription(sig.SDP); err != nil {
		fail(fmt.Errorf("guest remote description: %w", err))
		return
	}
	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		fail(fmt.Errorf("create answer: %w", err))
		return
	}
	if err := setLocalAndGather(pc, answer); err != nil {
		fail(fmt.Errorf("guest local description: %w", err))
		return
	}
	if err := c.Publish(ctx, room, signal{From: roleGuest, Type: msgAnswer, SDP: *pc.LocalDescription()}); err != nil {
		fail(err)
	}
}

// acceptAnswer waits for the guest's answer and applies it to the host.
func acceptAnswer(ctx context.Context, pc *webrtc.PeerConnection, events <-chan Event, fail func(error)) {
	sig, err := next(ctx, events, roleGuest, msgAnswer)
	if err != nil {
		fail(fmt.Errorf("host: %w", err))
		return
	}
	if err := pc.SetRemoteDescription(sig.SDP); err != nil {
		fail(fmt.Errorf("host remote description: %w", err))
	}
}

// next returns the first signal of type typ sent by from. Other room traffic,
// including the peer's own echoes, is skipped.
func next(ctx context.Context, events <-chan Event, from, typ string) (*signal, error) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil, errors.New("room stream closed")
			}
			var sig signal
			if err := json.Unmarshal([]byte(ev.Data), &sig); err != nil {
				continue
			}
			if sig.From == from && sig.Type == typ {
				return &sig, nil
			}
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s %s: %w", from, typ, ctx.Err())
		}
	}
}

// setLocalAndGather applies desc and blocks until ICE gathering completes,
// so the published SDP carries every candidate.
func setLocalAndGather(pc *webrtc.PeerConnection, desc webrtc.SessionDescription) error {
	gatherComplete := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(desc); err != nil {
		return err
	}
	<-gatherComplete
	return nil
}
