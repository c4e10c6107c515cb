package evergreen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrTrackerUnavailable is reported when gestures are enabled without a
// tracker or the tracker fails to start.
var ErrTrackerUnavailable = errors.New("evergreen: hand tracker unavailable")

// VideoFrame is one captured camera frame. Timestamp is monotonic per source.
type VideoFrame struct {
	Timestamp     time.Duration
	Width, Height int
	Pixels        []byte
}

// FrameSource yields the most recent captured frame. ok is false until the
// first frame arrives.
type FrameSource interface {
	LatestFrame() (frame VideoFrame, ok bool)
}

// HandTracker is the camera and hand-landmark collaborator. StartCapture may
// block (permission prompts, model loading) and must honor ctx. Detect returns
// one HandSample per detected hand, or none.
type HandTracker interface {
	StartCapture(ctx context.Context) (FrameSource, error)
	StopCapture() error
	Detect(frame VideoFrame) ([]HandSample, error)
}

// GestureStatus is the gesture pipeline state shown to the UI.
type GestureStatus uint8

const (
	GestureOff         GestureStatus = iota // disabled
	GestureStarting                         // setup in flight
	GestureActive                           // capturing
	GestureUnavailable                      // setup failed; UI controls still work
)

// String returns the lower-case name of the status.
func (s GestureStatus) String() string {
	switch s {
	case GestureOff:
		return "off"
	case GestureStarting:
		return "starting"
	case GestureActive:
		return "active"
	case GestureUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// GestureInput drives a HandTracker from the tick loop. Setup runs on its own
// goroutine; Poll never blocks on it.
type GestureInput struct {
	tracker HandTracker
	log     *slog.Logger

	mu     sync.Mutex
	status GestureStatus
	source FrameSource
	err    error
	cancel context.CancelFunc
	wg     sync.WaitGroup

	lastStamp time.Duration
	hasStamp  bool
}

// NewGestureInput returns a disabled input for tracker. A nil log discards.
func NewGestureInput(tracker HandTracker, log *slog.Logger) *GestureInput {
	if log == nil {
		log = discardLogger
	}
	return &GestureInput{tracker: tracker, log: log}
}

func (g *GestureInput) setLogger(log *slog.Logger) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.log = log
}

// Status returns the current pipeline state.
func (g *GestureInput) Status() GestureStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Err returns the setup error behind GestureUnavailable, if any.
func (g *GestureInput) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Enable starts capture asynchronously. It is a no-op while starting or
// active. A failed setup leaves the input GestureUnavailable; enabling again
// retries.
func (g *GestureInput) Enable(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status == GestureStarting || g.status == GestureActive {
		return
	}
	if g.tracker == nil {
		g.status = GestureUnavailable
		g.err = ErrTrackerUnavailable
		return
	}
	if g.cancel != nil {
		// Release the context of a previous failed setup.
		g.cancel()
	}
	sctx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.status = GestureStarting
	g.err = nil
	g.hasStamp = false
	g.wg.Add(1)
	go g.start(sctx)
}

func (g *GestureInput) start(ctx context.Context) {
	defer g.wg.Done()
	src, err := g.startCapture(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil && src != nil {
		// Stored even when cancelled so Disable releases it.
		g.source = src
	}
	switch {
	case ctx.Err() != nil:
		// Disable owns the status.
	case err != nil:
		g.status = GestureUnavailable
		g.err = fmt.Errorf("%w: %w", ErrTrackerUnavailable, err)
		g.log.Debug("gesture setup failed", "err", err)
	case src == nil:
		g.status = GestureUnavailable
		g.err = ErrTrackerUnavailable
	default:
		g.status = GestureActive
	}
}

func (g *GestureInput) startCapture(ctx context.Context) (src FrameSource, err error) {
	defer func() {
		if r := recover(); r != nil {
			src, err = nil, fmt.Errorf("start capture panic: %v", r)
		}
	}()
	return g.tracker.StartCapture(ctx)
}

// Wait blocks until any in-flight setup has finished.
func (g *GestureInput) Wait() {
	g.wg.Wait()
}

// Disable cancels setup, waits for it and releases the capture stream before
// returning.
func (g *GestureInput) Disable() {
	g.mu.Lock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.mu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.source != nil {
		if err := g.tracker.StopCapture(); err != nil {
			g.log.Debug("stop capture failed", "err", err)
		}
		g.source = nil
	}
	g.status = GestureOff
	g.err = nil
}

// Poll runs detection on the newest frame if it has not been processed yet
// and returns the first detected hand. ok is false for "no signal": inactive,
// no new frame, no hand, or a detection error. Errors are logged at debug
// level and otherwise ignored.
func (g *GestureInput) Poll() (hand HandSample, ok bool) {
	g.mu.Lock()
	if g.status != GestureActive || g.source == nil {
		g.mu.Unlock()
		return nil, false
	}
	frame, fresh := g.source.LatestFrame()
	if !fresh || (g.hasStamp && frame.Timestamp <= g.lastStamp) {
		g.mu.Unlock()
		return nil, false
	}
	g.lastStamp = frame.Timestamp
	g.hasStamp = true
	g.mu.Unlock()

	hands, err := g.detect(frame)
	if err != nil {
		g.log.Debug("hand detection failed", "ts", frame.Timestamp, "err", err)
		return nil, false
	}
	for _, h := range hands {
		if h.Valid() {
			return h, true
		}
	}
	return nil, false
}

func (g *GestureInput) detect(frame VideoFrame) (hands []HandSample, err error) {
	defer func() {
		if r := recover(); r != nil {
			hands, err = nil, fmt.Errorf("detect panic: %v", r)
		}
	}()
	return g.tracker.Detect(frame)
}
