package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"fairdash/internal/logger"
	"fairdash/internal/outcome"
	"fairdash/internal/pkg/circuit"

	"github.com/chromedp/chromedp"
)

// ErrSnapshotDisabled is returned when PNG snapshots are turned off in config.
var ErrSnapshotDisabled = errors.New("snapshot disabled")

// ErrSnapshotUnavailable is returned while repeated capture failures keep the
// headless browser circuit open.
var ErrSnapshotUnavailable = errors.New("snapshot temporarily unavailable")

const (
	defaultSnapshotTimeout = 20 * time.Second
	// echarts animates the first paint; wait for it before capturing.
	settleDelay = 1500 * time.Millisecond
)

// SnapshotOptions configure the headless browser capture.
type SnapshotOptions struct {
	Enabled bool
	Timeout time.Duration
	// FailureThreshold consecutive capture failures open the circuit for
	// Cooldown. 0 disables the circuit.
	FailureThreshold int
	Cooldown         time.Duration
	// Capture turns a page into PNG bytes; nil uses headless Chrome.
	Capture CaptureFunc
}

// CaptureFunc renders html in a viewport of width x height and returns PNG bytes.
type CaptureFunc func(ctx context.Context, html []byte, width, height int) ([]byte, error)

// Snapshotter renders panel pages to PNG through headless Chrome.
type Snapshotter struct {
	renderer *Renderer
	opts     SnapshotOptions
	breaker  *circuit.Breaker
	capture  CaptureFunc

	headlessMu      sync.Mutex
	headlessChecked bool
	headlessErr     error
}

func NewSnapshotter(renderer *Renderer, opts SnapshotOptions) *Snapshotter {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultSnapshotTimeout
	}
	s := &Snapshotter{
		renderer: renderer,
		opts:     opts,
		breaker:  circuit.New("snapshot", opts.FailureThreshold, opts.Cooldown),
		capture:  opts.Capture,
	}
	if s.capture == nil {
		s.capture = s.renderHTMLToPNG
	} else {
		s.headlessChecked = true
	}
	return s
}

// Enabled reports whether snapshots may be taken.
func (s *Snapshotter) Enabled() bool { return s != nil && s.opts.Enabled }

// EnsureHeadlessAvailable 检查本机能否启动 headless Chrome。结果只缓存一次；
// 若探测因 ctx 取消而失败，则不缓存，下次调用重新探测。
func (s *Snapshotter) EnsureHeadlessAvailable(ctx context.Context) error {
	if !s.Enabled() {
		return ErrSnapshotDisabled
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s.headlessMu.Lock()
	defer s.headlessMu.Unlock()
	if s.headlessChecked {
		return s.headlessErr
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()
	err := chromedp.Run(parent)
	if err != nil && ctx.Err() != nil {
		return err
	}
	s.headlessChecked = true
	s.headlessErr = err
	if err != nil {
		logger.With("component", "snapshot").Warn("headless chrome unavailable", "error", err)
	}
	return err
}

// Snapshot renders p to HTML and captures it as PNG.
func (s *Snapshotter) Snapshot(ctx context.Context, p outcome.Panel) ([]byte, error) {
	if err := s.EnsureHeadlessAvailable(ctx); err != nil {
		return nil, err
	}
	var html bytes.Buffer
	if err := s.renderer.Page(&html, p); err != nil {
		return nil, err
	}
	opts := s.renderer.Options()
	height := opts.HeightPx
	if p.AreaHeight > 0 {
		height = p.AreaHeight
	}
	// Room for the title, help block and summary table above the chart.
	height += 120 + 28*len(p.Table.BinLabels)
	var png []byte
	err := s.breaker.DoContext(ctx, func() error {
		var err error
		png, err = s.capture(ctx, html.Bytes(), opts.WidthPx+48, height)
		return err
	})
	if errors.Is(err, circuit.ErrOpen) {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotUnavailable, err)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return png, nil
}

func (s *Snapshotter) renderHTMLToPNG(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, s.opts.Timeout)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
		chromedp.FullScreenshot(&screenshot, 0),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}
