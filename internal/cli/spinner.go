package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/planeseg/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates the current pipeline stage on a single terminal line.
//
// It implements [observability.PipelineHooks]: every stage event updates
// the message and is then forwarded to next, so debug logging keeps working
// while the spinner is registered.
type Spinner struct {
	w    io.Writer
	next observability.PipelineHooks

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	start   sync.Once
	stop    sync.Once
	started bool

	mu      sync.Mutex
	message string
	width   int // widest line drawn so far
}

// newSpinner creates a spinner writing to w that stops when ctx is cancelled.
// A nil next forwards nothing.
func newSpinner(ctx context.Context, w io.Writer, next observability.PipelineHooks) *Spinner {
	if next == nil {
		next = observability.NoopPipelineHooks{}
	}
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		next:    next,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		message: "Starting",
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.start.Do(func() {
		s.mu.Lock()
		s.started = true
		s.mu.Unlock()
		go s.run()
	})
}

func (s *Spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clearLine()
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.draw(i)
		}
	}
}

// Stop ends the animation and clears the line. It may be called repeatedly.
func (s *Spinner) Stop() {
	s.stop.Do(func() {
		s.cancel()
		close(s.done)
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.stopped
		}
		s.clearLine()
	})
}

// Cancelled reports whether the parent context ended the spinner.
func (s *Spinner) Cancelled() bool {
	select {
	case <-s.done:
		return false
	default:
		return s.ctx.Err() != nil
	}
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = msg
}

// Message returns the text currently shown.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *Spinner) draw(frame int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, len(s.message)+2)
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)]), StyleDim.Render(s.message))
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width+2))
}

func (s *Spinner) OnLoadStart(ctx context.Context, source string) {
	s.SetMessage("Loading " + source)
	s.next.OnLoadStart(ctx, source)
}

func (s *Spinner) OnLoadComplete(ctx context.Context, source string, items int, d time.Duration, err error) {
	s.next.OnLoadComplete(ctx, source, items, d, err)
}

func (s *Spinner) OnSegmentStart(ctx context.Context, items int) {
	s.SetMessage(fmt.Sprintf("Segmenting %d items", items))
	s.next.OnSegmentStart(ctx, items)
}

func (s *Spinner) OnSegmentComplete(ctx context.Context, regions, unassigned int, d time.Duration, err error) {
	if err == nil {
		s.SetMessage(fmt.Sprintf("Found %d regions", regions))
	}
	s.next.OnSegmentComplete(ctx, regions, unassigned, d, err)
}

func (s *Spinner) OnRenderStart(ctx context.Context, formats []string) {
	s.SetMessage("Rendering " + strings.Join(formats, ", "))
	s.next.OnRenderStart(ctx, formats)
}

func (s *Spinner) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	s.next.OnRenderComplete(ctx, formats, d, err)
}

var _ observability.PipelineHooks = (*Spinner)(nil)
