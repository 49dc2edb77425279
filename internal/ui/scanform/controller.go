// Package scanform drives the upload page: the file/URL mode switch, the
// selection status row, the tap feedback and the submit overlay.
package scanform

import (
	"time"

	"github.com/Its-donkey/hawkeye/internal/ui/model"
)

const (
	// DefaultSettleDelay is how long the overlay is given to paint before the
	// form is submitted and the main thread blocks on the upload.
	DefaultSettleDelay = 150 * time.Millisecond
	// MinSettleDelay is the shortest delay that reliably paints on slow
	// mobile GPUs.
	MinSettleDelay = 100 * time.Millisecond
	// TapRevertDelay is how long the tap feedback stays on screen.
	TapRevertDelay = 800 * time.Millisecond
)

// Options tunes controller timings. Zero values select the defaults.
type Options struct {
	SettleDelay    time.Duration
	TapRevertDelay time.Duration
}

func (o Options) settleDelay() time.Duration {
	switch {
	case o.SettleDelay == 0:
		return DefaultSettleDelay
	case o.SettleDelay < MinSettleDelay:
		return MinSettleDelay
	default:
		return o.SettleDelay
	}
}

func (o Options) tapRevertDelay() time.Duration {
	if o.TapRevertDelay <= 0 {
		return TapRevertDelay
	}
	return o.TapRevertDelay
}

// Controller owns the upload form's elements. All DOM mutation goes through
// its methods, which are expected to run on the single UI event loop.
type Controller struct {
	el    Elements
	sched Scheduler
	opts  Options

	mode       model.InputMode
	media      *model.SelectedMedia
	submission model.SubmissionState

	cancelSubmit func()
	cancelTap    func()
}

// New builds a controller over the given elements. A nil scheduler runs
// deferred work immediately.
func New(el Elements, sched Scheduler, opts Options) *Controller {
	if sched == nil {
		sched = immediateScheduler{}
	}
	return &Controller{el: el, sched: sched, opts: opts}
}

// Init puts the page into its initial state: file mode, neutral status,
// hidden overlay and a synced slider label.
func (c *Controller) Init() {
	_ = c.SetInputMode(model.ModeFile)
	c.UpdateStatus(nil)
	c.resetOverlay()
	if c.el.Slider != nil {
		c.UpdateSlider(c.el.Slider.Value())
	}
}

// Mode reports the active input mode.
func (c *Controller) Mode() model.InputMode { return c.mode }

// Media reports the current selection, or nil when nothing is selected.
func (c *Controller) Media() *model.SelectedMedia { return c.media }

// Submission reports where the submit sequence currently is.
func (c *Controller) Submission() model.SubmissionState { return c.submission }
