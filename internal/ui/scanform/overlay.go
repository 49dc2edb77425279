package scanform

import "github.com/Its-donkey/hawkeye/internal/ui/model"

// HandleSubmit holds the native submission back until the loading overlay
// has been painted. Without an overlay element the form is submitted right
// away. Repeat submits are ignored while the overlay is settling and after
// the native submit has gone out, until a page restore resets the form.
func (c *Controller) HandleSubmit(ev SubmitEvent) {
	if ev != nil {
		ev.PreventDefault()
	}
	if c.submission != model.Idle {
		return
	}

	overlay := c.el.Overlay
	if overlay == nil {
		c.submit()
		return
	}

	c.submission = model.Overlaying
	overlay.RemoveClass(ClassHidden)
	// some mobile browsers merge the display change and the opacity
	// transition into one frame unless layout is flushed in between
	overlay.ForceLayout()

	c.sched.NextFrame(func() {
		if c.submission != model.Overlaying {
			return
		}
		overlay.RemoveClass(ClassClear)
		overlay.AddClass(ClassOpaque)
	})
	c.cancelSubmit = c.sched.After(c.opts.settleDelay(), func() {
		c.cancelSubmit = nil
		if c.submission != model.Overlaying {
			return
		}
		c.submit()
	})
}

func (c *Controller) submit() {
	c.submission = model.Submitted
	if c.el.Form != nil {
		c.el.Form.Submit()
	}
}

// HandlePageRestore runs on pageshow. A page restored from the back/forward
// cache may still show the overlay from the previous submit, so it is always
// hidden and any pending submit is dropped.
func (c *Controller) HandlePageRestore(persisted bool) {
	if c.cancelSubmit != nil {
		c.cancelSubmit()
		c.cancelSubmit = nil
	}
	c.resetOverlay()
}

func (c *Controller) resetOverlay() {
	c.submission = model.Idle
	if c.el.Overlay == nil {
		return
	}
	c.el.Overlay.RemoveClass(ClassOpaque)
	c.el.Overlay.AddClass(ClassHidden, ClassClear)
}
