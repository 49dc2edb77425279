package scanform

import "strings"

// HandleTap flashes the scanner into its "camera activated" look when the
// file input is tapped, then restores the status row.
func (c *Controller) HandleTap() {
	c.stopTapRevert()
	c.applyLook(tapLook())
	c.cancelTap = c.sched.After(c.opts.tapRevertDelay(), func() {
		c.cancelTap = nil
		c.renderStatus()
	})
}

func (c *Controller) stopTapRevert() {
	if c.cancelTap != nil {
		c.cancelTap()
		c.cancelTap = nil
	}
}

// UpdateSlider mirrors the confidence slider into its percentage label.
func (c *Controller) UpdateSlider(value string) {
	if c.el.Slider == nil || c.el.SliderValue == nil {
		return
	}
	c.el.SliderValue.SetText(strings.TrimSpace(value) + "%")
}
