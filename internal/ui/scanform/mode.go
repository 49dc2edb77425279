package scanform

import (
	"errors"
	"fmt"

	"github.com/Its-donkey/hawkeye/internal/ui/model"
)

// ErrUnknownMode is returned for input modes other than file and video.
var ErrUnknownMode = errors.New("scanform: unknown input mode")

type inputPanel struct {
	panel Element
	tab   Element
	field Element
}

// SetInputMode shows the panel for mode, highlights its tab and makes its
// field the only required one. The other field is cleared. Unknown modes are
// rejected without touching the page.
func (c *Controller) SetInputMode(mode model.InputMode) error {
	file := inputPanel{panel: c.el.FilePanel, tab: c.el.FileTab, field: c.el.FileInput}
	video := inputPanel{panel: c.el.VideoPanel, tab: c.el.VideoTab, field: c.el.VideoURL}

	var active, inactive inputPanel
	switch mode {
	case model.ModeFile:
		active, inactive = file, video
	case model.ModeVideo:
		active, inactive = video, file
	default:
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}

	removeClass(active.panel, ClassHidden)
	addClass(inactive.panel, ClassHidden)
	addClass(active.tab, ClassActive)
	removeClass(inactive.tab, ClassActive)

	setRequired(inactive.field, false)
	setValue(inactive.field, "")
	setRequired(active.field, true)

	c.mode = mode
	if mode == model.ModeVideo && c.media != nil {
		// clearing the file input does not fire a change event
		c.UpdateStatus(nil)
	}
	return nil
}

// SetInputModeName switches by tab name ("file" or "video").
func (c *Controller) SetInputModeName(name string) error {
	mode, ok := model.ParseInputMode(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	return c.SetInputMode(mode)
}
