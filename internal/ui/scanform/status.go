package scanform

import (
	"strings"

	"github.com/Its-donkey/hawkeye/internal/ui/model"
)

// Copy shown in the status row.
const (
	TextAwaiting    = "INITIATE LIVE SCAN"
	HintAwaiting    = "(Tap to activate camera/video capture)"
	TextImageReady  = "Image ready"
	TextVideoReady  = "Video ready"
	TextTapActive   = "CAMERA ACTIVATED"
	HintTapActive   = "SCAN INITIATED..."
	ClassSuccess    = "text-green-400"
	ClassNeutral    = "text-emerald-400"
	ClassAlert      = "text-red-500"
	ClassTextNormal = "text-slate-300"
	ClassTextAlert  = "text-red-400"
	ClassHintNormal = "text-blue-500"
	IconCamera      = "ph-camera"
	IconImage       = "ph-image"
	IconVideo       = "ph-video-camera"
	IconCheck       = "ph-check-circle"
	BorderNeutral   = "border-blue-500/50"
	BorderSuccess   = "border-green-500"
	BorderAlert     = "border-red-500"
)

// Every class any look may apply. Rendering strips all of them first so the
// result depends only on the target look.
var (
	iconClasses   = []string{IconCamera, IconImage, IconVideo, IconCheck, ClassNeutral, ClassSuccess, ClassAlert, ClassPulsing}
	textClasses   = []string{ClassTextNormal, ClassTextAlert, ClassSuccess}
	hintClasses   = []string{ClassHintNormal, ClassTextAlert, ClassSuccess}
	borderClasses = []string{BorderNeutral, BorderSuccess, BorderAlert}
)

type statusLook struct {
	icon      []string
	text      string
	textClass string
	hint      string
	hintClass string
	border    string
	check     bool
}

func awaitingLook() statusLook {
	return statusLook{
		icon:      []string{IconCamera, ClassNeutral},
		text:      TextAwaiting,
		textClass: ClassTextNormal,
		hint:      HintAwaiting,
		hintClass: ClassHintNormal,
		border:    BorderNeutral,
	}
}

func readyLook(media model.SelectedMedia) statusLook {
	look := statusLook{
		icon:      []string{IconImage, ClassSuccess},
		text:      TextImageReady,
		textClass: ClassSuccess,
		hint:      strings.TrimSpace(media.Name),
		hintClass: ClassSuccess,
		border:    BorderSuccess,
		check:     true,
	}
	if media.Kind() == model.KindVideo {
		look.icon = []string{IconVideo, ClassSuccess}
		look.text = TextVideoReady
	}
	return look
}

func tapLook() statusLook {
	return statusLook{
		icon:      []string{IconCheck, ClassAlert, ClassPulsing},
		text:      TextTapActive,
		textClass: ClassTextAlert,
		hint:      HintTapActive,
		hintClass: ClassTextAlert,
		border:    BorderAlert,
	}
}

// UpdateStatus renders the status row for the given selection. A nil media
// resets the row to the neutral awaiting state.
func (c *Controller) UpdateStatus(media *model.SelectedMedia) {
	c.stopTapRevert()
	if media == nil {
		c.media = nil
	} else {
		copied := *media
		c.media = &copied
	}
	c.renderStatus()
}

func (c *Controller) renderStatus() {
	if c.media == nil {
		c.applyLook(awaitingLook())
		return
	}
	c.applyLook(readyLook(*c.media))
}

func (c *Controller) applyLook(look statusLook) {
	removeClass(c.el.StatusIcon, iconClasses...)
	addClass(c.el.StatusIcon, look.icon...)

	removeClass(c.el.StatusText, textClasses...)
	addClass(c.el.StatusText, look.textClass)
	setText(c.el.StatusText, look.text)

	removeClass(c.el.StatusHint, hintClasses...)
	addClass(c.el.StatusHint, look.hintClass)
	setText(c.el.StatusHint, look.hint)

	removeClass(c.el.ScannerBorder, borderClasses...)
	addClass(c.el.ScannerBorder, look.border)

	if look.check {
		removeClass(c.el.StatusCheck, ClassHidden)
		addClass(c.el.StatusCheck, ClassSuccess)
	} else {
		addClass(c.el.StatusCheck, ClassHidden)
		removeClass(c.el.StatusCheck, ClassSuccess)
	}
}
