package scanform

import (
	"testing"
	"time"

	"github.com/Its-donkey/hawkeye/internal/ui/model"
)

func TestHandleTapFlashesAndReverts(t *testing.T) {
	p := newPage()
	sched := &manualScheduler{}
	c := New(p.el, sched, Options{})
	c.Init()
	neutral := p.status()

	c.HandleTap()
	if p.text.text != TextTapActive || p.hint.text != HintTapActive {
		t.Fatalf("expected tap copy, got %q / %q", p.text.text, p.hint.text)
	}
	if !p.icon.HasClass(ClassPulsing) || !p.border.HasClass(BorderAlert) {
		t.Fatalf("expected alert look, icon=%v border=%v", p.icon.classList(), p.border.classList())
	}

	sched.Advance(TapRevertDelay)
	if !p.status().equal(neutral) {
		t.Fatalf("expected revert to neutral, got %+v", p.status())
	}
}

func TestHandleTapRevertsToCurrentSelection(t *testing.T) {
	p := newPage()
	sched := &manualScheduler{}
	c := New(p.el, sched, Options{})
	c.Init()
	c.UpdateStatus(&model.SelectedMedia{Name: "clip.mp4", MIMEType: "video/mp4"})

	c.HandleTap()
	sched.Advance(TapRevertDelay)
	if p.text.text != TextVideoReady {
		t.Fatalf("expected ready state restored, got %q", p.text.text)
	}
}

func TestSelectionCancelsPendingTapRevert(t *testing.T) {
	p := newPage()
	sched := &manualScheduler{}
	c := New(p.el, sched, Options{})
	c.Init()

	c.HandleTap()
	c.UpdateStatus(&model.SelectedMedia{Name: "photo.png", MIMEType: "image/png"})
	if sched.pending() != 0 {
		t.Fatalf("expected tap revert to be cancelled")
	}
	sched.Advance(time.Second)
	if p.text.text != TextImageReady {
		t.Fatalf("expected selection to stay rendered, got %q", p.text.text)
	}
}

func TestUpdateSlider(t *testing.T) {
	p := newPage()
	c := New(p.el, nil, Options{})
	c.Init()
	if p.sliderValue.text != "75%" {
		t.Fatalf("expected initial label 75%%, got %q", p.sliderValue.text)
	}
	c.UpdateSlider("90")
	if p.sliderValue.text != "90%" {
		t.Fatalf("expected 90%%, got %q", p.sliderValue.text)
	}

	p.el.SliderValue = nil
	c = New(p.el, nil, Options{})
	c.UpdateSlider("10")
	if p.sliderValue.text != "90%" {
		t.Fatalf("expected missing label to be a no-op")
	}
}
