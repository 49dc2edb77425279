package scanform

import (
	"sort"
	"time"
)

type fakeElement struct {
	name     string
	classes  map[string]bool
	text     string
	required bool
	value    string
	layouts  int
	journal  *[]string
}

func newFakeElement(name string, journal *[]string, classes ...string) *fakeElement {
	el := &fakeElement{name: name, classes: make(map[string]bool), journal: journal}
	for _, c := range classes {
		el.classes[c] = true
	}
	return el
}

func (e *fakeElement) record(entry string) {
	if e.journal != nil {
		*e.journal = append(*e.journal, e.name+":"+entry)
	}
}

func (e *fakeElement) AddClass(names ...string) {
	for _, n := range names {
		if n == "" {
			continue
		}
		e.classes[n] = true
		e.record("+" + n)
	}
}

func (e *fakeElement) RemoveClass(names ...string) {
	for _, n := range names {
		if e.classes[n] {
			e.record("-" + n)
		}
		delete(e.classes, n)
	}
}

func (e *fakeElement) HasClass(name string) bool { return e.classes[name] }
func (e *fakeElement) SetText(text string)       { e.text = text }
func (e *fakeElement) SetRequired(required bool) { e.required = required }
func (e *fakeElement) SetValue(value string)     { e.value = value }
func (e *fakeElement) Value() string             { return e.value }

func (e *fakeElement) ForceLayout() {
	e.layouts++
	e.record("layout")
}

func (e *fakeElement) classList() []string {
	out := make([]string, 0, len(e.classes))
	for c := range e.classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

type fakeForm struct {
	submits int
	journal *[]string
}

func (f *fakeForm) Submit() {
	f.submits++
	if f.journal != nil {
		*f.journal = append(*f.journal, "form:submit")
	}
}

type fakeEvent struct{ prevented bool }

func (e *fakeEvent) PreventDefault() { e.prevented = true }

type manualTimer struct {
	at        time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

// manualScheduler only runs callbacks when the test advances it.
type manualScheduler struct {
	now    time.Duration
	frames []func()
	timers []*manualTimer
}

func (s *manualScheduler) NextFrame(fn func()) {
	s.frames = append(s.frames, fn)
}

func (s *manualScheduler) After(d time.Duration, fn func()) func() {
	t := &manualTimer{at: s.now + d, fn: fn}
	s.timers = append(s.timers, t)
	return func() { t.cancelled = true }
}

func (s *manualScheduler) Frame() {
	frames := s.frames
	s.frames = nil
	for _, fn := range frames {
		fn()
	}
}

func (s *manualScheduler) Advance(d time.Duration) {
	s.now += d
	for _, t := range s.timers {
		if t.cancelled || t.fired || t.at > s.now {
			continue
		}
		t.fired = true
		t.fn()
	}
}

func (s *manualScheduler) pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.cancelled && !t.fired {
			n++
		}
	}
	return n
}

type page struct {
	el      Elements
	journal []string

	filePanel, videoPanel *fakeElement
	fileTab, videoTab     *fakeElement
	fileInput, videoURL   *fakeElement
	icon, text, hint      *fakeElement
	check, border         *fakeElement
	overlay               *fakeElement
	slider, sliderValue   *fakeElement
	form                  *fakeForm
}

func newPage() *page {
	p := &page{}
	j := &p.journal
	p.filePanel = newFakeElement("filePanel", j)
	p.videoPanel = newFakeElement("videoPanel", j, ClassHidden)
	p.fileTab = newFakeElement("fileTab", j)
	p.videoTab = newFakeElement("videoTab", j)
	p.fileInput = newFakeElement("fileInput", j)
	p.videoURL = newFakeElement("videoURL", j)
	p.icon = newFakeElement("icon", j)
	p.text = newFakeElement("text", j)
	p.hint = newFakeElement("hint", j)
	p.check = newFakeElement("check", j, ClassHidden)
	p.border = newFakeElement("border", j)
	p.overlay = newFakeElement("overlay", j, ClassHidden, ClassClear)
	p.slider = newFakeElement("slider", j)
	p.slider.value = "75"
	p.sliderValue = newFakeElement("sliderValue", j)
	p.form = &fakeForm{journal: j}
	p.el = Elements{
		FilePanel:     p.filePanel,
		VideoPanel:    p.videoPanel,
		FileTab:       p.fileTab,
		VideoTab:      p.videoTab,
		FileInput:     p.fileInput,
		VideoURL:      p.videoURL,
		StatusIcon:    p.icon,
		StatusText:    p.text,
		StatusHint:    p.hint,
		StatusCheck:   p.check,
		ScannerBorder: p.border,
		Overlay:       p.overlay,
		Form:          p.form,
		Slider:        p.slider,
		SliderValue:   p.sliderValue,
	}
	return p
}

type statusSnapshot struct {
	icon, text, hint, check, border []string
	textValue, hintValue            string
}

func (p *page) status() statusSnapshot {
	return statusSnapshot{
		icon:      p.icon.classList(),
		text:      p.text.classList(),
		hint:      p.hint.classList(),
		check:     p.check.classList(),
		border:    p.border.classList(),
		textValue: p.text.text,
		hintValue: p.hint.text,
	}
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s statusSnapshot) equal(o statusSnapshot) bool {
	return sameStrings(s.icon, o.icon) &&
		sameStrings(s.text, o.text) &&
		sameStrings(s.hint, o.hint) &&
		sameStrings(s.check, o.check) &&
		sameStrings(s.border, o.border) &&
		s.textValue == o.textValue &&
		s.hintValue == o.hintValue
}
