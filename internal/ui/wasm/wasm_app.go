//go:build js && wasm

package wasm

import (
	"strconv"
	"strings"
	"syscall/js"
	"time"

	"github.com/Its-donkey/hawkeye/internal/ui/model"
	"github.com/Its-donkey/hawkeye/internal/ui/scanform"
)

var (
	// Document references the global browser document for DOM interactions.
	Document js.Value
	// FormHandlers stores bound js.Func callbacks so they can be released later.
	FormHandlers []js.Func
	controller   *scanform.Controller
)

// SettleDelayAttribute is the data attribute on the form carrying the
// server-configured settle delay in milliseconds.
const SettleDelayAttribute = "settleMs"

func resolveElements() scanform.Elements {
	return scanform.Elements{
		FilePanel:     element(model.IDFilePanel),
		VideoPanel:    element(model.IDVideoPanel),
		FileTab:       element(model.IDFileTab),
		VideoTab:      element(model.IDVideoTab),
		FileInput:     element(model.IDFileInput),
		VideoURL:      element(model.IDVideoURL),
		StatusIcon:    element(model.IDStatusIcon),
		StatusText:    element(model.IDStatusText),
		StatusHint:    element(model.IDStatusHint),
		StatusCheck:   element(model.IDStatusCheck),
		ScannerBorder: element(model.IDScannerBorder),
		Overlay:       element(model.IDOverlay),
		Form:          form(model.IDForm),
		Slider:        element(model.IDSlider),
		SliderValue:   element(model.IDSliderValue),
	}
}

func readOptions() scanform.Options {
	var opts scanform.Options
	node := lookup(model.IDForm)
	if !node.Truthy() {
		return opts
	}
	raw := node.Get("dataset").Get(SettleDelayAttribute)
	if raw.Type() != js.TypeString {
		return opts
	}
	ms, err := strconv.Atoi(strings.TrimSpace(raw.String()))
	if err != nil || ms <= 0 {
		warn("ignoring invalid settle delay", raw.String())
		return opts
	}
	opts.SettleDelay = time.Duration(ms) * time.Millisecond
	return opts
}

func addHandler(node js.Value, event string, handler func(js.Value, []js.Value) any) {
	if !node.Truthy() {
		return
	}
	fn := js.FuncOf(handler)
	node.Call("addEventListener", event, fn)
	FormHandlers = append(FormHandlers, fn)
}

func releaseHandlers() {
	for _, fn := range FormHandlers {
		fn.Release()
	}
	FormHandlers = FormHandlers[:0]
}

func warn(args ...any) {
	console := js.Global().Get("console")
	if console.Truthy() {
		console.Call("warn", args...)
	}
}

func selectedMedia(input js.Value) *model.SelectedMedia {
	files := input.Get("files")
	if !files.Truthy() || files.Length() == 0 {
		return nil
	}
	file := files.Index(0)
	media := &model.SelectedMedia{}
	if name := file.Get("name"); name.Type() == js.TypeString {
		media.Name = name.String()
	}
	if mime := file.Get("type"); mime.Type() == js.TypeString {
		media.MIMEType = mime.String()
	}
	return media
}

func bindFormEvents(window js.Value) {
	releaseHandlers()

	for _, id := range []string{model.IDFileTab, model.IDVideoTab} {
		addHandler(lookup(id), "click", func(this js.Value, args []js.Value) any {
			if len(args) > 0 {
				args[0].Call("preventDefault")
			}
			mode := this.Get("dataset").Get("mode")
			if mode.Type() != js.TypeString {
				warn("tab without data-mode", this.Get("id").String())
				return nil
			}
			if err := controller.SetInputModeName(mode.String()); err != nil {
				warn(err.Error())
			}
			return nil
		})
	}

	fileInput := lookup(model.IDFileInput)
	addHandler(fileInput, "click", func(js.Value, []js.Value) any {
		controller.HandleTap()
		return nil
	})
	addHandler(fileInput, "change", func(this js.Value, _ []js.Value) any {
		controller.UpdateStatus(selectedMedia(this))
		return nil
	})

	addHandler(lookup(model.IDSlider), "input", func(this js.Value, _ []js.Value) any {
		controller.UpdateSlider(this.Get("value").String())
		return nil
	})

	addHandler(lookup(model.IDForm), "submit", func(this js.Value, args []js.Value) any {
		var ev jsEvent
		if len(args) > 0 {
			ev.event = args[0]
		}
		controller.HandleSubmit(ev)
		return nil
	})

	addHandler(window, "pageshow", func(this js.Value, args []js.Value) any {
		persisted := false
		if len(args) > 0 {
			persisted = args[0].Get("persisted").Truthy()
		}
		controller.HandlePageRestore(persisted)
		return nil
	})
}
