//go:build js && wasm

package main

import "github.com/Its-donkey/hawkeye/internal/ui/wasm"

func main() {
	wasm.RunApp()
}
