package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

const assetsDir = "ui/static"

type procConfig struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	build := procConfig{
		Name: "build-ui-wasm",
		Args: []string{"go", "build", "-o", filepath.Join(assetsDir, "main.wasm"), "./cmd/ui-wasm"},
		Env:  []string{"GOOS=js", "GOARCH=wasm"},
	}
	if err := runOnce(ctx, build); err != nil {
		fmt.Fprintf(os.Stderr, "hawkeye: %v\n", err)
		os.Exit(1)
	}
	if err := copyWasmExec(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "hawkeye: %v\n", err)
		os.Exit(1)
	}

	procs := []procConfig{
		{
			Name: "server",
			Args: append([]string{"go", "run", "./cmd/hawkeye", "serve"}, os.Args[1:]...),
		},
	}
	if err := runAll(ctx, procs); err != nil {
		fmt.Fprintf(os.Stderr, "hawkeye exited with error: %v\n", err)
		os.Exit(1)
	}
}

func command(ctx context.Context, cfg procConfig) *exec.Cmd {
	cmd := exec.CommandContext(ctx, cfg.Args[0], cfg.Args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if cfg.Dir != "" {
		cmd.Dir = cfg.Dir
	}
	if len(cfg.Env) > 0 {
		cmd.Env = append(append([]string{}, os.Environ()...), cfg.Env...)
	}
	return cmd
}

// runOnce runs a build step to completion.
func runOnce(ctx context.Context, cfg procConfig) error {
	if err := command(ctx, cfg).Run(); err != nil {
		return fmt.Errorf("%s: %w", cfg.Name, err)
	}
	return nil
}

// copyWasmExec copies the toolchain's wasm_exec.js next to main.wasm so the
// loader always matches the compiler that built the bundle.
func copyWasmExec(ctx context.Context) error {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "go", "env", "GOROOT")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go env GOROOT: %w", err)
	}
	root := strings.TrimSpace(out.String())

	var src []byte
	var err error
	for _, candidate := range []string{
		filepath.Join(root, "lib", "wasm", "wasm_exec.js"),
		filepath.Join(root, "misc", "wasm", "wasm_exec.js"),
	} {
		if src, err = os.ReadFile(candidate); err == nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("find wasm_exec.js: %w", err)
	}
	return os.WriteFile(filepath.Join(assetsDir, "wasm_exec.js"), src, 0o644)
}

func runAll(ctx context.Context, procs []procConfig) error {
	if len(procs) == 0 {
		return fmt.Errorf("no processes configured")
	}
	var wg sync.WaitGroup
	errCh := make(chan error, len(procs))

	for _, cfg := range procs {
		wg.Add(1)
		go func(cfg procConfig) {
			defer wg.Done()
			cmd := command(ctx, cfg)
			if err := cmd.Start(); err != nil {
				errCh <- fmt.Errorf("%s start: %w", cfg.Name, err)
				return
			}
			if err := cmd.Wait(); err != nil {
				select {
				case <-ctx.Done():
					return
				default:
				}
				errCh <- fmt.Errorf("%s exited: %w", cfg.Name, err)
			}
		}(cfg)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		shutdownDelay := time.After(2 * time.Second)
		select {
		case <-done:
		case <-shutdownDelay:
		}
	case err := <-errCh:
		return err
	case <-done:
	}
	return nil
}
