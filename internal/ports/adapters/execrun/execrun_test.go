package execrun

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/vidfill/internal/types"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestInvoke_CapturesOutputAndExitCode(t *testing.T) {
	requireShell(t)

	r := New(nil)
	res, err := r.Invoke(context.Background(), []string{"sh", "-c", "echo out; echo err >&2; exit 3"}, 10*time.Second)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", res.ExitCode)
	}
	if strings.TrimSpace(res.Stdout) != "out" {
		t.Fatalf("stdout = %q", res.Stdout)
	}
	if strings.TrimSpace(res.Stderr) != "err" {
		t.Fatalf("stderr = %q", res.Stderr)
	}
}

func TestInvoke_ToolNotFound(t *testing.T) {
	r := New(nil)
	_, err := r.Invoke(context.Background(), []string{"vidfill-no-such-tool-xyz"}, time.Second)
	if !errors.Is(err, types.ErrToolNotFound) {
		t.Fatalf("err = %v, want ErrToolNotFound", err)
	}
}

func TestInvoke_TimeoutKillsProcess(t *testing.T) {
	requireShell(t)

	r := New(nil)
	start := time.Now()
	_, err := r.Invoke(context.Background(), []string{"sh", "-c", "exec sleep 10"}, 200*time.Millisecond)
	if !errors.Is(err, types.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if time.Since(start) > 8*time.Second {
		t.Fatalf("process was not terminated promptly")
	}
}

func TestInvoke_CancelledContext(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	r := New(nil)
	_, err := r.Invoke(ctx, []string{"sh", "-c", "exec sleep 10"}, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestInvoke_EmptyArgv(t *testing.T) {
	r := New(nil)
	if _, err := r.Invoke(context.Background(), nil, time.Second); err == nil {
		t.Fatalf("expected error for empty argv")
	}
}
