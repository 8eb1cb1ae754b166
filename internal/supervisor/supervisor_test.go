package supervisor

import (
	"os"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/forgehttp/forge/internal/chain"
	"github.com/forgehttp/forge/internal/message"
)

func okHandler(info chain.ConnectionInfo, req *message.Request) *message.Response {
	return message.NewResponse(200)
}

func TestRunReturnsZeroOnInterrupt(t *testing.T) {
	cfg := Config{
		Handler:       chain.HandlerFunc(okHandler),
		HTTPListeners: []string{"127.0.0.1:0"},
	}

	resultCh := make(chan int, 1)
	go func() { resultCh <- Run(cfg, zap.NewNop()) }()

	// Give the listener a moment to bind and the signal handler to register.
	time.Sleep(100 * time.Millisecond)
	if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("sending SIGINT: %v", err)
	}

	select {
	case code := <-resultCh:
		if code != 0 {
			t.Errorf("Run returned %d, want 0 on clean interrupt", code)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after SIGINT")
	}
}

func TestRunReturnsNonZeroWhenNoListenerStarts(t *testing.T) {
	cfg := Config{Handler: chain.HandlerFunc(okHandler)}
	code := Run(cfg, zap.NewNop())
	if code == 0 {
		t.Error("Run should return non-zero when no listeners were configured")
	}
}
