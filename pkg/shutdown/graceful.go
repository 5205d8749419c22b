// Package shutdown предоставляет корректное завершение приложения
// по сигналам SIGINT и SIGTERM.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"technotes/pkg/logger"
)

const (
	logShutdownStarted = "shutdown started"
	logHookFailed      = "shutdown hook failed"
	logHooksTimedOut   = "shutdown hooks did not finish in time"
)

// Hook выполняется при завершении работы.
type Hook func(context.Context) error

// Wait блокируется до получения SIGINT/SIGTERM или отмены ctx,
// затем параллельно выполняет hooks в пределах timeout.
func Wait(ctx context.Context, timeout time.Duration, hooks ...Hook) {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	<-sigCtx.Done()

	log := logger.Log(ctx)
	log.Info(ctx, logShutdownStarted, zap.Duration("timeout", timeout))

	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, hook := range hooks {
		wg.Add(1)
		go func(fn Hook) {
			defer wg.Done()
			if err := fn(hookCtx); err != nil {
				log.Error(hookCtx, logHookFailed, zap.Error(err))
			}
		}(hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-hookCtx.Done():
		log.Warn(ctx, logHooksTimedOut)
	}
}
