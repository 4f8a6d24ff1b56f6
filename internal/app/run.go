package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"falcon-mcp/pkg/logging"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"
)

const defaultGracePeriod = 10 * time.Second

// Run binds every enabled transport, serves them concurrently and shuts
// them down together. It returns when ctx is cancelled, SIGINT or SIGTERM
// arrives, or any transport fails. A bind failure aborts before anything
// serves.
func (a *Application) Run(ctx context.Context) error {
	if !a.services.Registry.Sealed() {
		a.release()
		return errors.New("tool registry is not sealed")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	transports := a.services.transports()
	names := make([]string, 0, len(transports))
	for name := range transports {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		if err := transports[name].Listen(); err != nil {
			// Release what is already bound.
			for _, bound := range names[:i] {
				_ = transports[bound].Stop(context.Background())
			}
			a.release()
			return fmt.Errorf("%s transport: %w", name, err)
		}
	}

	notify(daemon.SdNotifyReady)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	for _, name := range names {
		t := transports[name]
		g.Go(func() error {
			// Any transport ending takes the process down.
			defer cancel()
			if err := t.Serve(gctx); err != nil {
				return fmt.Errorf("%s transport: %w", name, err)
			}
			logging.Info("Supervisor", "%s transport exited", name)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Supervisor", "Shutting down")
		notify(daemon.SdNotifyStopping)
		return a.shutdown(names, transports)
	})

	err := g.Wait()
	a.release()
	if err != nil {
		logging.Error("Supervisor", err, "Stopped with error")
		return err
	}
	logging.Info("Supervisor", "Stopped")
	return nil
}

// shutdown stops every transport concurrently within the grace period.
func (a *Application) shutdown(names []string, transports map[string]transport) error {
	grace := a.settings.Shutdown.GracePeriod
	if grace <= 0 {
		grace = defaultGracePeriod
	}
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	var g errgroup.Group
	for _, name := range names {
		t := transports[name]
		g.Go(func() error {
			if err := t.Stop(ctx); err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					logging.Warn("Supervisor", "%s transport did not drain within %s", name, grace)
					return nil
				}
				return fmt.Errorf("stopping %s transport: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// release frees the shared resources after the transports are down.
func (a *Application) release() {
	if p := a.services.Provider; p != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Shutdown(ctx); err != nil {
			logging.Warn("Supervisor", "Telemetry shutdown: %v", err)
		}
	}
	a.services.Client.Close()
}

// notify reports state to systemd when running as a notify service. It is a
// no-op without NOTIFY_SOCKET.
func notify(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logging.Warn("Supervisor", "systemd notification %q failed: %v", state, err)
		return
	}
	if sent {
		logging.Debug("Supervisor", "Notified systemd: %s", state)
	}
}
