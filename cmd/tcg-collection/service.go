package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchProgram runs the library watcher under the system service manager.
type watchProgram struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Start implements service.Interface
func (p *watchProgram) Start(s service.Service) error {
	a, err := openApp(p.ctx, cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(p.ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		defer a.Close()
		if err := a.watch(ctx); err != nil {
			logger.Error("watcher stopped", zap.Error(err))
		}
	}()
	return nil
}

// Stop implements service.Interface
func (p *watchProgram) Stop(s service.Service) error {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}
	return nil
}

var serviceCmd = &cobra.Command{
	Use:   "service <install|uninstall|start|stop|restart|status|run>",
	Short: "Run the library watcher as a system service",
	Long: `Manages a system service that runs "tcg-collection watch" in the background.
Set output.dir in the config so the refreshed report is written to a file.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"install", "uninstall", "start", "stop", "restart", "status", "run"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := service.New(&watchProgram{ctx: cmd.Context()}, serviceConfig())
		if err != nil {
			return fmt.Errorf("failed to create service: %w", err)
		}

		switch action := args[0]; action {
		case "run":
			return s.Run()
		case "status":
			status, err := s.Status()
			if err != nil {
				return fmt.Errorf("failed to get service status: %w", err)
			}
			fmt.Printf("Service status: %s\n", statusName(status))
			return nil
		case "install", "uninstall", "start", "stop", "restart":
			if err := service.Control(s, action); err != nil {
				return fmt.Errorf("failed to %s service: %w", action, err)
			}
			fmt.Printf("✓ Service %s succeeded\n", action)
			return nil
		default:
			return fmt.Errorf("unknown service action %q", action)
		}
	},
}

func serviceConfig() *service.Config {
	args := []string{"service", "run"}
	if configPath != "" {
		if abs, err := filepath.Abs(configPath); err == nil {
			args = append(args, "--config", abs)
		}
	}
	return &service.Config{
		Name:        "TCGCollectionWatcher",
		DisplayName: "TCG Collection Watcher",
		Description: "Refreshes the card want-list whenever the collection library changes",
		Arguments:   args,
	}
}

func statusName(s service.Status) string {
	switch s {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
