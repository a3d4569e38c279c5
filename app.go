package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/agent"
	"github.com/ekaya-inc/intelhub/pkg/kvstore"
	"github.com/ekaya-inc/intelhub/pkg/services"
	"github.com/ekaya-inc/intelhub/pkg/state"
)

// app holds the components shared by every command.
type app struct {
	kv        kvstore.Store
	store     *state.Store
	discovery services.DiscoveryService
	reports   services.ReportService
}

// openApp opens the configured store and loads the hub state. The agent gateway
// and workflows are only built when withAgent is set.
func openApp(ctx context.Context, withAgent bool) (*app, error) {
	kv, err := kvstore.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	a := &app{
		kv:    kv,
		store: state.New(kv, logger),
	}
	if err := a.store.Load(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	if withAgent {
		gateway, err := agent.New(&cfg.Agent, logger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to create agent gateway: %w", err)
		}
		a.discovery = services.NewDiscoveryService(a.store, gateway, cfg.Agent.DiscoveryAgentID, nil, logger)
		a.reports = services.NewReportService(a.store, gateway, cfg.Agent.ReportAgentID, logger)
	}

	return a, nil
}

// close drains pending writes before releasing the backend.
func (a *app) close() {
	a.store.Close()
	if err := a.kv.Close(); err != nil {
		logger.Warn("Failed to close store", zap.Error(err))
	}
}
