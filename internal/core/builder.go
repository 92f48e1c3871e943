package core

import (
	"fmt"

	"connstate/config"
	"connstate/internal/metrics"
	"connstate/internal/retry"
	"connstate/internal/session"
	"connstate/internal/transport"
	"connstate/util"
)

// Build constructs the appropriate Mode from the given configuration.
// A config without a host replays its script (or the default one);
// otherwise a LinkMode drives a real endpoint.
func Build(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	if cfg.LinkMode() {
		return buildLink(cfg, logger, m), nil
	}
	return buildScript(cfg, logger, m)
}

// ── mode builders ────────────────────────────────────────────────────

func buildScript(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	steps := cfg.Steps
	if len(steps) == 0 {
		var err error
		if steps, err = config.ParseSteps(config.DefaultScript); err != nil {
			return nil, fmt.Errorf("default script: %w", err)
		}
	}
	return &ScriptMode{
		Name:    cfg.Name,
		Steps:   steps,
		Logger:  logger,
		Metrics: m,
	}, nil
}

func buildLink(cfg *config.Config, logger *util.Logger, m *metrics.Collector) *LinkMode {
	network := "tcp"
	if cfg.UDP {
		network = "udp"
	}

	backoff := retry.DefaultBackoff()
	backoff.MaxAttempts = cfg.Retries

	mode := &LinkMode{Logger: logger}
	mode.Session = session.New(session.Config{
		Name:       cfg.Name,
		Network:    network,
		Address:    util.FormatAddr(cfg.Host, cfg.Port),
		Dialer:     buildDialer(cfg, logger),
		Backoff:    backoff,
		Logger:     logger,
		Metrics:    m,
		OnDispatch: mode.Notice,
	})
	return mode
}

// ── shared helpers ───────────────────────────────────────────────────

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&transport.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			Timeout:       cfg.Timeout,
		}, logger)
	}
	if cfg.UDP {
		return &transport.UDPDialer{Timeout: cfg.Timeout}
	}
	return &transport.TCPDialer{Timeout: cfg.Timeout}
}
