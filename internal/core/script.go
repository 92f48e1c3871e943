package core

import (
	"context"
	"fmt"

	"connstate/config"
	"connstate/internal/metrics"
	"connstate/internal/state"
	"connstate/util"
)

// ScriptMode replays a fixed sequence of operations against a fresh
// Connection and prints each notice on its own line.  Establish steps
// stand in for a handshake completing out of band.
type ScriptMode struct {
	stdio

	Name    string
	Steps   []config.Step
	Logger  *util.Logger
	Metrics *metrics.Collector
}

// Run executes every step in order.  Rejections are printed like any
// other notice; only a cancelled context or a failed write stops the
// replay early.
func (m *ScriptMode) Run(ctx context.Context) error {
	conn := state.New(m.Name)
	log := m.Logger.Named(m.Name)
	conn.OnTransition(func(r state.Result) {
		m.Metrics.RecordDispatch(r.Accepted(), r.Changed(), r.To.String())
		log.Verbose("%s (%s): %s → %s", r.Op, r.Outcome, r.From, r.To)
	})

	log.Debug("replaying %d steps on connection %s", len(m.Steps), conn.ID)

	out := m.stdout()
	for _, st := range m.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := conn.Do(st.Op, st.Payload)
		if _, err := fmt.Fprintln(out, res.Notice); err != nil {
			return fmt.Errorf("write notice: %w", err)
		}
	}
	return nil
}
