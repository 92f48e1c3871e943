package state

import (
	"fmt"

	ncerr "connstate/internal/errors"
)

// Result describes what a single dispatch did.
type Result struct {
	Op      Op      `json:"op"`
	From    Mode    `json:"from"`
	To      Mode    `json:"to"`
	Outcome Outcome `json:"outcome"`
	Notice  string  `json:"notice"`
	// Payload is set only for an accepted send; rejected payloads are
	// discarded.
	Payload string `json:"payload,omitempty"`
}

// Accepted reports whether the operation took effect.
func (r Result) Accepted() bool { return r.Outcome == Accepted }

// Changed reports whether the dispatch moved the machine to a new mode.
func (r Result) Changed() bool { return r.From != r.To }

// Err returns nil for an accepted result and a *RejectionError
// otherwise.
func (r Result) Err() error {
	if r.Accepted() {
		return nil
	}
	return &ncerr.RejectionError{Op: r.Op.String(), Mode: r.From.String(), Reason: r.Notice}
}

func (r Result) String() string {
	return r.Notice
}

// Dispatch applies the rule for op in mode from and renders its
// notice.  It is pure: the caller decides whether to adopt r.To.
func Dispatch(from Mode, op Op, payload string) Result {
	rule := Transition(from, op)
	res := Result{
		Op:      op,
		From:    rule.From,
		To:      rule.To,
		Outcome: rule.Outcome,
		Notice:  rule.Notice,
	}
	if op == OpSend && rule.Outcome == Accepted {
		res.Payload = payload
		res.Notice = fmt.Sprintf(rule.Notice, payload)
	}
	return res
}
