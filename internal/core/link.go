package core

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	ncerr "connstate/internal/errors"
	"connstate/internal/session"
	"connstate/internal/state"
	"connstate/util"
)

// LinkMode opens a Session to a real endpoint and forwards stdin to
// it line by line, printing every notice the Connection reports.
//
// Lines starting with "/" drive the machine directly:
//
//	/connect     re-run the handshake
//	/disconnect  tear the link down
//	/state       print the current mode
//
// Every other line is sent as a payload.  EOF or cancellation closes
// the session.
type LinkMode struct {
	stdio

	// Session must be created with OnDispatch set to Notice.
	Session *session.Session
	Logger  *util.Logger
}

// Notice prints a dispatch result; wire it as session.Config.OnDispatch.
func (m *LinkMode) Notice(r state.Result) {
	fmt.Fprintln(m.stdout(), r.Notice)
}

// Run performs the initial handshake and then serves stdin.  A failed
// initial handshake is returned; later rejections and send failures
// are reported and the loop continues.
func (m *LinkMode) Run(ctx context.Context) error {
	defer func() {
		if m.Session.Mode() != state.Disconnected {
			m.Session.Close()
		}
	}()

	if _, err := m.Session.Open(ctx); err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(m.stdin())
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			m.handle(ctx, line)
		}
	}
}

func (m *LinkMode) handle(ctx context.Context, line string) {
	var err error
	switch strings.TrimSpace(line) {
	case "/connect":
		_, err = m.Session.Open(ctx)
	case "/disconnect":
		m.Session.Close()
	case "/state":
		fmt.Fprintln(m.stdout(), m.Session.Mode())
	default:
		_, err = m.Session.Send(line)
	}
	// Rejections were already printed as notices.
	if err != nil && !ncerr.IsRejection(err) {
		m.Logger.Error("%v", err)
	}
}
