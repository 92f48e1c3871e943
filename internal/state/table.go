package state

// Rule is one row of the transition table.
//
// Notice is the human-readable signal reported to the caller.  For an
// accepted send it is a format string taking the payload.
type Rule struct {
	From    Mode    `json:"from"`
	Op      Op      `json:"op"`
	To      Mode    `json:"to"`
	Outcome Outcome `json:"outcome"`
	Notice  string  `json:"notice"`
}

// Table holds one rule for every (Mode, Op) pair.
var Table = []Rule{ //nolint:gochecknoglobals
	// ── Disconnected ─────────────────────────────────────────────────
	{Disconnected, OpConnect, Connecting, Accepted, "Connecting..."},
	{Disconnected, OpDisconnect, Disconnected, Rejected, "Already disconnected."},
	{Disconnected, OpSend, Disconnected, Rejected, "Cannot send data. Not connected."},
	{Disconnected, OpEstablish, Disconnected, Rejected, "No connection attempt in progress."},

	// ── Connecting ───────────────────────────────────────────────────
	{Connecting, OpConnect, Connecting, Rejected, "Already trying to connect."},
	{Connecting, OpDisconnect, Disconnected, Accepted, "Cancelling connection..."},
	{Connecting, OpSend, Connecting, Rejected, "Cannot send data while connecting."},
	{Connecting, OpEstablish, Connected, Accepted, "Connection established."},

	// ── Connected ────────────────────────────────────────────────────
	{Connected, OpConnect, Connected, Rejected, "Already connected."},
	{Connected, OpDisconnect, Disconnected, Accepted, "Disconnecting..."},
	{Connected, OpSend, Connected, Accepted, "Sending data: %s"},
	{Connected, OpEstablish, Connected, Rejected, "Already connected."},
}

// index is Table keyed by (From, Op), built once at init.
var index = buildIndex(Table) //nolint:gochecknoglobals

type key struct {
	from Mode
	op   Op
}

func buildIndex(rules []Rule) map[key]Rule {
	m := make(map[key]Rule, len(rules))
	for _, r := range rules {
		m[key{r.From, r.Op}] = r
	}
	return m
}

// Transition returns the rule for op dispatched in mode from.
//
// An unknown mode or op yields a rejection that keeps the mode, so
// the machine can never leave the defined set through this function.
func Transition(from Mode, op Op) Rule {
	if r, ok := index[key{from, op}]; ok {
		return r
	}
	return Rule{From: from, Op: op, To: from, Outcome: Rejected, Notice: "Unsupported operation."}
}
