package errors

import (
	"context"
	"fmt"
	"io"
	"net"
	"testing"
)

func TestRejectionError_Format(t *testing.T) {
	err := &RejectionError{Op: "send", Mode: "connecting", Reason: "Cannot send data while connecting."}
	want := "send rejected while connecting: Cannot send data while connecting."
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRejectionError_Is(t *testing.T) {
	tests := []struct {
		name         string
		op           string
		notConnected bool
	}{
		{"send", "send", true},
		{"connect", "connect", false},
		{"disconnect", "disconnect", false},
		{"establish", "establish", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &RejectionError{Op: tt.op, Mode: "disconnected"})
			if !Is(err, ErrRejected) {
				t.Error("should match ErrRejected")
			}
			if !IsRejection(err) {
				t.Error("IsRejection should be true")
			}
			if got := Is(err, ErrNotConnected); got != tt.notConnected {
				t.Errorf("Is(ErrNotConnected) = %v, want %v", got, tt.notConnected)
			}
		})
	}
}

func TestNetworkError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  NetworkError
		want string
	}{
		{
			name: "retryable",
			err:  NetworkError{Op: "dial", Addr: "example.com:80", Err: io.EOF, Retryable: true},
			want: "dial example.com:80: EOF (retryable)",
		},
		{
			name: "non-retryable",
			err:  NetworkError{Op: "write", Addr: "10.0.0.1:9000", Err: fmt.Errorf("broken pipe")},
			want: "write 10.0.0.1:9000: broken pipe",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNetworkError_Unwrap(t *testing.T) {
	err := &NetworkError{Op: "dial", Addr: "x", Err: io.EOF}
	if !Is(err, io.EOF) {
		t.Error("should unwrap to io.EOF")
	}
}

func TestSSHError_Format(t *testing.T) {
	err := WrapSSH("handshake", "bastion.example.com", 22, fmt.Errorf("connection refused"))
	want := "ssh handshake bastion.example.com:22: connection refused"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !Is(err, err.Err) {
		t.Error("should unwrap to inner error")
	}
}

func TestConfigError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "with value and hint",
			err: ConfigError{
				Field:   "port",
				Value:   99999,
				Message: "out of range 1-65535",
				Hint:    "use a port between 1 and 65535",
			},
			want: "config: --port=99999: out of range 1-65535\n  hint: use a port between 1 and 65535",
		},
		{
			name: "missing value no hint",
			err: ConfigError{
				Field:   "host",
				Message: "required with a port",
			},
			want: "config: --host: required with a port",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"retryable network", &NetworkError{Op: "dial", Addr: "x", Err: io.EOF, Retryable: true}, true},
		{"non-retryable network", &NetworkError{Op: "dial", Addr: "x", Err: io.EOF, Retryable: false}, false},
		{"plain error", fmt.Errorf("boom"), false},
		{"dial op error", &net.OpError{Op: "dial", Net: "tcp", Err: fmt.Errorf("connection refused")}, true},
		{"read op error", &net.OpError{Op: "read", Net: "tcp", Err: fmt.Errorf("reset")}, false},
		{"permanent dns", &net.DNSError{Err: "no such host", Name: "nope.invalid"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrap_ClassifiesRetryable(t *testing.T) {
	opErr := &net.OpError{
		Op:  "dial",
		Net: "tcp",
		Err: &net.DNSError{IsTemporary: true},
	}
	err := Wrap("dial", "10.0.0.1:22", opErr)
	if !err.Retryable {
		t.Error("temporary dial error should be retryable")
	}
	if !Is(err, opErr) {
		t.Error("should unwrap to inner error")
	}
}

func TestSentinels(t *testing.T) {
	sentinels := []error{
		ErrRejected, ErrNotConnected, ErrCircuitOpen,
		ErrTimeout, ErrAuthFailed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && Is(a, b) {
				t.Errorf("sentinel %d and %d should not match", i, j)
			}
		}
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestNetworkError_Timeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"dial timeout", &net.OpError{Op: "dial", Net: "tcp", Err: timeoutErr{}}, true},
		{"deadline", fmt.Errorf("handshake: %w", context.DeadlineExceeded), true},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: fmt.Errorf("connection refused")}, false},
		{"cancelled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Wrap("dial", "10.0.0.1:80", tt.err)
			if got := Is(err, ErrTimeout); got != tt.want {
				t.Errorf("Is(ErrTimeout) = %v, want %v", got, tt.want)
			}
			if Is(err, ErrRejected) {
				t.Error("network error must not match ErrRejected")
			}
		})
	}
}
