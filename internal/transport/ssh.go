package transport

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/term"

	ncerr "connstate/internal/errors"
	"connstate/util"
)

// SSHConfig holds everything needed to reach an SSH gateway.
type SSHConfig struct {
	User          string
	Host          string
	Port          int
	KeyPath       string
	PromptPass    bool
	UseAgent      bool
	StrictHostKey bool
	KnownHosts    string
	Timeout       time.Duration
}

// SSHDialer routes connections through an SSH gateway.  The gateway
// connection is made lazily on the first Dial and reused until Close.
type SSHDialer struct {
	config *SSHConfig
	logger *util.Logger

	mu     sync.Mutex
	client *ssh.Client
}

// NewSSHDialer creates a dialer for the gateway described by cfg.
func NewSSHDialer(cfg *SSHConfig, logger *util.Logger) *SSHDialer {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SSHDialer{config: cfg, logger: logger}
}

// Dial opens a direct-tcpip channel to address through the gateway.
func (d *SSHDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	client, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}
	conn, err := client.DialContext(ctx, network, address)
	if err != nil {
		return nil, ncerr.WrapSSH("channel", d.config.Host, d.config.Port, err)
	}
	return conn, nil
}

// Close tears down the gateway connection, if any.
func (d *SSHDialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	return err
}

func (d *SSHDialer) connect(ctx context.Context) (*ssh.Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		return d.client, nil
	}

	auth, err := authMethods(d.config)
	if err != nil {
		return nil, ncerr.WrapSSH("auth", d.config.Host, d.config.Port, err)
	}
	hk, err := hostKeyCallback(d.config)
	if err != nil {
		return nil, ncerr.WrapSSH("hostkey", d.config.Host, d.config.Port, err)
	}

	addr := net.JoinHostPort(d.config.Host, strconv.Itoa(d.config.Port))
	d.logger.Debug("ssh: dialing gateway %s as %s", addr, d.config.User)

	var nd net.Dialer
	nd.Timeout = d.config.Timeout
	raw, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, ncerr.Wrap("dial", addr, err)
	}

	c, chans, reqs, err := ssh.NewClientConn(raw, addr, &ssh.ClientConfig{
		User:            d.config.User,
		Auth:            auth,
		HostKeyCallback: hk,
		Timeout:         d.config.Timeout,
	})
	if err != nil {
		raw.Close()
		return nil, ncerr.WrapSSH("handshake", d.config.Host, d.config.Port, err)
	}

	d.client = ssh.NewClient(c, chans, reqs)
	d.logger.Verbose("ssh: gateway %s ready", addr)
	return d.client, nil
}

// ── authentication ───────────────────────────────────────────────────

// authMethods assembles SSH auth methods in order: key file, agent,
// password prompt, then the agent and common key files as fallback.
func authMethods(cfg *SSHConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if cfg.KeyPath != "" {
		m, err := keyFileAuth(cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", cfg.KeyPath, err)
		}
		methods = append(methods, m)
	}
	if cfg.UseAgent {
		m, err := agentAuth()
		if err != nil {
			return nil, fmt.Errorf("ssh-agent: %w", err)
		}
		methods = append(methods, m)
	}
	if cfg.PromptPass {
		fmt.Fprint(os.Stderr, "SSH password: ")
		pass, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		methods = append(methods, ssh.Password(string(pass)))
	}

	if len(methods) == 0 {
		if m, err := agentAuth(); err == nil {
			methods = append(methods, m)
		}
		if home, err := os.UserHomeDir(); err == nil {
			for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
				if m, err := keyFileAuth(filepath.Join(home, ".ssh", name)); err == nil {
					methods = append(methods, m)
				}
			}
		}
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("%w: no SSH authentication methods available – "+
			"use --ssh-key, --ssh-password, or --ssh-agent", ncerr.ErrAuthFailed)
	}
	return methods, nil
}

func keyFileAuth(path string) (ssh.AuthMethod, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(data)
	if _, ok := err.(*ssh.PassphraseMissingError); ok {
		fmt.Fprintf(os.Stderr, "Enter passphrase for %s: ", path)
		pass, perr := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if perr != nil {
			return nil, fmt.Errorf("reading passphrase: %w", perr)
		}
		signer, err = ssh.ParsePrivateKeyWithPassphrase(data, pass)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing key: %w", err)
	}
	return ssh.PublicKeys(signer), nil
}

func agentAuth() (ssh.AuthMethod, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, fmt.Errorf("SSH_AUTH_SOCK is not set")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, fmt.Errorf("connecting to agent at %s: %w", sock, err)
	}
	return ssh.PublicKeysCallback(agent.NewClient(conn).Signers), nil
}

// ── host-key verification ────────────────────────────────────────────

func hostKeyCallback(cfg *SSHConfig) (ssh.HostKeyCallback, error) {
	if !cfg.StrictHostKey {
		//nolint:gosec // user opted out of host key checking
		return ssh.InsecureIgnoreHostKey(), nil
	}

	path := cfg.KnownHosts
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}

	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("loading known_hosts from %s: %w", path, err)
	}
	return cb, nil
}
