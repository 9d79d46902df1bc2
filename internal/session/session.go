// Package session derives a stable id for the terminal clica runs in, so a
// later run in the same pane resumes the same session file.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ids are {namespace}--{payload}, at most MaxIDLength bytes of [A-Za-z0-9._-].
const (
	MaxIDLength        = 80
	NamespaceDelimiter = "--"
	shortHashLength    = 16
)

const (
	NamespaceExplicit = "ex"
	NamespaceTmux     = "tmux"
	NamespaceScreen   = "screen"
	NamespaceSSH      = "ssh"
	NamespaceDefault  = "default"
	NamespaceUUID     = "uuid"
)

// Source names which detector produced an id.
type Source string

const (
	SourceFlag    Source = "explicit-flag"
	SourceEnv     Source = "explicit-env"
	SourceTmux    Source = "tmux"
	SourceScreen  Source = "screen"
	SourceSSH     Source = "ssh-env"
	SourceDefault Source = "default"
)

// EnvSessionID is the environment override for the session id.
const EnvSessionID = "CLICA_SESSION_ID"

// tmuxQuery is replaced in tests.
var tmuxQuery = queryTmux

// ID resolves the session id, in priority order: the explicit value, then
// $CLICA_SESSION_ID, the tmux pane, the GNU screen session, the SSH
// connection, and finally a fixed default.
func ID(explicit string) (string, Source) {
	if explicit != "" {
		return formatExplicitID(explicit), SourceFlag
	}
	if env := os.Getenv(EnvSessionID); env != "" {
		return formatExplicitID(env), SourceEnv
	}
	if os.Getenv("TMUX_PANE") != "" {
		if raw, err := tmuxQuery(); err == nil {
			return formatTmuxID(raw), SourceTmux
		}
	}
	if sty := os.Getenv("STY"); sty != "" {
		return hashedID(NamespaceScreen, "screen:"+sty), SourceScreen
	}
	if conn := os.Getenv("SSH_CONNECTION"); conn != "" {
		return hashedID(NamespaceSSH, "ssh:"+strings.Join(strings.Fields(conn), ":")), SourceSSH
	}
	return NamespaceDefault + NamespaceDelimiter + "local", SourceDefault
}

// NewID returns a fresh random id.
func NewID() string {
	return format(NamespaceUUID, uuid.NewString())
}

// formatExplicitID keeps a caller-supplied namespace, sanitized.
func formatExplicitID(id string) string {
	if ns, payload, ok := strings.Cut(id, NamespaceDelimiter); ok {
		return format(sanitize(ns), payload)
	}
	return format(NamespaceExplicit, id)
}

func hashedID(namespace, stable string) string {
	return format(namespace, hashString(stable)[:shortHashLength])
}

// format joins namespace and payload. An overlong payload is truncated and
// suffixed with a hash of the unsanitized value so distinct inputs stay
// distinct.
func format(namespace, payload string) string {
	sum := hashString(payload)
	payload = sanitize(payload)
	limit := MaxIDLength - len(namespace) - len(NamespaceDelimiter)
	if len(payload) > limit {
		if keep := limit - 9; keep < 8 {
			payload = sum[:limit]
		} else {
			payload = payload[:keep] + "_" + sum[:8]
		}
	}
	return namespace + NamespaceDelimiter + payload
}

// $session:@window:%pane
var tmuxIDRegex = regexp.MustCompile(`^\$(\w+):@(\w+):%(\w+)$`)

func queryTmux() (string, error) {
	path, err := exec.LookPath("tmux")
	if err != nil {
		return "", fmt.Errorf("tmux not found in PATH: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, "display-message", "-p", "#{session_id}:#{window_id}:#{pane_id}").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func formatTmuxID(raw string) string {
	if m := tmuxIDRegex.FindStringSubmatch(raw); m != nil {
		return format(NamespaceTmux, fmt.Sprintf("s%s.w%s.p%s", m[1], m[2], m[3]))
	}
	return format(NamespaceTmux, strings.NewReplacer("$", "s", "@", "w", "%", "p", ":", ".").Replace(raw))
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
