// Package credentials collects the secret values for one installation run.
// Secrets live in memory only and every printable representation is redacted;
// nothing in this package or its callers may write a secret to a log, a file,
// or a debug trace.
package credentials

import (
	"fmt"
	"os"
	"strings"

	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

// Secret holds one secret value. Its String and GoString forms are redacted
// so a Secret can never leak through formatting, including %#v debug output.
type Secret struct {
	value string
}

// NewSecret wraps a raw secret value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// Value returns the raw secret for handoff to the setup process or the
// database driver. Call sites are the only places a secret leaves this type.
func (s Secret) Value() string { return s.value }

// Empty reports whether no value was collected.
func (s Secret) Empty() bool { return s.value == "" }

func (s Secret) String() string   { return "********" }
func (s Secret) GoString() string { return `credentials.Secret{value:"********"}` }

// Bundle carries the three secrets of a run: the SA password and the two
// service account passwords.
type Bundle struct {
	SAPassword     Secret
	EnginePassword Secret
	AgentPassword  Secret
}

// Source produces a secret for a named slot. The terminal source prompts the
// operator; the environment source reads variables for unattended runs.
type Source interface {
	Secret(name, prompt string) (Secret, error)
}

// Collector gathers a Bundle through a Source.
type Collector struct {
	source Source
}

// NewCollector creates a Collector.
func NewCollector(source Source) *Collector {
	return &Collector{source: source}
}

// Slot names understood by every Source.
const (
	SlotSAPassword     = "SA_PASSWORD"
	SlotEnginePassword = "ENGINE_PASSWORD"
	SlotAgentPassword  = "AGENT_PASSWORD"
)

// Collect gathers the run's secrets. When the engine and agent services share
// an account the agent secret reuses the engine secret and the third slot is
// never requested.
func (c *Collector) Collect(sharedServiceAccount bool) (*Bundle, error) {
	sa, err := c.source.Secret(SlotSAPassword, "SA password")
	if err != nil {
		return nil, err
	}
	if sa.Empty() {
		return nil, zetuperrors.NewPreconditionError("credentials", "SA password is empty", nil)
	}

	engine, err := c.source.Secret(SlotEnginePassword, "engine service account password")
	if err != nil {
		return nil, err
	}
	if engine.Empty() {
		return nil, zetuperrors.NewPreconditionError("credentials", "engine service password is empty", nil)
	}

	agent := engine
	if !sharedServiceAccount {
		agent, err = c.source.Secret(SlotAgentPassword, "agent service account password")
		if err != nil {
			return nil, err
		}
		if agent.Empty() {
			return nil, zetuperrors.NewPreconditionError("credentials", "agent service password is empty", nil)
		}
	}

	return &Bundle{SAPassword: sa, EnginePassword: engine, AgentPassword: agent}, nil
}

// EnvSource reads secrets from environment variables for unattended runs.
// A missing variable is a precondition failure, never an embedded prompt.
type EnvSource struct {
	// Prefix defaults to "SQLZETUP_".
	Prefix string
}

// Secret reads the environment variable for the named slot.
func (e *EnvSource) Secret(name, prompt string) (Secret, error) {
	prefix := e.Prefix
	if prefix == "" {
		prefix = "SQLZETUP_"
	}
	key := prefix + strings.ToUpper(name)
	value, ok := os.LookupEnv(key)
	if !ok {
		return Secret{}, zetuperrors.NewPreconditionError("credentials",
			fmt.Sprintf("environment variable %s is not set", key), nil)
	}
	return NewSecret(value), nil
}
