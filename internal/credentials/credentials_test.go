package credentials

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	values  map[string]string
	asked   []string
	failOn  string
	failErr error
}

func (f *fakeSource) Secret(name, prompt string) (Secret, error) {
	f.asked = append(f.asked, name)
	if name == f.failOn {
		return Secret{}, f.failErr
	}
	return NewSecret(f.values[name]), nil
}

func TestSecretRedaction(t *testing.T) {
	t.Parallel()

	s := NewSecret("Hunter2!")
	require.Equal(t, "********", fmt.Sprintf("%v", s))
	require.Equal(t, "********", fmt.Sprintf("%s", s))
	require.NotContains(t, fmt.Sprintf("%#v", s), "Hunter2!")
	require.Equal(t, "Hunter2!", s.Value())
}

func TestCollectSeparateAccounts(t *testing.T) {
	t.Parallel()

	src := &fakeSource{values: map[string]string{
		SlotSAPassword:     "sa-secret",
		SlotEnginePassword: "engine-secret",
		SlotAgentPassword:  "agent-secret",
	}}

	bundle, err := NewCollector(src).Collect(false)
	require.NoError(t, err)
	require.Equal(t, "sa-secret", bundle.SAPassword.Value())
	require.Equal(t, "engine-secret", bundle.EnginePassword.Value())
	require.Equal(t, "agent-secret", bundle.AgentPassword.Value())
	require.Equal(t, []string{SlotSAPassword, SlotEnginePassword, SlotAgentPassword}, src.asked)
}

func TestCollectSharedAccountSkipsThirdPrompt(t *testing.T) {
	t.Parallel()

	src := &fakeSource{values: map[string]string{
		SlotSAPassword:     "sa-secret",
		SlotEnginePassword: "engine-secret",
	}}

	bundle, err := NewCollector(src).Collect(true)
	require.NoError(t, err)
	require.Equal(t, "engine-secret", bundle.AgentPassword.Value())
	require.Equal(t, []string{SlotSAPassword, SlotEnginePassword}, src.asked)
}

func TestCollectEmptySecretRejected(t *testing.T) {
	t.Parallel()

	src := &fakeSource{values: map[string]string{
		SlotSAPassword:     "",
		SlotEnginePassword: "engine-secret",
	}}

	_, err := NewCollector(src).Collect(true)
	require.Error(t, err)
}

func TestEnvSource(t *testing.T) {
	t.Setenv("SQLZETUP_SA_PASSWORD", "from-env")

	src := &EnvSource{}
	secret, err := src.Secret(SlotSAPassword, "SA password")
	require.NoError(t, err)
	require.Equal(t, "from-env", secret.Value())

	_, err = src.Secret(SlotAgentPassword, "agent password")
	require.Error(t, err)
	require.Contains(t, err.Error(), "SQLZETUP_AGENT_PASSWORD")
}

func TestEnvSourceCustomPrefix(t *testing.T) {
	t.Setenv("DBA_ENGINE_PASSWORD", "prefixed")

	src := &EnvSource{Prefix: "DBA_"}
	secret, err := src.Secret(SlotEnginePassword, "engine password")
	require.NoError(t, err)
	require.Equal(t, "prefixed", secret.Value())
}
