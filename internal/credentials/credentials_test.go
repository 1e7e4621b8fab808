package credentials

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

type memStore struct {
	secrets map[string]string
	getErr  error
	sets    int
}

func (m *memStore) Get(service, user string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	s, ok := m.secrets[service+"/"+user]
	if !ok {
		return "", ErrNotFound
	}
	return s, nil
}

func (m *memStore) Set(service, user, secret string) error {
	if m.secrets == nil {
		m.secrets = map[string]string{}
	}
	m.secrets[service+"/"+user] = secret
	m.sets++
	return nil
}

type fixedPrompt struct {
	answer string
	calls  int
}

func (f *fixedPrompt) Prompt() (string, error) {
	f.calls++
	return f.answer, nil
}

func TestResolve_ExplicitWins(t *testing.T) {
	store := &memStore{secrets: map[string]string{"CryptoAnalyzerApp/api_key": "stored"}}
	prompt := &fixedPrompt{answer: "typed"}

	key, err := Resolver{Store: store, Prompt: prompt}.Resolve(" from-env ")
	require.NoError(t, err)
	require.Equal(t, "from-env", key)
	require.Equal(t, 0, prompt.calls)
}

func TestResolve_FromStore(t *testing.T) {
	store := &memStore{secrets: map[string]string{"CryptoAnalyzerApp/api_key": "stored"}}
	prompt := &fixedPrompt{answer: "typed"}

	key, err := Resolver{Store: store, Prompt: prompt}.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "stored", key)
	require.Equal(t, 0, prompt.calls)
}

func TestResolve_FirstRunPromptsAndPersists(t *testing.T) {
	store := &memStore{}
	prompt := &fixedPrompt{answer: "typed"}

	key, err := Resolver{Store: store, Prompt: prompt}.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "typed", key)
	require.Equal(t, 1, store.sets)

	// Second run reads it back without prompting.
	key, err = Resolver{Store: store, Prompt: prompt}.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "typed", key)
	require.Equal(t, 1, prompt.calls)
}

func TestResolve_CancelledPromptIsFatal(t *testing.T) {
	_, err := Resolver{Store: &memStore{}, Prompt: &fixedPrompt{}}.Resolve("")
	require.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = Resolver{Store: &memStore{}}.Resolve("")
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestResolve_StoreUnavailableFallsBackToPrompt(t *testing.T) {
	store := &memStore{getErr: errors.New("dbus: no session bus")}
	key, err := Resolver{Store: store, Prompt: &fixedPrompt{answer: "typed"}}.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "typed", key)
}

func TestLinePrompter(t *testing.T) {
	var out bytes.Buffer
	key, err := LinePrompter{In: strings.NewReader("  abc-123 \nignored\n"), Out: &out}.Prompt()
	require.NoError(t, err)
	require.Equal(t, "abc-123", key)
	require.Contains(t, out.String(), "API key")

	key, err = LinePrompter{In: strings.NewReader("")}.Prompt()
	require.NoError(t, err)
	require.Empty(t, key)
}

func TestKeyring_RoundTrip(t *testing.T) {
	keyring.MockInit()

	var k Keyring
	_, err := k.Get(DefaultService, DefaultUser)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, k.Set(DefaultService, DefaultUser, "secret"))
	got, err := k.Get(DefaultService, DefaultUser)
	require.NoError(t, err)
	require.Equal(t, "secret", got)
}
