package srp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// requireLive returns b after checking that it holds live key material.
func requireLive(t *testing.T, name string, b []byte) []byte {
	t.Helper()
	require.NotEmpty(t, b, name)
	require.False(t, allZero(b), "%s is zero before the wipe", name)
	return b
}

func assertWiped(t *testing.T, secrets map[string][]byte) {
	t.Helper()
	for name, b := range secrets {
		assert.True(t, allZero(b), "%s was not wiped", name)
	}
}

type wipeFixture struct {
	engine *Engine
	client *Client
	server *Server
}

func newWipeFixture(t *testing.T) *wipeFixture {
	t.Helper()

	params, err := NamedParams(GroupRFC5054_1024, HashSHA256)
	require.NoError(t, err)
	engine, err := NewParamsEngine(params)
	require.NoError(t, err)

	salt := []byte("0123456789abcdef")
	verifier := NewCoordinator(engine).ComputeVerifier("alice", "password123", salt)

	client := NewClient(engine)
	require.NoError(t, client.SetCredentials("alice", "password123", salt))
	server := NewServer(engine)
	require.NoError(t, server.SetCredentials("alice", verifier, salt))

	return &wipeFixture{engine: engine, client: client, server: server}
}

// clientCredentialSecrets captures x and a while the client holds them.
func (f *wipeFixture) clientCredentialSecrets(t *testing.T) map[string][]byte {
	t.Helper()
	p, ok := f.client.phase.(clientCredentialed)
	require.True(t, ok)
	return map[string][]byte{
		"client x": requireLive(t, "client x", p.privateKey),
		"client a": requireLive(t, "client a", p.keys.Secret),
	}
}

// serverCredentialSecrets captures v and b while the server holds them.
func (f *wipeFixture) serverCredentialSecrets(t *testing.T) map[string][]byte {
	t.Helper()
	p, ok := f.server.phase.(serverCredentialed)
	require.True(t, ok)
	return map[string][]byte{
		"server v": requireLive(t, "server v", p.verifier),
		"server b": requireLive(t, "server b", p.keys.Secret),
	}
}

// exchangeKeys moves both sides to the keyed state.
func (f *wipeFixture) exchangeKeys(t *testing.T) {
	t.Helper()

	A, err := f.client.PublicKey()
	require.NoError(t, err)
	B, err := f.server.PublicKey()
	require.NoError(t, err)

	ok, err := f.client.SetServerKey(B)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = f.server.SetClientKey(A)
	require.NoError(t, err)
	require.True(t, ok)
}

func (f *wipeFixture) clientKeyedSecrets(t *testing.T) map[string][]byte {
	t.Helper()
	p, ok := f.client.phase.(clientKeyed)
	require.True(t, ok)
	return map[string][]byte{
		"client M1":          requireLive(t, "client M1", p.proof),
		"client expected M2": requireLive(t, "client expected M2", p.expectedProof),
		"client K":           requireLive(t, "client K", p.sessionKey),
	}
}

func (f *wipeFixture) serverKeyedSecrets(t *testing.T) map[string][]byte {
	t.Helper()
	p, ok := f.server.phase.(serverKeyed)
	require.True(t, ok)
	return map[string][]byte{
		"server M2":          requireLive(t, "server M2", p.proof),
		"server expected M1": requireLive(t, "server expected M1", p.expectedProof),
		"server K":           requireLive(t, "server K", p.sessionKey),
	}
}

func TestWipe_Success(t *testing.T) {
	f := newWipeFixture(t)
	clientSecrets := f.clientCredentialSecrets(t)
	serverSecrets := f.serverCredentialSecrets(t)

	f.exchangeKeys(t)
	assertWiped(t, clientSecrets)
	assertWiped(t, serverSecrets)

	clientExpected := f.clientKeyedSecrets(t)["client expected M2"]
	serverExpected := f.serverKeyedSecrets(t)["server expected M1"]

	M1, err := f.client.Proof()
	require.NoError(t, err)
	ok, err := f.server.ValidateProof(M1)
	require.NoError(t, err)
	require.True(t, ok)

	M2, err := f.server.Proof()
	require.NoError(t, err)
	ok, err = f.client.ValidateProof(M2)
	require.NoError(t, err)
	require.True(t, ok)

	assertWiped(t, map[string][]byte{
		"client expected M2": clientExpected,
		"server expected M1": serverExpected,
	})

	// The session key stays readable after success.
	key, err := f.client.SessionKey()
	require.NoError(t, err)
	assert.False(t, allZero(key))
}

func TestWipe_Abort(t *testing.T) {
	f := newWipeFixture(t)
	clientSecrets := f.clientCredentialSecrets(t)
	serverSecrets := f.serverCredentialSecrets(t)

	ok, err := f.client.SetServerKey([]byte{0})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, StateFailed, f.client.State())

	ok, err = f.server.SetClientKey(f.engine.N().Bytes())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, StateFailed, f.server.State())

	assertWiped(t, clientSecrets)
	assertWiped(t, serverSecrets)
}

func TestWipe_ProofMismatch(t *testing.T) {
	f := newWipeFixture(t)
	f.exchangeKeys(t)

	clientSecrets := f.clientKeyedSecrets(t)
	serverSecrets := f.serverKeyedSecrets(t)

	forged := bytes.Repeat([]byte{0x5a}, 32)

	ok, err := f.server.ValidateProof(forged)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.client.ValidateProof(forged)
	require.NoError(t, err)
	assert.False(t, ok)

	assertWiped(t, clientSecrets)
	assertWiped(t, serverSecrets)
}

func TestWipe_CloseCredentialed(t *testing.T) {
	f := newWipeFixture(t)
	clientSecrets := f.clientCredentialSecrets(t)
	serverSecrets := f.serverCredentialSecrets(t)

	f.client.Close()
	f.server.Close()

	assert.Equal(t, StateFailed, f.client.State())
	assert.Equal(t, StateFailed, f.server.State())
	assertWiped(t, clientSecrets)
	assertWiped(t, serverSecrets)
}

func TestWipe_CloseKeyed(t *testing.T) {
	f := newWipeFixture(t)
	f.exchangeKeys(t)

	clientSecrets := f.clientKeyedSecrets(t)
	serverSecrets := f.serverKeyedSecrets(t)

	f.client.Close()
	f.server.Close()

	assert.Equal(t, StateFailed, f.client.State())
	assert.Equal(t, StateFailed, f.server.State())
	assertWiped(t, clientSecrets)
	assertWiped(t, serverSecrets)
}
