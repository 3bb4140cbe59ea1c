package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/gccdash/engine"
	"github.com/spektr-org/gccdash/resource"
)

func TestParseCredentials(t *testing.T) {
	creds, err := ParseCredentials([]byte(`{
		// operators
		"users": {
			"Alice": "  secret ",
			"BOB": 1234,
			"carol": "",
			/* disabled */ "dave": null,
		},
	}`))
	require.NoError(t, err)
	assert.Equal(t, Credentials{
		"alice": "secret",
		"bob":   "1234",
		"carol": "",
		"dave":  "null",
	}, creds)
}

func TestParseCredentialsErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"not json":    `users: alice`,
		"no users":    `{"accounts": {}}`,
		"users array": `{"users": ["alice"]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCredentials([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestVerify(t *testing.T) {
	hash, err := HashPassword(" hunter2 ")
	require.NoError(t, err)
	require.True(t, IsHash(hash))

	creds := Credentials{"alice": "secret", "carol": "", "erin": hash}

	assert.True(t, creds.Verify("Alice", "secret"))
	assert.True(t, creds.Verify("  ALICE ", " secret  "))
	assert.False(t, creds.Verify("alice", "Secret"))
	assert.False(t, creds.Verify("mallory", "secret"))
	assert.False(t, creds.Verify("carol", ""))
	assert.True(t, creds.Verify("erin", "hunter2"))
	assert.False(t, creds.Verify("erin", hash))
}

func TestAuthenticatorLogin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"users": {"Alice": "secret"}}`), 0o600))
	log, hook := test.NewNullLogger()

	a := NewAuthenticator(resource.NewFile(path), log)

	user, err := a.Login(context.Background(), "  ALICE ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ALICE", user)

	_, err = a.Login(context.Background(), "alice", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "Invalid username or password.", Message(err))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "login rejected", hook.LastEntry().Message)

	// Credentials are cached after the first successful load.
	require.NoError(t, os.Remove(path))
	_, err = a.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
}

func TestAuthenticatorRetriesFailedLoad(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"users": {"bob": "pw"}}`))
	}))
	defer srv.Close()

	log, _ := test.NewNullLogger()
	a := NewAuthenticator(resource.NewHTTP(srv.URL, srv.Client()), log)

	_, err := a.Login(context.Background(), "bob", "pw")
	require.ErrorIs(t, err, ErrCredentialsUnavailable)
	assert.True(t, resource.IsLoadError(err))
	assert.Equal(t, "Error: Could not load user credentials. Check user.json path/format.", Message(err))

	user, err := a.Login(context.Background(), "bob", "pw")
	require.NoError(t, err)
	assert.Equal(t, "bob", user)
	assert.Equal(t, int32(2), hits.Load())
}

func TestAuthenticatorMalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"users": `), 0o600))
	log, _ := test.NewNullLogger()

	_, err := NewAuthenticator(resource.NewFile(path), log).Login(context.Background(), "a", "b")
	require.ErrorIs(t, err, ErrCredentialsUnavailable)
	assert.True(t, resource.IsLoadError(err))
}

func TestSessions(t *testing.T) {
	s := NewSessions()

	sess := s.Create("Alice")
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "Alice", sess.Username)
	assert.Equal(t, engine.NewViewState(), sess.State())

	got, ok := s.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)

	other := s.Create("Alice")
	assert.NotEqual(t, sess.ID, other.ID)
	assert.Equal(t, 2, s.Len())

	s.Delete(sess.ID)
	_, ok = s.Get(sess.ID)
	assert.False(t, ok)
	_, ok = s.Get("")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestSessionUpdateIsSerialized(t *testing.T) {
	sess := NewSessions().Create("a")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess.Update(func(st engine.ViewState) engine.ViewState {
				st.PivotVisible = !st.PivotVisible
				return st
			})
		}()
	}
	wg.Wait()
	assert.False(t, sess.State().PivotVisible)
}
