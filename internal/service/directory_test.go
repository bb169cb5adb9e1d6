package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeLDAPConn struct {
	bindErr   map[string]error
	entries   []*ldap.Entry
	searchErr error
	binds     []string
	searches  []*ldap.SearchRequest
	closed    int
}

func (c *fakeLDAPConn) Bind(username, password string) error {
	c.binds = append(c.binds, username)
	return c.bindErr[username]
}

func (c *fakeLDAPConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	c.searches = append(c.searches, req)
	if c.searchErr != nil {
		return nil, c.searchErr
	}
	return &ldap.SearchResult{Entries: c.entries}, nil
}

func (c *fakeLDAPConn) Close() error {
	c.closed++
	return nil
}

func newFakeLDAP(conn *fakeLDAPConn) *LDAPDirectory {
	dir := NewLDAPDirectory(LDAPConfig{
		URL:          "ldaps://directory.test",
		MemberDN:     "ou=People,dc=example,dc=edu",
		BindDN:       "cn=svc,dc=example,dc=edu",
		BindPassword: "svc-pw",
		SearchFilter: "(memberOf=cn=timetable-staff,ou=Groups,dc=example,dc=edu)",
		Timeout:      2 * time.Second,
	}, zap.NewNop())
	dir.dial = func(string, time.Duration) (ldapConn, error) { return conn, nil }
	return dir
}

func TestLDAPDirectoryAuthenticatesStaff(t *testing.T) {
	conn := &fakeLDAPConn{entries: []*ldap.Entry{
		ldap.NewEntry("uid=jdoe,ou=People,dc=example,dc=edu", map[string][]string{"cn": {"Jane Doe"}}),
	}}
	dir := newFakeLDAP(conn)

	identity, err := dir.Authenticate(context.Background(), "jdoe", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", identity.DisplayName)
	assert.Equal(t, []string{"uid=jdoe,ou=People,dc=example,dc=edu", "cn=svc,dc=example,dc=edu"}, conn.binds)
	require.Len(t, conn.searches, 1)
	assert.Equal(t, "uid=jdoe,ou=People,dc=example,dc=edu", conn.searches[0].BaseDN)
	assert.Equal(t, ldap.ScopeWholeSubtree, conn.searches[0].Scope)
	assert.Equal(t, 2, conn.closed)
}

func TestLDAPDirectoryRejectsBadPassword(t *testing.T) {
	conn := &fakeLDAPConn{bindErr: map[string]error{
		"uid=jdoe,ou=People,dc=example,dc=edu": ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("invalid credentials")),
	}}
	dir := newFakeLDAP(conn)

	_, err := dir.Authenticate(context.Background(), "jdoe", "wrong")
	assert.ErrorIs(t, err, ErrDirectoryRejected)
	assert.Empty(t, conn.searches)
}

func TestLDAPDirectoryNotStaffWhenSearchEmpty(t *testing.T) {
	dir := newFakeLDAP(&fakeLDAPConn{})

	_, err := dir.Authenticate(context.Background(), "jdoe", "pw")
	assert.ErrorIs(t, err, ErrDirectoryNotStaff)
}

func TestLDAPDirectoryRefusesUnsafeInput(t *testing.T) {
	conn := &fakeLDAPConn{}
	dir := newFakeLDAP(conn)

	for _, username := range []string{"", "jdoe,ou=Admins", "a*", "uid=x"} {
		_, err := dir.Authenticate(context.Background(), username, "pw")
		assert.ErrorIs(t, err, ErrDirectoryRejected, username)
	}
	_, err := dir.Authenticate(context.Background(), "jdoe", "")
	assert.ErrorIs(t, err, ErrDirectoryRejected)
	assert.Empty(t, conn.binds)
}

func TestLDAPDirectoryServiceBindFailure(t *testing.T) {
	conn := &fakeLDAPConn{bindErr: map[string]error{
		"cn=svc,dc=example,dc=edu": errors.New("network down"),
	}}
	dir := newFakeLDAP(conn)

	_, err := dir.Authenticate(context.Background(), "jdoe", "pw")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDirectoryRejected))
	assert.False(t, errors.Is(err, ErrDirectoryNotStaff))
}

func TestLocalDirectory(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	dir := NewLocalDirectory(map[string]string{"Dev": string(hash)})

	identity, err := dir.Authenticate(context.Background(), "dev", "secret")
	require.NoError(t, err)
	assert.Equal(t, "dev", identity.Username)

	_, err = dir.Authenticate(context.Background(), "dev", "nope")
	assert.ErrorIs(t, err, ErrDirectoryRejected)
	_, err = dir.Authenticate(context.Background(), "ghost", "secret")
	assert.ErrorIs(t, err, ErrDirectoryRejected)
}

func TestChainDirectoryFallsThroughRejections(t *testing.T) {
	first := &stubDirectory{err: ErrDirectoryRejected}
	second := &stubDirectory{}
	identity, err := ChainDirectory{first, second}.Authenticate(context.Background(), "jdoe", "pw")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", identity.Username)

	broken := &stubDirectory{err: errors.New("timeout")}
	never := &stubDirectory{}
	_, err = ChainDirectory{broken, never}.Authenticate(context.Background(), "jdoe", "pw")
	require.Error(t, err)
	assert.Zero(t, never.calls)
}

func TestBypassDirectory(t *testing.T) {
	dir := NewBypassDirectory(nil)
	identity, err := dir.Authenticate(context.Background(), "anyone", "")
	require.NoError(t, err)
	assert.Equal(t, "anyone", identity.Username)

	_, err = dir.Authenticate(context.Background(), "bad name", "")
	assert.ErrorIs(t, err, ErrDirectoryRejected)
}
