package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDirectoryRejected means the username or password was wrong.
	ErrDirectoryRejected = errors.New("directory rejected credentials")
	// ErrDirectoryNotStaff means the account exists but is outside the staff group.
	ErrDirectoryNotStaff = errors.New("directory account is not staff")
)

var directoryUsername = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// DirectoryIdentity is what a directory knows about an authenticated staff member.
type DirectoryIdentity struct {
	Username    string
	DisplayName string
}

// DirectoryAuthenticator checks staff credentials against an identity source.
type DirectoryAuthenticator interface {
	Authenticate(ctx context.Context, username, password string) (*DirectoryIdentity, error)
}

// LDAPConfig configures LDAPDirectory.
type LDAPConfig struct {
	URL          string
	MemberDN     string
	BindDN       string
	BindPassword string
	SearchFilter string
	Timeout      time.Duration
}

type ldapConn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// LDAPDirectory authenticates by binding as the member entry, then authorizes
// by searching that entry with the staff filter under the service account.
type LDAPDirectory struct {
	cfg    LDAPConfig
	logger *zap.Logger
	dial   func(url string, timeout time.Duration) (ldapConn, error)
}

// NewLDAPDirectory constructs an LDAP backed authenticator.
func NewLDAPDirectory(cfg LDAPConfig, logger *zap.Logger) *LDAPDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &LDAPDirectory{cfg: cfg, logger: logger, dial: dialLDAP}
}

type ldapSession struct {
	*ldap.Conn
}

func (s ldapSession) Close() error {
	s.Conn.Close()
	return nil
}

func dialLDAP(url string, timeout time.Duration) (ldapConn, error) {
	conn, err := ldap.DialURL(url, ldap.DialWithDialer(&net.Dialer{Timeout: timeout}))
	if err != nil {
		return nil, err
	}
	conn.SetTimeout(timeout)
	return ldapSession{Conn: conn}, nil
}

// Authenticate implements DirectoryAuthenticator.
func (d *LDAPDirectory) Authenticate(ctx context.Context, username, password string) (*DirectoryIdentity, error) {
	// An empty password would be an unauthenticated bind, which LDAP accepts.
	if !directoryUsername.MatchString(username) || password == "" {
		return nil, ErrDirectoryRejected
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	memberDN := fmt.Sprintf("uid=%s,%s", username, d.cfg.MemberDN)

	userConn, err := d.dial(d.cfg.URL, d.cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("dial directory: %w", err)
	}
	defer userConn.Close()

	if err := userConn.Bind(memberDN, password); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return nil, ErrDirectoryRejected
		}
		return nil, fmt.Errorf("bind member: %w", err)
	}

	svcConn, err := d.dial(d.cfg.URL, d.cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("dial directory: %w", err)
	}
	defer svcConn.Close()

	if err := svcConn.Bind(d.cfg.BindDN, d.cfg.BindPassword); err != nil {
		return nil, fmt.Errorf("bind service account: %w", err)
	}

	req := ldap.NewSearchRequest(
		memberDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		1,
		int(d.cfg.Timeout.Seconds()),
		false,
		d.cfg.SearchFilter,
		[]string{"uid", "cn", "displayName"},
		nil,
	)
	result, err := svcConn.Search(req)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return nil, ErrDirectoryNotStaff
		}
		return nil, fmt.Errorf("search member: %w", err)
	}
	if len(result.Entries) == 0 {
		return nil, ErrDirectoryNotStaff
	}

	entry := result.Entries[0]
	display := entry.GetAttributeValue("displayName")
	if display == "" {
		display = entry.GetAttributeValue("cn")
	}
	return &DirectoryIdentity{Username: username, DisplayName: display}, nil
}

// LocalDirectory checks bcrypt hashes from configuration. Development only.
type LocalDirectory struct {
	users map[string]string
}

// NewLocalDirectory builds a directory from username to bcrypt hash pairs.
func NewLocalDirectory(users map[string]string) *LocalDirectory {
	copied := make(map[string]string, len(users))
	for name, hash := range users {
		copied[strings.ToLower(name)] = hash
	}
	return &LocalDirectory{users: copied}
}

// Authenticate implements DirectoryAuthenticator.
func (d *LocalDirectory) Authenticate(_ context.Context, username, password string) (*DirectoryIdentity, error) {
	hash, ok := d.users[strings.ToLower(username)]
	if !ok {
		return nil, ErrDirectoryRejected
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrDirectoryRejected
	}
	return &DirectoryIdentity{Username: username, DisplayName: username}, nil
}

// BypassDirectory accepts any well-formed username. Never enabled in production.
type BypassDirectory struct {
	logger *zap.Logger
}

// NewBypassDirectory constructs the bypass authenticator.
func NewBypassDirectory(logger *zap.Logger) *BypassDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BypassDirectory{logger: logger}
}

// Authenticate implements DirectoryAuthenticator.
func (d *BypassDirectory) Authenticate(_ context.Context, username, _ string) (*DirectoryIdentity, error) {
	if !directoryUsername.MatchString(username) {
		return nil, ErrDirectoryRejected
	}
	d.logger.Warn("directory check bypassed", zap.String("username", username))
	return &DirectoryIdentity{Username: username, DisplayName: username}, nil
}

// ChainDirectory tries each authenticator in order and returns the first
// success. Rejections fall through; infrastructure errors stop the chain.
type ChainDirectory []DirectoryAuthenticator

// Authenticate implements DirectoryAuthenticator.
func (c ChainDirectory) Authenticate(ctx context.Context, username, password string) (*DirectoryIdentity, error) {
	lastErr := ErrDirectoryRejected
	for _, dir := range c {
		identity, err := dir.Authenticate(ctx, username, password)
		if err == nil {
			return identity, nil
		}
		if !errors.Is(err, ErrDirectoryRejected) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
