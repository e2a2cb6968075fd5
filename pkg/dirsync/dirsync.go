// Package dirsync pulls user accounts for a configured domain straight from
// its directory server over LDAP.
package dirsync

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/internal/telemetry"
	"github.com/marmos91/idrecon/pkg/recon/model"
)

// UserFilter selects person user objects.
const UserFilter = "(&(objectClass=user)(objectCategory=person))"

// ErrDomainNotConfigured is returned when a domain has no LDAP server.
var ErrDomainNotConfigured = errors.New("domain not configured for LDAP sync")

// ErrUnavailable wraps connect, bind and search failures against the
// directory server.
var ErrUnavailable = errors.New("directory server unavailable")

// Conn is the subset of *ldap.Conn used by a sync.
type Conn interface {
	Bind(username, password string) error
	GSSAPIBind(client ldap.GSSAPIClient, servicePrincipal, authzid string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// DialFunc opens a connection to a directory server.
type DialFunc func(ctx context.Context, cfg LDAPConfig) (Conn, error)

// Syncer fetches accounts for configured domains.
//
// Thread Safety: Safe for concurrent use; each Fetch opens its own
// connection.
type Syncer struct {
	domains map[string]LDAPConfig
	dial    DialFunc
	gssapi  func(KerberosConfig) (ldap.GSSAPIClient, error)
}

// New creates a Syncer for the given domain sources. Domains without a
// server are kept so that Fetch can report them as not configured.
func New(domains map[string]LDAPConfig) *Syncer {
	s := &Syncer{
		domains: make(map[string]LDAPConfig, len(domains)),
		dial:    dialLDAP,
		gssapi: func(cfg KerberosConfig) (ldap.GSSAPIClient, error) {
			client, err := newGSSAPIClient(cfg)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
	}
	for key, cfg := range domains {
		cfg.ApplyDefaults()
		s.domains[key] = cfg
	}
	return s
}

// WithDialer replaces the connection factory.
func (s *Syncer) WithDialer(dial DialFunc) *Syncer {
	s.dial = dial
	return s
}

// Configured reports whether domain has an LDAP server.
func (s *Syncer) Configured(domain string) bool {
	cfg, ok := s.domains[domain]
	return ok && cfg.Configured()
}

// Server returns the LDAP URL configured for domain, or "".
func (s *Syncer) Server(domain string) string {
	cfg, ok := s.domains[domain]
	if !ok || !cfg.Configured() {
		return ""
	}
	return cfg.url()
}

// Fetch binds to the domain's server and returns every person account
// under the search base, in server order.
func (s *Syncer) Fetch(ctx context.Context, domain string) (accounts []model.DirectoryAccount, err error) {
	cfg, ok := s.domains[domain]
	if !ok || !cfg.Configured() {
		return nil, fmt.Errorf("%w: %s", ErrDomainNotConfigured, domain)
	}

	method := "simple"
	if cfg.Kerberos.Enabled() {
		method = "gssapi"
	}
	ctx, span := telemetry.StartClientSpan(ctx, telemetry.SpanDirSync,
		telemetry.Domain(domain), telemetry.LDAPServer(cfg.url()), telemetry.LDAPBind(method))
	defer func() { telemetry.EndSpan(span, err) }()

	start := time.Now()
	conn, err := s.dial(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: connect to %s: %w", ErrUnavailable, cfg.url(), err)
	}
	defer conn.Close()

	if err := s.bind(conn, cfg); err != nil {
		return nil, fmt.Errorf("%w: bind to %s (%s): %w", ErrUnavailable, cfg.url(), method, err)
	}
	logger.DebugCtx(ctx, "LDAP bind succeeded", logger.Domain(domain), logger.Server(cfg.url()), "method", method)

	entries, err := search(ctx, conn, cfg)
	if err != nil {
		return nil, err
	}

	accounts = make([]model.DirectoryAccount, len(entries))
	for i, e := range entries {
		accounts[i] = Account(domain, e)
	}
	telemetry.SetAttributes(ctx, telemetry.Rows(len(accounts)))

	logger.InfoCtx(ctx, "LDAP sync fetched accounts",
		logger.Domain(domain), logger.Server(cfg.url()), logger.Rows(len(accounts)),
		logger.DurationMs(logger.Duration(start)))
	return accounts, nil
}

func (s *Syncer) bind(conn Conn, cfg LDAPConfig) error {
	if cfg.Kerberos.Enabled() {
		client, err := s.gssapi(cfg.Kerberos)
		if err != nil {
			return err
		}
		defer client.DeleteSecContext()
		return conn.GSSAPIBind(client, cfg.Kerberos.SPN, "")
	}
	return conn.Bind(cfg.BindDN, cfg.Password)
}

// search walks the simple paged results control until the server returns
// an empty cookie.
func search(ctx context.Context, conn Conn, cfg LDAPConfig) ([]*ldap.Entry, error) {
	paging := ldap.NewControlPaging(cfg.PageSize)
	req := ldap.NewSearchRequest(
		cfg.SearchBase,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		UserFilter,
		Attributes,
		[]ldap.Control{paging},
	)

	var entries []*ldap.Entry
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := conn.Search(req)
		if err != nil {
			return nil, fmt.Errorf("%w: search %s (page %d): %w", ErrUnavailable, cfg.SearchBase, page, err)
		}
		entries = append(entries, res.Entries...)
		logger.Debug("LDAP page received", logger.Page(page), logger.Count(len(res.Entries)))

		ctrl, ok := ldap.FindControl(res.Controls, ldap.ControlTypePaging).(*ldap.ControlPaging)
		if !ok || len(ctrl.Cookie) == 0 {
			break
		}
		paging.SetCookie(ctrl.Cookie)
	}
	return entries, nil
}

func dialLDAP(ctx context.Context, cfg LDAPConfig) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := []ldap.DialOpt{ldap.DialWithDialer(&net.Dialer{Timeout: cfg.Timeout})}
	if cfg.UseSSL {
		opts = append(opts, ldap.DialWithTLSConfig(&tls.Config{
			ServerName:         cfg.Server,
			InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for lab domains
			MinVersion:         tls.VersionTLS12,
		}))
	}
	conn, err := ldap.DialURL(cfg.url(), opts...)
	if err != nil {
		return nil, err
	}
	conn.SetTimeout(cfg.Timeout)
	return conn, nil
}
