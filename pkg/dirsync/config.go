package dirsync

import (
	"fmt"
	"time"
)

// Defaults for LDAP connections.
const (
	DefaultPort     = 389
	DefaultTLSPort  = 636
	DefaultPageSize = 1000
	DefaultTimeout  = 30 * time.Second
)

// LDAPConfig describes how to reach one domain's directory server.
type LDAPConfig struct {
	// Server is the domain controller host name. An empty server disables
	// sync for the domain.
	Server string `mapstructure:"server" yaml:"server"`

	// Port defaults to 636 with UseSSL, otherwise 389.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// UseSSL dials ldaps://.
	UseSSL bool `mapstructure:"use_ssl" yaml:"use_ssl"`

	// InsecureSkipVerify disables server certificate checks.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify,omitempty"`

	// BindDN and Password are used for a simple bind when Kerberos is not
	// configured.
	BindDN   string `mapstructure:"bind_dn" yaml:"bind_dn"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`

	// SearchBase is the subtree searched for user objects.
	SearchBase string `mapstructure:"search_base" yaml:"search_base"`

	// PageSize is the simple paged results size.
	// Default: 1000
	PageSize uint32 `mapstructure:"page_size" yaml:"page_size"`

	// Timeout bounds dialing the server.
	// Default: 30s
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// Kerberos enables a GSSAPI bind using a keytab.
	Kerberos KerberosConfig `mapstructure:"kerberos" yaml:"kerberos"`
}

// KerberosConfig configures a GSSAPI bind.
//
// Environment variable overrides:
//   - IDRECON_KRB5_KEYTAB overrides Keytab
//   - IDRECON_KRB5_CONFIG overrides Krb5Conf
type KerberosConfig struct {
	Realm    string `mapstructure:"realm" yaml:"realm"`
	Username string `mapstructure:"username" yaml:"username"`
	Keytab   string `mapstructure:"keytab" yaml:"keytab"`

	// Krb5Conf defaults to /etc/krb5.conf.
	Krb5Conf string `mapstructure:"krb5_conf" yaml:"krb5_conf,omitempty"`

	// SPN is the directory service principal.
	// Default: ldap/<server>
	SPN string `mapstructure:"spn" yaml:"spn,omitempty"`
}

// Enabled reports whether a GSSAPI bind is configured.
func (k KerberosConfig) Enabled() bool {
	return k.Realm != "" && k.Username != "" && resolveKeytabPath(k.Keytab) != ""
}

// Configured reports whether the domain can be synced at all.
func (c LDAPConfig) Configured() bool {
	return c.Server != ""
}

// ApplyDefaults fills in the port, page size and timeout.
func (c *LDAPConfig) ApplyDefaults() {
	if c.Port == 0 {
		if c.UseSSL {
			c.Port = DefaultTLSPort
		} else {
			c.Port = DefaultPort
		}
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Kerberos.SPN == "" && c.Server != "" {
		c.Kerberos.SPN = "ldap/" + c.Server
	}
}

// Validate checks that a configured domain can bind.
func (c *LDAPConfig) Validate() error {
	if !c.Configured() {
		return nil
	}
	if c.SearchBase == "" {
		return fmt.Errorf("ldap search_base is required when server is set")
	}
	if !c.Kerberos.Enabled() && c.BindDN == "" {
		return fmt.Errorf("ldap bind_dn or kerberos keytab is required when server is set")
	}
	return nil
}

func (c *LDAPConfig) url() string {
	scheme := "ldap"
	if c.UseSSL {
		scheme = "ldaps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Server, c.Port)
}
