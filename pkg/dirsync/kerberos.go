package dirsync

import (
	"fmt"
	"os"

	"github.com/go-ldap/ldap/v3/gssapi"
	"github.com/jcmturner/gokrb5/v8/client"
	krb5config "github.com/jcmturner/gokrb5/v8/config"
	"github.com/jcmturner/gokrb5/v8/keytab"
)

const defaultKrb5Conf = "/etc/krb5.conf"

// newGSSAPIClient logs in to the KDC with the configured keytab and returns
// a client usable for an LDAP GSSAPI bind.
func newGSSAPIClient(cfg KerberosConfig) (*gssapi.Client, error) {
	keytabPath := resolveKeytabPath(cfg.Keytab)
	kt, err := loadKeytab(keytabPath)
	if err != nil {
		return nil, fmt.Errorf("load keytab %s: %w", keytabPath, err)
	}

	confPath := resolveKrb5ConfPath(cfg.Krb5Conf)
	krbCfg, err := loadKrb5Conf(confPath)
	if err != nil {
		return nil, fmt.Errorf("load krb5.conf %s: %w", confPath, err)
	}

	// Active Directory KDCs reject FAST pre-authentication.
	kc := client.NewWithKeytab(cfg.Username, cfg.Realm, kt, krbCfg, client.DisablePAFXFAST(true))
	if err := kc.Login(); err != nil {
		return nil, fmt.Errorf("kerberos login as %s@%s: %w", cfg.Username, cfg.Realm, err)
	}
	return &gssapi.Client{Client: kc}, nil
}

// loadKeytab reads and parses a keytab file.
func loadKeytab(path string) (*keytab.Keytab, error) {
	if path == "" {
		return nil, fmt.Errorf("keytab path not configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keytab file: %w", err)
	}

	kt := keytab.New()
	if err := kt.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("parse keytab: %w", err)
	}
	return kt, nil
}

// loadKrb5Conf reads and parses a Kerberos configuration file.
func loadKrb5Conf(path string) (*krb5config.Config, error) {
	cfg, err := krb5config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("parse krb5.conf: %w", err)
	}
	return cfg, nil
}

// resolveKeytabPath prefers IDRECON_KRB5_KEYTAB over the configured path.
func resolveKeytabPath(configPath string) string {
	if envPath := os.Getenv("IDRECON_KRB5_KEYTAB"); envPath != "" {
		return envPath
	}
	return configPath
}

// resolveKrb5ConfPath prefers IDRECON_KRB5_CONFIG, then the configured
// path, then /etc/krb5.conf.
func resolveKrb5ConfPath(configPath string) string {
	if envPath := os.Getenv("IDRECON_KRB5_CONFIG"); envPath != "" {
		return envPath
	}
	if configPath != "" {
		return configPath
	}
	return defaultKrb5Conf
}
