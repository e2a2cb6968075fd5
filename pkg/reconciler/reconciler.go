// Package reconciler is the application service behind the API and the CLI.
// It loads snapshots from the store, applies the configured domains and OU
// rules, and runs the reconciliation core with tracing and metrics around it.
package reconciler

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/idrecon/pkg/dirsync"
	"github.com/marmos91/idrecon/pkg/metrics"
	"github.com/marmos91/idrecon/pkg/recon/audit"
	"github.com/marmos91/idrecon/pkg/recon/browse"
	"github.com/marmos91/idrecon/pkg/recon/classify"
	"github.com/marmos91/idrecon/pkg/store"
)

// ErrUnknownDomain is returned for a domain source that is not configured.
var ErrUnknownDomain = errors.New("unknown domain")

// Domain is a configured directory domain source.
type Domain struct {
	Key   string `json:"key"`
	Label string `json:"label"`

	// DNSuffix filters imported rows to accounts under this suffix.
	DNSuffix string `json:"dn_suffix,omitempty"`

	// Sync reports whether the domain can be pulled over LDAP.
	Sync bool `json:"sync"`
}

// Options configures a Service.
type Options struct {
	// Domains in display order.
	Domains []Domain

	// DefaultAccountType is assigned when no OU rule matches.
	DefaultAccountType string

	Audit audit.Config

	// Syncer pulls accounts over LDAP. Nil disables sync.
	Syncer *dirsync.Syncer

	// Metrics may be nil.
	Metrics metrics.ReconMetrics
}

// Service runs reconciliation views over the stored sources.
//
// Thread Safety: Safe for concurrent use. Every call works on its own
// snapshot.
type Service struct {
	store   store.Store
	domains []Domain
	labels  map[string]string
	keys    []string
	browser *browse.Browser

	defaultType string
	auditCfg    audit.Config
	syncer      *dirsync.Syncer
	metrics     metrics.ReconMetrics
}

// New creates a Service over st.
func New(st store.Store, opts Options) *Service {
	s := &Service{
		store:       st,
		domains:     opts.Domains,
		labels:      make(map[string]string, len(opts.Domains)),
		keys:        make([]string, 0, len(opts.Domains)),
		defaultType: opts.DefaultAccountType,
		auditCfg:    opts.Audit,
		syncer:      opts.Syncer,
		metrics:     opts.Metrics,
	}

	browseDomains := make([]browse.Domain, 0, len(opts.Domains))
	for _, d := range opts.Domains {
		label := d.Label
		if label == "" {
			label = d.Key
		}
		s.labels[d.Key] = label
		s.keys = append(s.keys, d.Key)
		browseDomains = append(browseDomains, browse.Domain{Key: d.Key, Label: label})
	}
	s.browser = browse.New(browseDomains)
	return s
}

// Domains returns the configured domains in display order.
func (s *Service) Domains() []Domain {
	out := make([]Domain, len(s.domains))
	for i, d := range s.domains {
		d.Sync = s.syncer != nil && s.syncer.Configured(d.Key)
		out[i] = d
	}
	return out
}

// Domain looks up a configured domain by key.
func (s *Service) Domain(key string) (Domain, error) {
	for _, d := range s.domains {
		if d.Key == key {
			return d, nil
		}
	}
	return Domain{}, fmt.Errorf("%w: %q", ErrUnknownDomain, key)
}

// Healthcheck pings the store.
func (s *Service) Healthcheck(ctx context.Context) error {
	return s.store.Healthcheck(ctx)
}

// Stats returns record counts and the latest uploads.
func (s *Service) Stats(ctx context.Context) (*store.Stats, error) {
	return s.store.Stats(ctx)
}

// classifier builds a classifier from the stored OU rules.
func (s *Service) classifier(ctx context.Context) (*classify.Classifier, error) {
	rules, err := s.store.OURules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load OU rules: %w", err)
	}
	return classify.New(rules, s.defaultType), nil
}

// snapshot loads the sources together with the current classifier.
func (s *Service) snapshot(ctx context.Context) (*store.Snapshot, *classify.Classifier, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load snapshot: %w", err)
	}
	c, err := s.classifier(ctx)
	if err != nil {
		return nil, nil, err
	}
	return snap, c, nil
}

// ============================================
// OU RULES
// ============================================

// OURules returns the active OU rules.
func (s *Service) OURules(ctx context.Context) (classify.RuleSet, error) {
	return s.store.OURules(ctx)
}

// SetOURules validates and stores rules. Domains must be configured or the
// wildcard.
func (s *Service) SetOURules(ctx context.Context, rules classify.RuleSet) error {
	if err := classify.Validate(rules, s.keys); err != nil {
		return err
	}
	return s.store.SetOURules(ctx, rules)
}

// ResetOURules restores the built-in rules and returns them.
func (s *Service) ResetOURules(ctx context.Context) (classify.RuleSet, error) {
	if err := s.store.ResetOURules(ctx); err != nil {
		return nil, err
	}
	return s.store.OURules(ctx)
}
