package reconciler

import (
	"context"
	"io"
	"time"

	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/internal/telemetry"
	"github.com/marmos91/idrecon/pkg/export"
	"github.com/marmos91/idrecon/pkg/metrics"
	"github.com/marmos91/idrecon/pkg/recon/audit"
	"github.com/marmos91/idrecon/pkg/recon/browse"
	"github.com/marmos91/idrecon/pkg/recon/consolidate"
	"github.com/marmos91/idrecon/pkg/recon/identity"
	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/store"
)

// Consolidated builds the reconciliation table.
func (s *Service) Consolidated(ctx context.Context) (rows []model.ConsolidatedRow, err error) {
	ctx, span := telemetry.StartReconSpan(ctx, telemetry.SpanConsolidate)
	defer func() { telemetry.EndSpan(span, err) }()

	snap, c, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	engine := consolidate.New(consolidate.WithClassifier(c), consolidate.WithDomainLabels(s.labels))
	rows, err = engine.Build(snap.Directory, snap.Mfa, snap.Hr)
	if err != nil {
		return nil, err
	}

	counts := discrepancyCounts(rows)
	metrics.ObserveConsolidation(s.metrics, time.Since(start), len(rows), counts)
	telemetry.SetAttributes(ctx, telemetry.Rows(len(rows)))
	logger.DebugCtx(ctx, "Consolidation built", logger.Rows(len(rows)),
		logger.DurationMs(logger.Duration(start)))
	return rows, nil
}

func discrepancyCounts(rows []model.ConsolidatedRow) map[string]int {
	counts := make(map[string]int)
	for i := range rows {
		for _, d := range rows[i].Discrepancies {
			counts[d]++
		}
	}
	return counts
}

// Export renders the reconciliation table in format.
func (s *Service) Export(ctx context.Context, w io.Writer, format export.Format) error {
	rows, err := s.Consolidated(ctx)
	if err != nil {
		return err
	}
	return export.Write(w, format, rows)
}

func (s *Service) resolver(ctx context.Context) (*store.Snapshot, *identity.Resolver, error) {
	snap, c, err := s.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	return snap, &identity.Resolver{DomainLabels: s.labels, Classifier: c}, nil
}

// Identities lists every person sorted by name.
func (s *Service) Identities(ctx context.Context) (list []model.IdentitySummary, err error) {
	ctx, span := telemetry.StartReconSpan(ctx, telemetry.SpanIdentityList)
	defer func() { telemetry.EndSpan(span, err) }()

	snap, r, err := s.resolver(ctx)
	if err != nil {
		return nil, err
	}
	list, err = r.List(snap.Directory, snap.Mfa, snap.Hr)
	if err != nil {
		return nil, err
	}
	identity.SortByName(list)
	telemetry.SetAttributes(ctx, telemetry.Rows(len(list)))
	return list, nil
}

// IdentityCard returns every record known for key. An unknown key yields
// an empty card.
func (s *Service) IdentityCard(ctx context.Context, key string) (card model.IdentityCard, err error) {
	ctx, span := telemetry.StartReconSpan(ctx, telemetry.SpanIdentityCard, telemetry.IdentityKey(key))
	defer func() { telemetry.EndSpan(span, err) }()

	snap, r, err := s.resolver(ctx)
	if err != nil {
		return model.IdentityCard{}, err
	}
	return r.Card(key, snap.Directory, snap.Mfa, snap.Hr)
}

// IdentityDuplicates returns records outside the identity sharing its name
// or email.
func (s *Service) IdentityDuplicates(ctx context.Context, key string) (matches []model.DuplicateMatch, err error) {
	ctx, span := telemetry.StartReconSpan(ctx, telemetry.SpanIdentityCard, telemetry.IdentityKey(key))
	defer func() { telemetry.EndSpan(span, err) }()

	snap, r, err := s.resolver(ctx)
	if err != nil {
		return nil, err
	}
	card, err := r.Card(key, snap.Directory, snap.Mfa, snap.Hr)
	if err != nil {
		return nil, err
	}
	matches, err = r.PossibleDuplicates(card, snap.Directory, snap.Mfa, snap.Hr)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []model.DuplicateMatch{}
	}
	return matches, nil
}

// SecurityReport runs the security audit over directory accounts.
func (s *Service) SecurityReport(ctx context.Context) (report audit.Report, err error) {
	ctx, span := telemetry.StartReconSpan(ctx, telemetry.SpanAudit)
	defer func() { telemetry.EndSpan(span, err) }()

	dir, err := s.store.DirectoryAccounts(ctx)
	if err != nil {
		return audit.Report{}, err
	}
	c, err := s.classifier(ctx)
	if err != nil {
		return audit.Report{}, err
	}
	report = audit.New(s.auditCfg, c, s.labels).Run(dir)
	telemetry.SetAttributes(ctx, telemetry.Findings(report.TotalIssues))
	return report, nil
}

// LoginDuplicates lists logins present in more than one domain source.
func (s *Service) LoginDuplicates(ctx context.Context) (browse.LoginDuplicates, error) {
	dir, err := s.store.DirectoryAccounts(ctx)
	if err != nil {
		return browse.LoginDuplicates{}, err
	}
	return s.browser.LoginDuplicates(dir), nil
}

// GroupsTree lists groups per domain.
func (s *Service) GroupsTree(ctx context.Context) ([]browse.GroupDomain, error) {
	dir, err := s.store.DirectoryAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return s.browser.GroupsTree(dir), nil
}

// GroupMembers lists members of group in domain.
func (s *Service) GroupMembers(ctx context.Context, domain, group string) ([]browse.Member, error) {
	dir, err := s.store.DirectoryAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return s.browser.GroupMembers(dir, domain, group), nil
}

// OrgTree lists companies and their departments.
func (s *Service) OrgTree(ctx context.Context) ([]browse.Company, error) {
	dir, err := s.store.DirectoryAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return s.browser.OrgTree(dir), nil
}

// OrgMembers lists accounts of one company and department.
func (s *Service) OrgMembers(ctx context.Context, company, department string) ([]browse.Member, error) {
	dir, err := s.store.DirectoryAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return s.browser.OrgMembers(dir, company, department), nil
}

// StructureTree lists the OU hierarchy per domain.
func (s *Service) StructureTree(ctx context.Context) ([]browse.StructureDomain, error) {
	dir, err := s.store.DirectoryAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return s.browser.StructureTree(dir), nil
}

// StructureMembers lists accounts directly under the OU path, given as
// "A / B / C" or "A/B/C".
func (s *Service) StructureMembers(ctx context.Context, domain, path string) ([]browse.Member, error) {
	dir, err := s.store.DirectoryAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return s.browser.StructureMembers(dir, domain, browse.SplitOUPath(path)), nil
}
