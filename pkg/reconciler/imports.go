package reconciler

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/internal/telemetry"
	"github.com/marmos91/idrecon/pkg/dirsync"
	"github.com/marmos91/idrecon/pkg/ingest"
	"github.com/marmos91/idrecon/pkg/metrics"
	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/store"
)

// ImportResult describes one replaced source.
type ImportResult struct {
	Upload *store.Upload  `json:"upload"`
	Report *ingest.Report `json:"report"`
}

// SyncResult describes one directory sync.
type SyncResult struct {
	Domain string        `json:"domain"`
	Server string        `json:"server"`
	Upload *store.Upload `json:"upload"`
}

// ImportDirectory parses a directory export and replaces the accounts of
// domain. An empty dnSuffix falls back to the domain's configured suffix.
func (s *Service) ImportDirectory(ctx context.Context, domain string, r io.Reader, filename, dnSuffix string) (*ImportResult, error) {
	d, err := s.Domain(domain)
	if err != nil {
		return nil, err
	}
	if dnSuffix == "" {
		dnSuffix = d.DNSuffix
	}

	var accounts []model.DirectoryAccount
	report, err := s.parse(ctx, model.SourceDirectory, domain, filename, func() (*ingest.Report, error) {
		var rep *ingest.Report
		var perr error
		accounts, rep, perr = ingest.ParseDirectory(r, filename, ingest.Options{Domain: domain, DNSuffix: dnSuffix})
		return rep, perr
	})
	if err != nil {
		return nil, err
	}

	up, err := s.store.ReplaceDirectory(ctx, domain, accounts, filename)
	if err != nil {
		return nil, fmt.Errorf("store directory accounts: %w", err)
	}
	s.imported(ctx, model.SourceDirectory, domain, filename, len(accounts))
	return &ImportResult{Upload: up, Report: report}, nil
}

// ImportMFA parses an MFA registry export and replaces the stored registry.
func (s *Service) ImportMFA(ctx context.Context, r io.Reader, filename string) (*ImportResult, error) {
	var enrollments []model.MfaEnrollment
	report, err := s.parse(ctx, model.SourceMFA, "", filename, func() (*ingest.Report, error) {
		var rep *ingest.Report
		var perr error
		enrollments, rep, perr = ingest.ParseMFA(r, filename)
		return rep, perr
	})
	if err != nil {
		return nil, err
	}

	up, err := s.store.ReplaceMFA(ctx, enrollments, filename)
	if err != nil {
		return nil, fmt.Errorf("store mfa enrollments: %w", err)
	}
	s.imported(ctx, model.SourceMFA, "", filename, len(enrollments))
	return &ImportResult{Upload: up, Report: report}, nil
}

// ImportHR parses an HR roster export and replaces the stored roster.
func (s *Service) ImportHR(ctx context.Context, r io.Reader, filename string) (*ImportResult, error) {
	var records []model.HrRecord
	report, err := s.parse(ctx, model.SourceHR, "", filename, func() (*ingest.Report, error) {
		var rep *ingest.Report
		var perr error
		records, rep, perr = ingest.ParseHR(r, filename)
		return rep, perr
	})
	if err != nil {
		return nil, err
	}

	up, err := s.store.ReplaceHR(ctx, records, filename)
	if err != nil {
		return nil, fmt.Errorf("store hr records: %w", err)
	}
	s.imported(ctx, model.SourceHR, "", filename, len(records))
	return &ImportResult{Upload: up, Report: report}, nil
}

// parse runs fn inside an ingest span.
func (s *Service) parse(ctx context.Context, source model.SourceKind, domain, filename string, fn func() (*ingest.Report, error)) (report *ingest.Report, err error) {
	attrs := telemetry.Source(string(source))
	_, span := telemetry.StartReconSpan(ctx, telemetry.SpanIngestParse, attrs, telemetry.Filename(filename))
	if domain != "" {
		span.SetAttributes(telemetry.Domain(domain))
	}
	defer func() { telemetry.EndSpan(span, err) }()

	report, err = fn()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	span.SetAttributes(telemetry.Format(string(report.Format)), telemetry.Rows(report.Rows), telemetry.Skipped(report.Skipped))
	for _, w := range report.Warnings {
		logger.WarnCtx(ctx, "Import warning", logger.Source(string(source)), logger.Filename(filename), "warning", w)
	}
	return report, nil
}

func (s *Service) imported(ctx context.Context, source model.SourceKind, domain, filename string, n int) {
	metrics.RecordIngest(s.metrics, string(source), n)
	args := []any{logger.Source(string(source)), logger.Filename(filename), logger.Rows(n)}
	if domain != "" {
		args = append(args, logger.Domain(domain))
	}
	logger.InfoCtx(ctx, "Source replaced", args...)
}

// Sync pulls a domain over LDAP and replaces its stored accounts.
func (s *Service) Sync(ctx context.Context, domain string) (result *SyncResult, err error) {
	if _, err := s.Domain(domain); err != nil {
		return nil, err
	}
	if s.syncer == nil || !s.syncer.Configured(domain) {
		return nil, fmt.Errorf("%w: %s", dirsync.ErrDomainNotConfigured, domain)
	}

	start := time.Now()
	defer func() { metrics.ObserveSync(s.metrics, domain, time.Since(start), err) }()

	accounts, err := s.syncer.Fetch(ctx, domain)
	if err != nil {
		logger.ErrorCtx(ctx, "Directory sync failed", logger.Domain(domain), logger.Err(err))
		return nil, err
	}

	server := s.syncer.Server(domain)
	up, err := s.store.ReplaceDirectory(ctx, domain, accounts, server)
	if err != nil {
		return nil, fmt.Errorf("store synced accounts: %w", err)
	}
	s.imported(ctx, model.SourceDirectory, domain, server, len(accounts))
	return &SyncResult{Domain: domain, Server: server, Upload: up}, nil
}
