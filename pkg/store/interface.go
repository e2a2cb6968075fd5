package store

import (
	"context"

	"github.com/marmos91/idrecon/pkg/recon/classify"
	"github.com/marmos91/idrecon/pkg/recon/model"
)

// Store is the persistence interface for the three record sources.
//
// Thread Safety: Implementations must be safe for concurrent use from
// multiple goroutines.
type Store interface {
	// ============================================
	// RECORD OPERATIONS
	// ============================================

	// ReplaceDirectory atomically replaces every account of one domain source
	// and records the upload.
	ReplaceDirectory(ctx context.Context, domain string, accounts []model.DirectoryAccount, filename string) (*Upload, error)

	// ReplaceMFA atomically replaces the MFA registry and records the upload.
	ReplaceMFA(ctx context.Context, enrollments []model.MfaEnrollment, filename string) (*Upload, error)

	// ReplaceHR atomically replaces the HR roster and records the upload.
	ReplaceHR(ctx context.Context, records []model.HrRecord, filename string) (*Upload, error)

	// DirectoryAccounts returns every account ordered by domain source and
	// input order. An empty store yields an empty, non-nil slice.
	DirectoryAccounts(ctx context.Context) ([]model.DirectoryAccount, error)

	// MfaEnrollments returns every enrollment in input order.
	MfaEnrollments(ctx context.Context) ([]model.MfaEnrollment, error)

	// HrRecords returns every HR record in input order.
	HrRecords(ctx context.Context) ([]model.HrRecord, error)

	// Snapshot loads all three sources inside one read transaction.
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Stats returns record counts and the latest upload per source.
	Stats(ctx context.Context) (*Stats, error)

	// ============================================
	// SETTINGS OPERATIONS
	// ============================================

	// GetSetting returns a setting value.
	// Returns ErrNotFound if the key is not set.
	GetSetting(ctx context.Context, key string) (string, error)

	// SetSetting creates or replaces a setting.
	SetSetting(ctx context.Context, key, value string) error

	// DeleteSetting removes a setting. Deleting a missing key is not an error.
	DeleteSetting(ctx context.Context, key string) error

	// OURules returns the stored OU classification rules, or the defaults
	// when none are stored.
	OURules(ctx context.Context) (classify.RuleSet, error)

	// SetOURules stores the OU classification rules.
	SetOURules(ctx context.Context, rules classify.RuleSet) error

	// ResetOURules removes stored rules so the defaults apply again.
	ResetOURules(ctx context.Context) error

	// ============================================
	// HEALTH & LIFECYCLE
	// ============================================

	Healthcheck(ctx context.Context) error
	Close() error
}

// Snapshot is a consistent view of all three sources.
type Snapshot struct {
	Directory []model.DirectoryAccount
	Mfa       []model.MfaEnrollment
	Hr        []model.HrRecord
}

// Stats summarizes the stored sources.
type Stats struct {
	Directory         int               `json:"directory"`
	DirectoryByDomain map[string]int    `json:"directory_by_domain"`
	Mfa               int               `json:"mfa"`
	Hr                int               `json:"hr"`
	LastUploads       map[string]Upload `json:"last_uploads"`
}

var _ Store = (*GORMStore)(nil)
