package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marmos91/idrecon/pkg/recon/model"
)

// insertBatchSize keeps each INSERT under the SQLite variable limit.
const insertBatchSize = 200

// ============================================
// RECORD OPERATIONS
// ============================================

func (s *GORMStore) ReplaceDirectory(ctx context.Context, domain string, accounts []model.DirectoryAccount, filename string) (*Upload, error) {
	if domain == "" {
		return nil, fmt.Errorf("domain source is required")
	}
	rows := make([]DirectoryAccountRow, len(accounts))
	for i := range accounts {
		rows[i] = newDirectoryRow(domain, i, &accounts[i])
	}
	return s.replace(ctx, string(model.SourceDirectory), domain, filename, len(rows), func(tx *gorm.DB) error {
		if err := tx.Where("domain_source = ?", domain).Delete(&DirectoryAccountRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, insertBatchSize).Error
	})
}

func (s *GORMStore) ReplaceMFA(ctx context.Context, enrollments []model.MfaEnrollment, filename string) (*Upload, error) {
	rows := make([]MfaEnrollmentRow, len(enrollments))
	for i := range enrollments {
		rows[i] = newMfaRow(i, &enrollments[i])
	}
	return s.replace(ctx, string(model.SourceMFA), "", filename, len(rows), func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&MfaEnrollmentRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, insertBatchSize).Error
	})
}

func (s *GORMStore) ReplaceHR(ctx context.Context, records []model.HrRecord, filename string) (*Upload, error) {
	rows := make([]HrRecordRow, len(records))
	for i := range records {
		rows[i] = newHrRow(i, &records[i])
	}
	return s.replace(ctx, string(model.SourceHR), "", filename, len(rows), func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&HrRecordRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, insertBatchSize).Error
	})
}

// replace runs swap and records the upload in one transaction.
func (s *GORMStore) replace(ctx context.Context, source, domain, filename string, count int, swap func(tx *gorm.DB) error) (*Upload, error) {
	upload := &Upload{
		ID:         uuid.New().String(),
		Source:     source,
		Domain:     domain,
		Filename:   filename,
		RowCount:   count,
		UploadedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := swap(tx); err != nil {
			return err
		}
		return tx.Create(upload).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to replace %s records: %w", source, err)
	}
	return upload, nil
}

func (s *GORMStore) DirectoryAccounts(ctx context.Context) ([]model.DirectoryAccount, error) {
	return loadDirectory(s.db.WithContext(ctx))
}

func (s *GORMStore) MfaEnrollments(ctx context.Context) ([]model.MfaEnrollment, error) {
	return loadMFA(s.db.WithContext(ctx))
}

func (s *GORMStore) HrRecords(ctx context.Context) ([]model.HrRecord, error) {
	return loadHR(s.db.WithContext(ctx))
}

func (s *GORMStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if snap.Directory, err = loadDirectory(tx); err != nil {
			return err
		}
		if snap.Mfa, err = loadMFA(tx); err != nil {
			return err
		}
		snap.Hr, err = loadHR(tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snap, nil
}

func loadDirectory(db *gorm.DB) ([]model.DirectoryAccount, error) {
	var rows []DirectoryAccountRow
	if err := db.Order("domain_source, seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.DirectoryAccount, len(rows))
	for i := range rows {
		out[i] = rows[i].record()
	}
	return out, nil
}

func loadMFA(db *gorm.DB) ([]model.MfaEnrollment, error) {
	var rows []MfaEnrollmentRow
	if err := db.Order("seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.MfaEnrollment, len(rows))
	for i := range rows {
		out[i] = rows[i].record()
	}
	return out, nil
}

func loadHR(db *gorm.DB) ([]model.HrRecord, error) {
	var rows []HrRecordRow
	if err := db.Order("seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.HrRecord, len(rows))
	for i := range rows {
		out[i] = rows[i].record()
	}
	return out, nil
}

func (s *GORMStore) Stats(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	st := &Stats{
		DirectoryByDomain: make(map[string]int),
		LastUploads:       make(map[string]Upload),
	}

	var perDomain []struct {
		DomainSource string
		N            int
	}
	if err := db.Model(&DirectoryAccountRow{}).
		Select("domain_source, count(*) as n").
		Group("domain_source").
		Scan(&perDomain).Error; err != nil {
		return nil, err
	}
	for _, d := range perDomain {
		st.DirectoryByDomain[d.DomainSource] = d.N
		st.Directory += d.N
	}

	var n int64
	if err := db.Model(&MfaEnrollmentRow{}).Count(&n).Error; err != nil {
		return nil, err
	}
	st.Mfa = int(n)
	if err := db.Model(&HrRecordRow{}).Count(&n).Error; err != nil {
		return nil, err
	}
	st.Hr = int(n)

	// Newest first; the first upload seen per key wins. Directory uploads
	// are keyed per domain.
	var uploads []Upload
	if err := db.Order("uploaded_at desc").Find(&uploads).Error; err != nil {
		return nil, err
	}
	for _, u := range uploads {
		key := u.Source
		if u.Domain != "" {
			key = u.Source + ":" + u.Domain
		}
		if _, seen := st.LastUploads[key]; !seen {
			st.LastUploads[key] = u
		}
	}
	return st, nil
}
