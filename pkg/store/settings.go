package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marmos91/idrecon/pkg/recon/classify"
)

// SettingOURules holds the JSON-encoded classify.RuleSet.
const SettingOURules = "ou_type_rules"

// ============================================
// SETTINGS OPERATIONS
// ============================================

func (s *GORMStore) GetSetting(ctx context.Context, key string) (string, error) {
	var setting Setting
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return setting.Value, nil
}

func (s *GORMStore) SetSetting(ctx context.Context, key, value string) error {
	setting := Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).Save(&setting).Error
}

func (s *GORMStore) DeleteSetting(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&Setting{}).Error
}

func (s *GORMStore) OURules(ctx context.Context) (classify.RuleSet, error) {
	raw, err := s.GetSetting(ctx, SettingOURules)
	if errors.Is(err, ErrNotFound) {
		return classify.DefaultRules(), nil
	}
	if err != nil {
		return nil, err
	}
	var rules classify.RuleSet
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil, fmt.Errorf("stored OU rules are corrupt: %w", err)
	}
	if rules == nil {
		rules = classify.RuleSet{}
	}
	return rules, nil
}

func (s *GORMStore) SetOURules(ctx context.Context, rules classify.RuleSet) error {
	data, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to encode OU rules: %w", err)
	}
	return s.SetSetting(ctx, SettingOURules, string(data))
}

func (s *GORMStore) ResetOURules(ctx context.Context) error {
	return s.DeleteSetting(ctx, SettingOURules)
}
