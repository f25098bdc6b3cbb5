package repository

import (
	"context"
	"strconv"
	"strings"

	accountdomain "github.com/ratewatchlabs/ratewatch/internal/account/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() accountdomain.Repository {
	return &repo{}
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]accountdomain.Account, error) {
	var accounts []accountdomain.Account
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, created_at, updated_at FROM accounts ORDER BY created_at ASC`,
	).Scan(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repo) FindByRef(ctx context.Context, db *gorm.DB, ref string) ([]accountdomain.Account, error) {
	ref = strings.TrimSpace(ref)

	var accounts []accountdomain.Account
	var err error
	if _, numErr := strconv.ParseInt(ref, 10, 64); numErr == nil {
		err = db.WithContext(ctx).Raw(
			`SELECT id, name, email, created_at, updated_at FROM accounts WHERE id = ?`, ref,
		).Scan(&accounts).Error
	} else {
		err = db.WithContext(ctx).Raw(
			`SELECT id, name, email, created_at, updated_at FROM accounts WHERE email = ? OR name = ?`, ref, ref,
		).Scan(&accounts).Error
	}
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
