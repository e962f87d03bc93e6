package service

import (
	"context"
	"testing"
	"time"

	"github.com/bitfantasy/goldassay/internal/assay/entity"
	"github.com/bitfantasy/goldassay/internal/assay/repository"
	"github.com/bitfantasy/goldassay/internal/assay/testutil"
	"github.com/bitfantasy/goldassay/internal/config"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:            testutil.JWTSecret,
			AccessTokenExpire: time.Hour,
			Issuer:            "goldassay",
		},
	}
}

func setupRepos(t *testing.T) (*gorm.DB, *repository.Repositories) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return db, repository.NewRepositories(db)
}

func seedForm(t *testing.T, repos *repository.Repositories, userID string, number int, date, customer string) *entity.Form {
	t.Helper()
	f := &entity.Form{
		FormNumber:   number,
		Date:         date,
		Time:         "10:00:00",
		CustomerName: customer,
		ItemName:     "Ring",
		GrossWeight:  testutil.Float(10),
		NetWeight:    testutil.Float(10),
		Gold:         testutil.Float(75),
		Karat:        testutil.Float(18),
		UserID:       userID,
	}
	if err := repos.Form.Create(context.Background(), f); err != nil {
		t.Fatalf("seed form: %v", err)
	}
	return f
}

func auditActions(t *testing.T, repos *repository.Repositories) []string {
	t.Helper()
	logs, _, err := repos.AuditLog.List(context.Background(), 1, 100)
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	actions := make([]string, len(logs))
	for i, l := range logs {
		actions[i] = l.Action
	}
	return actions
}
