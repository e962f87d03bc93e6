package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/goldassay/internal/assay/entity"
	"github.com/bitfantasy/goldassay/internal/assay/testutil"
)

func newForm(userID string, number int, customer string) *entity.Form {
	return &entity.Form{
		FormNumber:   number,
		Date:         "14-03-2026",
		Time:         "09:26:53",
		CustomerName: customer,
		ItemName:     "Ring",
		MobileNumber: "9876543210",
		GrossWeight:  testutil.Float(10),
		NetWeight:    testutil.Float(10),
		Gold:         testutil.Float(75),
		Karat:        testutil.Float(18),
		UserID:       userID,
	}
}

func TestFormRepository_NextFormNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFormRepository(db)
	ctx := context.Background()
	testutil.SeedTestUser(t, db, "user-1", "asha", false)
	testutil.SeedTestUser(t, db, "user-2", "ravi", false)

	n, err := repo.NextFormNumber(ctx, "user-1")
	if err != nil {
		t.Fatalf("NextFormNumber: %v", err)
	}
	if n != 1 {
		t.Errorf("first number = %d, want 1", n)
	}

	for _, num := range []int{3, 7, 5} {
		if err := repo.Create(ctx, newForm("user-1", num, "Asha")); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := repo.Create(ctx, newForm("user-2", 40, "Ravi")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, _ = repo.NextFormNumber(ctx, "user-1")
	if n != 8 {
		t.Errorf("next number = %d, want 8 (max 7 + 1, other users ignored)", n)
	}
}

func TestFormRepository_ListByUserNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFormRepository(db)
	ctx := context.Background()

	for _, num := range []int{1, 3, 2} {
		repo.Create(ctx, newForm("user-1", num, "Asha"))
	}
	repo.Create(ctx, newForm("user-2", 9, "Ravi"))

	forms, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(forms) != 3 {
		t.Fatalf("len = %d, want 3", len(forms))
	}
	for i, want := range []int{3, 2, 1} {
		if forms[i].FormNumber != want {
			t.Errorf("forms[%d] = %d, want %d", i, forms[i].FormNumber, want)
		}
	}
}

func TestFormRepository_UpsertKeepsIdentity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFormRepository(db)
	ctx := context.Background()

	form := newForm("user-1", 1, "Asha")
	id, err := repo.Upsert(ctx, form)
	if err != nil {
		t.Fatalf("Upsert create: %v", err)
	}
	if len(id) != 32 {
		t.Errorf("id length = %d, want 32", len(id))
	}

	form.CustomerName = "Asha K"
	form.MobileNumber = ""
	form.Gold = testutil.Float(91.6)
	again, err := repo.Upsert(ctx, form)
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if again != id {
		t.Errorf("id changed on update: %s -> %s", id, again)
	}

	got, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.CustomerName != "Asha K" || got.MobileNumber != "" || *got.Gold != 91.6 {
		t.Errorf("update not applied: %+v", got)
	}
	if got.UserID != "user-1" {
		t.Errorf("owner = %s, want user-1", got.UserID)
	}

	var count int64
	db.Model(&entity.Form{}).Count(&count)
	if count != 1 {
		t.Errorf("row count = %d, want 1", count)
	}
}

func TestFormRepository_UpdateOtherOwnerNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFormRepository(db)
	ctx := context.Background()

	form := newForm("user-1", 1, "Asha")
	repo.Create(ctx, form)

	intruder := *form
	intruder.UserID = "user-2"
	intruder.CustomerName = "Mallory"
	if err := repo.Update(ctx, &intruder); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update by other owner err = %v, want ErrNotFound", err)
	}
	got, _ := repo.FindByID(ctx, form.ID)
	if got.CustomerName != "Asha" {
		t.Errorf("customer = %q, want unchanged", got.CustomerName)
	}
}

func TestFormRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFormRepository(db)
	ctx := context.Background()

	form := newForm("user-1", 1, "Asha")
	repo.Create(ctx, form)

	if err := repo.Delete(ctx, form.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, form.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID after delete err = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, form.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestFormRepository_ListWithUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFormRepository(db)
	ctx := context.Background()
	testutil.SeedTestUser(t, db, "user-1", "asha", false)
	testutil.SeedTestUser(t, db, "user-2", "ravi", false)

	repo.Create(ctx, newForm("user-1", 1, "Meena"))
	repo.Create(ctx, newForm("user-2", 2, "Kiran"))

	rows, err := repo.ListWithUsers(ctx)
	if err != nil {
		t.Fatalf("ListWithUsers: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[0].Username != "ravi" || rows[0].CustomerName != "Kiran" {
		t.Errorf("rows[0] = %s/%s, want ravi/Kiran", rows[0].Username, rows[0].CustomerName)
	}
	if rows[1].Username != "asha" {
		t.Errorf("rows[1].Username = %s, want asha", rows[1].Username)
	}
}

func TestFormRepository_UpsertRenumbersTakenNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFormRepository(db)
	ctx := context.Background()

	first := newForm("user-1", 1, "Asha")
	if _, err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	// second login drafted number 1 before the first save landed
	second := newForm("user-1", 1, "Ravi")
	if _, err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if second.FormNumber != 2 {
		t.Errorf("second form number = %d, want 2", second.FormNumber)
	}
	other := newForm("user-2", 1, "Meena")
	if _, err := repo.Upsert(ctx, other); err != nil {
		t.Fatalf("Upsert other user: %v", err)
	}
	if other.FormNumber != 1 {
		t.Errorf("other user's number = %d, want 1", other.FormNumber)
	}

	forms, _ := repo.ListByUser(ctx, "user-1")
	if len(forms) != 2 || forms[0].FormNumber != 2 || forms[1].FormNumber != 1 {
		t.Errorf("stored numbers = %+v", forms)
	}
}

func TestFormRepository_FormNumberUniquePerUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFormRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, newForm("user-1", 5, "Asha")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, newForm("user-1", 5, "Ravi")); err == nil {
		t.Error("duplicate form number for one user was accepted")
	}
	if err := repo.Create(ctx, newForm("user-2", 5, "Meena")); err != nil {
		t.Errorf("same number for another user: %v", err)
	}
}
