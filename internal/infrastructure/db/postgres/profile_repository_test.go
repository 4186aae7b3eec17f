package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/keralahub/culturalhub/internal/core/domain"
)

func profileRows(role string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"user_id", "display_name", "role", "email", "phone", "bio", "avatar_url", "created_at", "updated_at",
	}).AddRow("user-1", "Meera", role, "meera@example.com", "", "", "", now, now)
}

func TestProfileRepository_FindByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM user_profiles WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(profileRows("artist"))

	p, err := repo.FindByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if p.Role != domain.RoleArtist || p.DisplayName != "Meera" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestProfileRepository_FindByUserID_UnknownRoleDegradesToVisitor(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM user_profiles WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(profileRows("superhero"))

	p, err := repo.FindByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if p.Role != domain.RoleVisitor {
		t.Fatalf("unknown role must degrade to visitor, got %q", p.Role)
	}
}

func TestProfileRepository_FindByUserID_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM user_profiles WHERE user_id = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	if _, err := repo.FindByUserID(context.Background(), "ghost"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileRepository_Update_MissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE user_profiles`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.UserProfile{UserID: "ghost"})
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}
