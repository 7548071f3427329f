package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/access"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	t.Parallel()
	driverErr := errors.New("connection reset by peer")

	tests := []struct {
		name       string
		err        error
		want       error
		wantDetail string
	}{
		{"not found", gorm.ErrRecordNotFound, apperr.ErrNotFound, ""},
		{"wrapped not found", fmt.Errorf("first: %w", gorm.ErrRecordNotFound), apperr.ErrNotFound, ""},
		{"duplicate key", gorm.ErrDuplicatedKey, apperr.ErrConflict, ""},
		{"foreign key", gorm.ErrForeignKeyViolated, apperr.ErrInvalidInput, ""},
		{"check violation", &pgconn.PgError{Code: "23514", ColumnName: "priority", Message: "violates check"}, apperr.ErrInvalidInput, "priority"},
		{"not null violation", &pgconn.PgError{Code: "23502", ColumnName: "name", Message: "null value"}, apperr.ErrInvalidInput, "name"},
		{"other sqlstate", &pgconn.PgError{Code: "40001", Message: "serialization failure"}, nil, ""},
		{"driver failure", driverErr, driverErr, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.err, "task")
			if got == nil {
				t.Fatalf("translate() = nil")
			}
			if tt.want != nil && !errors.Is(got, tt.want) {
				t.Errorf("translate() = %v, want %v", got, tt.want)
			}
			if tt.want == nil && apperr.Status(got) != http.StatusInternalServerError {
				t.Errorf("translate() status = %d, want 500", apperr.Status(got))
			}
			if tt.wantDetail != "" {
				var appErr *apperr.Error
				if !errors.As(got, &appErr) || appErr.Details[tt.wantDetail] == "" {
					t.Errorf("translate() details = %v, want an entry for %s", got, tt.wantDetail)
				}
			}
		})
	}

	if translate(nil, "task") != nil {
		t.Errorf("translate(nil) != nil")
	}
}

func TestChainQueriesCoverEveryKind(t *testing.T) {
	t.Parallel()
	for _, kind := range []access.Kind{access.KindProject, access.KindBoard, access.KindColumn, access.KindTask, access.KindComment} {
		if chainQueries[kind] == "" {
			t.Errorf("no chain query for %s", kind)
		}
	}

	_, err := (&GormStore{}).ProjectFor(context.Background(), access.Resource{Kind: "widget", ID: uuid.New()})
	if err == nil {
		t.Errorf("ProjectFor(unknown kind) succeeded")
	}
}
