package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"claimsapi/internal/model"
	"claimsapi/internal/repository"
)

var packetCols = []string{"id", "filename", "storage_path", "size", "content_type", "status", "total_documents", "result", "created_at"}

func packetRow(p *model.Packet) *sqlmock.Rows {
	return sqlmock.NewRows(packetCols).
		AddRow(p.ID, p.Filename, p.StoragePath, p.Size, p.ContentType, p.Status, p.TotalDocuments, []byte(p.Result), p.CreatedAt)
}

func TestPacketPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewPacketPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	p := &model.Packet{
		ID:             "test-uuid",
		Filename:       "test.pdf",
		StoragePath:    "packets/test.pdf",
		Size:           123,
		ContentType:    "application/pdf",
		Status:         model.PacketStatusProcessed,
		TotalDocuments: 3,
		Result:         []byte(`{"total_documents":3}`),
		CreatedAt:      now,
	}

	mock.ExpectQuery("INSERT INTO packets").
		WithArgs(p.ID, p.Filename, p.StoragePath, p.Size, p.ContentType, p.Status, p.TotalDocuments, []byte(p.Result), p.CreatedAt).
		WillReturnRows(packetRow(p))

	result, err := repo.Create(ctx, p)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, p.ID, result.ID)
	assert.Equal(t, p.TotalDocuments, result.TotalDocuments)
	assert.JSONEq(t, `{"total_documents":3}`, string(result.Result))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPacketPostgres_CreateNullResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewPacketPostgres(db)
	p := &model.Packet{ID: "test-uuid", Status: model.PacketStatusFailed, CreatedAt: time.Now().UTC()}

	// empty result payload is stored as SQL NULL, not empty JSONB
	mock.ExpectQuery("INSERT INTO packets").
		WithArgs(p.ID, p.Filename, p.StoragePath, p.Size, p.ContentType, p.Status, p.TotalDocuments, nil, p.CreatedAt).
		WillReturnRows(packetRow(p))

	_, err = repo.Create(context.Background(), p)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPacketPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewPacketPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		p := &model.Packet{ID: "found-id", Filename: "a.pdf", CreatedAt: time.Now().UTC()}
		mock.ExpectQuery("SELECT (.+) FROM packets").
			WithArgs("found-id").
			WillReturnRows(packetRow(p))

		result, err := repo.FindByID(ctx, "found-id")
		assert.NoError(t, err)
		assert.Equal(t, "found-id", result.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM packets").
			WithArgs("missing-id").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByID(ctx, "missing-id")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPacketPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewPacketPostgres(db)
	ctx := context.Background()

	t.Run("returns items and total", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		now := time.Now().UTC()
		rows := sqlmock.NewRows(packetCols).
			AddRow("id-2", "b.pdf", "packets/b.pdf", 2, "application/pdf", model.PacketStatusProcessed, 1, []byte(`{}`), now).
			AddRow("id-1", "a.pdf", "packets/a.pdf", 1, "application/pdf", model.PacketStatusProcessed, 2, nil, now.Add(-time.Hour))
		mock.ExpectQuery("SELECT (.+) FROM packets").
			WithArgs(10, 0).
			WillReturnRows(rows)

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})
		assert.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.Len(t, res.Items, 2)
		assert.Equal(t, "id-2", res.Items[0].ID)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT").
			WillReturnError(errors.New("db down"))

		_, err := repo.List(ctx, repository.PageQuery{Limit: 10})
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPacketPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewPacketPostgres(db)
	ctx := context.Background()

	t.Run("deletes existing row", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM packets").
			WithArgs("some-id").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "some-id"))
	})

	t.Run("missing row is not an error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM packets").
			WithArgs("missing-id").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Delete(ctx, "missing-id"))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
