package postgres

import (
	"context"
	"database/sql"

	"claimsapi/internal/model"
	"claimsapi/internal/repository"
)

// PacketPostgres is a PostgreSQL implementation of repository.PacketRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type PacketPostgres struct {
	db *sql.DB
}

// NewPacketPostgres creates a new PacketPostgres repository.
func NewPacketPostgres(db *sql.DB) *PacketPostgres {
	return &PacketPostgres{db: db}
}

var _ repository.PacketRepository = (*PacketPostgres)(nil)

const packetColumns = `id, filename, storage_path, size, content_type, status, total_documents, result, created_at`

// Create inserts a new packet row and returns the stored record.
func (r *PacketPostgres) Create(ctx context.Context, p *model.Packet) (*model.Packet, error) {
	const q = `
		INSERT INTO packets (id, filename, storage_path, size, content_type, status, total_documents, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + packetColumns
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.Filename,
		p.StoragePath,
		p.Size,
		p.ContentType,
		p.Status,
		p.TotalDocuments,
		nullableJSON(p.Result),
		p.CreatedAt,
	)
	return scanPacket(row)
}

// FindByID fetches a single packet by its ID.
func (r *PacketPostgres) FindByID(ctx context.Context, id string) (*model.Packet, error) {
	const q = `
		SELECT ` + packetColumns + `
		FROM packets
		WHERE id = $1
	`
	return scanPacket(r.db.QueryRowContext(ctx, q, id))
}

// List returns packets using LIMIT/OFFSET pagination and a total count.
func (r *PacketPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Packet], error) {
	const qCount = `SELECT COUNT(*) FROM packets`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + packetColumns + `
		FROM packets
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Packet, 0)
	for rows.Next() {
		p, err := scanPacketRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Packet]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a packet by ID. It does not return an error if the row does not exist.
func (r *PacketPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM packets WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPacket(row *sql.Row) (*model.Packet, error) {
	return scanPacketRow(row)
}

func scanPacketRow(s rowScanner) (*model.Packet, error) {
	var p model.Packet
	var result []byte
	if err := s.Scan(
		&p.ID,
		&p.Filename,
		&p.StoragePath,
		&p.Size,
		&p.ContentType,
		&p.Status,
		&p.TotalDocuments,
		&result,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.Result = result
	return &p, nil
}

// nullableJSON maps an empty result payload to SQL NULL instead of an
// invalid empty JSONB value.
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
