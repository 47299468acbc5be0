package request

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"hrforms/internal/platform/querier"
)

// PGStore keeps each request as one row whose payload lives in a JSONB data
// column. The admin comment is stored inside the same blob.
type PGStore struct {
	DB querier.Querier
}

func NewPGStore(db querier.Querier) *PGStore {
	return &PGStore{DB: db}
}

const requestColumns = "id, owner_id, form_type, status, data, created_at, COALESCE(data->>'adminComment', '')"

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	var data []byte
	if err := row.Scan(&req.ID, &req.OwnerID, &req.FormType, &req.Status, &data, &req.CreatedAt, &req.AdminComment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, err
	}
	payload, err := DecodePayload(req.FormType, data)
	if err != nil {
		return Request{}, fmt.Errorf("decode request %s: %w", req.ID, err)
	}
	req.Payload = payload
	return req, nil
}

func (s *PGStore) Create(ctx context.Context, req Request) (Request, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	data, err := encodeData(req.Payload, req.AdminComment)
	if err != nil {
		return Request{}, err
	}
	var createdAt *time.Time
	if !req.CreatedAt.IsZero() {
		createdAt = &req.CreatedAt
	}
	return scanRequest(s.DB.QueryRow(ctx, `
    INSERT INTO requests (id, owner_id, form_type, status, data, created_at)
    VALUES ($1,$2,$3,$4,$5,COALESCE($6, now()))
    RETURNING `+requestColumns,
		req.ID, req.OwnerID, req.FormType, req.Status, data, createdAt))
}

func (s *PGStore) Get(ctx context.Context, id string) (Request, error) {
	return scanRequest(s.DB.QueryRow(ctx, "SELECT "+requestColumns+" FROM requests WHERE id = $1", id))
}

func (s *PGStore) ListByOwner(ctx context.Context, ownerID string) ([]Request, error) {
	return s.list(ctx, "SELECT "+requestColumns+" FROM requests WHERE owner_id = $1 ORDER BY created_at DESC", ownerID)
}

func (s *PGStore) ListAll(ctx context.Context) ([]Request, error) {
	return s.list(ctx, "SELECT "+requestColumns+" FROM requests ORDER BY created_at DESC")
}

func (s *PGStore) list(ctx context.Context, query string, args ...any) ([]Request, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (s *PGStore) Update(ctx context.Context, id string, patch Patch) (Request, error) {
	args := []any{id}
	var sets []string

	dataExpr := "data"
	if patch.Payload != nil {
		raw, err := json.Marshal(patch.Payload)
		if err != nil {
			return Request{}, err
		}
		args = append(args, raw)
		dataExpr = fmt.Sprintf("($%d::jsonb || CASE WHEN data ? 'adminComment' THEN jsonb_build_object('adminComment', data->'adminComment') ELSE '{}'::jsonb END)", len(args))
	}
	if patch.AdminComment != nil {
		args = append(args, *patch.AdminComment)
		dataExpr = fmt.Sprintf("jsonb_set(%s, '{adminComment}', to_jsonb($%d::text))", dataExpr, len(args))
	}
	if dataExpr != "data" {
		sets = append(sets, "data = "+dataExpr)
	}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(sets) == 0 {
		return s.Get(ctx, id)
	}

	query := "UPDATE requests SET " + strings.Join(sets, ", ") + ", updated_at = now() WHERE id = $1 RETURNING " + requestColumns
	return scanRequest(s.DB.QueryRow(ctx, query, args...))
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM requests WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeData(p Payload, adminComment string) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	if adminComment == "" {
		return raw, nil
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	comment, err := json.Marshal(adminComment)
	if err != nil {
		return nil, err
	}
	fields["adminComment"] = comment
	return json.Marshal(fields)
}
