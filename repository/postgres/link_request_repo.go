package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/repository"
)

const linkRequestColumns = `id, request_type, initiator, initiator_id, target_id, target_email, code, status,
	expires_at, created_at, updated_at`

type linkRequestRepository struct {
	pool *pgxpool.Pool
}

// NewLinkRequestRepository returns a Postgres-backed implementation of LinkRequestRepository.
func NewLinkRequestRepository(pool *pgxpool.Pool) repository.LinkRequestRepository {
	return &linkRequestRepository{pool: pool}
}

func (r *linkRequestRepository) Create(ctx context.Context, request *domain.LinkRequest) (*domain.LinkRequest, error) {
	if request == nil {
		return nil, domain.ErrInvalidPayload
	}
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = domain.LinkPending
	}

	const query = `
	INSERT INTO link_requests (id, request_type, initiator, initiator_id, target_id, target_email, code, status, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		request.ID,
		string(request.RequestType),
		string(request.Initiator),
		request.InitiatorID,
		request.TargetID,
		request.TargetEmail,
		request.Code,
		string(request.Status),
		request.ExpiresAt,
	).Scan(&request.CreatedAt, &request.UpdatedAt); err != nil {
		return nil, err
	}
	return request, nil
}

func (r *linkRequestRepository) GetPending(ctx context.Context, id, targetID string, kind domain.LinkRequestType) (*domain.LinkRequest, error) {
	query := `SELECT ` + linkRequestColumns + ` FROM link_requests
	WHERE id = $1 AND target_id = $2 AND request_type = $3 AND status = 'pending'`
	return scanLinkRequest(r.pool.QueryRow(ctx, query, id, targetID, string(kind)))
}

func (r *linkRequestRepository) ListPending(ctx context.Context, targetID string, kind domain.LinkRequestType, initiator domain.Role) ([]domain.LinkRequest, error) {
	query := `SELECT ` + linkRequestColumns + ` FROM link_requests
	WHERE target_id = $1 AND request_type = $2 AND initiator = $3 AND status = 'pending'
	ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, targetID, string(kind), string(initiator))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]domain.LinkRequest, 0)
	for rows.Next() {
		request, err := scanLinkRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *request)
	}
	return requests, rows.Err()
}

func (r *linkRequestRepository) SetStatus(ctx context.Context, id string, status domain.LinkRequestStatus) error {
	const query = `UPDATE link_requests SET status = $2, updated_at = NOW() WHERE id = $1 AND status = 'pending'`
	tag, err := r.pool.Exec(ctx, query, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLinkRequestNotFound
	}
	return nil
}

func (r *linkRequestRepository) RejectExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `UPDATE link_requests SET status = 'rejected', updated_at = NOW() WHERE status = 'pending' AND expires_at <= $1`
	tag, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanLinkRequest(row rowScanner) (*domain.LinkRequest, error) {
	var (
		request   domain.LinkRequest
		kind      string
		initiator string
		status    string
	)
	if err := row.Scan(
		&request.ID,
		&kind,
		&initiator,
		&request.InitiatorID,
		&request.TargetID,
		&request.TargetEmail,
		&request.Code,
		&status,
		&request.ExpiresAt,
		&request.CreatedAt,
		&request.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLinkRequestNotFound
		}
		return nil, err
	}
	request.RequestType = domain.LinkRequestType(kind)
	request.Initiator = domain.Role(initiator)
	request.Status = domain.LinkRequestStatus(status)
	return &request, nil
}
