package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikhilraghav/complaintdesk/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const complaintColumns = `id, seq, order_id, dedup_key, fields, status,
	category, importance, root_cause, suggested_response,
	received_at, processed_at, created_at, updated_at`

func scanComplaint(row pgx.Row) (*models.Complaint, error) {
	var c models.Complaint
	var status string
	err := row.Scan(&c.ID, &c.Seq, &c.OrderID, &c.DedupKey, &c.Fields, &status,
		&c.Category, &c.Importance, &c.RootCause, &c.SuggestedResponse,
		&c.ReceivedAt, &c.ProcessedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Status = models.Status(status)
	return &c, nil
}

// --- Complaints ---

func (s *PostgresStore) ComplaintExists(ctx context.Context, dedupKey string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM complaints WHERE dedup_key = $1)`, dedupKey,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("complaint exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) InsertComplaint(ctx context.Context, c *models.Complaint) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO complaints (id, seq, order_id, dedup_key, fields, status, received_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Seq, c.OrderID, c.DedupKey, c.Fields, string(c.Status),
		c.ReceivedAt, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

// NextComplaintSeq derives the next identifier from the persisted maximum,
// never from an in-memory counter, so allocation survives restarts.
func (s *PostgresStore) NextComplaintSeq(ctx context.Context) (int64, error) {
	var next int64
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM complaints`,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next complaint seq: %w", err)
	}
	return next, nil
}

func (s *PostgresStore) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	c, err := scanComplaint(s.pool.QueryRow(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get complaint: %w", err)
	}
	return c, nil
}

// FindComplaint looks up a complaint by its COMP id or by the external
// order id, case-insensitively.
func (s *PostgresStore) FindComplaint(ctx context.Context, idOrOrderID string) (*models.Complaint, error) {
	c, err := scanComplaint(s.pool.QueryRow(ctx,
		`SELECT `+complaintColumns+` FROM complaints
		 WHERE lower(id) = lower($1) OR lower(order_id) = lower($1)
		 ORDER BY seq ASC LIMIT 1`, idOrOrderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find complaint: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListComplaintsByStatus(ctx context.Context, statuses []models.Status) ([]*models.Complaint, error) {
	if len(statuses) == 0 {
		return []*models.Complaint{}, nil
	}
	strs := make([]string, len(statuses))
	for i, st := range statuses {
		strs[i] = string(st)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+complaintColumns+` FROM complaints
		 WHERE status = ANY($1) ORDER BY seq ASC`, strs)
	if err != nil {
		return nil, fmt.Errorf("list complaints by status: %w", err)
	}
	defer rows.Close()

	complaints := []*models.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		complaints = append(complaints, c)
	}
	return complaints, rows.Err()
}

func (s *PostgresStore) ListComplaints(ctx context.Context, filter ComplaintFilter) ([]*models.Complaint, int, error) {
	// Build WHERE clause dynamically
	conditions := []string{"TRUE"}
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.OrderID != "" {
		conditions = append(conditions, fmt.Sprintf("order_id = $%d", argIdx))
		args = append(args, filter.OrderID)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	// Count query
	var total int
	countQuery := "SELECT COUNT(*) FROM complaints WHERE " + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count complaints: %w", err)
	}

	// Normalize pagination
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	dataQuery := fmt.Sprintf(
		`SELECT `+complaintColumns+` FROM complaints WHERE %s ORDER BY seq ASC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()

	complaints := []*models.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan complaint: %w", err)
		}
		complaints = append(complaints, c)
	}
	return complaints, total, rows.Err()
}

// validTransitions is the closed status transition table. A processed
// record can only be overwritten by a full reprocess; moving it back to
// pending requires the MarkAllUnprocessed override.
var validTransitions = map[models.Status][]models.Status{
	models.StatusPending:   {models.StatusProcessed, models.StatusFailed},
	models.StatusFailed:    {models.StatusPending, models.StatusProcessed},
	models.StatusProcessed: {models.StatusProcessed, models.StatusFailed},
}

func (s *PostgresStore) checkTransition(ctx context.Context, id string, to models.Status) error {
	var current string
	err := s.pool.QueryRow(ctx, `SELECT status FROM complaints WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get complaint status: %w", err)
	}

	for _, allowed := range validTransitions[models.Status(current)] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, to)
}

// MarkComplaintProcessed transitions a complaint to processed and stores
// the analysis output, keeping the analysis-iff-processed invariant.
func (s *PostgresStore) MarkComplaintProcessed(ctx context.Context, id string, analysis models.ComplaintAnalysis, processedAt time.Time) error {
	if err := s.checkTransition(ctx, id, models.StatusProcessed); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE complaints SET status = 'processed',
		   category = $2, importance = $3, root_cause = $4, suggested_response = $5,
		   processed_at = $6, updated_at = NOW()
		 WHERE id = $1`,
		id, analysis.Category, analysis.Importance, analysis.RootCause,
		analysis.SuggestedResponse, processedAt)
	if err != nil {
		return fmt.Errorf("mark complaint processed: %w", err)
	}
	return nil
}

// MarkComplaintFailed transitions a complaint to failed. The failure
// reason is not stored on the record; callers log it.
func (s *PostgresStore) MarkComplaintFailed(ctx context.Context, id string, processedAt time.Time) error {
	if err := s.checkTransition(ctx, id, models.StatusFailed); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE complaints SET status = 'failed',
		   category = NULL, importance = NULL, root_cause = NULL, suggested_response = NULL,
		   processed_at = $2, updated_at = NOW()
		 WHERE id = $1`,
		id, processedAt)
	if err != nil {
		return fmt.Errorf("mark complaint failed: %w", err)
	}
	return nil
}

// ResetComplaint moves a failed complaint back to pending for another
// attempt. processed_at is kept so the record is not mistaken for one
// that was never attempted.
func (s *PostgresStore) ResetComplaint(ctx context.Context, id string) error {
	if err := s.checkTransition(ctx, id, models.StatusPending); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE complaints SET status = 'pending',
		   category = NULL, importance = NULL, root_cause = NULL, suggested_response = NULL,
		   updated_at = NOW()
		 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("reset complaint: %w", err)
	}
	return nil
}

func (s *PostgresStore) Summary(ctx context.Context) (*models.Summary, error) {
	var sum models.Summary
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'processed'),
		        COUNT(*) FILTER (WHERE status = 'pending'),
		        COUNT(*) FILTER (WHERE status = 'failed')
		 FROM complaints`,
	).Scan(&sum.Total, &sum.Processed, &sum.Pending, &sum.Failed)
	if err != nil {
		return nil, fmt.Errorf("summary counts: %w", err)
	}

	if sum.Total > 0 {
		sum.SuccessRate = float64(sum.Processed) / float64(sum.Total) * 100
	}

	err = s.pool.QueryRow(ctx,
		`SELECT category FROM complaints WHERE category IS NOT NULL
		 GROUP BY category ORDER BY COUNT(*) DESC, category ASC LIMIT 1`,
	).Scan(&sum.TopCategory)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("summary top category: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`SELECT importance FROM complaints WHERE importance IS NOT NULL
		 GROUP BY importance ORDER BY COUNT(*) DESC, importance ASC LIMIT 1`,
	).Scan(&sum.TopImportance)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("summary top importance: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`SELECT AVG(EXTRACT(EPOCH FROM processed_at - received_at)) / 3600
		 FROM complaints
		 WHERE status = 'processed' AND processed_at IS NOT NULL AND received_at IS NOT NULL`,
	).Scan(&sum.AvgProcessingHours)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("summary processing time: %w", err)
	}

	return &sum, nil
}

// --- Administrative overrides ---

// MarkAllUnprocessed resets every complaint to pending and clears all
// analysis output. This bypasses the transition table deliberately; it is
// the destructive "reset" override and requires confirmation upstream.
func (s *PostgresStore) MarkAllUnprocessed(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE complaints SET status = 'pending',
		   category = NULL, importance = NULL, root_cause = NULL, suggested_response = NULL,
		   processed_at = NULL, updated_at = NOW()`)
	if err != nil {
		return 0, fmt.Errorf("mark all unprocessed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgeComplaints irreversibly deletes every complaint record.
func (s *PostgresStore) PurgeComplaints(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM complaints`)
	if err != nil {
		return 0, fmt.Errorf("purge complaints: %w", err)
	}
	return tag.RowsAffected(), nil
}

// --- Jobs ---

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, type, status, mode, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		job.ID, job.Type, job.Status, job.Mode, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var j models.Job
	err := s.pool.QueryRow(ctx,
		`SELECT id, type, status, mode, selected, succeeded, failed,
		        error_message, started_at, completed_at, created_at, updated_at
		 FROM jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.Type, &j.Status, &j.Mode, &j.Selected, &j.Succeeded, &j.Failed,
		&j.ErrorMessage, &j.StartedAt, &j.CompletedAt, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

var validJobTransitions = map[string][]string{
	"pending": {"running"},
	"running": {"completed", "failed"},
}

func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error {
	params := &jobUpdateParams{}
	for _, opt := range opts {
		opt(params)
	}

	// Fetch current status
	var currentStatus string
	err := s.pool.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1`, id).Scan(&currentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get job status: %w", err)
	}

	// Validate transition
	allowed := validJobTransitions[currentStatus]
	valid := false
	for _, a := range allowed {
		if a == status {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid job status transition: %s -> %s", currentStatus, status)
	}

	now := time.Now().UTC()
	query := `UPDATE jobs SET status = $2, updated_at = $3`
	args := []any{id, status, now}
	argIdx := 4

	if status == "running" {
		query += fmt.Sprintf(", started_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	if status == "completed" || status == "failed" {
		query += fmt.Sprintf(", completed_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	if params.ErrorMessage != nil {
		query += fmt.Sprintf(", error_message = $%d", argIdx)
		args = append(args, *params.ErrorMessage)
		argIdx++
	}
	if params.Counts != nil {
		query += fmt.Sprintf(", selected = $%d, succeeded = $%d, failed = $%d", argIdx, argIdx+1, argIdx+2)
		args = append(args, params.Counts.Selected, params.Counts.Succeeded, params.Counts.Failed)
		argIdx += 3
	}

	query += " WHERE id = $1"

	_, err = s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

var _ Store = (*PostgresStore)(nil)
