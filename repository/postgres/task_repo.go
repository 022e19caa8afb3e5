package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/repository"
)

const taskColumns = `id, title, description, category, sub_category, point_value, created_by, creator_roles,
	assigned_role, assigned_ids, status, due_date, is_recurring, recurring_schedule, requires_approval,
	approver_type, specific_approver_id, completion_note, completion_evidence, completed_by, completed_at,
	approved_by, approver_role, approval_date, parent_task_id, instance_date, school_id, class_id,
	difficulty, external_resource, attachments, metadata, is_deleted, created_at, updated_at`

// studentTasks matches tasks addressed to the student given as the first argument.
const studentTasks = `assigned_role = 'student'
	AND ($1 = ANY(assigned_ids) OR cardinality(assigned_ids) = 0 OR completed_by = $1)
	AND NOT is_deleted`

var taskSortColumns = map[string]string{
	"dueDate":    "due_date",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"pointValue": "point_value",
	"title":      "title",
	"status":     "status",
	"category":   "category",
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND NOT is_deleted`
	task, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	comments, err := r.comments(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Comments = comments
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, int, error) {
	var c conditions
	c.add("NOT t.is_deleted")
	applyScope(&c, filter.Scope)

	if filter.AssignedRole != "" {
		c.add("t.assigned_role = " + c.arg(filter.AssignedRole))
	}
	if filter.CreatedBy != "" {
		c.add("t.created_by = " + c.arg(filter.CreatedBy))
	}
	if filter.Category != "" {
		c.add("t.category = " + c.arg(filter.Category))
	}
	if filter.SubCategory != "" {
		c.add("t.sub_category = " + c.arg(filter.SubCategory))
	}
	if filter.SchoolID != "" {
		c.add("t.school_id = " + c.arg(filter.SchoolID))
	}
	if filter.ClassID != "" {
		c.add("t.class_id = " + c.arg(filter.ClassID))
	}
	if filter.Status != "" {
		c.add("t.status = " + c.arg(filter.Status))
	}
	if filter.DueDate != nil {
		c.add("t.due_date::date = " + c.arg(*filter.DueDate) + "::date")
	}
	if filter.StartDate != nil {
		c.add("t.created_at >= " + c.arg(*filter.StartDate))
	}
	if filter.EndDate != nil {
		c.add("t.created_at <= " + c.arg(*filter.EndDate))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM tasks t ` + c.where()
	if err := r.pool.QueryRow(ctx, countQuery, c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	column, ok := taskSortColumns[filter.Sort]
	if !ok {
		column = "due_date"
	}
	direction := "ASC"
	if filter.Desc {
		direction = "DESC"
	}

	limit := c.arg(clampLimit(filter.Limit))
	offset := c.arg(filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM tasks t %s ORDER BY t.%s %s NULLS LAST, t.id LIMIT %s OFFSET %s`,
		taskColumns, c.where(), column, direction, limit, offset)

	tasks, err := r.queryTasks(ctx, query, c.args...)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// applyScope restricts a listing to tasks the caller's active role may see.
func applyScope(c *conditions, scope repository.TaskScope) {
	switch scope.Role {
	case domain.RolePlatformAdmin, domain.RoleSubAdmin:
		return
	case domain.RoleStudent:
		p := c.arg(scope.ProfileID)
		c.add(fmt.Sprintf(`(
			(
				((t.assigned_role = 'student' AND (cardinality(t.assigned_ids) = 0 OR %[1]s = ANY(t.assigned_ids)))
					OR (t.assigned_role = 'parent' AND cardinality(t.assigned_ids) = 0))
				AND NOT EXISTS (SELECT 1 FROM task_visibilities v
					WHERE v.task_id = t.id AND v.toggled_for_user_id = %[1]s AND NOT v.is_visible)
			)
			OR EXISTS (SELECT 1 FROM task_visibilities v
				WHERE v.task_id = t.id AND v.toggled_for_user_id = %[1]s AND v.is_visible)
		)`, p))
	case domain.RoleParent:
		p := c.arg(scope.ProfileID)
		u := c.arg(scope.UserID)
		clause := fmt.Sprintf(`(t.assigned_role = 'parent' AND (cardinality(t.assigned_ids) = 0 OR %s = ANY(t.assigned_ids)))
			OR t.created_by = %s`, p, u)
		if len(scope.ChildIDs) > 0 {
			children := c.arg(scope.ChildIDs)
			clause += fmt.Sprintf(` OR (t.assigned_role = 'student' AND (cardinality(t.assigned_ids) = 0 OR t.assigned_ids && %s::text[]))`, children)
		}
		c.add("(" + clause + ")")
	case domain.RoleTeacher, domain.RoleSchoolAdmin, domain.RoleSocialWorker:
		role := c.arg(string(scope.Role))
		p := c.arg(scope.ProfileID)
		u := c.arg(scope.UserID)
		c.add(fmt.Sprintf(`((t.assigned_role = %s AND (cardinality(t.assigned_ids) = 0 OR %s = ANY(t.assigned_ids))) OR t.created_by = %s)`,
			role, p, u))
	default:
		c.add("FALSE")
	}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, title, description, category, sub_category, point_value, created_by, creator_roles,
		assigned_role, assigned_ids, status, due_date, is_recurring, recurring_schedule, requires_approval,
		approver_type, specific_approver_id, parent_task_id, instance_date, school_id, class_id,
		difficulty, external_resource, attachments, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21,
		$22, $23, $24, $25)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query, insertArgs(task)...).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) CreateInstance(ctx context.Context, instance *domain.Task) (*domain.Task, bool, error) {
	if instance == nil || !instance.IsInstance() || instance.InstanceDate == nil {
		return nil, false, domain.ErrInvalidPayload
	}
	if instance.ID == "" {
		instance.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, title, description, category, sub_category, point_value, created_by, creator_roles,
		assigned_role, assigned_ids, status, due_date, is_recurring, recurring_schedule, requires_approval,
		approver_type, specific_approver_id, parent_task_id, instance_date, school_id, class_id,
		difficulty, external_resource, attachments, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21,
		$22, $23, $24, $25)
	ON CONFLICT (parent_task_id, instance_date) WHERE parent_task_id IS NOT NULL AND NOT is_deleted DO NOTHING
	RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, insertArgs(instance)...).Scan(&instance.CreatedAt, &instance.UpdatedAt)
	if err == nil {
		return instance, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	existing, err := r.FindInstance(ctx, *instance.ParentTaskID, *instance.InstanceDate)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func insertArgs(task *domain.Task) []interface{} {
	roles := make([]string, 0, len(task.CreatorRoles))
	for _, role := range task.CreatorRoles {
		roles = append(roles, string(role))
	}

	var schedule []byte
	if task.RecurringSchedule != nil {
		schedule, _ = json.Marshal(task.RecurringSchedule)
	}

	var parentID interface{}
	if task.ParentTaskID != nil {
		parentID = *task.ParentTaskID
	}

	return []interface{}{
		task.ID,
		task.Title,
		task.Description,
		task.Category,
		task.SubCategory,
		task.PointValue,
		task.CreatedBy,
		roles,
		string(task.AssignedTo.Role),
		nonNil(task.AssignedTo.SelectedPeopleIDs),
		string(task.Status),
		nullTime(task.DueDate),
		task.IsRecurring,
		schedule,
		task.RequiresApproval,
		string(task.ApproverType),
		task.SpecificApproverID,
		parentID,
		nullTime(task.InstanceDate),
		task.SchoolID,
		task.ClassID,
		task.Difficulty,
		task.ExternalResource,
		nonNil(task.Attachments),
		marshalMap(task.Metadata),
	}
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		category = $4,
		sub_category = $5,
		point_value = $6,
		assigned_role = $7,
		assigned_ids = $8,
		due_date = $9,
		is_recurring = $10,
		recurring_schedule = $11,
		requires_approval = $12,
		approver_type = $13,
		specific_approver_id = $14,
		school_id = $15,
		class_id = $16,
		difficulty = $17,
		external_resource = $18,
		attachments = $19,
		metadata = $20,
		updated_at = NOW()
	WHERE id = $1 AND NOT is_deleted
	RETURNING updated_at
	`

	var schedule []byte
	if task.RecurringSchedule != nil {
		schedule, _ = json.Marshal(task.RecurringSchedule)
	}

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Category,
		task.SubCategory,
		task.PointValue,
		string(task.AssignedTo.Role),
		nonNil(task.AssignedTo.SelectedPeopleIDs),
		nullTime(task.DueDate),
		task.IsRecurring,
		schedule,
		task.RequiresApproval,
		string(task.ApproverType),
		task.SpecificApproverID,
		task.SchoolID,
		task.ClassID,
		task.Difficulty,
		task.ExternalResource,
		nonNil(task.Attachments),
		marshalMap(task.Metadata),
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (r *taskRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE tasks SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) SoftDeleteFutureInstances(ctx context.Context, parentID string, from time.Time) (int64, error) {
	const query = `
	UPDATE tasks SET is_deleted = TRUE, updated_at = NOW()
	WHERE parent_task_id = $1 AND due_date >= $2 AND NOT is_deleted
	`
	tag, err := r.pool.Exec(ctx, query, parentID, from)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *taskRepository) Complete(ctx context.Context, id string, status domain.TaskStatus, completion domain.Completion, approval *domain.Approval) (*domain.Task, error) {
	const query = `
	UPDATE tasks
	SET status = $2,
		completion_note = $3,
		completion_evidence = $4,
		completed_by = $5,
		completed_at = $6,
		approved_by = $7,
		approver_role = $8,
		approval_date = $9,
		updated_at = NOW()
	WHERE id = $1 AND NOT is_deleted AND status <> 'approved'
	`

	var approvedBy, approverRole, approvalDate interface{}
	if approval != nil {
		approvedBy = approval.ApprovedBy
		approverRole = approval.ApproverRole
		approvalDate = approval.ApprovalDate
	}

	tag, err := r.pool.Exec(ctx, query,
		id,
		string(status),
		completion.Note,
		nonNil(completion.Evidence),
		nullString(completion.CompletedBy),
		completion.CompletedAt,
		approvedBy,
		approverRole,
		approvalDate,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrTaskAlreadyApproved
	}
	return r.GetByID(ctx, id)
}

func (r *taskRepository) Review(ctx context.Context, id string, status domain.TaskStatus, approval domain.Approval, feedback *domain.Comment) (*domain.Task, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const query = `
	UPDATE tasks
	SET status = $2,
		approved_by = $3,
		approver_role = $4,
		approval_date = $5,
		updated_at = NOW()
	WHERE id = $1 AND NOT is_deleted AND status = 'pending_approval'
	`
	tag, err := tx.Exec(ctx, query, id, string(status), approval.ApprovedBy, approval.ApproverRole, approval.ApprovalDate)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotAwaitingApproval
	}

	if feedback != nil {
		feedback.TaskID = id
		if err := insertComment(ctx, tx, feedback); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *taskRepository) AddComment(ctx context.Context, comment *domain.Comment) error {
	if comment == nil {
		return domain.ErrInvalidPayload
	}
	return insertComment(ctx, r.pool, comment)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func insertComment(ctx context.Context, q rowQuerier, comment *domain.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	const query = `
	INSERT INTO task_comments (id, task_id, text, created_by, creator_role)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at
	`
	return q.QueryRow(ctx, query,
		comment.ID,
		comment.TaskID,
		comment.Text,
		comment.CreatedBy,
		string(comment.CreatorRole),
	).Scan(&comment.CreatedAt)
}

func (r *taskRepository) comments(ctx context.Context, taskID string) ([]domain.Comment, error) {
	const query = `
	SELECT id, task_id, text, created_by, creator_role, created_at
	FROM task_comments
	WHERE task_id = $1
	ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var (
			comment domain.Comment
			role    string
		)
		if err := rows.Scan(&comment.ID, &comment.TaskID, &comment.Text, &comment.CreatedBy, &role, &comment.CreatedAt); err != nil {
			return nil, err
		}
		comment.CreatorRole = domain.Role(role)
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (r *taskRepository) FindInstance(ctx context.Context, parentID string, instanceDate time.Time) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
	WHERE parent_task_id = $1 AND instance_date = $2 AND NOT is_deleted`
	return scanTask(r.pool.QueryRow(ctx, query, parentID, instanceDate))
}

func (r *taskRepository) DueRecurringInstances(ctx context.Context, cutoff time.Time) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM (
		SELECT DISTINCT ON (parent_task_id) *
		FROM tasks
		WHERE NOT is_deleted
		  AND parent_task_id IN (SELECT id FROM tasks WHERE is_recurring AND NOT is_deleted)
		ORDER BY parent_task_id, instance_date DESC
	) latest
	WHERE due_date <= $1`
	return r.queryTasks(ctx, query, cutoff)
}

func (r *taskRepository) Statistics(ctx context.Context, groupBy domain.StatsGroupBy, filter domain.StatsFilter) ([]domain.StatsGroup, domain.StatsSummary, error) {
	var c conditions
	c.add("NOT is_deleted")
	if filter.StudentID != "" {
		c.add(c.arg(filter.StudentID) + " = ANY(assigned_ids)")
	}
	if filter.SchoolID != "" {
		c.add("school_id = " + c.arg(filter.SchoolID))
	}
	if filter.ClassID != "" {
		c.add("class_id = " + c.arg(filter.ClassID))
	}
	if filter.StartDate != nil {
		c.add("created_at >= " + c.arg(*filter.StartDate))
	}
	if filter.EndDate != nil {
		c.add("created_at <= " + c.arg(*filter.EndDate))
	}

	var key string
	switch groupBy {
	case domain.GroupByStatus:
		key = "status"
	case domain.GroupByCreatorRole:
		key = "COALESCE(creator_roles[1], '')"
	case domain.GroupByDate:
		key = "to_char(created_at, 'YYYY-MM-DD')"
	default:
		key = "category"
	}

	groupQuery := fmt.Sprintf(`
	SELECT %[1]s AS key,
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'approved'),
		COUNT(*) FILTER (WHERE status = 'pending'),
		COUNT(*) FILTER (WHERE status = 'rejected'),
		COALESCE(SUM(point_value) FILTER (WHERE status = 'approved'), 0),
		COALESCE(AVG(point_value), 0)::float8
	FROM tasks
	%[2]s
	GROUP BY %[1]s
	ORDER BY COUNT(*) DESC, key`, key, c.where())

	rows, err := r.pool.Query(ctx, groupQuery, c.args...)
	if err != nil {
		return nil, domain.StatsSummary{}, err
	}
	defer rows.Close()

	groups := make([]domain.StatsGroup, 0)
	for rows.Next() {
		var g domain.StatsGroup
		if err := rows.Scan(&g.Key, &g.Count, &g.CompletedCount, &g.PendingCount, &g.RejectedCount, &g.TotalPoints, &g.AvgPointValue); err != nil {
			return nil, domain.StatsSummary{}, err
		}
		if g.Count > 0 {
			g.CompletionRate = float64(g.CompletedCount) / float64(g.Count) * 100
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StatsSummary{}, err
	}

	summaryQuery := `
	SELECT COUNT(*),
		COUNT(*) FILTER (WHERE status = 'approved'),
		COALESCE(SUM(point_value) FILTER (WHERE status = 'approved'), 0),
		COALESCE(AVG(EXTRACT(EPOCH FROM (completed_at - created_at)) / 86400)
			FILTER (WHERE status = 'approved' AND completed_at IS NOT NULL), 0)::float8
	FROM tasks ` + c.where()

	var summary domain.StatsSummary
	if err := r.pool.QueryRow(ctx, summaryQuery, c.args...).Scan(
		&summary.TotalTasks,
		&summary.CompletedTasks,
		&summary.TotalPoints,
		&summary.AvgCompletionTime,
	); err != nil {
		return nil, domain.StatsSummary{}, err
	}

	return groups, summary, nil
}

func (r *taskRepository) CountStudentTasks(ctx context.Context, studentID string, q repository.StudentTaskQuery) (int, error) {
	c := studentConditions(studentID, q)
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks `+c.where(), c.args...).Scan(&count)
	return count, err
}

func (r *taskRepository) StudentTasks(ctx context.Context, studentID string, q repository.StudentTaskQuery) ([]domain.Task, error) {
	c := studentConditions(studentID, q)
	order := "due_date ASC NULLS LAST"
	if q.Recent {
		order = "approval_date DESC NULLS LAST"
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT %s FROM tasks %s ORDER BY %s LIMIT %s`, taskColumns, c.where(), order, c.arg(limit))
	return r.queryTasks(ctx, query, c.args...)
}

func studentConditions(studentID string, q repository.StudentTaskQuery) *conditions {
	c := &conditions{}
	c.arg(studentID)
	c.add("(" + studentTasks + ")")
	if q.Status != "" {
		c.add("status = " + c.arg(string(q.Status)))
	}
	if q.DueAfter != nil {
		c.add("due_date >= " + c.arg(*q.DueAfter))
	}
	if q.DueBefore != nil {
		c.add("due_date < " + c.arg(*q.DueBefore))
	}
	return c
}

func (r *taskRepository) StudentCategorySummary(ctx context.Context, studentID string) ([]domain.CategorySummary, error) {
	query := `
	SELECT category,
		COUNT(*),
		COUNT(*) FILTER (WHERE status IN ('approved', 'pending_approval')),
		COALESCE(SUM(point_value) FILTER (WHERE status = 'approved'), 0)
	FROM tasks
	WHERE ` + studentTasks + `
	GROUP BY category
	ORDER BY category`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := make([]domain.CategorySummary, 0)
	for rows.Next() {
		var s domain.CategorySummary
		if err := rows.Scan(&s.Category, &s.Count, &s.Completed, &s.TotalPoints); err != nil {
			return nil, err
		}
		summary = append(summary, s)
	}
	return summary, rows.Err()
}

func (r *taskRepository) StudentApprovalDates(ctx context.Context, studentID string, since time.Time) ([]time.Time, error) {
	query := `
	SELECT approval_date FROM tasks
	WHERE ` + studentTasks + ` AND status = 'approved' AND approval_date >= $2`

	rows, err := r.pool.Query(ctx, query, studentID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (r *taskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var (
		creatorRoles []string
		assignedRole string
		assignedIDs  []string
		status       string
		schedule     []byte
		approverType string
		note         *string
		evidence     []string
		completedBy  *string
		completedAt  *time.Time
		approvedBy   *string
		approverRole *string
		approvalDate *time.Time
		parentTaskID *string
		metadata     []byte
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Category,
		&task.SubCategory,
		&task.PointValue,
		&task.CreatedBy,
		&creatorRoles,
		&assignedRole,
		&assignedIDs,
		&status,
		&task.DueDate,
		&task.IsRecurring,
		&schedule,
		&task.RequiresApproval,
		&approverType,
		&task.SpecificApproverID,
		&note,
		&evidence,
		&completedBy,
		&completedAt,
		&approvedBy,
		&approverRole,
		&approvalDate,
		&parentTaskID,
		&task.InstanceDate,
		&task.SchoolID,
		&task.ClassID,
		&task.Difficulty,
		&task.ExternalResource,
		&task.Attachments,
		&metadata,
		&task.IsDeleted,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	for _, role := range creatorRoles {
		task.CreatorRoles = append(task.CreatorRoles, domain.Role(role))
	}
	task.AssignedTo = domain.Assignment{Role: domain.Role(assignedRole), SelectedPeopleIDs: assignedIDs}
	task.Status = domain.TaskStatus(status)
	task.ApproverType = domain.ApproverType(approverType)
	task.ParentTaskID = parentTaskID

	if len(schedule) > 0 {
		var s domain.RecurringSchedule
		if err := json.Unmarshal(schedule, &s); err == nil {
			task.RecurringSchedule = &s
		}
	}
	if completedAt != nil {
		task.Completion = &domain.Completion{
			Note:        deref(note),
			Evidence:    evidence,
			CompletedBy: deref(completedBy),
			CompletedAt: *completedAt,
		}
	}
	if approvalDate != nil {
		task.Approval = &domain.Approval{
			ApprovedBy:   deref(approvedBy),
			ApproverRole: deref(approverRole),
			ApprovalDate: *approvalDate,
		}
	}
	if len(metadata) > 0 {
		_ = json.Unmarshal(metadata, &task.Metadata)
	}

	return &task, nil
}
