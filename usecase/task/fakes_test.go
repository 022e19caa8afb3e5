package task

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/repository"
)

// memTasks keeps tasks in memory. Methods a test never reaches fall through to the nil
// embedded interface and panic.
type memTasks struct {
	repository.TaskRepository

	mu       sync.Mutex
	seq      int
	tasks    map[string]*domain.Task
	comments []domain.Comment

	// filters records every listing filter received.
	filters    []repository.TaskFilter
	studentErr error
}

func newMemTasks() *memTasks {
	return &memTasks{tasks: make(map[string]*domain.Task)}
}

func (m *memTasks) put(t *domain.Task) *domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		m.seq++
		t.ID = fmt.Sprintf("task-%d", m.seq)
	}
	cp := *t
	m.tasks[t.ID] = &cp
	out := cp
	return &out
}

func (m *memTasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	return m.put(t), nil
}

func (m *memTasks) Update(_ context.Context, t *domain.Task) error {
	m.put(t)
	return nil
}

func (m *memTasks) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		t.IsDeleted = true
	}
	return nil
}

func (m *memTasks) SoftDeleteFutureInstances(_ context.Context, parentID string, from time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.tasks {
		if t.IsInstance() && *t.ParentTaskID == parentID && t.DueDate != nil && !t.DueDate.Before(from) &&
			t.Status == domain.StatusPending && !t.IsDeleted {
			t.IsDeleted = true
			n++
		}
	}
	return n, nil
}

func (m *memTasks) Complete(_ context.Context, id string, status domain.TaskStatus, completion domain.Completion, approval *domain.Approval) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if t.Status == domain.StatusApproved {
		return nil, domain.ErrTaskAlreadyApproved
	}
	t.Status = status
	t.Completion = &completion
	t.Approval = approval
	cp := *t
	return &cp, nil
}

func (m *memTasks) Review(_ context.Context, id string, status domain.TaskStatus, approval domain.Approval, feedback *domain.Comment) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if t.Status != domain.StatusPendingApproval {
		return nil, domain.ErrNotAwaitingApproval
	}
	t.Status = status
	t.Approval = &approval
	if feedback != nil {
		t.Comments = append(t.Comments, *feedback)
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) AddComment(_ context.Context, c *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments = append(m.comments, *c)
	return nil
}

func (m *memTasks) CreateInstance(_ context.Context, instance *domain.Task) (*domain.Task, bool, error) {
	m.mu.Lock()
	for _, t := range m.tasks {
		if t.IsInstance() && *t.ParentTaskID == *instance.ParentTaskID && !t.IsDeleted &&
			t.InstanceDate != nil && t.InstanceDate.Equal(*instance.InstanceDate) {
			cp := *t
			m.mu.Unlock()
			return &cp, false, nil
		}
	}
	m.mu.Unlock()
	return m.put(instance), true, nil
}

func (m *memTasks) DueRecurringInstances(_ context.Context, cutoff time.Time) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := make(map[string]domain.Task)
	for _, t := range m.tasks {
		if !t.IsInstance() || t.IsDeleted || t.InstanceDate == nil {
			continue
		}
		cur, ok := latest[*t.ParentTaskID]
		if !ok || t.InstanceDate.After(*cur.InstanceDate) {
			latest[*t.ParentTaskID] = *t
		}
	}
	var out []domain.Task
	for _, t := range latest {
		if !t.InstanceDate.After(cutoff) {
			out = append(out, t)
		}
	}
	return out, nil
}

// List ignores the scope and pages the live tasks by id.
func (m *memTasks) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, filter)
	var all []domain.Task
	for _, t := range m.tasks {
		if !t.IsDeleted {
			all = append(all, *t)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if filter.Offset >= total {
		return []domain.Task{}, total, nil
	}
	end := total
	if filter.Limit > 0 && filter.Offset+filter.Limit < total {
		end = filter.Offset + filter.Limit
	}
	return all[filter.Offset:end], total, nil
}

func (m *memTasks) studentTasks(studentID string, q repository.StudentTaskQuery) []domain.Task {
	var out []domain.Task
	for _, t := range m.tasks {
		if t.IsDeleted || !t.AssignedTo.Includes(domain.RoleStudent, studentID) {
			continue
		}
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if q.DueAfter != nil && (t.DueDate == nil || t.DueDate.Before(*q.DueAfter)) {
			continue
		}
		if q.DueBefore != nil && (t.DueDate == nil || !t.DueDate.Before(*q.DueBefore)) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func (m *memTasks) CountStudentTasks(_ context.Context, studentID string, q repository.StudentTaskQuery) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.studentErr != nil {
		return 0, m.studentErr
	}
	return len(m.studentTasks(studentID, q)), nil
}

func (m *memTasks) StudentTasks(_ context.Context, studentID string, q repository.StudentTaskQuery) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.studentTasks(studentID, q), nil
}

func (m *memTasks) StudentCategorySummary(_ context.Context, studentID string) ([]domain.CategorySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byCategory := make(map[string]*domain.CategorySummary)
	var order []string
	for _, t := range m.studentTasks(studentID, repository.StudentTaskQuery{}) {
		c, ok := byCategory[t.Category]
		if !ok {
			c = &domain.CategorySummary{Category: t.Category}
			byCategory[t.Category] = c
			order = append(order, t.Category)
		}
		c.Count++
		if t.Status == domain.StatusApproved || t.Status == domain.StatusPendingApproval {
			c.Completed++
		}
		if t.Status == domain.StatusApproved {
			c.TotalPoints += t.PointValue
		}
	}
	out := make([]domain.CategorySummary, 0, len(order))
	for _, name := range order {
		out = append(out, *byCategory[name])
	}
	return out, nil
}

func (m *memTasks) StudentApprovalDates(_ context.Context, studentID string, since time.Time) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []time.Time
	for _, t := range m.studentTasks(studentID, repository.StudentTaskQuery{Status: domain.StatusApproved}) {
		if t.Approval != nil && !t.Approval.ApprovalDate.Before(since) {
			out = append(out, t.Approval.ApprovalDate)
		}
	}
	return out, nil
}

// instancesOf returns the live instances of a template ordered by date.
func (m *memTasks) instancesOf(parentID string) []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Task
	for _, t := range m.tasks {
		if t.IsInstance() && *t.ParentTaskID == parentID && !t.IsDeleted {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstanceDate.Before(*out[j].InstanceDate) })
	return out
}

type memVisibility struct {
	mu        sync.Mutex
	overrides map[string]domain.TaskVisibility
}

func newMemVisibility() *memVisibility {
	return &memVisibility{overrides: make(map[string]domain.TaskVisibility)}
}

func (m *memVisibility) Upsert(_ context.Context, v *domain.TaskVisibility) (*domain.TaskVisibility, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := v.TaskID + "/" + v.ToggledForUserID
	if existing, ok := m.overrides[key]; ok {
		v.ID = existing.ID
	} else {
		v.ID = fmt.Sprintf("vis-%d", len(m.overrides)+1)
	}
	m.overrides[key] = *v
	out := *v
	return &out, nil
}

func (m *memVisibility) Get(_ context.Context, taskID, studentID string) (*domain.TaskVisibility, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.overrides[taskID+"/"+studentID]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *memVisibility) ListForStudents(_ context.Context, ids []string) ([]domain.TaskVisibility, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TaskVisibility
	for _, v := range m.overrides {
		for _, id := range ids {
			if v.ToggledForUserID == id {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

type recordingLedger struct {
	mu  sync.Mutex
	txs []domain.PointsTransaction
	err error
}

func (l *recordingLedger) RecordTransaction(_ context.Context, tx domain.PointsTransaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.txs = append(l.txs, tx)
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) ofType(kind string) []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.Notification
	for _, msg := range n.sent {
		if msg.Type == kind {
			out = append(out, msg)
		}
	}
	return out
}
