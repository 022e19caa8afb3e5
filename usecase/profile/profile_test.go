package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/repository"
)

type store struct {
	students map[string]*domain.Student
	parents  map[string]*domain.Parent
	schools  map[string]*domain.School
	requests map[string]*domain.LinkRequest
}

type memStudents struct {
	repository.StudentRepository
	s *store
}

func (m memStudents) GetByID(_ context.Context, id string) (*domain.Student, error) {
	st, ok := m.s.students[id]
	if !ok {
		return nil, domain.ErrStudentNotFound
	}
	cp := *st
	return &cp, nil
}

func (m memStudents) GetByUserID(_ context.Context, userID string) (*domain.Student, error) {
	for _, st := range m.s.students {
		if st.UserID == userID {
			cp := *st
			return &cp, nil
		}
	}
	return nil, domain.ErrStudentNotFound
}

func (m memStudents) Create(_ context.Context, st *domain.Student) (*domain.Student, error) {
	st.ID = fmt.Sprintf("student-%d", len(m.s.students)+1)
	cp := *st
	m.s.students[st.ID] = &cp
	return st, nil
}

type memParents struct {
	repository.ParentRepository
	s *store
}

func (m memParents) GetByID(_ context.Context, id string) (*domain.Parent, error) {
	p, ok := m.s.parents[id]
	if !ok {
		return nil, domain.ErrParentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m memParents) GetByUserID(_ context.Context, userID string) (*domain.Parent, error) {
	for _, p := range m.s.parents {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrParentNotFound
}

func (m memParents) GetByLinkCode(_ context.Context, code string) (*domain.Parent, error) {
	for _, p := range m.s.parents {
		if p.LinkCode == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrParentNotFound
}

func (m memParents) Summaries(_ context.Context, ids []string) ([]domain.PersonSummary, error) {
	var out []domain.PersonSummary
	for _, id := range ids {
		if p, ok := m.s.parents[id]; ok {
			out = append(out, domain.PersonSummary{ProfileID: p.ID, UserID: p.UserID, FirstName: "Pat", LastName: "Parent"})
		}
	}
	return out, nil
}

type memSchools struct {
	repository.SchoolRepository
	s *store
}

func (m memSchools) GetSchool(_ context.Context, id string) (*domain.School, error) {
	school, ok := m.s.schools[id]
	if !ok {
		return nil, domain.ErrSchoolNotFound
	}
	return school, nil
}

type memLinks struct {
	s *store
}

func (m memLinks) LinkParent(_ context.Context, studentID, parentID string) error {
	m.s.students[studentID].ParentIDs = append(m.s.students[studentID].ParentIDs, parentID)
	m.s.parents[parentID].ChildIDs = append(m.s.parents[parentID].ChildIDs, studentID)
	return nil
}

func (m memLinks) UnlinkParent(_ context.Context, studentID, parentID string) error {
	m.s.students[studentID].ParentIDs = without(m.s.students[studentID].ParentIDs, parentID)
	m.s.parents[parentID].ChildIDs = without(m.s.parents[parentID].ChildIDs, studentID)
	return nil
}

func (m memLinks) JoinClass(_ context.Context, studentID string, class *domain.SchoolClass) error {
	school := class.SchoolID
	m.s.students[studentID].SchoolID = &school
	return nil
}

func (m memLinks) LeaveSchool(_ context.Context, studentID, _ string) error {
	m.s.students[studentID].SchoolID = nil
	return nil
}

func (m memLinks) ApproveParentRequest(ctx context.Context, requestID, studentID, parentID string) error {
	m.s.requests[requestID].Status = domain.LinkApproved
	return m.LinkParent(ctx, studentID, parentID)
}

type memRequests struct {
	s *store
}

func (m memRequests) Create(_ context.Context, r *domain.LinkRequest) (*domain.LinkRequest, error) {
	r.ID = fmt.Sprintf("request-%d", len(m.s.requests)+1)
	cp := *r
	m.s.requests[r.ID] = &cp
	return r, nil
}

func (m memRequests) GetPending(_ context.Context, id, targetID string, kind domain.LinkRequestType) (*domain.LinkRequest, error) {
	r, ok := m.s.requests[id]
	if !ok || r.TargetID != targetID || r.RequestType != kind || r.Status != domain.LinkPending {
		return nil, domain.ErrLinkRequestNotFound
	}
	cp := *r
	return &cp, nil
}

func (m memRequests) ListPending(_ context.Context, targetID string, kind domain.LinkRequestType, initiator domain.Role) ([]domain.LinkRequest, error) {
	var out []domain.LinkRequest
	for _, r := range m.s.requests {
		if r.TargetID == targetID && r.RequestType == kind && r.Initiator == initiator && r.Status == domain.LinkPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m memRequests) SetStatus(_ context.Context, id string, status domain.LinkRequestStatus) error {
	m.s.requests[id].Status = status
	return nil
}

func (m memRequests) RejectExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, r := range m.s.requests {
		if r.Status == domain.LinkPending && r.Expired(now) {
			r.Status = domain.LinkRejected
			n++
		}
	}
	return n, nil
}

type memUsers struct {
	repository.UserRepository
	byEmail map[string]*domain.User
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m memUsers) GetByID(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

type stubAccounts struct {
	opened []string
	err    error
}

func (s *stubAccounts) OpenPointsAccount(_ context.Context, studentID string) error {
	s.opened = append(s.opened, studentID)
	return s.err
}

type recordingNotifier struct {
	sent []domain.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg domain.Notification) error {
	n.sent = append(n.sent, msg)
	return nil
}

func without(ids []string, drop string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

var now = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	uc       *UseCase
	s        *store
	accounts *stubAccounts
	notifier *recordingNotifier
}

func setup(t *testing.T) *fixture {
	t.Helper()
	s := &store{
		students: map[string]*domain.Student{
			"student-1": {ID: "student-1", UserID: "student-user", ParentIDs: []string{}},
		},
		parents: map[string]*domain.Parent{
			"parent-1": {ID: "parent-1", UserID: "parent-user", LinkCode: "ABC234", ChildIDs: []string{}},
		},
		schools: map[string]*domain.School{
			"school-1": {ID: "school-1", Name: "Hillside", AdminIDs: []string{"school-admin-user"}},
		},
		requests: map[string]*domain.LinkRequest{},
	}
	f := &fixture{s: s, accounts: &stubAccounts{}, notifier: &recordingNotifier{}}
	f.uc = New(Repositories{
		Users: memUsers{byEmail: map[string]*domain.User{
			"kid@example.com": {ID: "student-user", Email: "kid@example.com"},
		}},
		Students: memStudents{s: s},
		Parents:  memParents{s: s},
		Schools:  memSchools{s: s},
		Links:    memLinks{s: s},
		Requests: memRequests{s: s},
	}, f.accounts, nil, f.notifier, 0, nil)
	f.uc.now = func() time.Time { return now }
	return f
}

var (
	studentP  = &domain.Principal{UserID: "student-user", Role: domain.RoleStudent, Profiles: map[domain.Role]string{domain.RoleStudent: "student-1"}}
	parentP   = &domain.Principal{UserID: "parent-user", Role: domain.RoleParent, Profiles: map[domain.Role]string{domain.RoleParent: "parent-1"}}
	strangerP = &domain.Principal{UserID: "someone", Role: domain.RoleParent, Profiles: map[domain.Role]string{domain.RoleParent: "parent-9"}}
)

func TestCreateStudentProfile_ToleratesPointsOutage(t *testing.T) {
	f := setup(t)
	f.accounts.err = errors.New("points service down")

	created, err := f.uc.CreateStudentProfile(context.Background(), &domain.Principal{UserID: "new-user", Role: domain.RoleStudent}, CreateStudentInput{Grade: 4})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(created.PointsAccountID, domain.TempPointsAccountPrefix))
	assert.Equal(t, 1, created.Level)
	assert.Equal(t, 4, created.Grade)
	assert.Equal(t, []string{created.ID}, f.accounts.opened)
}

func TestLinkWithParent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		code    string
		wantMsg string
	}{
		{name: "empty code", code: "  ", wantMsg: "Parent link code is required"},
		{name: "unknown code", code: "ZZZZZZ", wantMsg: "Invalid parent link code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.LinkWithParent(ctx, studentP, tt.code)
			var dErr *domain.Error
			require.True(t, errors.As(err, &dErr))
			assert.Equal(t, tt.wantMsg, dErr.Message)
		})
	}

	student, err := f.uc.LinkWithParent(ctx, studentP, "abc234")
	require.NoError(t, err)
	assert.Equal(t, []string{"parent-1"}, student.ParentIDs)
	assert.Equal(t, []string{"student-1"}, f.s.parents["parent-1"].ChildIDs, "both sides are linked")

	_, err = f.uc.LinkWithParent(ctx, studentP, "ABC234")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestUnlinkFromParent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.uc.LinkWithParent(ctx, studentP, "ABC234")
	require.NoError(t, err)

	err = f.uc.UnlinkFromParent(ctx, strangerP, "student-1", "parent-1")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	require.NoError(t, f.uc.UnlinkFromParent(ctx, parentP, "student-1", "parent-1"))
	assert.Empty(t, f.s.students["student-1"].ParentIDs)
	assert.Empty(t, f.s.parents["parent-1"].ChildIDs)

	err = f.uc.UnlinkFromParent(ctx, studentP, "student-1", "parent-1")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestUnlinkFromSchool(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	err := f.uc.UnlinkFromSchool(ctx, studentP, "student-1")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "not linked to a school yet")

	school := "school-1"
	f.s.students["student-1"].SchoolID = &school

	otherAdmin := &domain.Principal{UserID: "other-admin", Role: domain.RoleSchoolAdmin, SchoolID: "school-2"}
	err = f.uc.UnlinkFromSchool(ctx, otherAdmin, "student-1")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	admin := &domain.Principal{UserID: "school-admin-user", Role: domain.RoleSchoolAdmin}
	require.NoError(t, f.uc.UnlinkFromSchool(ctx, admin, "student-1"))
	assert.Nil(t, f.s.students["student-1"].SchoolID)
}

func TestParentLinkRequest_Approve(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.uc.RequestStudentLink(ctx, studentP, StudentLinkInput{StudentID: "student-1"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	request, err := f.uc.RequestStudentLink(ctx, parentP, StudentLinkInput{Email: " Kid@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "student-1", request.TargetID)
	assert.Equal(t, "parent-1", request.InitiatorID)
	assert.Equal(t, "ABC234", request.Code)
	assert.Equal(t, now.Add(7*24*time.Hour), request.ExpiresAt)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "student-user", f.notifier.sent[0].RecipientID)

	views, err := f.uc.ParentRequests(ctx, studentP)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Pat Parent", views[0].ParentName)

	_, err = f.uc.RespondParentRequest(ctx, studentP, request.ID, "maybe")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	answered, err := f.uc.RespondParentRequest(ctx, studentP, request.ID, RequestApprove)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkApproved, answered.Status)
	assert.Equal(t, []string{"parent-1"}, f.s.students["student-1"].ParentIDs)
	assert.Equal(t, "parent-user", f.notifier.sent[len(f.notifier.sent)-1].RecipientID)

	_, err = f.uc.RespondParentRequest(ctx, studentP, request.ID, RequestApprove)
	assert.ErrorIs(t, err, domain.ErrLinkRequestNotFound)
}

func TestParentLinkRequest_Expired(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	request, err := f.uc.RequestStudentLink(ctx, parentP, StudentLinkInput{StudentID: "student-1"})
	require.NoError(t, err)

	f.uc.now = func() time.Time { return now.Add(8 * 24 * time.Hour) }

	views, err := f.uc.ParentRequests(ctx, studentP)
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = f.uc.RespondParentRequest(ctx, studentP, request.ID, RequestApprove)
	assert.ErrorIs(t, err, domain.ErrRequestExpired)
	assert.Equal(t, domain.LinkRejected, f.s.requests[request.ID].Status)
	assert.Empty(t, f.s.students["student-1"].ParentIDs)
}

func TestExpireRequests(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.uc.RequestStudentLink(ctx, parentP, StudentLinkInput{StudentID: "student-1"})
	require.NoError(t, err)

	n, err := f.uc.ExpireRequests(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.uc.now = func() time.Time { return now.Add(7 * 24 * time.Hour) }
	n, err = f.uc.ExpireRequests(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRandomCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := randomCode(linkCodeLength)
		require.NoError(t, err)
		assert.Len(t, code, linkCodeLength)
		for _, c := range code {
			assert.Contains(t, codeAlphabet, string(c))
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}
