package profile

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/pkg/logger"
	"github.com/amankumar-in/univance/repository"
	"github.com/amankumar-in/univance/usecase"
)

// Repositories groups the stores owned by the user service.
type Repositories struct {
	Users    repository.UserRepository
	Students repository.StudentRepository
	Parents  repository.ParentRepository
	Teachers repository.TeacherRepository
	Schools  repository.SchoolRepository
	Links    repository.LinkRepository
	Requests repository.LinkRequestRepository
}

type UseCase struct {
	repos      Repositories
	accounts   usecase.PointsAccountOpener
	balances   usecase.PointsBalance
	notifier   usecase.Notifier
	requestTTL time.Duration
	logger     *zap.Logger
	now        usecase.Clock
}

func New(
	repos Repositories,
	accounts usecase.PointsAccountOpener,
	balances usecase.PointsBalance,
	notifier usecase.Notifier,
	requestTTL time.Duration,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if requestTTL <= 0 {
		requestTTL = 7 * 24 * time.Hour
	}
	return &UseCase{
		repos:      repos,
		accounts:   accounts,
		balances:   balances,
		notifier:   notifier,
		requestTTL: requestTTL,
		logger:     logger,
	}
}

// UserInput holds the editable base identity fields.
type UserInput struct {
	Email     string
	FirstName string
	LastName  string
	Avatar    string
}

func (uc *UseCase) GetUser(ctx context.Context, p *domain.Principal) (*domain.User, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	return uc.repos.Users.GetByID(ctx, p.UserID)
}

// UpdateUser upserts the caller's base user row. Empty fields keep their stored value.
func (uc *UseCase) UpdateUser(ctx context.Context, p *domain.Principal, in UserInput) (*domain.User, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		email = p.Email
	}
	user := &domain.User{
		ID:        p.UserID,
		Email:     strings.ToLower(email),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Avatar:    in.Avatar,
	}
	if err := uc.repos.Users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return uc.repos.Users.GetByID(ctx, p.UserID)
}

func (uc *UseCase) notify(ctx context.Context, n domain.Notification) {
	if uc.notifier == nil || n.RecipientID == "" {
		return
	}
	if err := uc.notifier.Notify(ctx, n); err != nil {
		uc.log(ctx).Warn("notification failed", zap.String("type", n.Type), zap.Error(err))
	}
}

func (uc *UseCase) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, uc.logger)
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// randomCode returns an n-character join or link code without look-alike characters.
func randomCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// tempAccountID is the placeholder points account used until the points service answers.
func tempAccountID() (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return domain.TempPointsAccountPrefix + hex.EncodeToString(buf), nil
}
