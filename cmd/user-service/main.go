package main

import (
	apiHandler "github.com/amankumar-in/univance/api/handler"
	"github.com/amankumar-in/univance/internal/app"
	"github.com/amankumar-in/univance/internal/config"
	"github.com/amankumar-in/univance/internal/infrastructure/outbox"
	"github.com/amankumar-in/univance/internal/router"
	"github.com/amankumar-in/univance/internal/services"
	"github.com/amankumar-in/univance/repository/postgres"
	profileUC "github.com/amankumar-in/univance/usecase/profile"
)

func main() {
	a := app.Boot(config.ServiceUser)

	studentRepo := postgres.NewStudentRepository(a.Pool)

	a.Outbox.Handle(outbox.KindPointsAccount, services.DeliverPointsAccount(a.Points, studentRepo))
	a.Outbox.Handle(outbox.KindNotification, services.DeliverNotification(a.Notifications))

	profileUseCase := profileUC.New(
		profileUC.Repositories{
			Users:    postgres.NewUserRepository(a.Pool),
			Students: studentRepo,
			Parents:  postgres.NewParentRepository(a.Pool),
			Teachers: postgres.NewTeacherRepository(a.Pool),
			Schools:  postgres.NewSchoolRepository(a.Pool),
			Links:    postgres.NewLinkRepository(a.Pool),
			Requests: postgres.NewLinkRequestRepository(a.Pool),
		},
		a.Downstream,
		a.Points,
		a.Downstream,
		a.Config.Jobs.LinkRequestTTL,
		a.Logger,
	)

	a.Schedule("link_request_expiry", a.Config.Jobs.LinkRequestExpiry, profileUseCase.ExpireRequests)

	opts := a.HandlerOptions()
	r := router.NewUserRouter(router.UserHandlers{
		Profile:      apiHandler.NewProfileHandler(profileUseCase, opts),
		Relationship: apiHandler.NewRelationshipHandler(profileUseCase, opts),
	}, a.RouterOptions("/api/users"))

	a.Run(router.Wrap(r))
}
