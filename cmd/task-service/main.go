package main

import (
	"context"

	apiHandler "github.com/amankumar-in/univance/api/handler"
	"github.com/amankumar-in/univance/internal/app"
	"github.com/amankumar-in/univance/internal/config"
	"github.com/amankumar-in/univance/internal/infrastructure/outbox"
	"github.com/amankumar-in/univance/internal/router"
	"github.com/amankumar-in/univance/internal/services"
	"github.com/amankumar-in/univance/repository/postgres"
	categoryUC "github.com/amankumar-in/univance/usecase/category"
	taskUC "github.com/amankumar-in/univance/usecase/task"
)

func main() {
	a := app.Boot(config.ServiceTask)

	a.Outbox.Handle(outbox.KindPointsTransaction, services.DeliverPointsTransaction(a.Points))
	a.Outbox.Handle(outbox.KindNotification, services.DeliverNotification(a.Notifications))

	taskRepo := postgres.NewTaskRepository(a.Pool)
	visibilityRepo := postgres.NewVisibilityRepository(a.Pool)
	categoryRepo := postgres.NewCategoryRepository(a.Pool)

	taskUseCase := taskUC.New(taskRepo, visibilityRepo, a.Downstream, a.Downstream, a.Logger)
	categoryUseCase := categoryUC.New(categoryRepo, a.Logger)

	a.Schedule("recurrence_sweep", a.Config.Jobs.RecurrenceSweepSpec, func(ctx context.Context) (int64, error) {
		created, err := taskUseCase.SweepRecurring(ctx)
		return int64(created), err
	})

	opts := a.HandlerOptions()
	r := router.NewTaskRouter(router.TaskHandlers{
		Task:     apiHandler.NewTaskHandler(taskUseCase, opts),
		Category: apiHandler.NewCategoryHandler(categoryUseCase, opts),
	}, a.RouterOptions("/api/tasks"))

	a.Run(router.Wrap(r))
}
