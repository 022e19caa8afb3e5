package main

import (
	apiHandler "github.com/amankumar-in/univance/api/handler"
	"github.com/amankumar-in/univance/internal/app"
	"github.com/amankumar-in/univance/internal/config"
	"github.com/amankumar-in/univance/internal/infrastructure/outbox"
	"github.com/amankumar-in/univance/internal/router"
	"github.com/amankumar-in/univance/internal/services"
	"github.com/amankumar-in/univance/repository/postgres"
	rewardUC "github.com/amankumar-in/univance/usecase/reward"
)

func main() {
	a := app.Boot(config.ServiceRewards)

	a.Outbox.Handle(outbox.KindPointsTransaction, services.DeliverPointsTransaction(a.Points))
	a.Outbox.Handle(outbox.KindNotification, services.DeliverNotification(a.Notifications))

	rewardUseCase := rewardUC.New(
		postgres.NewRewardCategoryRepository(a.Pool),
		postgres.NewRewardRepository(a.Pool),
		postgres.NewRedemptionRepository(a.Pool),
		a.Points,
		a.Downstream,
		a.Downstream,
		a.Logger,
	)

	r := router.NewRewardsRouter(apiHandler.NewRewardHandler(rewardUseCase, a.HandlerOptions()), a.RouterOptions("/api/rewards"))

	a.Run(router.Wrap(r))
}
