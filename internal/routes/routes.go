package routes

import (
	"github.com/labstack/echo/v4"

	"oficina-system/internal/bootstrap"
	"oficina-system/internal/controllers"
	"oficina-system/internal/integrations/trello"
)

// InitRouter регистрирует все маршруты /api.
func InitRouter(e *echo.Echo, c *bootstrap.Container) {
	logger := c.Logger
	logger.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")

	orderController := controllers.NewOrderController(c.OrderService, logger)
	mechanicController := controllers.NewMechanicController(c.MechanicService, logger)
	syncController := controllers.NewSyncController(c.Scheduler, c.SyncService, logger)
	dashboardController := controllers.NewDashboardController(c.DashboardService, logger)
	patioController := controllers.NewPatioController(c.PatioService, logger)

	runOrderRouter(api, orderController)
	runMechanicRouter(api, mechanicController)
	runSyncRouter(api, syncController)

	api.GET("/dashboard/stats", dashboardController.GetStats)

	patio := api.Group("/patio")
	{
		patio.GET("/cards", patioController.GetCards)
		patio.GET("/cards/:id", patioController.FindCard)
	}

	trello.RegisterWebhookRoutes(api, c.Scheduler, c.Config.Trello.WebhookSecret, logger)

	logger.Info("INIT_ROUTER: Создание маршрутов завершено")
}

func runOrderRouter(api *echo.Group, ctrl *controllers.OrderController) {
	orders := api.Group("/orders")
	{
		orders.GET("", ctrl.GetOrders)
		orders.POST("", ctrl.CreateOrder)
		orders.GET("/:id", ctrl.FindOrder)
		orders.PATCH("/:id", ctrl.UpdateOrder)
		orders.PATCH("/:id/status", ctrl.UpdateStatus)
		orders.PUT("/:id/checklists/:kind", ctrl.UpdateChecklist)
		orders.PATCH("/:id/mechanic", ctrl.AssignMechanic)

		orders.POST("/:id/items/parts", ctrl.AddPart)
		orders.POST("/:id/items/labor", ctrl.AddLabor)
		orders.PATCH("/:id/items/:itemId/status", ctrl.UpdateItemStatus)
		orders.DELETE("/:id/items/:itemId", ctrl.DeleteItem)
	}
}

func runMechanicRouter(api *echo.Group, ctrl *controllers.MechanicController) {
	api.GET("/mechanics", ctrl.GetMechanics)
	api.POST("/mechanics", ctrl.CreateMechanic)
}

func runSyncRouter(api *echo.Group, ctrl *controllers.SyncController) {
	api.POST("/sync/trello", ctrl.HandleSyncTrello)

	cards := api.Group("/trello/cards")
	{
		cards.POST("/:cardId/move", ctrl.MoveCard)
		cards.POST("/:cardId/ready", ctrl.MoveToReady)
	}
}
