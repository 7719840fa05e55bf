package internal

import (
	"net/http"
	"wagerd/internal/controllers"
	"wagerd/internal/providers"
	"wagerd/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/quote", http.HandlerFunc(apiController.Quote))
	routers.Get("/slip", http.HandlerFunc(apiController.GetSlip))
	routers.Post("/slip", http.HandlerFunc(apiController.DraftCommitment))
	routers.Post("/slip/engagement", http.HandlerFunc(apiController.DraftEngagement))
	routers.Post("/slip/remove", http.HandlerFunc(apiController.RemoveDraft))
	routers.Post("/confirm", http.HandlerFunc(apiController.Confirm))
	routers.Get("/commitments", http.HandlerFunc(apiController.GetCommitments))
	routers.Get("/schedule", http.HandlerFunc(apiController.GetSchedule))
	routers.Get("/status", http.HandlerFunc(apiController.GetStatus))
	routers.Post("/session", http.HandlerFunc(apiController.RecordSession))
	routers.Post("/engagement/progress", http.HandlerFunc(apiController.RecordEngagement))
	routers.Post("/advance", http.HandlerFunc(apiController.AdvanceDay))
	routers.Post("/forfeit", http.HandlerFunc(apiController.Forfeit))
	routers.Post("/book/invalidate", http.HandlerFunc(apiController.InvalidateBook))
	routers.Get("/settled", http.HandlerFunc(apiController.GetSettled))
	return routers
}
