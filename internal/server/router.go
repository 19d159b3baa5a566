package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	channelctrl "servicedesk/internal/channel/controller"
	orderctrl "servicedesk/internal/order/controller"
)

func NewRouter(orders *orderctrl.OrderController, channels *channelctrl.ChannelController, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orders.Create)
		r.Patch("/{orderId}/status", orders.UpdateStatus)
	})

	r.Route("/companies/{companyId}/channel", func(r chi.Router) {
		r.Post("/", channels.Setup)
		r.Post("/connect", channels.Connect)
		r.Get("/pairing-code", channels.PairingCode)
		r.Get("/status", channels.Status)
		r.Delete("/connection", channels.Disconnect)
		r.Get("/messages", channels.Messages)
	})

	return r
}
