package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// setupAPIRoutes wires the /api surface
func (s *RESTServer) setupAPIRoutes(r chi.Router) {
	r.Get("/health", s.handleHealth)

	// Public auth endpoints
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Get("/oauth/url", s.handleOAuthURL)
		r.Post("/oauth/exchange", s.handleOAuthExchange)
		r.Get("/oauth/mock-callback", s.handleMockCallback)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/revoke", s.handleRevoke)
	})

	// Payment provider webhook, authenticated by signature instead of JWT
	r.Post("/payment/webhook", s.handlePaymentWebhook)

	// Authenticated, tenant-independent
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/plans", s.handleListPlans)
		r.Get("/plans/by-name/{name}", s.handleGetPlanByName)
		r.Get("/plans/{id}", s.handleGetPlan)
	})

	// Authenticated, tenant-scoped
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Use(s.tenantMiddleware)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", s.handleListEmployees)
			r.Post("/", s.handleCreateEmployee)
			r.Get("/{id}", s.handleGetEmployee)
			r.Put("/{id}", s.handleUpdateEmployee)
			r.Delete("/{id}", s.handleDeactivateEmployee)
		})

		r.Route("/equipmenttype", func(r chi.Router) {
			r.Get("/", s.handleListEquipmentTypes)
			r.Post("/", s.handleCreateEquipmentType)
			r.Get("/{id}", s.handleGetEquipmentType)
			r.Put("/{id}", s.handleUpdateEquipmentType)
			r.Delete("/{id}", s.handleDeleteEquipmentType)
		})

		r.Route("/payment", func(r chi.Router) {
			r.Get("/subscription", s.handleGetSubscription)
			r.Post("/subscription", s.handleCreateSubscription)
			r.Put("/subscription", s.handleUpdateSubscription)
			r.Delete("/subscription", s.handleCancelSubscription)
			r.Post("/setup-intent", s.handleCreateSetupIntent)
		})

		r.Route("/quickbooks", func(r chi.Router) {
			r.Get("/accounts", s.handleListQBAccounts)
			r.Get("/customers", s.handleListQBCustomers)
			r.Get("/items", s.handleListQBItems)
			r.Get("/invoices", s.handleListQBInvoices)
			r.Get("/payments", s.handleListQBPayments)
			r.Get("/summary", s.handleQBSummary)
			r.Get("/connection", s.handleGetQBConnection)
		})
	})
}

// handleHealth reports liveness
func (s *RESTServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "brewery-server",
	})
}
