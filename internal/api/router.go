// Package api wires all API routes onto the provided ServeMux.
package api

import (
	"net/http"

	"github.com/d9705996/hrportal/internal/api/handler"
	"github.com/d9705996/hrportal/internal/api/middleware"
	"github.com/d9705996/hrportal/internal/health"
	"github.com/d9705996/hrportal/internal/model"
)

// Handlers bundles every route handler needed by RegisterRoutes.
type Handlers struct {
	Health        *health.Handler
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Admin         *handler.AdminHandler
	Feedback      *handler.FeedbackHandler
	Channels      *handler.ChannelHandler
	Memberships   *handler.MembershipHandler
	Announcements *handler.AnnouncementHandler
	Notifications *handler.NotificationHandler
	Conversations *handler.ConversationHandler
	Birthday      *handler.BirthdayHandler
	Files         *handler.FileHandler
	Vendor        *handler.VendorHandler
}

// RegisterRoutes registers all application routes on mux. Method patterns
// handle dispatch; role guards wrap each protected group.
func RegisterRoutes(mux *http.ServeMux, h Handlers, jwtSecret string) {
	authed := middleware.RequireAuth(jwtSecret)
	hr := middleware.RequireRole(model.RoleHR)
	admin := middleware.RequireRole(model.RoleAdmin)
	superAdmin := middleware.RequireRole(model.RoleSuperAdmin)
	vendor := middleware.RequireVendor()

	protect := func(fn http.HandlerFunc, guards ...func(http.Handler) http.Handler) http.Handler {
		var next http.Handler = fn
		for i := len(guards) - 1; i >= 0; i-- {
			next = guards[i](next)
		}
		return authed(next)
	}

	// Public endpoints
	mux.HandleFunc("GET /api/health", h.Health.ServeHealth)
	mux.HandleFunc("GET /api/version", h.Health.ServeVersion)
	mux.HandleFunc("GET /api/ready", h.Health.ServeReady)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/refresh", h.Auth.Refresh)

	// Auth
	mux.Handle("GET /api/auth/me", protect(h.Auth.Me))

	// Users
	mux.Handle("GET /api/users/profile", protect(h.Users.GetProfile))
	mux.Handle("PATCH /api/users/profile", protect(h.Users.UpdateProfile))
	mux.Handle("POST /api/users/profile/password", protect(h.Users.ChangePassword))
	mux.Handle("GET /api/users", protect(h.Users.List, hr))
	mux.Handle("GET /api/users/{id}", protect(h.Users.Get, hr))
	mux.Handle("PATCH /api/users/{id}", protect(h.Users.Update, admin))

	// Admin
	mux.Handle("PATCH /api/admin/users/{id}/role", protect(h.Admin.UpdateRole, superAdmin))
	mux.Handle("PATCH /api/admin/users/{id}/status", protect(h.Admin.UpdateStatus, admin))
	mux.Handle("GET /api/admin/users", protect(h.Admin.UserMetrics, admin))
	mux.Handle("POST /api/admin/vendor-sla-sweep", protect(h.Admin.RunVendorSweep, admin))
	mux.Handle("GET /api/admin/audit-logs", protect(h.Admin.AuditLogs, admin))
	mux.Handle("GET /api/admin/feedback-stats", protect(h.Admin.FeedbackStats, hr))
	mux.Handle("POST /api/admin/feedback/{id}/forward-vendor", protect(h.Feedback.ForwardVendor, hr))
	mux.Handle("POST /api/admin/feedback/{id}/request-approval", protect(h.Feedback.RequestApproval, hr))
	mux.Handle("POST /api/superadmin/feedback/{id}/vendor-approve", protect(h.Feedback.VendorApprove, superAdmin))

	// Feedback
	mux.Handle("GET /api/feedback", protect(h.Feedback.List))
	mux.Handle("POST /api/feedback", protect(h.Feedback.Create))
	mux.Handle("GET /api/feedback/{id}", protect(h.Feedback.Get))
	mux.Handle("PATCH /api/feedback/{id}", protect(h.Feedback.Update))
	mux.Handle("PATCH /api/feedback/{id}/status", protect(h.Feedback.UpdateStatus, hr))
	mux.Handle("GET /api/feedback/{id}/comments", protect(h.Feedback.ListComments))
	mux.Handle("POST /api/feedback/{id}/comments", protect(h.Feedback.AddComment))
	mux.Handle("GET /api/feedback/{id}/timeline", protect(h.Feedback.Timeline))

	// Channels
	mux.Handle("GET /api/channels", protect(h.Channels.List))
	mux.Handle("POST /api/channels", protect(h.Channels.Create))
	mux.Handle("GET /api/channels/{id}", protect(h.Channels.Get))
	mux.Handle("PATCH /api/channels/{id}", protect(h.Channels.Update))
	mux.Handle("DELETE /api/channels/{id}", protect(h.Channels.Delete))
	mux.Handle("GET /api/channels/{id}/members", protect(h.Channels.ListMembers))

	// Memberships
	mux.Handle("POST /api/memberships/join", protect(h.Memberships.Join))
	mux.Handle("POST /api/memberships/leave", protect(h.Memberships.Leave))
	mux.Handle("GET /api/memberships/my-channels", protect(h.Memberships.MyChannels))

	// Announcements
	mux.Handle("GET /api/announcements", protect(h.Announcements.List))
	mux.Handle("POST /api/announcements", protect(h.Announcements.Create, hr))
	mux.Handle("GET /api/announcements/stats", protect(h.Announcements.Stats, hr))
	mux.Handle("GET /api/announcements/{id}", protect(h.Announcements.Get))
	mux.Handle("PATCH /api/announcements/{id}", protect(h.Announcements.Update, hr))
	mux.Handle("DELETE /api/announcements/{id}", protect(h.Announcements.Delete, admin))

	// Notifications
	mux.Handle("GET /api/notifications", protect(h.Notifications.List))
	mux.Handle("GET /api/notifications/stats", protect(h.Notifications.Stats))
	mux.Handle("PATCH /api/notifications/{id}/read", protect(h.Notifications.MarkRead))
	mux.Handle("DELETE /api/notifications/{id}", protect(h.Notifications.Delete))
	mux.Handle("POST /api/notifications/mark-all-read", protect(h.Notifications.MarkAllRead))
	mux.Handle("DELETE /api/notifications/delete-all", protect(h.Notifications.DeleteAll))

	// Direct conversations
	mux.Handle("GET /api/direct-conversations", protect(h.Conversations.List))
	mux.Handle("POST /api/direct-conversations", protect(h.Conversations.Start))
	mux.Handle("GET /api/direct-conversations/recipients", protect(h.Conversations.Recipients))
	mux.Handle("GET /api/direct-conversations/{id}/messages", protect(h.Conversations.ListMessages))
	mux.Handle("POST /api/direct-conversations/{id}/messages", protect(h.Conversations.SendMessage))
	mux.Handle("PATCH /api/direct-conversations/{id}/read-receipt", protect(h.Conversations.ReadReceipt))

	// Birthdays
	mux.Handle("GET /api/birthday/events", protect(h.Birthday.ListEvents, hr))
	mux.Handle("POST /api/birthday/events", protect(h.Birthday.UpsertEvent, hr))
	mux.Handle("GET /api/birthday/events/{id}", protect(h.Birthday.GetEvent))
	mux.Handle("GET /api/birthday/events/{id}/registrations", protect(h.Birthday.ListRegistrations, hr))
	mux.Handle("POST /api/birthday/events/{id}/rsvp", protect(h.Birthday.Rsvp))

	// Files
	mux.Handle("POST /api/files/upload", protect(h.Files.Upload))
	mux.Handle("GET /api/files/my-files", protect(h.Files.MyFiles))
	mux.Handle("GET /api/files/by-entity/{type}/{id}", protect(h.Files.ByEntity))
	mux.Handle("GET /api/files/{id}", protect(h.Files.Download))
	mux.Handle("DELETE /api/files/{id}", protect(h.Files.Delete))
	mux.Handle("POST /api/files/{id}/attach", protect(h.Files.Attach))

	// Vendor portal: equality guard, not hierarchy
	mux.Handle("GET /api/vendor/feedback", protect(h.Vendor.ListAssigned, vendor))
	mux.Handle("POST /api/vendor/feedback/{id}/reply", protect(h.Vendor.Reply, vendor))
}
