package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-project-hub/internal/config"
	"go-project-hub/internal/handler"
	"go-project-hub/internal/middleware"
	"go-project-hub/internal/model"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Project  *handler.ProjectHandler
	Task     *handler.TaskHandler
	Note     *handler.NoteHandler
	Activity *handler.ActivityHandler
	Health   *handler.HealthHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(http.Dir(cfg.UploadRoot))))

	managers := authMiddleware.RequireRoles(model.RoleAdmin, model.RoleProjectAdmin)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Get("/healthcheck", h.Health.Check)

		api.Route("/users", func(users chi.Router) {
			users.Post("/register", h.Auth.Register)
			users.Get("/verify/{token}", h.Auth.VerifyEmail)
			users.Post("/resend-email-verification", h.Auth.ResendVerification)
			users.Post("/login", h.Auth.Login)
			users.Post("/refresh-token", h.Auth.RefreshToken)
			users.Post("/forgot-password", h.Auth.ForgotPassword)
			users.Post("/reset-password/{token}", h.Auth.ResetPassword)

			users.Group(func(private chi.Router) {
				private.Use(authMiddleware.RequireAuth)
				private.Post("/logout", h.Auth.Logout)
				private.Post("/change-password", h.Auth.ChangePassword)
				private.Get("/current-user", h.Auth.CurrentUser)
			})
		})

		api.Group(func(private chi.Router) {
			private.Use(authMiddleware.RequireAuth)

			private.Get("/projects", h.Project.List)
			private.Post("/projects", h.Project.Create)

			private.Route("/projects/{projectId}", func(project chi.Router) {
				project.Get("/", h.Project.Get)
				project.With(managers).Patch("/", h.Project.Update)
				project.With(managers).Delete("/", h.Project.Delete)

				project.Get("/members", h.Project.ListMembers)
				project.With(managers).Post("/members", h.Project.AddMember)
				project.With(managers).Patch("/members/{userId}", h.Project.UpdateMemberRole)
				project.With(managers).Delete("/members/{userId}", h.Project.RemoveMember)

				project.Get("/tasks", h.Task.List)
				project.With(managers).Post("/tasks", h.Task.Create)

				project.Get("/notes", h.Note.List)
				project.Post("/notes", h.Note.Create)

				project.Get("/activity", h.Activity.List)
			})

			private.Get("/tasks/{taskId}", h.Task.Get)
			private.Patch("/tasks/{taskId}", h.Task.Update)
			private.Delete("/tasks/{taskId}", h.Task.Delete)
			private.Post("/tasks/{taskId}/subtasks", h.Task.CreateSubTask)
			private.Patch("/subtasks/{subtaskId}", h.Task.UpdateSubTask)
			private.Delete("/subtasks/{subtaskId}", h.Task.DeleteSubTask)

			private.Get("/notes/{noteId}", h.Note.Get)
			private.Patch("/notes/{noteId}", h.Note.Update)
			private.Delete("/notes/{noteId}", h.Note.Delete)
		})
	})

	return r
}
