package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker/internal/auth"
	"github.com/yukikurage/issue-tracker/internal/constants"
	"github.com/yukikurage/issue-tracker/internal/middleware"
	"github.com/yukikurage/issue-tracker/internal/repository"
	"github.com/yukikurage/issue-tracker/internal/services"
	"github.com/yukikurage/issue-tracker/internal/storage"
	"github.com/yukikurage/issue-tracker/internal/views"
	"gorm.io/gorm"
)

// Dependencies is what the router needs from the outside world.
type Dependencies struct {
	DB           *gorm.DB
	SessionStore sessions.Store
	Attachments  *storage.AttachmentStore
	Passwords    *auth.PasswordService
	Log          *slog.Logger

	// Now and Sleep default to time.Now and time.Sleep.
	Now   func() time.Time
	Sleep func(time.Duration)
}

// NewRouter wires repositories, services and handlers into a gin engine.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	tmpl, err := views.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	// Initialize repositories
	personRepo := repository.NewPersonRepository(deps.DB)
	issueRepo := repository.NewIssueRepository(deps.DB)
	commentRepo := repository.NewCommentRepository(deps.DB)

	// Initialize services
	authService := services.NewAuthService(personRepo, deps.Passwords, deps.Log)
	authService.SetClock(deps.Now)
	if deps.Sleep != nil {
		authService.SetSleep(deps.Sleep)
	}
	personService := services.NewPersonService(personRepo, deps.Passwords, deps.Log)
	issueService := services.NewIssueService(issueRepo, personRepo, deps.Attachments, deps.Log)
	commentService := services.NewCommentService(commentRepo, issueRepo, personRepo, deps.Log)
	commentService.SetClock(deps.Now)

	// Initialize handlers
	authHandler := NewAuthHandler(authService, deps.Log, deps.Now)
	issueHandler := NewIssueHandler(issueService, commentService, personService, deps.Log, deps.Now)
	commentHandler := NewCommentHandler(commentService, issueService, personService, deps.Log)
	personHandler := NewPersonHandler(personService, deps.Log)
	apiHandler := NewAPIHandler(commentService, deps.DB, deps.Log)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.MaxMultipartMemory = constants.MaxRequestBodySize
	r.Use(middleware.RequestLogger(deps.Log), gin.Recovery())
	r.Use(sessions.Sessions(constants.SessionCookieName, deps.SessionStore))

	// Health check endpoint
	r.GET("/health", apiHandler.Health)

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, constants.IssuesPath)
	})

	// Login routes (public)
	r.GET(constants.LoginPath, authHandler.ShowLogin)
	r.POST(constants.LoginPath, authHandler.Login)

	// HTML routes (protected)
	app := r.Group("")
	app.Use(
		middleware.RequireAuth(personRepo, deps.Log, deps.Now),
		middleware.LimitBody(constants.MaxRequestBodySize),
		middleware.VerifyCSRF(),
	)
	{
		app.POST("/logout", authHandler.Logout)

		issues := app.Group(constants.IssuesPath)
		{
			issues.GET("", issueHandler.ListIssues)
			issues.GET("/new", issueHandler.NewIssue)
			issues.POST("", issueHandler.CreateIssue)
			issues.GET("/:id", issueHandler.ShowIssue)
			issues.GET("/:id/edit", issueHandler.EditIssue)
			issues.POST("/:id", issueHandler.UpdateIssue)
			issues.POST("/:id/delete", issueHandler.DeleteIssue)
			issues.GET("/:id/attachment", issueHandler.DownloadAttachment)
		}

		comments := app.Group(commentsPath)
		{
			comments.GET("", commentHandler.ListComments)
			comments.GET("/new", commentHandler.NewComment)
			comments.POST("", commentHandler.CreateComment)
			comments.GET("/:id/edit", commentHandler.EditComment)
			comments.POST("/:id", commentHandler.UpdateComment)
			comments.POST("/:id/delete", commentHandler.DeleteComment)
		}

		persons := app.Group(personsPath)
		{
			persons.GET("", personHandler.ListPersons)
			persons.GET("/new", personHandler.NewPerson)
			persons.POST("", personHandler.CreatePerson)
			persons.GET("/:id/edit", personHandler.EditPerson)
			persons.POST("/:id", personHandler.UpdatePerson)
			persons.POST("/:id/delete", personHandler.DeletePerson)
		}
	}

	// API routes (protected)
	api := r.Group("/api")
	api.Use(middleware.RequireAPIAuth(personRepo, deps.Log, deps.Now))
	{
		api.GET("/issues/:id/comments", apiHandler.IssueComments)
	}

	return r, nil
}
