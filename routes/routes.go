package routes

import (
	"database/sql"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/slateboard/slateboard-api/handlers"
	"github.com/slateboard/slateboard-api/services"
	"github.com/slateboard/slateboard-api/store"
)

// Deps bundles the shared services so each Setup function wires its
// handlers against the same instances.
type Deps struct {
	DB          *sql.DB
	Store       store.DocumentStore
	WS          *handlers.WSHandler
	Projects    *services.ProjectService
	Schedules   *services.ScheduleService
	Budgets     *services.BudgetService
	Scenes      *services.SceneService
	Storyboards *services.StoryboardService
	Scripts     *services.ScriptService
	ShotLists   *services.ShotListService
	Locations   *services.LocationService
	Exports     *services.ExportService
	Email       *services.EmailService
}

// NewDeps builds the full service graph from the database handle.
func NewDeps(db *sql.DB) *Deps {
	docs := store.NewPostgresStore(db)
	email := services.NewEmailService(
		os.Getenv("RESEND_API_KEY"),
		os.Getenv("FROM_EMAIL"),
		os.Getenv("FRONTEND_URL"),
	)

	return &Deps{
		DB:          db,
		Store:       docs,
		WS:          handlers.NewWSHandler(),
		Projects:    services.NewProjectService(db),
		Schedules:   services.NewScheduleService(docs),
		Budgets:     services.NewBudgetService(docs),
		Scenes:      services.NewSceneService(docs),
		Storyboards: services.NewStoryboardService(docs, services.NewImageGenService()),
		Scripts:     services.NewScriptService(docs),
		ShotLists:   services.NewShotListService(docs),
		Locations:   services.NewLocationService(docs, services.NewGeocodeService()),
		Exports:     services.NewExportService(os.Getenv("GOTENBERG_URL")),
		Email:       email,
	}
}

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, d *Deps) {
	h := &handlers.AuthHandler{DB: d.DB, Email: d.Email}

	rg.POST("/auth/signup", h.Signup)
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/refresh", h.Refresh)
	rg.POST("/auth/logout", h.Logout)
	rg.GET("/auth/verify", h.VerifyEmail)
}

// SetupUserRoutes sets up protected user routes.
func SetupUserRoutes(rg *gin.RouterGroup, d *Deps) {
	h := &handlers.UserHandler{DB: d.DB}

	rg.GET("/user/profile", h.GetProfile)
	rg.PUT("/user/profile", h.UpdateProfile)
	rg.POST("/user/password", h.ChangePassword)
	rg.POST("/user/2fa/setup", h.SetupTOTP)
	rg.POST("/user/2fa/verify", h.VerifyTOTP)
	rg.POST("/user/2fa/disable", h.DisableTOTP)
	rg.DELETE("/user/account", h.DeleteAccount)
}

// SetupProjectRoutes sets up project CRUD and membership routes.
func SetupProjectRoutes(rg *gin.RouterGroup, d *Deps) {
	projectHandler := &handlers.ProjectHandler{DB: d.DB, Projects: d.Projects}
	invitationHandler := &handlers.InvitationHandler{DB: d.DB, Projects: d.Projects, Email: d.Email}

	rg.GET("/projects", projectHandler.ListProjects)
	rg.POST("/projects", projectHandler.CreateProject)
	rg.GET("/projects/:id", projectHandler.GetProject)
	rg.PUT("/projects/:id", projectHandler.UpdateProject)
	rg.DELETE("/projects/:id", projectHandler.DeleteProject)

	rg.GET("/projects/:id/members", invitationHandler.GetMembers)
	rg.DELETE("/projects/:id/members/:member_id", invitationHandler.RemoveMember)
	rg.POST("/projects/:id/invite", invitationHandler.InviteMember)
	rg.GET("/projects/:id/invitations", invitationHandler.GetInvitations)
	rg.DELETE("/projects/:id/invitations/:invitation_id", invitationHandler.CancelInvitation)
	rg.POST("/invitations/accept", invitationHandler.AcceptInvitation)
}

// SetupScheduleRoutes sets up shooting schedule routes, including the
// standalone conflict probe.
func SetupScheduleRoutes(rg *gin.RouterGroup, d *Deps) {
	h := &handlers.ScheduleHandler{DB: d.DB, Projects: d.Projects, Schedules: d.Schedules, WS: d.WS}

	rg.GET("/projects/:id/schedules", h.ListSchedules)
	rg.POST("/projects/:id/schedules", h.CreateSchedule)
	rg.GET("/projects/:id/schedules/conflicts", h.CheckConflicts)
	rg.GET("/projects/:id/schedules/:schedule_id", h.GetSchedule)
	rg.PUT("/projects/:id/schedules/:schedule_id", h.UpdateSchedule)
	rg.DELETE("/projects/:id/schedules/:schedule_id", h.DeleteSchedule)
}

// SetupBudgetRoutes sets up the budget ledger routes.
func SetupBudgetRoutes(rg *gin.RouterGroup, d *Deps) {
	h := &handlers.BudgetHandler{DB: d.DB, Projects: d.Projects, Budgets: d.Budgets, WS: d.WS}

	rg.GET("/projects/:id/budget", h.GetBudget)
	rg.PUT("/projects/:id/budget/categories", h.UpdateCategories)
	rg.PUT("/projects/:id/budget/total", h.UpdateTotalBudget)
	rg.PUT("/projects/:id/budget/settings", h.UpdateSettings)
	rg.POST("/projects/:id/budget/expenses", h.CreateExpense)
	rg.POST("/projects/:id/budget/expenses/:expense_id/approve", h.ApproveExpense)
	rg.POST("/projects/:id/budget/expenses/:expense_id/pay", h.PayExpense)
	rg.DELETE("/projects/:id/budget/expenses/:expense_id", h.DeleteExpense)
}

// SetupContentRoutes sets up scene, storyboard, script, shot list and
// location routes.
func SetupContentRoutes(rg *gin.RouterGroup, d *Deps) {
	scenes := &handlers.SceneHandler{DB: d.DB, Projects: d.Projects, Scenes: d.Scenes, WS: d.WS}
	storyboards := &handlers.StoryboardHandler{DB: d.DB, Projects: d.Projects, Storyboards: d.Storyboards, WS: d.WS}
	scripts := &handlers.ScriptHandler{DB: d.DB, Projects: d.Projects, Scripts: d.Scripts, WS: d.WS}
	shotlists := &handlers.ShotListHandler{DB: d.DB, Projects: d.Projects, Lists: d.ShotLists, WS: d.WS}
	locations := &handlers.LocationHandler{DB: d.DB, Projects: d.Projects, Locations: d.Locations, WS: d.WS}

	rg.GET("/projects/:id/scenes", scenes.ListScenes)
	rg.POST("/projects/:id/scenes", scenes.CreateScene)
	rg.PUT("/projects/:id/scenes/reorder", scenes.ReorderScenes)
	rg.GET("/projects/:id/scenes/:scene_id", scenes.GetScene)
	rg.PUT("/projects/:id/scenes/:scene_id", scenes.UpdateScene)
	rg.DELETE("/projects/:id/scenes/:scene_id", scenes.DeleteScene)

	rg.GET("/projects/:id/storyboards", storyboards.ListFrames)
	rg.POST("/projects/:id/storyboards", storyboards.CreateFrame)
	rg.PUT("/projects/:id/storyboards/:frame_id", storyboards.UpdateFrame)
	rg.POST("/projects/:id/storyboards/:frame_id/generate", storyboards.GenerateFrame)
	rg.DELETE("/projects/:id/storyboards/:frame_id", storyboards.DeleteFrame)

	rg.GET("/projects/:id/scripts", scripts.ListScripts)
	rg.POST("/projects/:id/scripts", scripts.CreateScript)
	rg.GET("/projects/:id/scripts/:script_id", scripts.GetScript)
	rg.PUT("/projects/:id/scripts/:script_id", scripts.UpdateScript)
	rg.DELETE("/projects/:id/scripts/:script_id", scripts.DeleteScript)

	rg.GET("/projects/:id/shotlists", shotlists.ListShotLists)
	rg.POST("/projects/:id/shotlists", shotlists.CreateShotList)
	rg.GET("/projects/:id/shotlists/:list_id", shotlists.GetShotList)
	rg.PUT("/projects/:id/shotlists/:list_id", shotlists.UpdateShotList)
	rg.POST("/projects/:id/shotlists/:list_id/shots/:shot_number/toggle", shotlists.ToggleShot)
	rg.DELETE("/projects/:id/shotlists/:list_id", shotlists.DeleteShotList)

	rg.GET("/projects/:id/locations", locations.ListLocations)
	rg.POST("/projects/:id/locations", locations.CreateLocation)
	rg.GET("/projects/:id/locations/:location_id", locations.GetLocation)
	rg.PUT("/projects/:id/locations/:location_id", locations.UpdateLocation)
	rg.POST("/projects/:id/locations/:location_id/geocode", locations.GeocodeLocation)
	rg.DELETE("/projects/:id/locations/:location_id", locations.DeleteLocation)
}

// SetupExportRoutes sets up report download routes.
func SetupExportRoutes(rg *gin.RouterGroup, d *Deps) {
	h := &handlers.ExportHandler{
		DB:        d.DB,
		Projects:  d.Projects,
		Schedules: d.Schedules,
		Budgets:   d.Budgets,
		Exports:   d.Exports,
	}

	rg.GET("/projects/:id/export/schedule.csv", h.ExportScheduleCSV)
	rg.GET("/projects/:id/export/budget.pdf", h.ExportBudgetPDF)
}
