package handler

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/http/middleware"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/notify"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
)

const (
	loginAttempts = 10
	loginWindow   = time.Minute
)

// Services groups everything the routes call into.
type Services struct {
	Auth          service.AuthService
	Tenants       service.TenantService
	Users         service.UserService
	Roles         service.RoleService
	Wathq         service.WathqService
	CallLogs      service.CallLogService
	Notifications service.NotificationService
	Reports       service.ReportService

	CommercialRegistrations service.RecordService[model.CommercialRegistration]
	RealEstateDeeds         service.RecordService[model.RealEstateDeed]
	PowersOfAttorney        service.RecordService[model.PowerOfAttorney]
	Employees               service.RecordService[model.Employee]
	NationalAddresses       service.RecordService[model.NationalAddress]
	Contracts               service.RecordService[model.Contract]
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services, hub *notify.Hub, log zerolog.Logger) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	authn := middleware.Auth(svc.Auth, false)
	loginLimit := middleware.LoginRateLimit(loginAttempts, loginWindow)

	api := app.Group("/api/v1")

	a := api.Group("/auth")
	a.Post("/login", loginLimit, Login(svc.Auth))
	a.Post("/login/verify", loginLimit, VerifyMFA(svc.Auth))
	a.Post("/refresh", Refresh(svc.Auth))
	a.Post("/logout", authn, Logout(svc.Auth))
	a.Get("/me", authn, Me(svc.Auth))
	a.Post("/password", authn, ChangePassword(svc.Auth))
	a.Post("/totp/setup", authn, SetupTOTP(svc.Auth))
	a.Post("/totp/enable", authn, EnableTOTP(svc.Auth))
	a.Post("/totp/disable", authn, DisableTOTP(svc.Auth))

	mgmt := api.Group("/management")
	mgmt.Post("/login", loginLimit, ManagementLogin(svc.Auth))
	tenants := mgmt.Group("/tenants", authn, middleware.RequireManagement())
	tenants.Get("/", ListTenants(svc.Tenants))
	tenants.Post("/", CreateTenant(svc.Tenants))
	tenants.Get("/:id", GetTenant(svc.Tenants))
	tenants.Put("/:id", UpdateTenant(svc.Tenants))
	tenants.Post("/:id/deactivate", DeactivateTenant(svc.Tenants))

	tenantUser := middleware.RequireTenantUser()
	// Groups get distinct prefixes so their middleware never runs for
	// unrelated paths under /api/v1.
	scoped := func(prefix string, handlers ...fiber.Handler) fiber.Router {
		return api.Group(prefix, append([]fiber.Handler{authn, tenantUser}, handlers...)...)
	}

	users := scoped("/users", middleware.RequirePermission(model.PermUsersManage))
	users.Get("/", ListUsers(svc.Users))
	users.Post("/", CreateUser(svc.Users))
	users.Get("/:id", GetUser(svc.Users))
	users.Put("/:id", UpdateUser(svc.Users))
	users.Delete("/:id", DeleteUser(svc.Users))

	scoped("/permissions").Get("/", ListPermissions(svc.Roles))
	roles := scoped("/roles", middleware.RequirePermission(model.PermRolesManage))
	roles.Get("/", ListRoles(svc.Roles))
	roles.Post("/", CreateRole(svc.Roles))
	roles.Get("/:id", GetRole(svc.Roles))
	roles.Put("/:id", UpdateRole(svc.Roles))
	roles.Delete("/:id", DeleteRole(svc.Roles))
	roles.Put("/:id/permissions", SetRolePermissions(svc.Roles))

	mountRecords(scoped("/commercial-registrations"), model.PermCommercialRegistrationsRead, model.PermCommercialRegistrationsWrite, svc.CommercialRegistrations)
	mountRecords(scoped("/real-estate-deeds"), model.PermRealEstateDeedsRead, model.PermRealEstateDeedsWrite, svc.RealEstateDeeds)
	mountRecords(scoped("/powers-of-attorney"), model.PermPowersOfAttorneyRead, model.PermPowersOfAttorneyWrite, svc.PowersOfAttorney)
	mountRecords(scoped("/employees"), model.PermEmployeesRead, model.PermEmployeesWrite, svc.Employees)
	mountRecords(scoped("/national-addresses"), model.PermNationalAddressesRead, model.PermNationalAddressesWrite, svc.NationalAddresses)
	mountRecords(scoped("/contracts"), model.PermContractsRead, model.PermContractsWrite, svc.Contracts)

	wq := scoped("/wathq")
	wq.Delete("/cache", middleware.RequirePermission(model.PermWathqCacheManage), InvalidateWathqCache(svc.Wathq))
	wq.Get("/:service", middleware.RequirePermission(model.PermWathqQuery), WathqLookup(svc.Wathq))

	logs := scoped("/call-logs", middleware.RequirePermission(model.PermCallLogsRead))
	logs.Get("/", ListCallLogs(svc.CallLogs))
	logs.Get("/:id", GetCallLog(svc.CallLogs))

	n := scoped("/notifications")
	n.Get("/", ListNotifications(svc.Notifications))
	n.Post("/", middleware.RequirePermission(model.PermUsersManage), SendNotification(svc.Users, svc.Notifications))
	n.Get("/unread-count", UnreadNotificationCount(svc.Notifications))
	n.Post("/read-all", MarkAllNotificationsRead(svc.Notifications))
	n.Post("/:id/read", MarkNotificationRead(svc.Notifications))

	reports := scoped("/reports")
	reports.Get("/", middleware.RequirePermission(model.PermReportsRead), ListReports(svc.Reports))
	reports.Post("/", middleware.RequirePermission(model.PermReportsCreate), CreateReport(svc.Reports))
	reports.Get("/:id", middleware.RequirePermission(model.PermReportsRead), GetReport(svc.Reports))
	reports.Get("/:id/download", middleware.RequirePermission(model.PermReportsRead), DownloadReport(svc.Reports))
	reports.Delete("/:id", middleware.RequirePermission(model.PermReportsDelete), DeleteReport(svc.Reports))

	app.Get("/ws/notifications",
		middleware.Auth(svc.Auth, true),
		middleware.RequireTenantUser(),
		NotificationsUpgrade(),
		NotificationsSocket(hub, log),
	)
}
