package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fitcentre/internal/handlers"
	"github.com/charlesng35/fitcentre/internal/middleware"
	"github.com/charlesng35/fitcentre/internal/permissions"
)

type adminRouteDeps struct {
	Resolver *permissions.Resolver
	Profile  *handlers.ProfileHandler
	Roles    *handlers.RoleHandler
	Accounts *handlers.AccountHandler
	Ads      *handlers.AdvertisementHandler
	Security *handlers.SecurityHandler
}

func registerAdminRoutes(admin *gin.RouterGroup, deps adminRouteDeps) {
	require := func(keys ...string) gin.HandlerFunc {
		return middleware.RequirePermissions(deps.Resolver, keys...)
	}

	admin.GET("/profile", deps.Profile.Get)
	admin.PATCH("/profile", deps.Profile.Update)

	admin.GET("/permissions", require(permissions.RolesList), deps.Roles.ListPermissions)

	roles := admin.Group("/roles")
	{
		roles.GET("", require(permissions.RolesList), deps.Roles.List)
		roles.GET("/names", require(permissions.RolesList), deps.Roles.Names)
		roles.POST("", require(permissions.RolesCreate), deps.Roles.Create)
		roles.GET("/:id", require(permissions.RolesView), deps.Roles.Get)
		roles.PATCH("/:id", require(permissions.RolesEdit), deps.Roles.Update)
		roles.DELETE("/:id", require(permissions.RolesDelete), deps.Roles.Delete)
	}

	accounts := admin.Group("/accounts")
	{
		accounts.GET("", require(permissions.UsersList), deps.Accounts.List)
		accounts.POST("", require(permissions.UsersCreate), deps.Accounts.Create)
		accounts.PUT("/:id/role", require(permissions.UsersEdit), deps.Accounts.AssignRole)
	}

	ads := admin.Group("/ads")
	{
		ads.GET("", require(permissions.AdsList), deps.Ads.List)
		ads.POST("", require(permissions.AdsCreate), deps.Ads.Create)
		ads.GET("/:id", require(permissions.AdsView), deps.Ads.Get)
		ads.PATCH("/:id", require(permissions.AdsEdit), deps.Ads.Update)
		ads.DELETE("/:id", require(permissions.AdsDelete), deps.Ads.Delete)
	}

	admin.GET("/security/audit", require(permissions.RolesEdit, permissions.UsersEdit), deps.Security.Audit)
}
