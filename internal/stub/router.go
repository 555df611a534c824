// Package stub wires together the development backend. It mirrors the
// production API surface closely enough that client code and tests cannot
// tell the two apart.
package stub

import (
	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"

	"github.com/danaam/danaam-go/internal/stub/handlers"
	"github.com/danaam/danaam-go/internal/stub/middleware"
)

// BuildRouter assembles the gin engine. Auth endpoints and registration
// submission are public; everything else sits behind JWT auth plus casbin
// enforcement.
func BuildRouter(
	ah *handlers.AuthHandlers,
	ph *handlers.ProfileHandlers,
	uh *handlers.UserHandlers,
	rh *handlers.RegistrationHandlers,
	authMW gin.HandlerFunc,
	enforcer *casbin.Enforcer,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/user/login", ah.LoginUser)
	auth.POST("/admin/login", ah.LoginAdmin)
	auth.POST("/refresh", ah.Refresh)
	auth.POST("/otp", ah.SendOTP)
	auth.POST("/otp/verify", ah.VerifyOTP)
	auth.POST("/resend-otp", ah.ResendOTP)
	auth.POST("/password-reset", ah.ResetPassword)

	r.POST("/registration-requests", rh.Submit)

	v := r.Group("/").Use(authMW, middleware.Enforce(enforcer))
	v.GET("/profile", ph.Get)
	v.PATCH("/profile", ph.Update)
	v.GET("/profile/:id", ph.GetByID)

	v.GET("/users", uh.List)
	v.PATCH("/users/:id/activate", uh.Activate)
	v.PATCH("/users/:id/deactivate", uh.Deactivate)
	v.DELETE("/users/:id", uh.Delete)

	v.GET("/registration-requests", rh.List)
	v.GET("/registration-requests/:id", rh.Get)
	v.POST("/registration-requests/:id/approve", rh.Approve)
	v.POST("/registration-requests/:id/deny", rh.Deny)

	return r
}
