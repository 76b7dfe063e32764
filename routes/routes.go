package routes

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"mywall/auth"
	"mywall/compose"
	"mywall/middleware"
	"mywall/ratelim"
	"mywall/wall"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/previews/*filepath", http.Dir("static/previews"))
}

func AddAuthRoutes(router *httprouter.Router) {
	router.POST("/api/auth/register", ratelim.RateLimit(auth.Register))
	router.POST("/api/auth/login", ratelim.RateLimit(auth.Login))
	router.POST("/api/auth/google", ratelim.RateLimit(auth.GoogleSignIn))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.LogoutUser))
	router.POST("/api/auth/token/refresh", ratelim.RateLimit(auth.RefreshToken))
	router.GET("/api/auth/me", middleware.Authenticate(auth.Me))
}

func AddWallRoutes(router *httprouter.Router, h *wall.Handlers) {
	router.GET("/api/wall/posts", middleware.Authenticate(h.GetPosts))
	router.GET("/api/wall/posts/:postid", middleware.Authenticate(h.GetPost))
	router.POST("/api/wall/post", ratelim.RateLimit(middleware.Authenticate(h.CreatePost)))
	router.DELETE("/api/wall/posts/:postid", middleware.Authenticate(h.DeletePost))

	router.POST("/api/wall/rewrite", ratelim.RateLimit(middleware.Authenticate(h.RewriteCaption)))

	router.GET("/api/wall/posts/:postid/qr", middleware.Authenticate(h.ShareQR))
	router.GET("/api/wall/posts/:postid/card", middleware.Authenticate(h.PrintCard))

	// permalink target of the share QR; viewers need no session
	router.GET("/api/wall/shared/:postid", ratelim.RateLimit(middleware.OptionalAuth(h.SharedPost)))

	// upgrade requests pass through Authenticate; the handler checks the
	// token query parameter itself
	router.GET("/api/wall/updates", middleware.Authenticate(wall.HandleUpdates))
}

func AddDraftRoutes(router *httprouter.Router, h *compose.Handlers) {
	router.POST("/api/wall/drafts", ratelim.RateLimit(middleware.Authenticate(h.CreateDraft)))
	router.GET("/api/wall/drafts/:draftid", middleware.Authenticate(h.GetDraft))
	router.POST("/api/wall/drafts/:draftid/files", ratelim.RateLimit(middleware.Authenticate(h.AddFiles)))
	router.DELETE("/api/wall/drafts/:draftid/files/:index", middleware.Authenticate(h.RemoveFile))
	router.DELETE("/api/wall/drafts/:draftid", middleware.Authenticate(h.DiscardDraft))
	router.POST("/api/wall/drafts/:draftid/submit", ratelim.RateLimit(middleware.Authenticate(h.SubmitDraft)))
}
