package controllers

import (
	"github.com/adriannogy/TFG/middlewares"
)

func (s *Server) initializeRoutes() {

	api := s.Router.Group("/api")

	// Auth routes, rate limited harder than the rest
	authGroup := api.Group("/auth")
	authGroup.Use(middlewares.LoginRateLimitMiddleware())
	{
		authGroup.POST("/register", s.Register)
		authGroup.POST("/login", s.Login)
		authGroup.GET("/verify", s.VerifyEmail)
		authGroup.POST("/forgot-password", s.ForgotPassword)
		authGroup.POST("/reset-password", s.ResetPassword)
	}

	authenticated := api.Group("")
	authenticated.Use(middlewares.TokenAuthMiddleware(s.DB))
	{
		// Relation routes
		authenticated.POST("/relaciones/seguir/:handle", s.RequestFollow)
		authenticated.POST("/relaciones/solicitudes/aceptar/:handle", s.AcceptRequest)
		authenticated.POST("/relaciones/solicitudes/rechazar/:handle", s.RejectRequest)
		authenticated.GET("/relaciones/seguidores", s.MyFollowers)
		authenticated.GET("/relaciones/:handle/seguidores", s.FollowersOf)
		authenticated.GET("/relaciones/siguiendo", s.MyFollowing)
		authenticated.GET("/relaciones/:handle/siguiendo", s.FollowingOf)
		authenticated.GET("/relaciones/solicitudes/pendientes", s.PendingRequests)
		authenticated.DELETE("/relaciones/seguidores/:handle", s.RemoveFollower)
		authenticated.DELETE("/relaciones/dejar-de-seguir/:handle", s.Unfollow)

		// Profile routes
		authenticated.GET("/perfil/me", s.MyProfile)
		authenticated.GET("/perfil/:handle", s.ViewProfile)

		// User account routes
		authenticated.GET("/usuarios/buscar", s.SearchUsers)
		authenticated.PUT("/usuarios/username", s.UpdateUsername)
		authenticated.PUT("/usuarios/email", s.UpdateEmail)
		authenticated.PUT("/usuarios/password", s.UpdatePassword)
		authenticated.PUT("/usuarios/privacidad", s.UpdatePrivacy)
		authenticated.PUT("/usuarios/avatar", s.UpdateAvatar)
		authenticated.DELETE("/usuarios/me", s.DeactivateAccount)

		// Review and feed routes
		authenticated.GET("/valoraciones/feed", s.GetFeed)
		authenticated.POST("/valoraciones", s.CreateReview)
		authenticated.DELETE("/valoraciones/:restaurant_id", s.DeleteReview)

		// Favorite routes
		authenticated.GET("/favoritos", s.ListFavorites)
		authenticated.POST("/favoritos/:restaurant_id", s.AddFavorite)
		authenticated.DELETE("/favoritos/:restaurant_id", s.RemoveFavorite)

		// Restaurant import/sync need an authenticated caller
		authenticated.POST("/restaurantes/importar", s.ImportRestaurant)
		authenticated.POST("/restaurantes/sincronizar", s.SyncCity)
	}

	// Public catalogue routes
	api.GET("/restaurantes", s.SearchRestaurants)
	api.GET("/restaurantes/:id", s.GetRestaurant)
	api.GET("/restaurantes/:id/valoraciones", s.RestaurantReviews)
	api.GET("/restaurantes/externos/buscar", s.SearchExternalRestaurants)
}
