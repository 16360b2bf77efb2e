package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/adriannogy/TFG/cache"
	"github.com/adriannogy/TFG/mailer"
	"github.com/adriannogy/TFG/middlewares"
	"github.com/adriannogy/TFG/models"
	"github.com/adriannogy/TFG/osm"
	"github.com/adriannogy/TFG/services"
	"github.com/adriannogy/TFG/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	DB     *gorm.DB
	Router *gin.Engine

	Users       *services.UserService
	Relations   *services.RelationService
	Profiles    *services.ProfileService
	Feed        *services.FeedService
	Restaurants *services.RestaurantService
	Reviews     *services.ReviewService
	Favorites   *services.FavoriteService

	Uploader storage.Uploader
}

// ===============================
// SERVER INITIALIZATION
// ===============================
func (server *Server) Initialize(DbUser, DbPassword, DbPort, DbHost, DbName string) {
	var dsn string

	if strings.EqualFold(os.Getenv("APP_ENV"), "production") {
		dsn = os.Getenv("DATABASE_URL")
		if dsn != "" && !strings.Contains(dsn, "sslmode=") {
			if strings.Contains(dsn, "?") {
				dsn += "&sslmode=require"
			} else {
				dsn += "?sslmode=require"
			}
		}
	} else {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			DbHost, DbUser, DbPassword, DbName, DbPort,
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Cannot connect to Postgres: %v", err)
	}
	server.DB = db

	// Auto Migrations
	if err := server.DB.AutoMigrate(
		&models.User{},
		&models.Relation{},
		&models.Restaurant{},
		&models.Review{},
		&models.Photo{},
		&models.Favorite{},
	); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}
	if err := ensureRelationConstraints(server.DB); err != nil {
		log.Printf("warning: relation constraints not ensured: %v", err)
	}

	// Redis init (safe failure)
	if err := cache.InitFromEnv(); err != nil {
		log.Printf("warning: could not connect to redis: %v", err)
	}

	uploader, err := storage.NewS3FromEnv(context.Background())
	if err != nil {
		log.Printf("warning: could not configure S3 uploads: %v", err)
	}
	if uploader != nil {
		server.Uploader = uploader
	}

	server.WireServices()

	server.Router = gin.Default()
	server.Router.Use(middlewares.CORSMiddleware())
	server.Router.Use(middlewares.RateLimitMiddleware())
	server.initializeRoutes()
}

// WireServices builds the service layer over the configured DB. Split out so
// tests can run the full stack against an in-memory database.
func (server *Server) WireServices() {
	server.Users = services.NewUserService(server.DB, mailer.NewFromEnv())
	server.Relations = services.NewRelationService(server.DB)
	server.Profiles = services.NewProfileService(server.DB)
	server.Feed = services.NewFeedService(server.DB)
	server.Restaurants = services.NewRestaurantService(server.DB, osm.NewClient())
	server.Reviews = services.NewReviewService(server.DB, server.Restaurants)
	server.Favorites = services.NewFavoriteService(server.DB)
}

func (server *Server) Run(addr string) {
	log.Fatal(http.ListenAndServe(addr, server.Router))
}

// ensureRelationConstraints adds the self-follow CHECK, which GORM's
// AutoMigrate cannot express. Postgres only.
func ensureRelationConstraints(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	var count int64
	if err := db.Raw(
		"SELECT COUNT(1) FROM pg_constraint WHERE conname = ?",
		"relations_no_self_follow",
	).Scan(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := db.Exec(
			"ALTER TABLE relations ADD CONSTRAINT relations_no_self_follow CHECK (follower_id <> followed_id)",
		).Error; err != nil {
			return err
		}
	}
	return nil
}
