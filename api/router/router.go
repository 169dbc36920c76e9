package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"newswire/api/handlers"
	"newswire/db"
	"newswire/models"
	"newswire/repositories"
)

func New() *gin.Engine {
	r := gin.Default()

	// Health check
	r.GET("/health", func(c *gin.Context) {
		// Try ping MongoDB
		if err := db.Database().RunCommand(context.Background(), bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	repos := handlers.Repos{
		Sources:       repositories.NewSourceRepository(db.Database()),
		Destinations:  repositories.NewDestinationRepository(db.Database()),
		Posts:         repositories.NewPostRepository(db.Database()),
		Translations:  repositories.NewTranslationRepository(db.Database()),
		AdminMessages: repositories.NewAdminMessageRepository(db.Database()),
		Deliveries:    repositories.NewDeliveryRepository(db.Database()),
	}

	r.GET("/sources", handlers.ListSourcesHandler(repos))
	r.POST("/sources", handlers.CreateSourceHandler(repos))
	r.POST("/sources/:id/destinations/:dest_id", handlers.LinkDestinationHandler(repos))
	r.GET("/destinations", handlers.ListDestinationsHandler(repos))
	r.POST("/destinations", handlers.CreateDestinationHandler(repos))

	r.POST("/posts", handlers.CreatePostHandler(repos))
	r.GET("/posts/exists", handlers.PostExistsHandler(repos))
	r.GET("/posts/pending", handlers.ListPostsByStatusHandler(repos, models.StatusPendingApproval))
	r.GET("/posts/fetched", handlers.ListPostsByStatusHandler(repos, models.StatusFetched))
	r.GET("/posts/:id", handlers.GetPostHandler(repos))

	r.POST("/posts/:id/translations", handlers.UpsertTranslationHandler(repos))
	r.POST("/posts/:id/preprocessed", handlers.TransitionHandler(repos, models.StatusPreprocessed))
	r.POST("/posts/:id/pending", handlers.TransitionHandler(repos, models.StatusPendingApproval))
	r.POST("/posts/:id/ready-for-final-approval", handlers.TransitionHandler(repos, models.StatusReadyForFinalApproval))
	r.POST("/posts/:id/approve", handlers.TransitionHandler(repos, models.StatusApproved))
	r.POST("/posts/:id/published", handlers.TransitionHandler(repos, models.StatusPublished))
	r.POST("/posts/:id/reject", handlers.RejectHandler(repos))
	r.POST("/posts/:id/process-content", handlers.ProcessContentHandler(repos))
	r.POST("/posts/:id/admin-message-info", handlers.AdminMessageInfoHandler(repos))
	r.DELETE("/posts/:id/admin-message-info", handlers.ClearAdminMessagesHandler(repos))
	r.POST("/posts/:id/deliveries", handlers.RecordDeliveryHandler(repos))

	return r
}
