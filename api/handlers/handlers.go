package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"newswire/models"
	"newswire/repositories"
)

// Repos bundles the repositories the handlers operate on.
type Repos struct {
	Sources       *repositories.SourceRepository
	Destinations  *repositories.DestinationRepository
	Posts         *repositories.PostRepository
	Translations  *repositories.TranslationRepository
	AdminMessages *repositories.AdminMessageRepository
	Deliveries    *repositories.DeliveryRepository
}

// SourceDTO is a source with its linked destinations resolved, as the
// publisher consumes it.
type SourceDTO struct {
	models.Source
	Destinations []models.Destination `json:"destinations"`
}

func ListSourcesHandler(r Repos) gin.HandlerFunc {
	return func(c *gin.Context) {
		sources, err := r.Sources.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		out := make([]SourceDTO, 0, len(sources))
		for _, s := range sources {
			dests, err := r.Destinations.FindByIDs(c.Request.Context(), s.DestinationIDs)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if dests == nil {
				dests = []models.Destination{}
			}
			out = append(out, SourceDTO{Source: s, Destinations: dests})
		}
		c.JSON(http.StatusOK, out)
	}
}

func CreateSourceHandler(r Repos) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Name string `json:"name" binding:"required"`
			URL  string `json:"url" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		s, err := r.Sources.Insert(c.Request.Context(), &models.Source{Name: in.Name, URL: in.URL})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "source name or url already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, s)
	}
}

func ListDestinationsHandler(r Repos) gin.HandlerFunc {
	return func(c *gin.Context) {
		dests, err := r.Destinations.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if dests == nil {
			dests = []models.Destination{}
		}
		c.JSON(http.StatusOK, dests)
	}
}

func CreateDestinationHandler(r Repos) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Name        string            `json:"name" binding:"required"`
			Platform    models.Platform   `json:"platform" binding:"required"`
			Language    string            `json:"language"`
			Credentials map[string]string `json:"credentials"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		d, err := r.Destinations.Insert(c.Request.Context(), &models.Destination{
			Name:        in.Name,
			Platform:    in.Platform,
			Language:    in.Language,
			Credentials: in.Credentials,
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "destination name already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, d)
	}
}

func LinkDestinationHandler(r Repos) gin.HandlerFunc {
	return func(c *gin.Context) {
		sourceID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source id"})
			return
		}
		destID, err := primitive.ObjectIDFromHex(c.Param("dest_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid destination id"})
			return
		}

		if err := r.Sources.LinkDestination(c.Request.Context(), sourceID, destID); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"linked": true})
	}
}

func CreatePostHandler(r Repos) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			SourceID          string   `json:"source_id" binding:"required"`
			TitleOriginal     string   `json:"title_original" binding:"required"`
			ContentOriginal   string   `json:"content_original"`
			URLOriginal       string   `json:"url_original" binding:"required"`
			ImageURLsOriginal []string `json:"image_urls_original"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sourceID, err := primitive.ObjectIDFromHex(in.SourceID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source_id"})
			return
		}

		images := in.ImageURLsOriginal
		if images == nil {
			images = []string{}
		}
		p, err := r.Posts.Insert(c.Request.Context(), &models.Post{
			SourceID:          sourceID,
			TitleOriginal:     in.TitleOriginal,
			ContentOriginal:   in.ContentOriginal,
			URLOriginal:       in.URLOriginal,
			ImageURLsOriginal: images,
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "post with this url already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func PostExistsHandler(r Repos) gin.HandlerFunc {
	return func(c *gin.Context) {
		url := c.Query("url")
		if url == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
			return
		}
		exists, err := r.Posts.ExistsByURL(c.Request.Context(), url)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"exists": exists})
	}
}

func GetPostHandler(r Repos) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
			return
		}

		p, err := r.Posts.FindByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		translations, err := r.Translations.ListByPostID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if translations == nil {
			translations = []models.PostTranslation{}
		}
		handles, err := r.AdminMessages.MapByPostID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.PostDetail{
			Post:          *p,
			Translations:  translations,
			AdminMessages: handles,
		})
	}
}

func ListPostsByStatusHandler(r Repos, status models.PostStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, err := r.Posts.ListByStatus(c.Request.Context(), status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if posts == nil {
			posts = []models.Post{}
		}
		c.JSON(http.StatusOK, posts)
	}
}

func UpsertTranslationHandler(r Repos) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
			return
		}

		var in models.TranslationUpdate
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if in.Language == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "language is required"})
			return
		}

		t, err := r.Translations.UpsertMerge(c.Request.Context(), id, in)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// TransitionHandler implements the plain status transition endpoints.
// Same-status calls succeed (idempotent), illegal transitions return 409.
func TransitionHandler(r Repos, to models.PostStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
			return
		}

		p, err := r.Posts.TransitionStatus(c.Request.Context(), id, to)
		if err != nil {
			if errors.Is(err, models.ErrInvalidTransition) {
				c.JSON(http.StatusConflict, gin.H{
					"error":  "invalid transition",
					"status": p.Status,
				})
				return
			}
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// RejectHandler rejects the post and returns the recorded admin message
// handles so the caller can broadcast the retraction.
func RejectHandler(r Repos) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
			return
		}

		p, err := r.Posts.TransitionStatus(c.Request.Context(), id, models.StatusRejected)
		if err != nil {
			if errors.Is(err, models.ErrInvalidTransition) {
				c.JSON(http.StatusConflict, gin.H{"error": "invalid transition", "status": p.Status})
				return
			}
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		handles, err := r.AdminMessages.MapByPostID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"post": p, "admin_messages": handles})
	}
}

// ProcessContentHandler moves the post to PROCESSING_CONTENT and echoes the
// requested platform subset back for the caller to enqueue.
func ProcessContentHandler(r Repos) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
			return
		}

		var in struct {
			Platforms []string `json:"platforms" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		for _, platform := range in.Platforms {
			if !models.IsContentPlatform(platform) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform: " + platform})
				return
			}
		}

		p, err := r.Posts.TransitionStatus(c.Request.Context(), id, models.StatusProcessingContent)
		if err != nil {
			if errors.Is(err, models.ErrInvalidTransition) {
				c.JSON(http.StatusConflict, gin.H{"error": "invalid transition", "status": p.Status})
				return
			}
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"post": p, "platforms": in.Platforms})
	}
}

// AdminMessageInfoHandler merges chat->message handles into the post's
// handle set. Upserts keep the operation idempotent for re-sent messages.
func AdminMessageInfoHandler(r Repos) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
			return
		}

		var in struct {
			AdminMessages map[int64]int `json:"admin_messages" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		for chatID, messageID := range in.AdminMessages {
			if err := r.AdminMessages.UpsertHandle(c.Request.Context(), id, chatID, messageID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}

		handles, err := r.AdminMessages.MapByPostID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"admin_messages": handles})
	}
}

// ClearAdminMessagesHandler drops all handles of a post once the review
// messages have been retracted.
func ClearAdminMessagesHandler(r Repos) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
			return
		}
		if err := r.AdminMessages.DeleteByPostID(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// RecordDeliveryHandler stores one per-destination publish outcome.
func RecordDeliveryHandler(r Repos) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
			return
		}

		var in struct {
			DestinationID string          `json:"destination_id" binding:"required"`
			Platform      models.Platform `json:"platform" binding:"required"`
			OK            bool            `json:"ok"`
			Error         string          `json:"error"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		destID, err := primitive.ObjectIDFromHex(in.DestinationID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid destination_id"})
			return
		}

		d := models.PostDelivery{
			PostID:        id,
			DestinationID: destID,
			Platform:      in.Platform,
			OK:            in.OK,
			Error:         in.Error,
		}
		if err := r.Deliveries.Insert(c.Request.Context(), &d); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, d)
	}
}
