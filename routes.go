package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"research-api/models"
	"research-api/serializer"
	"research-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// Views pro Aufrufstelle, einmalig beim Start kompiliert.
var (
	researchListView   = models.Schema.MustCompile(models.KindResearch, "-researchauthors")
	researchDetailView = models.Schema.MustCompile(models.KindResearch, "-researchauthors", "authors", "-authors.researchauthors")
	authorListView     = models.Schema.MustCompile(models.KindAuthor, "-researchauthors")
	authorDetailView   = models.Schema.MustCompile(models.KindAuthor, "-researchauthors", "research", "-research.researchauthors")
)

func init() {
	// Unbekannte Felder in Request-Bodies werden abgelehnt statt ignoriert.
	binding.EnableDecoderDisallowUnknownFields = true
}

func setupResearchRoutes(router *gin.Engine, store *storage.Store, log *zap.Logger) {
	rg := router.Group("/research")

	rg.GET("", func(c *gin.Context) {
		papers, err := store.ListResearch(c.Request.Context())
		if err != nil {
			log.Error("Database query for all research failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, serializer.RenderList(researchListView, papers))
	})

	rg.POST("", func(c *gin.Context) {
		var req struct {
			Topic     *string         `json:"topic"`
			Year      json.RawMessage `json:"year"`
			PageCount *int            `json:"pageCount"`
		}
		if !bindBody(c, &req) {
			return
		}
		year, err := models.ParseYear(req.Year)
		if err != nil {
			unprocessable(c, err)
			return
		}
		paper, err := models.NewResearch(req.Topic, year, req.PageCount)
		if err != nil {
			unprocessable(c, err)
			return
		}
		if err := store.CreateResearch(c.Request.Context(), paper); err != nil {
			log.Error("Failed to create research", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create research"})
			return
		}
		entitiesCreatedCounter.WithLabelValues("research").Inc()
		log.Info("Research created", zap.Uint("id", paper.ID), zap.Int("year", paper.Year))
		c.JSON(http.StatusCreated, researchListView.Render(paper))
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			notFound(c, "Research paper not found")
			return
		}
		paper, err := store.GetResearch(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				notFound(c, "Research paper not found")
				return
			}
			log.Error("DB error fetching research", zap.Uint("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, researchDetailView.Render(paper))
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			notFound(c, "Research paper not found")
			return
		}
		if err := store.DeleteResearch(c.Request.Context(), id); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				notFound(c, "Research paper not found")
				return
			}
			log.Error("DB error deleting research", zap.Uint("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete research"})
			return
		}
		entitiesDeletedCounter.WithLabelValues("research").Inc()
		c.Status(http.StatusNoContent)
	})
}

func setupAuthorRoutes(router *gin.Engine, store *storage.Store, log *zap.Logger) {
	rg := router.Group("/authors")

	rg.GET("", func(c *gin.Context) {
		authors, err := store.ListAuthors(c.Request.Context())
		if err != nil {
			log.Error("Database query for all authors failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, serializer.RenderList(authorListView, authors))
	})

	rg.POST("", func(c *gin.Context) {
		var req struct {
			Name         *string `json:"name"`
			FieldOfStudy string  `json:"fieldOfStudy"`
		}
		if !bindBody(c, &req) {
			return
		}
		author, err := models.NewAuthor(req.Name, req.FieldOfStudy)
		if err != nil {
			unprocessable(c, err)
			return
		}
		if err := store.CreateAuthor(c.Request.Context(), author); err != nil {
			log.Error("Failed to create author", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create author"})
			return
		}
		entitiesCreatedCounter.WithLabelValues("author").Inc()
		log.Info("Author created", zap.Uint("id", author.ID), zap.String("field_of_study", string(author.FieldOfStudy)))
		c.JSON(http.StatusCreated, authorListView.Render(author))
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			notFound(c, "Author not found")
			return
		}
		author, err := store.GetAuthor(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				notFound(c, "Author not found")
				return
			}
			log.Error("DB error fetching author", zap.Uint("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, authorDetailView.Render(author))
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			notFound(c, "Author not found")
			return
		}
		if err := store.DeleteAuthor(c.Request.Context(), id); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				notFound(c, "Author not found")
				return
			}
			log.Error("DB error deleting author", zap.Uint("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete author"})
			return
		}
		entitiesDeletedCounter.WithLabelValues("author").Inc()
		c.Status(http.StatusNoContent)
	})
}

func setupResearchAuthorRoutes(router *gin.Engine, store *storage.Store, log *zap.Logger) {
	router.POST("/research_author", func(c *gin.Context) {
		var req struct {
			AuthorID   uint `json:"authorId"`
			ResearchID uint `json:"researchId"`
		}
		if !bindBody(c, &req) {
			return
		}
		link, err := models.NewResearchAuthor(req.AuthorID, req.ResearchID)
		if err != nil {
			unprocessable(c, err)
			return
		}
		if err := store.CreateResearchAuthor(c.Request.Context(), link); err != nil {
			if models.IsValidation(err) {
				log.Warn("Rejected research author link", zap.Uint("author_id", req.AuthorID), zap.Uint("research_id", req.ResearchID), zap.Error(err))
				unprocessable(c, err)
				return
			}
			log.Error("Failed to create research author link", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create research author"})
			return
		}
		entitiesCreatedCounter.WithLabelValues("researchauthor").Inc()
		// Antwort ist der verknüpfte Autor, nicht die Zwischenzeile.
		c.JSON(http.StatusCreated, authorListView.Render(link.Author))
	})
}

// bindBody liest den JSON-Body. Kaputtes JSON ergibt 400, falsche Typen oder
// unbekannte Felder 422. Decoder-Meldungen gehen nie an den Client, sie nennen
// interne Go-Typen. Bei false ist die Antwort bereits geschrieben.
func bindBody(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{invalidBody}})
		return false
	}
	msg := invalidBody
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		msg = typeErr.Field + ": invalid value"
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []string{msg}})
	return false
}

const invalidBody = "invalid request body"

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func notFound(c *gin.Context, description string) {
	c.JSON(http.StatusNotFound, gin.H{"description": description})
}

func unprocessable(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []string{err.Error()}})
}
