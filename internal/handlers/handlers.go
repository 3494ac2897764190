package handlers

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/example/makeup-recommender/internal/catalog"
	"github.com/example/makeup-recommender/internal/usecase"
)

// MaxUploadSize bounds the accepted image size in bytes.
const MaxUploadSize = 10 << 20

// multipartOverhead leaves room for form fields and part headers.
const multipartOverhead = 1 << 20

//go:embed templates/*.html
var templateFS embed.FS

var errUploadTooLarge = errors.New("image exceeds upload limit")

type uploadError struct {
	status  int
	message string
}

func (e *uploadError) Error() string { return e.message }

// RegisterRoutes wires the HTTP handlers to the Gin router. Admin routes
// are only mounted when adminMiddleware is non-nil.
func RegisterRoutes(router *gin.Engine, uc *usecase.RecommendationUseCase, adminMiddleware gin.HandlerFunc) {
	router.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", pageData{})
	})

	router.POST("/", func(c *gin.Context) {
		data, err := readUpload(c)
		if err != nil {
			status, message := uploadStatus(err)
			renderError(c, status, message)
			return
		}
		criteria, err := parseCriteria(c.PostFormArray, c.GetPostForm)
		if err != nil {
			renderError(c, http.StatusBadRequest, err.Error())
			return
		}

		outcome, err := uc.Recommend(c.Request.Context(), data, criteria)
		if err != nil {
			status, message := errorStatus(err)
			_ = c.Error(err)
			renderError(c, status, message)
			return
		}
		c.HTML(http.StatusOK, "index.html", newPageData(uc.Catalog(), outcome))
	})

	router.GET("/results/:id", func(c *gin.Context) {
		criteria, err := parseCriteria(c.QueryArray, c.GetQuery)
		if err != nil {
			renderError(c, http.StatusBadRequest, err.Error())
			return
		}
		outcome, err := uc.Refilter(c.Request.Context(), c.Param("id"), criteria)
		if err != nil {
			status, message := errorStatus(err)
			renderError(c, status, message)
			return
		}
		c.HTML(http.StatusOK, "index.html", newPageData(uc.Catalog(), outcome))
	})

	api := router.Group("/api")

	api.POST("/recommendations", func(c *gin.Context) {
		data, err := readUpload(c)
		if err != nil {
			status, message := uploadStatus(err)
			c.JSON(status, gin.H{"error": message})
			return
		}
		criteria, err := parseCriteria(c.PostFormArray, c.GetPostForm)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		outcome, err := uc.Recommend(c.Request.Context(), data, criteria)
		if err != nil {
			status, message := errorStatus(err)
			_ = c.Error(err)
			c.JSON(status, gin.H{"error": message})
			return
		}
		c.JSON(http.StatusOK, outcomeJSON(outcome))
	})

	api.GET("/results/:id", func(c *gin.Context) {
		criteria, err := parseCriteria(c.QueryArray, c.GetQuery)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		outcome, err := uc.Refilter(c.Request.Context(), c.Param("id"), criteria)
		if err != nil {
			status, message := errorStatus(err)
			c.JSON(status, gin.H{"error": message})
			return
		}
		c.JSON(http.StatusOK, outcomeJSON(outcome))
	})

	api.GET("/catalog/:category", func(c *gin.Context) {
		category, err := catalog.ParseCategory(c.Param("category"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		cat := uc.Catalog()
		c.JSON(http.StatusOK, gin.H{
			"category": category,
			"brands":   cat.Brands(category),
			"types":    cat.Types(category),
		})
	})

	if adminMiddleware == nil {
		return
	}

	admin := api.Group("/admin", adminMiddleware)

	admin.GET("/metrics", func(c *gin.Context) {
		summary, err := uc.GetMetricsSummary(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load metrics"})
			return
		}
		c.JSON(http.StatusOK, summary)
	})

	admin.GET("/results/:id", func(c *gin.Context) {
		log, err := uc.GetResult(c.Request.Context(), c.Param("id"))
		if err != nil {
			status, message := errorStatus(err)
			c.JSON(status, gin.H{"error": message})
			return
		}
		c.JSON(http.StatusOK, log)
	})
}

// readUpload must run before any form accessor so the body limit applies.
func readUpload(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize+multipartOverhead)

	file, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errUploadTooLarge
		}
		return nil, &uploadError{status: http.StatusBadRequest, message: "image file is required"}
	}
	if file.Size > MaxUploadSize {
		return nil, errUploadTooLarge
	}
	if contentType := file.Header.Get("Content-Type"); contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, &uploadError{status: http.StatusUnsupportedMediaType, message: "only image uploads are supported"}
	}

	src, err := file.Open()
	if err != nil {
		return nil, &uploadError{status: http.StatusBadRequest, message: "unable to open image"}
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, &uploadError{status: http.StatusInternalServerError, message: "failed to read image"}
	}
	return data, nil
}

func outcomeJSON(outcome *usecase.Outcome) gin.H {
	body := gin.H{
		"request_id": outcome.RequestID,
		"category":   outcome.Category,
		"signal":     outcome.Signal,
		"confidence": outcome.Confidence,
		"filters":    outcome.Criteria,
		"groups":     outcome.Groups,
		"count":      outcome.Count(),
	}
	if outcome.Count() == 0 {
		body["message"] = emptyResultMessage
	}
	return body
}
