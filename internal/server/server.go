// Package server exposes the retrieval strategies over HTTP.
package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"pdfqa/internal/domain"
	"pdfqa/internal/port"
	"pdfqa/internal/usecase"
)

// Server wires the ingestion pipeline and retrieval engine to HTTP
// routes. One route group per strategy, plus store management.
type Server struct {
	engine   *usecase.Engine
	ingestor *usecase.Ingestor
	store    port.ChunkStore

	defaultTopK       int
	defaultNumQueries int
}

// Options configures a Server.
type Options struct {
	DefaultTopK       int
	DefaultNumQueries int
}

// New creates a Server.
func New(engine *usecase.Engine, ingestor *usecase.Ingestor, store port.ChunkStore, opts Options) *Server {
	return &Server{
		engine:            engine,
		ingestor:          ingestor,
		store:             store,
		defaultTopK:       opts.DefaultTopK,
		defaultNumQueries: opts.DefaultNumQueries,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router(cors bool) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cors {
		router.Use(corsMiddleware())
	}

	router.GET("/", s.health)

	for _, strategy := range []domain.Strategy{
		domain.StrategySimple,
		domain.StrategySelfQuery,
		domain.StrategyFusion,
	} {
		group := router.Group("/" + string(strategy))
		group.POST("/upload", s.uploadHandler(strategy))
		group.POST("/query", s.queryHandler(strategy))
	}

	qdrant := router.Group("/qdrant")
	{
		qdrant.GET("/collections", s.listCollections)
		qdrant.DELETE("/collections/:name", s.deleteCollection)
		qdrant.DELETE("/clear-all", s.clearAll)
	}

	return router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// uploadHandler accepts a multipart PDF, stores it in a temp file, and
// ingests it under the strategy's collection prefix. The collection is
// named after the uploaded file's original name, not the temp path.
func (s *Server) uploadHandler(strategy domain.Strategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "missing file field"})
			return
		}

		tmp, err := os.CreateTemp("", "upload-*.pdf")
		if err != nil {
			writeError(c, fmt.Errorf("create temp file: %w", err))
			return
		}
		tmpPath := tmp.Name()
		tmp.Close()
		defer os.Remove(tmpPath)

		if err := c.SaveUploadedFile(file, tmpPath); err != nil {
			writeError(c, fmt.Errorf("save upload: %w", err))
			return
		}

		res, err := s.ingestor.IngestFile(tmpPath, filepath.Base(file.Filename), strategy)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":    fmt.Sprintf("Uploaded %s", file.Filename),
			"collection": res.Collection,
			"pages":      res.Pages,
			"chunks":     res.Chunks,
		})
	}
}

// queryRequest is the body shared by all three query routes; fields not
// used by a strategy are ignored.
type queryRequest struct {
	Collection   string `json:"collection" binding:"required"`
	Question     string `json:"question" binding:"required"`
	TopK         int    `json:"top_k"`
	NumQueries   int    `json:"num_queries"`
	Topic        string `json:"topic"`
	SectionTitle string `json:"section_title"`
}

func (s *Server) queryHandler(strategy domain.Strategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req queryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}

		if req.TopK <= 0 {
			req.TopK = s.defaultTopK
		}
		if req.NumQueries <= 0 {
			req.NumQueries = s.defaultNumQueries
		}

		// Clients send the bare document name; the prefix is implied by
		// the route.
		collection := strategy.Prefix() + req.Collection

		var (
			res *domain.AnswerResult
			err error
		)
		switch strategy {
		case domain.StrategySelfQuery:
			filter := domain.Filter{Topic: req.Topic, SectionTitle: req.SectionTitle}
			res, err = s.engine.SelfQuery(collection, req.Question, req.TopK, filter)
		case domain.StrategyFusion:
			res, err = s.engine.Fusion(collection, req.Question, req.NumQueries, req.TopK)
		default:
			res, err = s.engine.Simple(collection, req.Question, req.TopK)
		}
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, res)
	}
}

func (s *Server) listCollections(c *gin.Context) {
	names, err := s.store.ListCollections()
	if err != nil {
		writeError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"collections": names})
}

func (s *Server) deleteCollection(c *gin.Context) {
	name := c.Param("name")
	if err := s.store.DeleteCollection(name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Deleted collection %s", name)})
}

// clearAll wipes every collection. Destructive, so it demands explicit
// confirmation.
func (s *Server) clearAll(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "pass confirm=true to delete all collections"})
		return
	}
	if err := s.store.DeleteAll(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All collections deleted"})
}

// writeError maps a domain error to an HTTP response. The body carries
// the error kind so clients can distinguish provider failures from
// store failures.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch domain.ErrorKind(err) {
	case "collection_not_found":
		status = http.StatusNotFound
	case "invalid_collection":
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"detail": fmt.Sprintf("%s: %s", domain.ErrorKind(err), err.Error())})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
