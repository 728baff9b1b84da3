// internal/httpapi/router.go
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"shelfdb/internal/facade"
)

// defaultHistoryLimit is used when a /history request omits `limit` (spec.md
// §6: the `limit` query parameter).
const defaultHistoryLimit = 50

// NewRouter builds the gin.Engine exposing the five routes of spec.md §6,
// with CORS restricted to allowedOrigins (SPEC_FULL §6.1/§6.3).
func NewRouter(f *facade.Facade, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = allowedOrigins
	corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	r.Use(cors.New(corsCfg))

	v1 := r.Group("/api/v1")
	v1.POST("/execute", handleExecute(f))
	v1.GET("/history", handleHistory(f))
	v1.POST("/reset", handleReset(f))
	v1.GET("/tables", handleTables(f))
	r.GET("/health", handleHealth)

	return r
}

type executeRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

// handleExecute serves POST /api/v1/execute (spec.md §6). Status 200 covers
// any well-formed engine outcome, including SQL errors reported in the
// body's `error` field; 400 is reserved for a malformed request body.
func handleExecute(f *facade.Facade) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req executeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
			return
		}
		result, session, err := f.Execute(req.Query, req.SessionID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("X-Session-Id", session)
		c.JSON(http.StatusOK, result)
	}
}

// handleHistory serves GET /api/v1/history (spec.md §6).
func handleHistory(f *facade.Facade) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Query("session_id")
		limit := defaultHistoryLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
				return
			}
			limit = n
		}

		entries, total := f.History(sessionID, limit)
		c.JSON(http.StatusOK, gin.H{
			"session_id": sessionID,
			"queries":    entries,
			"total":      total,
		})
	}
}

// handleReset serves POST /api/v1/reset (spec.md §6).
func handleReset(f *facade.Facade) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := f.Reset(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

type tableColumnView struct {
	Name       string        `json:"name"`
	Type       string        `json:"type"`
	Flags      tableFlagView `json:"flags"`
	References *tableFKView  `json:"references,omitempty"`
}

type tableFlagView struct {
	PrimaryKey bool `json:"primary_key"`
	NotNull    bool `json:"not_null"`
	Unique     bool `json:"unique"`
}

type tableFKView struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

type tableView struct {
	Name    string            `json:"name"`
	Columns []tableColumnView `json:"columns"`
}

// handleTables serves GET /api/v1/tables (spec.md §6).
func handleTables(f *facade.Facade) gin.HandlerFunc {
	return func(c *gin.Context) {
		tables, err := f.Tables()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		views := make([]tableView, 0, len(tables))
		for _, tbl := range tables {
			tv := tableView{Name: tbl.Name}
			for _, col := range tbl.Columns {
				cv := tableColumnView{
					Name: col.Name,
					Type: col.Type.String(),
					Flags: tableFlagView{
						PrimaryKey: col.PrimaryKey,
						NotNull:    col.EffectiveNotNull(),
						Unique:     col.EffectiveUnique(),
					},
				}
				if col.References != nil {
					cv.References = &tableFKView{Table: col.References.Table, Column: col.References.Column}
				}
				tv.Columns = append(tv.Columns, cv)
			}
			views = append(views, tv)
		}
		c.JSON(http.StatusOK, gin.H{"tables": views})
	}
}

// handleHealth serves GET /health (spec.md §6).
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
