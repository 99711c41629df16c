package api

import (
	"net/http"
	"strconv"

	"clipbot/newsfeeds"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerTopicRoutes(r *gin.Engine) {
	g := r.Group("/api/topics")
	g.GET("/news", s.handleNewsPreview)
	g.GET("/feeds", handleFeedPresets)
}

// handleNewsPreview handles GET /api/topics/news?feed=g1&max=10.
// It lists feed items without extracting or consuming them.
func (s *Server) handleNewsPreview(c *gin.Context) {
	feed := c.DefaultQuery("feed", newsfeeds.DefaultFeedPreset)
	limit := queryInt(c, "max", 10)

	url := newsfeeds.ResolveFeedURL(feed)
	topics, err := newsfeeds.FetchFeed(c.Request.Context(), url, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "feed": url})
		return
	}
	c.JSON(http.StatusOK, gin.H{"feed": url, "count": len(topics), "topics": topics})
}

// handleFeedPresets handles GET /api/topics/feeds.
func handleFeedPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"default": newsfeeds.DefaultFeedPreset, "presets": newsfeeds.FeedPresets})
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v > 0 {
		return v
	}
	return def
}
