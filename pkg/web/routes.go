// Package web provides API routes for the web server.
package web

import (
	"net/http"

	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/gin-gonic/gin"
)

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server) {
	api := s.Group("/api")
	{
		api.GET("/status", statusHandler)
		api.GET("/health", healthHandler)
		api.GET("/bot", botInfoHandler)

		api.GET("/guilds/:guildId/users/:userId/reprimands", userReprimandsHandler)
		api.GET("/guilds/:guildId/reprimands/:id", reprimandHandler)
		api.GET("/guilds/:guildId/triggers", triggersHandler)
	}
}

// statusHandler returns the bot and database status
func statusHandler(c *gin.Context) {
	db := database.Get()
	client := discord.Get()

	dbStatus, dbOnline := db.GetStatus()

	botOnline := false
	if client != nil {
		botOnline = client.IsReady()
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"database": gin.H{
			"status":   dbStatus,
			"isOnline": dbOnline,
		},
		"bot": gin.H{
			"isOnline": botOnline,
		},
	})
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "PancyMod Go is running",
	})
}

// botInfoHandler returns information about the bot
func botInfoHandler(c *gin.Context) {
	client := discord.Get()

	if client == nil || !client.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Bot Offline",
			"message": "El bot no está disponible en este momento.",
		})
		return
	}

	user := client.Session.State.User

	c.JSON(http.StatusOK, gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"discriminator": user.Discriminator,
		"avatar":        user.Avatar,
		"guilds":        client.GuildCount(),
		"isReady":       client.IsReady(),
	})
}

// userReprimandsHandler returns a member's full reprimand history,
// Deleted entries included.
func userReprimandsHandler(c *gin.Context) {
	svc := moderation.Get()
	if svc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Moderation Offline"})
		return
	}

	history, err := svc.Store().History(c.Request.Context(), c.Param("guildId"), c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guildId":    c.Param("guildId"),
		"userId":     c.Param("userId"),
		"count":      len(history),
		"reprimands": history,
	})
}

// reprimandHandler returns one reprimand by id
func reprimandHandler(c *gin.Context) {
	svc := moderation.Get()
	if svc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Moderation Offline"})
		return
	}

	r, err := svc.Store().GetReprimand(c.Request.Context(), c.Param("guildId"), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "La amonestación solicitada no existe.",
		})
		return
	}

	c.JSON(http.StatusOK, r)
}

// triggersHandler returns the escalation triggers configured for a guild
func triggersHandler(c *gin.Context) {
	svc := moderation.Get()
	if svc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Moderation Offline"})
		return
	}

	triggers, err := svc.Store().Triggers(c.Request.Context(), c.Param("guildId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guildId":  c.Param("guildId"),
		"count":    len(triggers),
		"triggers": triggers,
	})
}
