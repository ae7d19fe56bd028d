package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ramsesyok/billiards/internal/game"
	"github.com/ramsesyok/billiards/internal/session"
)

// ListPresets describes the table and the rack layouts a shot may name.
func ListPresets(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		table := m.Table()
		radius := m.BallRadius()

		racks := make(gin.H, len(game.RackNames()))
		for _, name := range game.RackNames() {
			offsets, _ := game.RackByName(name, radius)
			if offsets == nil {
				offsets = []game.Vec2{}
			}
			racks[name] = offsets
		}

		c.JSON(http.StatusOK, gin.H{
			"table":         table,
			"ball_radius":   radius,
			"racks":         racks,
			"default_break": game.DefaultBreak(table.Width, table.Height, radius),
		})
	}
}
