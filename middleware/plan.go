package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gate-access-backend/models"
	"gate-access-backend/utils"
)

var planRank = map[string]int{
	models.PlanFree:    0,
	models.PlanBasic:   1,
	models.PlanPremium: 2,
}

// RequirePlan gates a route behind a minimum subscription tier. Admins and
// guards are exempt, their access is granted by the owning host's account.
func RequirePlan(minPlan string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			utils.JSONError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		if user.Role == models.RoleAdmin || user.Role == models.RoleGuard {
			c.Next()
			return
		}
		if planRank[user.Plan] < planRank[minPlan] {
			c.JSON(http.StatusPaymentRequired, gin.H{
				"ok":            false,
				"error":         "plan upgrade required",
				"required_plan": minPlan,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
