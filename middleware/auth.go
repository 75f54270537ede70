package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrganizationHeader 指定当前组织的请求头
const OrganizationHeader = "X-Organization-Id"

// MembershipResolver 解析用户在组织中的角色
type MembershipResolver interface {
	Resolve(ctx context.Context, userID, orgID primitive.ObjectID) (models.Role, error)
}

// AuthMiddleware 认证中间件
func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		// 检查Authorization头
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.Logger.Info().Str("path", c.Request.URL.Path).Msg("缺少Authorization头或格式错误")
			utils.HandleError(c, utils.NewApiError("Not authenticated", http.StatusUnauthorized, "MISSING_TOKEN"))
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			utils.HandleError(c, utils.NewApiError("Not authenticated", http.StatusUnauthorized, "MISSING_TOKEN"))
			return
		}

		claims, err := tokens.ParseToken(token, utils.TokenTypeAccess)
		if err != nil {
			utils.Logger.Warn().Err(err).Msg("Token验证失败")
			utils.HandleError(c, utils.NewApiError("Invalid token", http.StatusUnauthorized, "INVALID_TOKEN"))
			return
		}
		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.HandleError(c, utils.NewApiError("Invalid token", http.StatusUnauthorized, "INVALID_TOKEN"))
			return
		}

		// 将用户信息存储到上下文
		c.Set(utils.ContextUserKey, &utils.LoginUser{ID: userID, Email: claims.Email})

		utils.Logger.Debug().Str("user_id", claims.UserID).Msg("验证成功")
		c.Next()
	}
}

// OrganizationMiddleware 校验当前用户是指定组织的成员，并写入组织上下文
func OrganizationMiddleware(resolver MembershipResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := utils.GetUser(c)
		if err != nil {
			utils.HandleError(c, err)
			return
		}

		raw := strings.TrimSpace(c.GetHeader(OrganizationHeader))
		if raw == "" {
			utils.HandleError(c, utils.NewValidationError(OrganizationHeader+" header is required"))
			return
		}
		// 非法ID与非成员同样处理
		orgID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			utils.HandleError(c, utils.NewAccessDeniedError("User is not a member of this organization"))
			return
		}

		role, err := resolver.Resolve(c.Request.Context(), user.ID, orgID)
		if err != nil {
			if !utils.IsKind(err, utils.KindAccessDenied) {
				utils.Logger.Error().Err(err).Str("organization_id", raw).Msg("解析组织成员关系失败")
			}
			utils.HandleError(c, err)
			return
		}

		c.Set(utils.ContextTenantKey, &utils.Tenant{
			OrganizationID: orgID,
			UserID:         user.ID,
			Role:           role,
		})
		c.Next()
	}
}
