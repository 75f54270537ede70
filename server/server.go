// Package server 组装仓储、服务、控制器和中间件。
package server

import (
	"github.com/BerniceZTT/crm_pipeline/cache"
	"github.com/BerniceZTT/crm_pipeline/config"
	"github.com/BerniceZTT/crm_pipeline/controllers"
	"github.com/BerniceZTT/crm_pipeline/middleware"
	"github.com/BerniceZTT/crm_pipeline/repository"
	"github.com/BerniceZTT/crm_pipeline/repository/memstore"
	"github.com/BerniceZTT/crm_pipeline/routes"
	"github.com/BerniceZTT/crm_pipeline/service"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
)

// Stores 服务层依赖的全部仓储
type Stores struct {
	Users         service.UserRepository
	Organizations service.OrganizationRepository
	Memberships   service.MembershipRepository
	Contacts      service.ContactRepository
	Deals         service.DealRepository
	DealStats     service.DealStatsRepository
	Tasks         service.TaskRepository
	Activities    service.ActivityRepository
	OperationLogs service.OperationLogRepository
	Transactor    service.Transactor
	Status        controllers.StatusReporter
}

// MongoStores 基于MongoDB的仓储
func MongoStores(m *repository.Mongo) Stores {
	return Stores{
		Users:         m.Users,
		Organizations: m.Organizations,
		Memberships:   m.Memberships,
		Contacts:      m.Contacts,
		Deals:         m.Deals,
		DealStats:     m.Deals,
		Tasks:         m.Tasks,
		Activities:    m.Activities,
		OperationLogs: m.OperationLogs,
		Transactor:    m.Transactor,
		Status:        m,
	}
}

// MemoryStores 基于进程内存储的仓储
func MemoryStores(s *memstore.Store) Stores {
	deals := s.Deals()
	return Stores{
		Users:         s.Users(),
		Organizations: s.Organizations(),
		Memberships:   s.Memberships(),
		Contacts:      s.Contacts(),
		Deals:         deals,
		DealStats:     deals,
		Tasks:         s.Tasks(),
		Activities:    s.Activities(),
		OperationLogs: s.OperationLogs(),
		Transactor:    memstore.Transactor{},
		Status:        s,
	}
}

// Services 业务服务
type Services struct {
	Auth          *service.AuthService
	Organizations *service.OrganizationService
	Members       *service.MembershipResolver
	Contacts      *service.ContactService
	Deals         *service.DealService
	Tasks         *service.TaskService
	Activities    *service.ActivityService
	Analytics     *service.AnalyticsService
}

// NewServices 创建全部服务
func NewServices(st Stores, caches *cache.Manager, tokens *utils.TokenManager) *Services {
	activities := service.NewActivityService(st.Deals, st.Activities, st.Users)
	analytics := service.NewAnalyticsService(st.DealStats, caches)
	return &Services{
		Auth:          service.NewAuthService(st.Users, st.Organizations, st.Memberships, tokens, st.Transactor),
		Organizations: service.NewOrganizationService(st.Organizations, st.Memberships),
		Members:       service.NewMembershipResolver(st.Memberships),
		Contacts:      service.NewContactService(st.Contacts, st.Deals, st.Users),
		Deals:         service.NewDealService(st.Deals, st.Contacts, st.Users, activities, analytics, st.Transactor),
		Tasks:         service.NewTaskService(st.Tasks, st.Deals, activities, st.Transactor),
		Activities:    activities,
		Analytics:     analytics,
	}
}

// NewTokenManager 按配置创建令牌管理器
func NewTokenManager(cfg *config.Config) *utils.TokenManager {
	return utils.NewTokenManager(cfg.JWTKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
}

// New 创建Gin实例并注册中间件和路由
func New(cfg *config.Config, st Stores, svc *Services, tokens *utils.TokenManager) *gin.Engine {
	router := gin.New()

	// 应用中间件
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.OperationLoggerMiddleware(st.OperationLogs))
	router.Use(middleware.ErrorHandler())

	routes.RegisterRoutes(router, &routes.Handlers{
		Tokens:        tokens,
		Resolver:      svc.Members,
		Health:        controllers.NewHealthController(st.Status),
		Auth:          controllers.NewAuthController(svc.Auth),
		Organizations: controllers.NewOrganizationController(svc.Organizations),
		Contacts:      controllers.NewContactController(svc.Contacts),
		Deals:         controllers.NewDealController(svc.Deals),
		Tasks:         controllers.NewTaskController(svc.Tasks),
		Activities:    controllers.NewActivityController(svc.Activities),
		Analytics:     controllers.NewAnalyticsController(svc.Analytics),
	})

	return router
}
