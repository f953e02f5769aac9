package wire

import (
	"Fieldclip/internal/api"
	"Fieldclip/internal/api/config"
	"Fieldclip/internal/api/handler"
	"Fieldclip/internal/job"
	"Fieldclip/internal/pkg/cron"
	"Fieldclip/internal/pkg/database"
	"Fieldclip/internal/pkg/kafka"
	"Fieldclip/internal/pkg/redis"
	"Fieldclip/internal/pkg/registry"
	"Fieldclip/internal/repository"
	"Fieldclip/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager // 未启用互动采集时为 nil
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	txm := database.NewTxManager(db)

	clipRepo := repository.NewClipRepository(db)
	clipMetricsRepo := repository.NewClipMetricsRepository(db)
	clipReviewRepo := repository.NewClipReviewRepository(db)
	clipQueryRepo := repository.NewClipQueryRepository(db)

	reg, err := registry.New(cfg.Registry)
	if err != nil {
		return nil, err
	}

	var statsCache service.StatsCache
	if redis.Enabled() {
		statsCache = redis.NewClipStatsCache(time.Duration(cfg.Redis.StatsTTL) * time.Second)
	}

	clipService := service.NewClipService(txm, clipRepo, clipMetricsRepo, clipReviewRepo, reg, statsCache)
	catalogService := service.NewCatalogService(txm, clipQueryRepo, statsCache)

	handlers := &api.HandlersGroup{
		ClipHandler: handler.NewClipHandler(clipService, catalogService),
	}
	router := api.SetupRouter(handlers, cfg.Logstash)

	var (
		kafkaMgr *kafka.ConsumerManager
		flushJob *job.EngagementFlushJob
	)
	if cfg.Engagement.Enabled && redis.Enabled() {
		buffer := redis.NewEngagementBuffer()
		flushJob = job.NewEngagementFlushJob(clipService, buffer)
		kafkaMgr, err = kafka.NewConsumerManager(cfg, buffer)
		if err != nil {
			return nil, err
		}
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cron.NewCronManager(flushJob, cfg.Engagement.FlushSpec),
	}, nil
}
