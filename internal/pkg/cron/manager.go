package cron

import (
	"Fieldclip/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine             *cron.Cron
	engagementFlushJob *job.EngagementFlushJob
	engagementSpec     string
}

// NewCronManager engagementFlushJob 为 nil 时不注册刷盘任务
func NewCronManager(engagementFlushJob *job.EngagementFlushJob, engagementSpec string) *Manager {
	return &Manager{
		engine:             cron.New(cron.WithSeconds()),
		engagementFlushJob: engagementFlushJob,
		engagementSpec:     engagementSpec,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if s.engagementFlushJob == nil {
		return nil
	}
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(s.engagementFlushJob)
	if _, err := s.engine.AddJob(s.engagementSpec, wrapped); err != nil {
		return err
	}
	return nil
}

// Entries 已注册的任务数量
func (s *Manager) Entries() int {
	return len(s.engine.Entries())
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
