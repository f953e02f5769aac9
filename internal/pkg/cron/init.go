package cron

import log "log/slog"

// InitCron 注册并启动定时任务，没有任务时不启动引擎
func InitCron(mgr *Manager) error {
	if err := mgr.RegisterJobs(); err != nil {
		return err
	}
	if mgr.Entries() == 0 {
		log.Info("Cron Jobs skipped, nothing registered")
		return nil
	}
	log.Info("Cron Jobs starting...", "entries", mgr.Entries())
	mgr.Start()
	return nil
}
