package persistence

import (
	"sync"
	"time"
	"wagerd/internal/persistence/interfaces"
	"wagerd/internal/providers"
	"wagerd/internal/structures"

	"github.com/go-co-op/gocron"
)

type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	fileManager *FileManager
	metrics     providers.MetricsProviderInterface
	cron        *gocron.Scheduler
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gocron.NewScheduler(time.UTC)
	s.cron.SingletonModeAll()

	interval := s.config.Persistence.SaveInterval
	_, err := s.cron.Every(interval).WaitForSchedule().Do(func() {
		if err := s.save(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
			return
		}
		s.logger.Infof(providers.TypeApp, "Persisted data to file %s", s.config.Persistence.FilePath)
	})
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Unable to schedule persistence every %s: %s", interval, err)
		return
	}

	s.cron.StartAsync()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Close stops the cron and releases the compressor. The scheduler cannot
// persist afterwards.
func (s *Scheduler) Close() {
	s.Stop()
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	s.fileManager.Close()
}

func (s *Scheduler) Restore() error {
	return s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
}

func (s *Scheduler) Persist() error {
	s.logger.Infof(providers.TypeApp, "Persisting tracker state to file...")
	err := s.save()
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	return nil
}

func (s *Scheduler) save() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return err
}

func NewScheduler(config *structures.Config, logger providers.Logger, fileManager *FileManager, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		fileManager: fileManager,
		metrics:     metrics,
	}
}
