package sanitation

import (
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"vapor/api/models"
	"vapor/api/services"
)

type (
	SanitationService struct {
		Initialized       bool
		Config            *models.Config
		AnnotationService *services.AnnotationService
		Logger            *zap.Logger
	}
)

func NewSanitationService(cfg *models.Config, annotationService *services.AnnotationService, logger *zap.Logger) *SanitationService {
	ss := &SanitationService{
		Initialized:       false,
		Config:            cfg,
		AnnotationService: annotationService,
		Logger:            logger.Named("sanitation"),
	}

	ss.Init()

	return ss
}

func (ss *SanitationService) Init() {
	// safeguard to prevent multiple initializations
	if ss.Initialized {
		return
	}

	// - spin up a go routine that periodically clears out run
	//   requests nobody is coming back for ; the run registry
	//   lives in memory, so finished runs would otherwise pile
	//   up for the life of the process
	go func() {
		// setup cron job
		s := gocron.NewScheduler(time.UTC)

		s.Every(1).Hours().Do(func() {
			retention := time.Duration(ss.Config.Sanitation.RunRetentionHours) * time.Hour

			pruned := ss.AnnotationService.PruneTerminalRuns(retention)
			if pruned > 0 {
				ss.Logger.Info("pruned finished annotation runs",
					zap.Int("pruned", pruned),
					zap.Duration("retention", retention))
			}
		})

		// starts the scheduler in blocking mode, which blocks
		// the current execution path
		s.StartBlocking()
	}()

	ss.Initialized = true
	ss.Logger.Info("sanitation service initialized")
}
