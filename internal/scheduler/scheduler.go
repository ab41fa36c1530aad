package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/lfmachado/rebanho/internal/config"
	"github.com/lfmachado/rebanho/internal/service/auth"
	"github.com/lfmachado/rebanho/internal/service/relatorio"
	"github.com/lfmachado/rebanho/pkg/clients/notify"
)

// Scheduler runs the daily herd reminder: per account, a summary of the herd
// and the calving/drying dates falling inside the configured horizon, pushed
// through the notification webhook.
type Scheduler struct {
	cron         *cron.Cron
	authSvc      *auth.Service
	relatorioSvc *relatorio.Service
	notifier     notify.Client
	cfg          config.LembretesConfig
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.LembretesConfig, authSvc *auth.Service, relatorioSvc *relatorio.Service, notifier notify.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, falling back to local", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.Local
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		authSvc:      authSvc,
		relatorioSvc: relatorioSvc,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the reminder job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.enviarLembretes); err != nil {
		s.logger.Error("failed to schedule reminders", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) enviarLembretes() {
	if s.notifier == nil {
		s.logger.Debug("notifier disabled, skipping reminders")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	contas, err := s.authSvc.ListarContas(ctx)
	if err != nil {
		s.logger.Error("failed listing accounts for reminders", zap.Error(err))
		return
	}

	horizonte := time.Duration(s.cfg.HorizonteDias) * 24 * time.Hour

	for _, conta := range contas {
		resumo, err := s.relatorioSvc.GerarResumo(ctx, conta.ID, time.Now(), horizonte)
		if err != nil {
			s.logger.Error("failed building herd summary", zap.String("conta_id", conta.ID), zap.Error(err))
			continue
		}

		// Only herds with something coming up get a message.
		if len(resumo.ParicoesProximas) == 0 && len(resumo.SecagensProximas) == 0 {
			continue
		}

		msg := notify.Mensagem{
			Destinatario: conta.Email,
			Assunto:      "Lembretes do rebanho",
			Corpo:        s.relatorioSvc.FormatarResumo(resumo),
		}
		if err := s.notifier.Enviar(ctx, msg); err != nil {
			s.logger.Error("failed sending reminder", zap.String("conta_id", conta.ID), zap.Error(err))
			continue
		}

		s.logger.Info("reminder sent", zap.String("conta_id", conta.ID))
	}
}
