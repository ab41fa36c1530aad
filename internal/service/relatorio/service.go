package relatorio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lfmachado/rebanho/internal/domain/models"
	"github.com/lfmachado/rebanho/internal/repository/sheets"
	"github.com/lfmachado/rebanho/internal/service/rebanho"
)

const (
	// Dates travel as pt-BR formatted strings, exactly as the forms collect
	// them.
	dataLayout = "02/01/2006"

	exportRange = "Rebanho!A:L"
)

// ErrExportacaoIndisponivel is returned when the spreadsheet export was not
// configured for this deployment.
var ErrExportacaoIndisponivel = errors.New("exportação de planilha não configurada")

// Service produces herd summaries (reminders included) and the optional
// spreadsheet export.
type Service struct {
	rebanhoSvc *rebanho.Service
	planilha   sheets.Repository
	logger     *zap.Logger
}

// NewService wires a new reporting service. planilha may be nil when the
// export feature is disabled.
func NewService(rebanhoSvc *rebanho.Service, planilha sheets.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{rebanhoSvc: rebanhoSvc, planilha: planilha, logger: logger}
}

// EventoProximo is a calving or drying-off date falling inside the reminder
// horizon.
type EventoProximo struct {
	AnimalID string `json:"animalId"`
	Brinco   string `json:"brinco"`
	Nome     string `json:"nome"`
	Data     string `json:"data"`
}

// Resumo aggregates the owner's herd for the reminder notification and the
// report endpoint.
type Resumo struct {
	Total            int             `json:"total"`
	Vacas            int             `json:"vacas"`
	Bezerros         int             `json:"bezerros"`
	ParicoesProximas []EventoProximo `json:"paricoesProximas"`
	SecagensProximas []EventoProximo `json:"secagensProximas"`
}

// GerarResumo builds the herd summary for one owner. Upcoming events are the
// Vaca calving/drying dates between ref and ref+horizonte. Dates that do not
// parse as pt-BR are skipped, matching how leniently the forms collect them.
func (s *Service) GerarResumo(ctx context.Context, donoID string, ref time.Time, horizonte time.Duration) (Resumo, error) {
	animais, err := s.rebanhoSvc.Listar(ctx, donoID)
	if err != nil {
		return Resumo{}, err
	}

	limite := ref.Add(horizonte)
	resumo := Resumo{
		Total:            len(animais),
		ParicoesProximas: []EventoProximo{},
		SecagensProximas: []EventoProximo{},
	}

	for _, a := range animais {
		switch a.Tipo {
		case models.TipoVaca:
			resumo.Vacas++
		case models.TipoBezerro:
			resumo.Bezerros++
		}

		if a.Vaca == nil {
			continue
		}

		if s.dentroDoHorizonte(a.Vaca.DataParicaoEsperada, ref, limite) {
			resumo.ParicoesProximas = append(resumo.ParicoesProximas, EventoProximo{
				AnimalID: a.ID, Brinco: a.Brinco, Nome: a.Nome, Data: a.Vaca.DataParicaoEsperada,
			})
		}
		if s.dentroDoHorizonte(a.Vaca.DataSecagem, ref, limite) {
			resumo.SecagensProximas = append(resumo.SecagensProximas, EventoProximo{
				AnimalID: a.ID, Brinco: a.Brinco, Nome: a.Nome, Data: a.Vaca.DataSecagem,
			})
		}
	}

	return resumo, nil
}

func (s *Service) dentroDoHorizonte(data string, ref, limite time.Time) bool {
	data = strings.TrimSpace(data)
	if data == "" {
		return false
	}

	quando, err := time.Parse(dataLayout, data)
	if err != nil {
		s.logger.Debug("skip unparseable date", zap.String("value", data), zap.Error(err))
		return false
	}

	return !quando.Before(ref.Truncate(24*time.Hour)) && !quando.After(limite)
}

// FormatarResumo renders the summary as the reminder message body.
func (s *Service) FormatarResumo(r Resumo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Seu rebanho: %d animais (%d vacas, %d bezerros).", r.Total, r.Vacas, r.Bezerros)

	if len(r.ParicoesProximas) > 0 {
		b.WriteString("\nParições esperadas:")
		for _, e := range r.ParicoesProximas {
			fmt.Fprintf(&b, "\n- %s (brinco %s) em %s", e.Nome, e.Brinco, e.Data)
		}
	}
	if len(r.SecagensProximas) > 0 {
		b.WriteString("\nSecagens programadas:")
		for _, e := range r.SecagensProximas {
			fmt.Fprintf(&b, "\n- %s (brinco %s) em %s", e.Nome, e.Brinco, e.Data)
		}
	}

	return b.String()
}

// ExportarRebanho appends one spreadsheet row per animal of the owner and
// returns how many rows were written. Fails fast when the export is not
// configured.
func (s *Service) ExportarRebanho(ctx context.Context, donoID string) (int, error) {
	if s.planilha == nil {
		return 0, ErrExportacaoIndisponivel
	}

	animais, err := s.rebanhoSvc.Listar(ctx, donoID)
	if err != nil {
		return 0, err
	}

	for i, a := range animais {
		row := []interface{}{
			a.ID, a.Brinco, a.Nome, string(a.Tipo), string(a.Sexo), a.Raca, a.DataNascimento,
			detalheVariante(a),
			len(a.Vacinas), len(a.Vermifugacao), len(a.HistoricoDoencas), len(a.PesosMensais),
		}
		if err := s.planilha.WriteRow(ctx, exportRange, row); err != nil {
			return i, &models.ErroPersistencia{Op: "exportar rebanho", Err: err}
		}
	}

	s.logger.Info("rebanho exportado", zap.Int("animais", len(animais)))
	return len(animais), nil
}

func detalheVariante(a models.Animal) string {
	switch {
	case a.Vaca != nil:
		return fmt.Sprintf("partos=%d touro=%s", a.Vaca.NumPartos, a.Vaca.Touro)
	case a.Bezerro != nil:
		return fmt.Sprintf("pesoNascimento=%s desmame=%s", a.Bezerro.PesoNascimento, a.Bezerro.DataDesmame)
	default:
		return ""
	}
}
