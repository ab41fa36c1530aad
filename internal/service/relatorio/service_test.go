package relatorio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfmachado/rebanho/internal/repository/memory"
	"github.com/lfmachado/rebanho/internal/service/rebanho"
	"github.com/lfmachado/rebanho/pkg/ids"
)

type planilhaFake struct {
	linhas [][]interface{}
	falha  error
}

func (p *planilhaFake) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if p.falha != nil {
		return p.falha
	}
	p.linhas = append(p.linhas, values)
	return nil
}

func montarRebanho(t *testing.T) *rebanho.Service {
	t.Helper()
	svc := rebanho.NewService(memory.NewAnimalRepo(), ids.NewGenerator(), nil)
	ctx := context.Background()

	entradas := []rebanho.AnimalInput{
		{Brinco: "10001", Nome: "Mimosa", Tipo: "Vaca", Sexo: "Fêmea", DataParicaoEsperada: "05/09/2026", DataSecagem: "20/10/2026"},
		{Brinco: "10002", Nome: "Estrela", Tipo: "Vaca", Sexo: "Fêmea", DataParicaoEsperada: "25/12/2026"},
		{Brinco: "10003", Nome: "Flor", Tipo: "Vaca", Sexo: "Fêmea", DataParicaoEsperada: "em breve"},
		{Brinco: "20001", Nome: "Pintado", Tipo: "Bezerro", Sexo: "Macho"},
	}
	for _, in := range entradas {
		_, err := svc.Criar(ctx, "dono-1", in)
		require.NoError(t, err)
	}
	return svc
}

func TestGerarResumoContaEApontaEventosProximos(t *testing.T) {
	svc := NewService(montarRebanho(t), nil, nil)

	ref := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	resumo, err := svc.GerarResumo(context.Background(), "dono-1", ref, 7*24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 4, resumo.Total)
	assert.Equal(t, 3, resumo.Vacas)
	assert.Equal(t, 1, resumo.Bezerros)

	require.Len(t, resumo.ParicoesProximas, 1)
	assert.Equal(t, "Mimosa", resumo.ParicoesProximas[0].Nome)
	assert.Equal(t, "05/09/2026", resumo.ParicoesProximas[0].Data)
	assert.Empty(t, resumo.SecagensProximas, "drying-off on 20/10 is outside a 7-day horizon")
}

func TestGerarResumoHorizonteMaiorCaptaSecagem(t *testing.T) {
	svc := NewService(montarRebanho(t), nil, nil)

	ref := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	resumo, err := svc.GerarResumo(context.Background(), "dono-1", ref, 60*24*time.Hour)
	require.NoError(t, err)

	require.Len(t, resumo.SecagensProximas, 1)
	assert.Equal(t, "Mimosa", resumo.SecagensProximas[0].Nome)
}

func TestGerarResumoIgnoraDatasNaoAnalisaveis(t *testing.T) {
	svc := NewService(montarRebanho(t), nil, nil)

	// A whole year: Estrela (25/12) enters, Flor ("em breve") never does.
	ref := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	resumo, err := svc.GerarResumo(context.Background(), "dono-1", ref, 365*24*time.Hour)
	require.NoError(t, err)

	nomes := make([]string, 0, len(resumo.ParicoesProximas))
	for _, e := range resumo.ParicoesProximas {
		nomes = append(nomes, e.Nome)
	}
	assert.ElementsMatch(t, []string{"Mimosa", "Estrela"}, nomes)
}

func TestGerarResumoNaoOlhaParaTras(t *testing.T) {
	svc := NewService(montarRebanho(t), nil, nil)

	ref := time.Date(2026, 12, 26, 8, 0, 0, 0, time.UTC)
	resumo, err := svc.GerarResumo(context.Background(), "dono-1", ref, 30*24*time.Hour)
	require.NoError(t, err)

	assert.Empty(t, resumo.ParicoesProximas, "dates before ref are not reminders")
}

func TestFormatarResumo(t *testing.T) {
	svc := NewService(nil, nil, nil)

	texto := svc.FormatarResumo(Resumo{
		Total: 2, Vacas: 1, Bezerros: 1,
		ParicoesProximas: []EventoProximo{{Nome: "Mimosa", Brinco: "10001", Data: "05/09/2026"}},
		SecagensProximas: []EventoProximo{},
	})

	assert.Contains(t, texto, "2 animais (1 vacas, 1 bezerros)")
	assert.Contains(t, texto, "Parições esperadas:")
	assert.Contains(t, texto, "Mimosa (brinco 10001) em 05/09/2026")
	assert.NotContains(t, texto, "Secagens")
}

func TestExportarRebanho(t *testing.T) {
	planilha := &planilhaFake{}
	svc := NewService(montarRebanho(t), planilha, nil)

	linhas, err := svc.ExportarRebanho(context.Background(), "dono-1")
	require.NoError(t, err)

	assert.Equal(t, 4, linhas)
	require.Len(t, planilha.linhas, 4)
	assert.Len(t, planilha.linhas[0], 12)
}

func TestExportarRebanhoSemPlanilhaConfigurada(t *testing.T) {
	svc := NewService(montarRebanho(t), nil, nil)

	_, err := svc.ExportarRebanho(context.Background(), "dono-1")
	assert.ErrorIs(t, err, ErrExportacaoIndisponivel)
}
