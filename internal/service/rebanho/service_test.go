package rebanho

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfmachado/rebanho/internal/domain/models"
	"github.com/lfmachado/rebanho/internal/repository/memory"
	"github.com/lfmachado/rebanho/pkg/ids"
)

func novoServico(t *testing.T) (*Service, *memory.AnimalRepo) {
	t.Helper()
	repo := memory.NewAnimalRepo()
	return NewService(repo, ids.NewGenerator(), nil), repo
}

func entradaVaca() AnimalInput {
	return AnimalInput{
		Brinco:              "12345",
		Nome:                "Mimosa",
		Tipo:                "Vaca",
		Sexo:                "Fêmea",
		Raca:                "Girolando",
		DataNascimento:      "10/03/2021",
		DataParicaoEsperada: "15/09/2026",
		NumPartos:           "2",
	}
}

func TestCriarInicializaLogsVaziosECreatedAt(t *testing.T) {
	svc, _ := novoServico(t)

	animal, err := svc.Criar(context.Background(), "dono-1", entradaVaca())
	require.NoError(t, err)

	assert.NotEmpty(t, animal.ID)
	assert.Equal(t, "12345", animal.Brinco)
	assert.Equal(t, models.TipoVaca, animal.Tipo)
	require.NotNil(t, animal.Vaca)
	assert.Nil(t, animal.Bezerro)
	assert.Equal(t, 2, animal.Vaca.NumPartos)

	assert.Empty(t, animal.Vacinas)
	assert.Empty(t, animal.Vermifugacao)
	assert.Empty(t, animal.HistoricoDoencas)
	assert.Empty(t, animal.PesosMensais)
	assert.WithinDuration(t, time.Now(), animal.CreatedAt, time.Minute)
}

func TestCriarVacaSemNumPartos(t *testing.T) {
	svc, _ := novoServico(t)

	animal, err := svc.Criar(context.Background(), "dono-1", AnimalInput{
		Brinco: "00123",
		Nome:   "Mimosa",
		Tipo:   "Vaca",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TipoVaca, animal.Tipo)
	require.NotNil(t, animal.Vaca)
	assert.Equal(t, 0, animal.Vaca.NumPartos)
	assert.Empty(t, animal.Vacinas)
	assert.Empty(t, animal.Vermifugacao)
	assert.Empty(t, animal.HistoricoDoencas)
	assert.Empty(t, animal.PesosMensais)
}

func TestCriarRejeitaCamposObrigatorios(t *testing.T) {
	svc, _ := novoServico(t)
	ctx := context.Background()

	casos := map[string]AnimalInput{
		"sem brinco": func() AnimalInput { in := entradaVaca(); in.Brinco = "  "; return in }(),
		"sem nome":   func() AnimalInput { in := entradaVaca(); in.Nome = ""; return in }(),
	}

	for nome, in := range casos {
		t.Run(nome, func(t *testing.T) {
			_, err := svc.Criar(ctx, "dono-1", in)

			var validacao *models.ErroValidacao
			require.ErrorAs(t, err, &validacao)

			animais, err := svc.Listar(ctx, "dono-1")
			require.NoError(t, err)
			assert.Empty(t, animais, "nothing may be written on validation failure")
		})
	}
}

func TestCriarRejeitaBrincoForaDoFormato(t *testing.T) {
	svc, _ := novoServico(t)

	for _, brinco := range []string{"123", "123456", "12a45", "1234 "} {
		in := entradaVaca()
		in.Brinco = brinco

		_, err := svc.Criar(context.Background(), "dono-1", in)

		var validacao *models.ErroValidacao
		require.ErrorAs(t, err, &validacao, "brinco %q", brinco)
		assert.Equal(t, "brinco", validacao.Campo)
	}
}

func TestCriarRejeitaTipoESexoInvalidos(t *testing.T) {
	svc, _ := novoServico(t)
	ctx := context.Background()

	in := entradaVaca()
	in.Tipo = "Touro"
	_, err := svc.Criar(ctx, "dono-1", in)
	var validacao *models.ErroValidacao
	require.ErrorAs(t, err, &validacao)
	assert.Equal(t, "tipo", validacao.Campo)

	in = entradaVaca()
	in.Sexo = "F"
	_, err = svc.Criar(ctx, "dono-1", in)
	require.ErrorAs(t, err, &validacao)
	assert.Equal(t, "sexo", validacao.Campo)
}

func TestCriarExigeAutenticacao(t *testing.T) {
	svc, _ := novoServico(t)

	_, err := svc.Criar(context.Background(), "", entradaVaca())
	assert.ErrorIs(t, err, models.ErrNaoAutenticado)
}

func TestCoagirNumPartos(t *testing.T) {
	casos := map[string]int{
		"3":    3,
		"0":    0,
		"":     0,
		"abc":  0,
		"-2":   0,
		" 4 ":  4,
		"2.5":  0,
		"dois": 0,
	}

	for texto, esperado := range casos {
		assert.Equal(t, esperado, coagirNumPartos(texto), "entrada %q", texto)
	}
}

func TestAtualizarTrocaDeTipoLimpaVarianteAnterior(t *testing.T) {
	svc, _ := novoServico(t)
	ctx := context.Background()

	animal, err := svc.Criar(ctx, "dono-1", entradaVaca())
	require.NoError(t, err)
	require.NotNil(t, animal.Vaca)

	in := entradaVaca()
	in.Tipo = "Bezerro"
	in.PesoNascimento = "38,5"

	atualizado, err := svc.Atualizar(ctx, "dono-1", animal.ID, in)
	require.NoError(t, err)

	assert.Equal(t, models.TipoBezerro, atualizado.Tipo)
	require.NotNil(t, atualizado.Bezerro)
	assert.Equal(t, "38,5", atualizado.Bezerro.PesoNascimento)
	assert.Nil(t, atualizado.Vaca, "stale cow data must not survive a type switch")
	assert.Equal(t, animal.CreatedAt, atualizado.CreatedAt)
}

func TestAtualizarPreservaLogsDeEventos(t *testing.T) {
	svc, _ := novoServico(t)
	ctx := context.Background()

	animal, err := svc.Criar(ctx, "dono-1", entradaVaca())
	require.NoError(t, err)

	_, err = svc.RegistrarEvento(ctx, "dono-1", animal.ID, &models.Vacina{Nome: "Febre Aftosa", Data: "01/05/2026"})
	require.NoError(t, err)

	in := entradaVaca()
	in.Nome = "Estrela"
	atualizado, err := svc.Atualizar(ctx, "dono-1", animal.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "Estrela", atualizado.Nome)
	assert.Len(t, atualizado.Vacinas, 1)
}

func TestAtualizarAnimalInexistente(t *testing.T) {
	svc, _ := novoServico(t)

	_, err := svc.Atualizar(context.Background(), "dono-1", "nao-existe", entradaVaca())
	assert.ErrorIs(t, err, models.ErrAnimalNaoEncontrado)
}

func TestRegistrarEventoAnexaEmOrdemComIDsDistintos(t *testing.T) {
	svc, _ := novoServico(t)
	ctx := context.Background()

	animal, err := svc.Criar(ctx, "dono-1", entradaVaca())
	require.NoError(t, err)

	primeiro, err := svc.RegistrarEvento(ctx, "dono-1", animal.ID, &models.Vacina{Nome: "Brucelose", Data: "02/01/2026"})
	require.NoError(t, err)
	segundo, err := svc.RegistrarEvento(ctx, "dono-1", animal.ID, &models.Vacina{Nome: "Raiva", Data: "03/01/2026"})
	require.NoError(t, err)

	assert.NotEmpty(t, primeiro.EventoID())
	assert.NotEqual(t, primeiro.EventoID(), segundo.EventoID())

	depois, err := svc.Buscar(ctx, "dono-1", animal.ID)
	require.NoError(t, err)

	require.Len(t, depois.Vacinas, 2)
	assert.Equal(t, "Brucelose", depois.Vacinas[0].Nome)
	assert.Equal(t, "Raiva", depois.Vacinas[1].Nome)

	assert.Empty(t, depois.Vermifugacao, "appending to one log must not touch the others")
	assert.Empty(t, depois.HistoricoDoencas)
	assert.Empty(t, depois.PesosMensais)
}

func TestRegistrarEventoInvalidoNaoEscreve(t *testing.T) {
	svc, _ := novoServico(t)
	ctx := context.Background()

	animal, err := svc.Criar(ctx, "dono-1", entradaVaca())
	require.NoError(t, err)

	_, err = svc.RegistrarEvento(ctx, "dono-1", animal.ID, &models.PesoMensal{Peso: "pesado", Data: "01/06/2026"})
	var validacao *models.ErroValidacao
	require.ErrorAs(t, err, &validacao)
	assert.Equal(t, "peso", validacao.Campo)

	depois, err := svc.Buscar(ctx, "dono-1", animal.ID)
	require.NoError(t, err)
	assert.Empty(t, depois.PesosMensais)
}

func TestRegistrarEventoAnimalInexistente(t *testing.T) {
	svc, _ := novoServico(t)

	_, err := svc.RegistrarEvento(context.Background(), "dono-1", "nao-existe", &models.Doenca{Nome: "Mastite", Data: "01/06/2026"})
	assert.ErrorIs(t, err, models.ErrAnimalNaoEncontrado)
}

func TestExcluirRemoveDocumentoEEhIdempotente(t *testing.T) {
	svc, _ := novoServico(t)
	ctx := context.Background()

	animal, err := svc.Criar(ctx, "dono-1", entradaVaca())
	require.NoError(t, err)

	require.NoError(t, svc.Excluir(ctx, "dono-1", animal.ID))

	_, err = svc.Buscar(ctx, "dono-1", animal.ID)
	assert.ErrorIs(t, err, models.ErrAnimalNaoEncontrado)

	assert.NoError(t, svc.Excluir(ctx, "dono-1", animal.ID), "deleting twice is not an error")
}

func TestBuscarNaoVazaAnimaisDeOutroDono(t *testing.T) {
	svc, _ := novoServico(t)
	ctx := context.Background()

	animal, err := svc.Criar(ctx, "dono-1", entradaVaca())
	require.NoError(t, err)

	_, err = svc.Buscar(ctx, "dono-2", animal.ID)
	assert.ErrorIs(t, err, models.ErrAnimalNaoEncontrado)
}

func TestValidarFiliacao(t *testing.T) {
	svc, _ := novoServico(t)
	ctx := context.Background()

	mae, err := svc.Criar(ctx, "dono-1", entradaVaca())
	require.NoError(t, err)

	pai := entradaVaca()
	pai.Brinco = "54321"
	pai.Nome = "Sultão"
	pai.Sexo = "Macho"
	paiCriado, err := svc.Criar(ctx, "dono-1", pai)
	require.NoError(t, err)

	bezerro := AnimalInput{
		Brinco:     "11111",
		Nome:       "Pintado",
		Tipo:       "Bezerro",
		Sexo:       "Macho",
		IDMae:      mae.ID,
		IDTouroPai: paiCriado.ID,
	}
	criado, err := svc.Criar(ctx, "dono-1", bezerro)
	require.NoError(t, err)
	require.NotNil(t, criado.Bezerro)
	assert.Equal(t, mae.ID, criado.Bezerro.IDMae)

	t.Run("mae inexistente", func(t *testing.T) {
		in := bezerro
		in.Brinco = "22222"
		in.IDMae = "fantasma"
		_, err := svc.Criar(ctx, "dono-1", in)

		var validacao *models.ErroValidacao
		require.ErrorAs(t, err, &validacao)
		assert.Equal(t, "idMae", validacao.Campo)
	})

	t.Run("pai com sexo errado", func(t *testing.T) {
		in := bezerro
		in.Brinco = "22222"
		in.IDTouroPai = mae.ID
		_, err := svc.Criar(ctx, "dono-1", in)

		var validacao *models.ErroValidacao
		require.ErrorAs(t, err, &validacao)
		assert.Equal(t, "idTouroPai", validacao.Campo)
	})

	t.Run("auto parentesco", func(t *testing.T) {
		in := bezerro
		in.IDMae = criado.ID
		_, err := svc.Atualizar(ctx, "dono-1", criado.ID, in)

		var validacao *models.ErroValidacao
		require.ErrorAs(t, err, &validacao)
		assert.Equal(t, "idMae", validacao.Campo)
	})
}

func TestBezerroPesoNascimentoDeveSerNumerico(t *testing.T) {
	svc, _ := novoServico(t)

	in := AnimalInput{
		Brinco:         "33333",
		Nome:           "Malhado",
		Tipo:           "Bezerro",
		PesoNascimento: "trinta",
	}

	_, err := svc.Criar(context.Background(), "dono-1", in)

	var validacao *models.ErroValidacao
	require.ErrorAs(t, err, &validacao)
	assert.Equal(t, "pesoNascimento", validacao.Campo)
}

func TestAcompanharEmiteSnapshotInicialEAposMutacao(t *testing.T) {
	svc, _ := novoServico(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	animal, err := svc.Criar(ctx, "dono-1", entradaVaca())
	require.NoError(t, err)

	ch, err := svc.Acompanhar(ctx, "dono-1", animal.ID)
	require.NoError(t, err)

	inicial := <-ch
	assert.Equal(t, animal.ID, inicial.ID)
	assert.Empty(t, inicial.Vacinas)

	_, err = svc.RegistrarEvento(ctx, "dono-1", animal.ID, &models.Vacina{Nome: "Clostridiose", Data: "04/04/2026"})
	require.NoError(t, err)

	for snapshot := range ch {
		if len(snapshot.Vacinas) == 1 {
			assert.Equal(t, "Clostridiose", snapshot.Vacinas[0].Nome)
			return
		}
	}
	t.Fatal("stream closed before delivering the updated snapshot")
}

func TestAcompanharEncerraAposExclusao(t *testing.T) {
	svc, _ := novoServico(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	animal, err := svc.Criar(ctx, "dono-1", entradaVaca())
	require.NoError(t, err)

	ch, err := svc.Acompanhar(ctx, "dono-1", animal.ID)
	require.NoError(t, err)
	<-ch

	require.NoError(t, svc.Excluir(ctx, "dono-1", animal.ID))

	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-ctx.Done():
			t.Fatal("stream did not close after the animal was deleted")
		}
	}
}

func TestAcompanharRebanhoRefleteExclusao(t *testing.T) {
	svc, _ := novoServico(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	animal, err := svc.Criar(ctx, "dono-1", entradaVaca())
	require.NoError(t, err)

	ch, err := svc.AcompanharRebanho(ctx, "dono-1")
	require.NoError(t, err)

	inicial := <-ch
	require.Len(t, inicial, 1)

	require.NoError(t, svc.Excluir(ctx, "dono-1", animal.ID))

	for snapshot := range ch {
		if len(snapshot) == 0 {
			return
		}
	}
	t.Fatal("stream closed before reflecting the deletion")
}

func TestAcompanharAnimalInexistente(t *testing.T) {
	svc, _ := novoServico(t)

	_, err := svc.Acompanhar(context.Background(), "dono-1", "nao-existe")
	assert.True(t, errors.Is(err, models.ErrAnimalNaoEncontrado))
}
