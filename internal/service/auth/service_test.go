package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfmachado/rebanho/internal/config"
	"github.com/lfmachado/rebanho/internal/domain/models"
	"github.com/lfmachado/rebanho/internal/repository/memory"
	"github.com/lfmachado/rebanho/pkg/clients/notify"
)

type notificadorFake struct {
	enviadas []notify.Mensagem
}

func (n *notificadorFake) Enviar(ctx context.Context, msg notify.Mensagem) error {
	n.enviadas = append(n.enviadas, msg)
	return nil
}

func novoServicoAuth(t *testing.T) (*Service, *notificadorFake) {
	t.Helper()
	notifier := &notificadorFake{}
	cfg := config.AuthConfig{JWTSecret: "segredo-de-teste", TokenTTL: time.Hour}
	return NewService(memory.NewContaRepo(), notifier, cfg, nil), notifier
}

func TestCadastrarEEntrar(t *testing.T) {
	svc, _ := novoServicoAuth(t)
	ctx := context.Background()

	conta, token, err := svc.Cadastrar(ctx, "Produtor@Fazenda.com", "segredo1")
	require.NoError(t, err)
	assert.NotEmpty(t, conta.ID)
	assert.Equal(t, "produtor@fazenda.com", conta.Email, "email is normalized to lowercase")
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "segredo1", conta.SenhaHash)

	entrada, token2, err := svc.Entrar(ctx, "produtor@fazenda.com", "segredo1")
	require.NoError(t, err)
	assert.Equal(t, conta.ID, entrada.ID)
	assert.NotEmpty(t, token2)
}

func TestCadastrarValidaEmailESenha(t *testing.T) {
	svc, _ := novoServicoAuth(t)
	ctx := context.Background()

	var validacao *models.ErroValidacao

	_, _, err := svc.Cadastrar(ctx, "sem-arroba", "segredo1")
	require.ErrorAs(t, err, &validacao)
	assert.Equal(t, "email", validacao.Campo)

	_, _, err = svc.Cadastrar(ctx, "a@b.com", "curta")
	require.ErrorAs(t, err, &validacao)
	assert.Equal(t, "senha", validacao.Campo)
}

func TestCadastrarRejeitaEmailDuplicado(t *testing.T) {
	svc, _ := novoServicoAuth(t)
	ctx := context.Background()

	_, _, err := svc.Cadastrar(ctx, "produtor@fazenda.com", "segredo1")
	require.NoError(t, err)

	_, _, err = svc.Cadastrar(ctx, "PRODUTOR@fazenda.com", "outrasenha")
	assert.ErrorIs(t, err, models.ErrEmailEmUso)
}

func TestEntrarNaoDistingueEmailDeSenhaErrados(t *testing.T) {
	svc, _ := novoServicoAuth(t)
	ctx := context.Background()

	_, _, err := svc.Cadastrar(ctx, "produtor@fazenda.com", "segredo1")
	require.NoError(t, err)

	_, _, errSenha := svc.Entrar(ctx, "produtor@fazenda.com", "errada1")
	_, _, errEmail := svc.Entrar(ctx, "ninguem@fazenda.com", "segredo1")

	assert.ErrorIs(t, errSenha, models.ErrCredenciaisInvalidas)
	assert.ErrorIs(t, errEmail, models.ErrCredenciaisInvalidas)
}

func TestVerificarToken(t *testing.T) {
	svc, _ := novoServicoAuth(t)

	conta, token, err := svc.Cadastrar(context.Background(), "produtor@fazenda.com", "segredo1")
	require.NoError(t, err)

	contaID, err := svc.VerificarToken(token)
	require.NoError(t, err)
	assert.Equal(t, conta.ID, contaID)

	_, err = svc.VerificarToken(token + "x")
	assert.ErrorIs(t, err, models.ErrNaoAutenticado)

	_, err = svc.VerificarToken("")
	assert.ErrorIs(t, err, models.ErrNaoAutenticado)
}

func TestAlterarSenha(t *testing.T) {
	svc, _ := novoServicoAuth(t)
	ctx := context.Background()

	conta, _, err := svc.Cadastrar(ctx, "produtor@fazenda.com", "segredo1")
	require.NoError(t, err)

	require.NoError(t, svc.AlterarSenha(ctx, conta.ID, "novosegredo"))

	_, _, err = svc.Entrar(ctx, "produtor@fazenda.com", "segredo1")
	assert.ErrorIs(t, err, models.ErrCredenciaisInvalidas)

	_, _, err = svc.Entrar(ctx, "produtor@fazenda.com", "novosegredo")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.AlterarSenha(ctx, "", "novosegredo"), models.ErrNaoAutenticado)
}

func TestFluxoDeRedefinicaoDeSenha(t *testing.T) {
	svc, notifier := novoServicoAuth(t)
	ctx := context.Background()

	_, _, err := svc.Cadastrar(ctx, "produtor@fazenda.com", "segredo1")
	require.NoError(t, err)

	require.NoError(t, svc.SolicitarRedefinicao(ctx, "produtor@fazenda.com"))
	require.Len(t, notifier.enviadas, 1)
	assert.Equal(t, "produtor@fazenda.com", notifier.enviadas[0].Destinatario)

	token := extrairToken(t, notifier.enviadas[0].Corpo)
	require.NoError(t, svc.RedefinirSenha(ctx, token, "senharedefinida"))

	_, _, err = svc.Entrar(ctx, "produtor@fazenda.com", "senharedefinida")
	assert.NoError(t, err)

	var validacao *models.ErroValidacao
	err = svc.RedefinirSenha(ctx, token, "outrasenha")
	require.ErrorAs(t, err, &validacao, "a reset token is single use")
	assert.Equal(t, "token", validacao.Campo)
}

func TestSolicitarRedefinicaoNaoRevelaEmailsDesconhecidos(t *testing.T) {
	svc, notifier := novoServicoAuth(t)

	assert.NoError(t, svc.SolicitarRedefinicao(context.Background(), "ninguem@fazenda.com"))
	assert.Empty(t, notifier.enviadas)
}

func TestRedefinirSenhaComTokenInvalido(t *testing.T) {
	svc, _ := novoServicoAuth(t)

	var validacao *models.ErroValidacao
	err := svc.RedefinirSenha(context.Background(), "token-inexistente", "senhaforte")
	require.ErrorAs(t, err, &validacao)
	assert.Equal(t, "token", validacao.Campo)
}

// extrairToken pulls the reset code out of the notification body.
func extrairToken(t *testing.T, corpo string) string {
	t.Helper()
	palavras := strings.Fields(corpo)
	require.Greater(t, len(palavras), 3, "unexpected notification body: %s", corpo)
	return palavras[3]
}
