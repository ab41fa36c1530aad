package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and handlers. Every failure of a
// user-initiated operation maps onto exactly one of the kinds below, so the
// HTTP layer can always produce a meaningful response.
var (
	// ErrNaoAutenticado is returned when an operation requires a signed-in
	// account and none is bound to the call.
	ErrNaoAutenticado = errors.New("usuário não autenticado")

	// ErrAnimalNaoEncontrado is returned when the target document vanished
	// between load and mutate, or never existed for this owner.
	ErrAnimalNaoEncontrado = errors.New("animal não encontrado")

	// ErrContaNaoEncontrada is the account-side counterpart.
	ErrContaNaoEncontrada = errors.New("conta não encontrada")

	// ErrCredenciaisInvalidas covers both unknown email and wrong password on
	// login, without distinguishing which.
	ErrCredenciaisInvalidas = errors.New("e-mail ou senha inválidos")

	// ErrEmailEmUso is returned on signup when the email already has a Conta.
	ErrEmailEmUso = errors.New("e-mail já cadastrado")
)

// ErroValidacao flags a malformed or missing required field. It is
// recoverable: the caller corrects the input and retries, nothing was written.
type ErroValidacao struct {
	Campo    string
	Mensagem string
}

func (e *ErroValidacao) Error() string {
	return fmt.Sprintf("%s: %s", e.Campo, e.Mensagem)
}

// ErroPersistencia wraps a failed document-store call. It is surfaced to the
// caller verbatim; the write is a single atomic store call so there is nothing
// to roll back and no automatic retry.
type ErroPersistencia struct {
	Op  string
	Err error
}

func (e *ErroPersistencia) Error() string {
	return fmt.Sprintf("falha de persistência em %s: %v", e.Op, e.Err)
}

func (e *ErroPersistencia) Unwrap() error { return e.Err }
