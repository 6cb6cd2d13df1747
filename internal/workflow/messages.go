package workflow

import (
	"errors"

	"github.com/erazemk/oficina/internal/model"
)

// UserMessage renders err as a message for the operator.
func UserMessage(err error) string {
	var (
		verr      *model.ValidationError
		conflict  *model.ConflictError
		notFound  *model.NotFoundError
		transient *model.TransientError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &conflict) && conflict.Message != "":
		return conflict.Message
	case errors.As(err, &conflict):
		return "A operação foi recusada por conflito com outro registro."
	case errors.As(err, &notFound):
		return "O item não existe mais. Atualize a lista."
	case errors.As(err, &transient):
		return "Falha de comunicação com o servidor. Tente novamente."
	case errors.Is(err, ErrInFlight):
		return "Aguarde a conclusão da operação em andamento."
	case errors.Is(err, ErrInvalidTransition):
		return "Ação indisponível neste momento."
	default:
		return "Não foi possível concluir a operação."
	}
}

// DeleteMessage is the message shown when a delete fails: the backend's
// conflict message verbatim when it sent one, a generic one otherwise.
func DeleteMessage(err error) string {
	var conflict *model.ConflictError
	if errors.As(err, &conflict) && conflict.Message != "" {
		return conflict.Message
	}
	return "Não foi possível excluir o item."
}
