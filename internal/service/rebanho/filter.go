package rebanho

import (
	"strings"

	"github.com/lfmachado/rebanho/internal/domain/models"
)

// TipoTodos disables the type filter on the listing view.
const TipoTodos = "Todos"

// FiltrarRebanho narrows a fetched herd to the animals matching the search
// text and the type filter. Pure and order-preserving: the search matches
// nome or brinco case-insensitively, the type filter is an exact match on
// Tipo, and empty inputs are the identity.
func FiltrarRebanho(animais []models.Animal, busca, tipoFiltro string) []models.Animal {
	consulta := strings.ToLower(strings.TrimSpace(busca))
	filtrarTipo := tipoFiltro != "" && tipoFiltro != TipoTodos

	if consulta == "" && !filtrarTipo {
		return animais
	}

	resultado := make([]models.Animal, 0, len(animais))
	for _, a := range animais {
		if filtrarTipo && string(a.Tipo) != tipoFiltro {
			continue
		}
		if consulta != "" &&
			!strings.Contains(strings.ToLower(a.Nome), consulta) &&
			!strings.Contains(strings.ToLower(a.Brinco), consulta) {
			continue
		}
		resultado = append(resultado, a)
	}

	return resultado
}
