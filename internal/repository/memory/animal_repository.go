package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/lfmachado/rebanho/internal/domain/models"
	"github.com/lfmachado/rebanho/pkg/ids"
)

// AnimalRepo is an in-process document store with the same semantics as the
// MongoDB adapter: per-field atomic event appends, variant-clearing updates
// and channel-based live snapshots. Used by the test suites and for local
// development without a database.
type AnimalRepo struct {
	mu     sync.RWMutex
	idGen  *ids.Generator
	porID  map[string]models.Animal
	observ map[int]*observador
	seq    int
}

type observador struct {
	donoID string
	sinal  chan struct{}
}

// NewAnimalRepo creates an empty in-memory store.
func NewAnimalRepo() *AnimalRepo {
	return &AnimalRepo{
		idGen:  ids.NewGenerator(),
		porID:  make(map[string]models.Animal),
		observ: make(map[int]*observador),
	}
}

// Inserir stores a new document and returns its assigned key.
func (r *AnimalRepo) Inserir(ctx context.Context, animal models.Animal) (string, error) {
	r.mu.Lock()
	animal.ID = r.idGen.Novo()
	r.porID[animal.ID] = clonar(animal)
	r.mu.Unlock()

	r.notificar(animal.DonoID)
	return animal.ID, nil
}

// Buscar loads one document scoped to the owner.
func (r *AnimalRepo) Buscar(ctx context.Context, donoID, animalID string) (models.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.porID[animalID]
	if !ok || a.DonoID != donoID {
		return models.Animal{}, models.ErrAnimalNaoEncontrado
	}
	return clonar(a), nil
}

// Listar returns the owner's documents in creation order.
func (r *AnimalRepo) Listar(ctx context.Context, donoID string) ([]models.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listarTravado(donoID), nil
}

func (r *AnimalRepo) listarTravado(donoID string) []models.Animal {
	out := make([]models.Animal, 0)
	for _, a := range r.porID {
		if a.DonoID == donoID {
			out = append(out, clonar(a))
		}
	}
	slices.SortFunc(out, func(a, b models.Animal) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

// Atualizar overwrites the mutable fields of an existing document. CreatedAt
// and the four event logs are carried over from the stored document; the
// incoming variant replaces both variants, which clears stale type data.
func (r *AnimalRepo) Atualizar(ctx context.Context, animal models.Animal) error {
	r.mu.Lock()

	atual, ok := r.porID[animal.ID]
	if !ok || atual.DonoID != animal.DonoID {
		r.mu.Unlock()
		return models.ErrAnimalNaoEncontrado
	}

	animal.CreatedAt = atual.CreatedAt
	animal.Vacinas = atual.Vacinas
	animal.Vermifugacao = atual.Vermifugacao
	animal.HistoricoDoencas = atual.HistoricoDoencas
	animal.PesosMensais = atual.PesosMensais
	r.porID[animal.ID] = clonar(animal)
	r.mu.Unlock()

	r.notificar(animal.DonoID)
	return nil
}

// AnexarEvento appends the record to its log without touching any other
// field of the document.
func (r *AnimalRepo) AnexarEvento(ctx context.Context, donoID, animalID string, registro models.Evento) error {
	r.mu.Lock()

	a, ok := r.porID[animalID]
	if !ok || a.DonoID != donoID {
		r.mu.Unlock()
		return models.ErrAnimalNaoEncontrado
	}

	switch ev := registro.(type) {
	case *models.Vacina:
		a.Vacinas = append(a.Vacinas, *ev)
	case *models.Vermifugacao:
		a.Vermifugacao = append(a.Vermifugacao, *ev)
	case *models.Doenca:
		a.HistoricoDoencas = append(a.HistoricoDoencas, *ev)
	case *models.PesoMensal:
		a.PesosMensais = append(a.PesosMensais, *ev)
	default:
		r.mu.Unlock()
		return &models.ErroValidacao{Campo: "registro", Mensagem: "tipo de evento desconhecido"}
	}

	r.porID[animalID] = a
	r.mu.Unlock()

	r.notificar(donoID)
	return nil
}

// Excluir removes the document. Missing ids are not an error.
func (r *AnimalRepo) Excluir(ctx context.Context, donoID, animalID string) error {
	r.mu.Lock()
	a, ok := r.porID[animalID]
	if ok && a.DonoID == donoID {
		delete(r.porID, animalID)
	}
	r.mu.Unlock()

	r.notificar(donoID)
	return nil
}

// Observar emits a snapshot of one document now and after every mutation of
// the owner's collection. The channel closes when ctx is cancelled or the
// document is deleted.
func (r *AnimalRepo) Observar(ctx context.Context, donoID, animalID string) (<-chan models.Animal, error) {
	if _, err := r.Buscar(ctx, donoID, animalID); err != nil {
		return nil, err
	}

	sinal := r.registrarObservador(donoID)
	out := make(chan models.Animal, 1)

	go func() {
		defer close(out)
		defer r.removerObservador(sinal)

		for {
			a, err := r.Buscar(ctx, donoID, animalID)
			if err != nil {
				return
			}
			select {
			case out <- a:
			case <-ctx.Done():
				return
			}

			select {
			case <-sinal.sinal:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// ObservarRebanho is Observar over the owner's whole collection.
func (r *AnimalRepo) ObservarRebanho(ctx context.Context, donoID string) (<-chan []models.Animal, error) {
	sinal := r.registrarObservador(donoID)
	out := make(chan []models.Animal, 1)

	go func() {
		defer close(out)
		defer r.removerObservador(sinal)

		for {
			r.mu.RLock()
			lista := r.listarTravado(donoID)
			r.mu.RUnlock()

			select {
			case out <- lista:
			case <-ctx.Done():
				return
			}

			select {
			case <-sinal.sinal:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (r *AnimalRepo) registrarObservador(donoID string) *observador {
	r.mu.Lock()
	defer r.mu.Unlock()

	obs := &observador{donoID: donoID, sinal: make(chan struct{}, 1)}
	r.seq++
	r.observ[r.seq] = obs
	return obs
}

func (r *AnimalRepo) removerObservador(alvo *observador) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, obs := range r.observ {
		if obs == alvo {
			delete(r.observ, id)
			return
		}
	}
}

// notificar wakes every observer of the owner. The signal channel has
// capacity one: a pending wake-up coalesces further mutations, the observer
// re-reads the latest state anyway.
func (r *AnimalRepo) notificar(donoID string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, obs := range r.observ {
		if obs.donoID != donoID {
			continue
		}
		select {
		case obs.sinal <- struct{}{}:
		default:
		}
	}
}

func clonar(a models.Animal) models.Animal {
	a.Vacinas = slices.Clone(a.Vacinas)
	a.Vermifugacao = slices.Clone(a.Vermifugacao)
	a.HistoricoDoencas = slices.Clone(a.HistoricoDoencas)
	a.PesosMensais = slices.Clone(a.PesosMensais)
	if a.Vaca != nil {
		v := *a.Vaca
		a.Vaca = &v
	}
	if a.Bezerro != nil {
		b := *a.Bezerro
		a.Bezerro = &b
	}
	return a
}
