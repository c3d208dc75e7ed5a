package vendas

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no venda exists for the given ID.
var ErrNotFound = errors.New("venda not found")

// ErrConflict is returned when a uniqueness constraint is violated.
var ErrConflict = errors.New("venda conflicts with an existing record")

// ErrInvalidInput is returned when a field fails validation or has an
// invalid format for the storage layer.
var ErrInvalidInput = errors.New("invalid input")

// Storage is the main interface for the vendas storage layer.
type Storage interface {
	List(ctx context.Context, f Filtros) ([]Venda, error)
	Create(ctx context.Context, in VendaInput) (*Venda, error)
	Update(ctx context.Context, id string, in VendaInput) (*Venda, error)
	Delete(ctx context.Context, id string) error
	DistinctValues(ctx context.Context, campo string) ([]string, error)
	Indicators(ctx context.Context) (*Indicadores, error)
	BalancesByTitular(ctx context.Context) ([]SaldoTitular, error)
}

// LocalStorage provides an in-memory implementation for storing vendas.
type LocalStorage struct {
	mu sync.RWMutex
	m  map[string]*Venda
}

// NewLocalStorage instantiates a new LocalStorage with an empty map.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m: map[string]*Venda{},
	}
}

// List returns the vendas matching every non-empty filter, ordered by
// data_venda descending.
func (l *LocalStorage) List(_ context.Context, f Filtros) ([]Venda, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]Venda, 0, len(l.m))
	for _, v := range l.m {
		if f.Situacao != "" && v.Situacao != f.Situacao {
			continue
		}
		if f.Titular != "" && v.Titular != f.Titular {
			continue
		}
		if f.Emissor != "" && v.Emissor != f.Emissor {
			continue
		}
		// YYYY-MM-DD compares correctly as a string.
		if f.DataInicio != "" && v.DataVenda < f.DataInicio {
			continue
		}
		if f.DataFim != "" && v.DataVenda > f.DataFim {
			continue
		}
		result = append(result, *v)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].DataVenda != result[j].DataVenda {
			return result[i].DataVenda > result[j].DataVenda
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Create assigns an ID and creation timestamp, computes the derived fields
// and stores the venda. Returns ErrConflict when the localizador is already
// taken.
func (l *LocalStorage) Create(_ context.Context, in VendaInput) (*Venda, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, existing := range l.m {
		if existing.Localizador == in.Localizador {
			return nil, ErrConflict
		}
	}

	v := &Venda{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	applyInput(v, in)
	l.m[v.ID] = v

	created := *v
	return &created, nil
}

// Update replaces every mutable field of the venda and recomputes the
// derived fields. ID and CreatedAt are preserved.
func (l *LocalStorage) Update(_ context.Context, id string, in VendaInput) (*Venda, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	for _, existing := range l.m {
		if existing.ID != id && existing.Localizador == in.Localizador {
			return nil, ErrConflict
		}
	}
	applyInput(v, in)

	updated := *v
	return &updated, nil
}

// Delete removes the venda. Returns ErrNotFound when the ID is absent.
func (l *LocalStorage) Delete(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.m[id]; !ok {
		return ErrNotFound
	}
	delete(l.m, id)
	return nil
}

// DistinctValues returns the deduplicated, sorted values present for the
// given whitelisted field.
func (l *LocalStorage) DistinctValues(_ context.Context, campo string) ([]string, error) {
	if !CampoValido(campo) {
		return nil, ErrInvalidInput
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := map[string]struct{}{}
	for _, v := range l.m {
		var value string
		switch campo {
		case "titular":
			value = v.Titular
		case "emissor":
			value = v.Emissor
		case "situacao":
			value = v.Situacao
		case "financeiro":
			value = v.Financeiro
		}
		seen[value] = struct{}{}
	}

	values := make([]string, 0, len(seen))
	for value := range seen {
		values = append(values, value)
	}
	sort.Strings(values)
	return values, nil
}

// Indicators aggregates over every stored venda, ignoring filters. An empty
// table yields all zeros.
func (l *LocalStorage) Indicators(_ context.Context) (*Indicadores, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ind := &Indicadores{}
	var somaDesagio float64
	for _, v := range l.m {
		ind.TotalRegistros++
		ind.TotalVendas += v.ValorVenda
		ind.TotalLucro += v.Lucro
		somaDesagio += v.DesagioPercentual
	}
	if ind.TotalRegistros > 0 {
		ind.DesagioMedio = round2(somaDesagio / float64(ind.TotalRegistros))
		ind.TotalVendas = round2(ind.TotalVendas)
		ind.TotalLucro = round2(ind.TotalLucro)
	}
	return ind, nil
}

// BalancesByTitular sums lucro per distinct titular.
func (l *LocalStorage) BalancesByTitular(_ context.Context) ([]SaldoTitular, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	somas := map[string]float64{}
	for _, v := range l.m {
		somas[v.Titular] += v.Lucro
	}

	saldos := make([]SaldoTitular, 0, len(somas))
	for titular, soma := range somas {
		saldos = append(saldos, SaldoTitular{Titular: titular, SaldoLucro: round2(soma)})
	}
	sort.Slice(saldos, func(i, j int) bool { return saldos[i].Titular < saldos[j].Titular })
	return saldos, nil
}

func applyInput(v *Venda, in VendaInput) {
	v.DataVenda = in.DataVenda
	v.Cliente = in.Cliente
	v.Situacao = in.Situacao
	v.Localizador = in.Localizador
	v.Origem = in.Origem
	v.Titular = in.Titular
	v.ValorWallet = in.ValorWallet
	v.CustoWallet = in.CustoWallet
	v.ValorVenda = in.ValorVenda
	v.Emissor = in.Emissor
	v.Financeiro = in.Financeiro
	v.DesagioPercentual, v.Lucro = calcularDerivados(in.ValorWallet, in.CustoWallet, in.ValorVenda)
}
