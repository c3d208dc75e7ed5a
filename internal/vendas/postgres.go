package vendas

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const vendaColumns = `id, created_at, data_venda, cliente, situacao, localizador, origem, titular,
	valor_wallet, custo_wallet, valor_venda, emissor, financeiro, desagio_percentual, lucro`

// PostgresStorage provides PostgreSQL backed persistence for vendas.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage constructs a PostgresStorage on top of a pgx pool.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

// List returns the vendas matching every non-empty filter, ordered by
// data_venda descending.
func (p *PostgresStorage) List(ctx context.Context, f Filtros) ([]Venda, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT ` + vendaColumns + ` FROM vendas`)

	addClause := func(clause string, value string) {
		args = append(args, value)
		if len(args) == 1 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		fmt.Fprintf(&sb, clause, len(args))
	}
	if f.Situacao != "" {
		addClause("situacao = $%d", f.Situacao)
	}
	if f.Titular != "" {
		addClause("titular = $%d", f.Titular)
	}
	if f.Emissor != "" {
		addClause("emissor = $%d", f.Emissor)
	}
	if f.DataInicio != "" {
		addClause("data_venda >= $%d", f.DataInicio)
	}
	if f.DataFim != "" {
		addClause("data_venda <= $%d", f.DataFim)
	}
	sb.WriteString(" ORDER BY data_venda DESC, created_at DESC")

	rows, err := p.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	vendas := make([]Venda, 0, 64)
	for rows.Next() {
		v, err := scanVenda(rows)
		if err != nil {
			return nil, err
		}
		vendas = append(vendas, v)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err)
	}
	return vendas, nil
}

// Create assigns an ID and creation timestamp, computes the derived fields
// and inserts the row. Uniqueness violations map to ErrConflict, value
// format errors to ErrInvalidInput.
func (p *PostgresStorage) Create(ctx context.Context, in VendaInput) (*Venda, error) {
	v := Venda{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	applyInput(&v, in)

	_, err := p.pool.Exec(ctx, `
		INSERT INTO vendas (`+vendaColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, v.ID, v.CreatedAt, v.DataVenda, v.Cliente, v.Situacao, v.Localizador, v.Origem, v.Titular,
		v.ValorWallet, v.CustoWallet, v.ValorVenda, v.Emissor, v.Financeiro, v.DesagioPercentual, v.Lucro)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &v, nil
}

// Update replaces every mutable field of the row and recomputes the derived
// fields. ErrNotFound when the ID does not exist.
func (p *PostgresStorage) Update(ctx context.Context, id string, in VendaInput) (*Venda, error) {
	v := Venda{ID: id}
	applyInput(&v, in)

	err := p.pool.QueryRow(ctx, `
		UPDATE vendas
		SET data_venda = $2, cliente = $3, situacao = $4, localizador = $5, origem = $6,
			titular = $7, valor_wallet = $8, custo_wallet = $9, valor_venda = $10,
			emissor = $11, financeiro = $12, desagio_percentual = $13, lucro = $14
		WHERE id = $1
		RETURNING created_at
	`, id, v.DataVenda, v.Cliente, v.Situacao, v.Localizador, v.Origem, v.Titular,
		v.ValorWallet, v.CustoWallet, v.ValorVenda, v.Emissor, v.Financeiro,
		v.DesagioPercentual, v.Lucro).Scan(&v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapPgError(err)
	}
	return &v, nil
}

// Delete removes the row. A zero rows-affected count signals ErrNotFound.
func (p *PostgresStorage) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM vendas WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DistinctValues returns the deduplicated values present for the given
// whitelisted field. The column name is interpolated, so the whitelist check
// is repeated here even though the service validates first.
func (p *PostgresStorage) DistinctValues(ctx context.Context, campo string) ([]string, error) {
	coluna, ok := camposOpcoes[campo]
	if !ok {
		return nil, ErrInvalidInput
	}

	rows, err := p.pool.Query(ctx, fmt.Sprintf(
		`SELECT DISTINCT %s FROM vendas ORDER BY 1`, coluna))
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	values := make([]string, 0, 16)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err)
	}
	return values, nil
}

// Indicators aggregates over the whole table; list filters never apply here.
// The query always yields one row, all zeros for an empty table.
func (p *PostgresStorage) Indicators(ctx context.Context) (*Indicadores, error) {
	var ind Indicadores
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(valor_venda), 0),
			COALESCE(SUM(lucro), 0),
			COALESCE(ROUND(AVG(desagio_percentual), 2), 0)
		FROM vendas
	`).Scan(&ind.TotalRegistros, &ind.TotalVendas, &ind.TotalLucro, &ind.DesagioMedio)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &ind, nil
}

// BalancesByTitular sums lucro per distinct titular.
func (p *PostgresStorage) BalancesByTitular(ctx context.Context) ([]SaldoTitular, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT titular, COALESCE(SUM(lucro), 0)
		FROM vendas
		GROUP BY titular
		ORDER BY titular
	`)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	saldos := make([]SaldoTitular, 0, 16)
	for rows.Next() {
		var s SaldoTitular
		if err := rows.Scan(&s.Titular, &s.SaldoLucro); err != nil {
			return nil, err
		}
		saldos = append(saldos, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err)
	}
	return saldos, nil
}

func scanVenda(rows pgx.Rows) (Venda, error) {
	var (
		v         Venda
		dataVenda time.Time
	)
	err := rows.Scan(&v.ID, &v.CreatedAt, &dataVenda, &v.Cliente, &v.Situacao, &v.Localizador,
		&v.Origem, &v.Titular, &v.ValorWallet, &v.CustoWallet, &v.ValorVenda,
		&v.Emissor, &v.Financeiro, &v.DesagioPercentual, &v.Lucro)
	if err != nil {
		return Venda{}, err
	}
	v.DataVenda = dataVenda.Format("2006-01-02")
	return v, nil
}

// mapPgError translates PostgreSQL error codes into the storage error
// taxonomy: 23505 unique violation, 22xxx invalid value formats.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
		case "22P02", "22007", "22008", "22003":
			return fmt.Errorf("%w: %s", ErrInvalidInput, pgErr.Message)
		}
	}
	return err
}
