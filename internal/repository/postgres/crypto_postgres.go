package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/domain"
	errs "github.com/NastyaGoryachaya/crypto-tracker-service/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const columns = `id, symbol, name, price_usd, market_cap, volume_24h, price_change_24h, last_updated`

// DB - подмножество pgxpool.Pool, которое использует репозиторий.
// Соединение берётся из пула на каждый вызов и возвращается после него.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CryptoRepo — репозиторий таблицы cryptocurrencies
type CryptoRepo struct {
	db DB
}

func NewCryptoRepository(db DB) *CryptoRepo {
	return &CryptoRepo{db: db}
}

// Exists - есть ли запись с таким id
func (r *CryptoRepo) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM cryptocurrencies WHERE id = $1)`
	var ok bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("exists %s: %w", id, err)
	}
	return ok, nil
}

// Get - запись по id или errs.ErrNotFound
func (r *CryptoRepo) Get(ctx context.Context, id string) (domain.Cryptocurrency, error) {
	query := `SELECT ` + columns + ` FROM cryptocurrencies WHERE id = $1`
	c, err := scanOne(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return domain.Cryptocurrency{}, wrap("get", id, err)
	}
	return c, nil
}

// List - все записи; порядок стабилен за счёт дополнительной сортировки по первичному ключу
func (r *CryptoRepo) List(ctx context.Context, order domain.OrderBy) ([]domain.Cryptocurrency, error) {
	order = domain.ParseOrderBy(string(order))
	query := `SELECT ` + columns + ` FROM cryptocurrencies ORDER BY ` + string(order)
	if order != domain.OrderByID {
		query += `, id`
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Cryptocurrency, 0)
	for rows.Next() {
		c, err := scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	return out, nil
}

// Create - вставка новой записи. Существующая запись никогда не перезаписывается:
// нарушение первичного ключа превращается в errs.ErrAlreadyExists.
func (r *CryptoRepo) Create(ctx context.Context, c domain.Cryptocurrency) (domain.Cryptocurrency, error) {
	query := `
		INSERT INTO cryptocurrencies (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + columns
	created, err := scanOne(r.db.QueryRow(ctx, query,
		c.ID, c.Symbol, c.Name, c.PriceUSD, c.MarketCap, c.Volume24h, c.PriceChange24h, c.LastUpdated.UTC(),
	))
	if err != nil {
		return domain.Cryptocurrency{}, wrap("create", c.ID, err)
	}
	return created, nil
}

// Update - атомарное обновление одной записи: блокируем строку, переносим поля, сохраняем.
// Если записи нет - errs.ErrNotFound, новая строка не создаётся.
func (r *CryptoRepo) Update(ctx context.Context, id string, u domain.CryptoUpdate) (_ domain.Cryptocurrency, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Cryptocurrency{}, fmt.Errorf("update %s: begin: %w", id, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	selectQuery := `SELECT ` + columns + ` FROM cryptocurrencies WHERE id = $1 FOR UPDATE`
	current, err := scanOne(tx.QueryRow(ctx, selectQuery, id))
	if err != nil {
		return domain.Cryptocurrency{}, wrap("update", id, err)
	}

	current.Apply(u)

	updateQuery := `
		UPDATE cryptocurrencies
		SET symbol = $2, name = $3, price_usd = $4, market_cap = $5,
		    volume_24h = $6, price_change_24h = $7, last_updated = $8
		WHERE id = $1
		RETURNING ` + columns
	updated, err := scanOne(tx.QueryRow(ctx, updateQuery,
		id, current.Symbol, current.Name, current.PriceUSD, current.MarketCap,
		current.Volume24h, current.PriceChange24h, current.LastUpdated,
	))
	if err != nil {
		return domain.Cryptocurrency{}, wrap("update", id, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.Cryptocurrency{}, fmt.Errorf("update %s: commit: %w", id, err)
	}
	return updated, nil
}

// Delete - удаляет запись и возвращает её последний снимок
func (r *CryptoRepo) Delete(ctx context.Context, id string) (domain.Cryptocurrency, error) {
	query := `DELETE FROM cryptocurrencies WHERE id = $1 RETURNING ` + columns
	deleted, err := scanOne(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return domain.Cryptocurrency{}, wrap("delete", id, err)
	}
	return deleted, nil
}

func scanOne(row pgx.Row) (domain.Cryptocurrency, error) {
	var c domain.Cryptocurrency
	err := row.Scan(&c.ID, &c.Symbol, &c.Name, &c.PriceUSD, &c.MarketCap, &c.Volume24h, &c.PriceChange24h, &c.LastUpdated)
	if err != nil {
		return domain.Cryptocurrency{}, err
	}
	c.LastUpdated = c.LastUpdated.UTC()
	return c, nil
}

// wrap - переводит ошибки pgx в доменные
func wrap(op, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", op, id, errs.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s %s: %w", op, id, errs.ErrAlreadyExists)
	}
	return fmt.Errorf("%s %s: %w", op, id, err)
}
