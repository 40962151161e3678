package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/domain"
	errs "github.com/NastyaGoryachaya/crypto-tracker-service/internal/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
)

var cols = []string{"id", "symbol", "name", "price_usd", "market_cap", "volume_24h", "price_change_24h", "last_updated"}

func f(v float64) *float64 { return &v }

func setupRepo(t *testing.T) (context.Context, pgxmock.PgxPoolIface, *CryptoRepo) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mock.Close()
	})
	return context.Background(), mock, NewCryptoRepository(mock)
}

func btcRow(ts time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(cols).AddRow("bitcoin", "btc", "Bitcoin", 42000.0, f(8e11), f(3e10), f(1.5), ts)
}

// -------------------------
// Exists / Get
// -------------------------

func TestExists(t *testing.T) {
	ctx, mock, repo := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM cryptocurrencies WHERE id = $1)")).
		WithArgs("bitcoin").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(ctx, "bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected record to exist")
	}
}

func TestGet_Found(t *testing.T) {
	ctx, mock, repo := setupRepo(t)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM cryptocurrencies WHERE id = ").
		WithArgs("bitcoin").
		WillReturnRows(btcRow(ts))

	got, err := repo.Get(ctx, "bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "bitcoin" || got.PriceUSD != 42000 || !got.LastUpdated.Equal(ts) {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.MarketCap == nil || *got.MarketCap != 8e11 {
		t.Fatalf("unexpected market cap: %v", got.MarketCap)
	}
}

func TestGet_NotFound(t *testing.T) {
	ctx, mock, repo := setupRepo(t)

	mock.ExpectQuery("FROM cryptocurrencies WHERE id = ").
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows(cols))

	_, err := repo.Get(ctx, "nope")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// -------------------------
// List
// -------------------------

func TestList_DefaultOrderByID(t *testing.T) {
	ctx, mock, repo := setupRepo(t)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(cols).
		AddRow("bitcoin", "btc", "Bitcoin", 42000.0, f(1), f(2), f(3), ts).
		AddRow("ethereum", "eth", "Ethereum", 2500.0, (*float64)(nil), (*float64)(nil), (*float64)(nil), ts)
	mock.ExpectQuery(regexp.QuoteMeta("FROM cryptocurrencies ORDER BY id")).WillReturnRows(rows)

	got, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "bitcoin" || got[1].ID != "ethereum" {
		t.Fatalf("unexpected list: %+v", got)
	}
	if got[1].MarketCap != nil || got[1].Volume24h != nil {
		t.Fatalf("optional fields must stay nil: %+v", got[1])
	}
}

func TestList_UnknownOrderFallsBackToID(t *testing.T) {
	ctx, mock, repo := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY id")).WillReturnRows(pgxmock.NewRows(cols))

	got, err := repo.List(ctx, domain.OrderBy("id; DROP TABLE cryptocurrencies"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %d", len(got))
	}
}

func TestList_SecondaryOrderByID(t *testing.T) {
	ctx, mock, repo := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY price_usd, id")).WillReturnRows(pgxmock.NewRows(cols))

	if _, err := repo.List(ctx, domain.OrderByPrice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// -------------------------
// Create
// -------------------------

func TestCreate_RoundTrip(t *testing.T) {
	ctx, mock, repo := setupRepo(t)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := domain.Cryptocurrency{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", PriceUSD: 42000,
		MarketCap: f(8e11), Volume24h: f(3e10), PriceChange24h: f(1.5), LastUpdated: ts}

	mock.ExpectQuery("INSERT INTO cryptocurrencies").
		WithArgs("bitcoin", "btc", "Bitcoin", 42000.0, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), ts).
		WillReturnRows(btcRow(ts))
	mock.ExpectQuery("FROM cryptocurrencies WHERE id = ").
		WithArgs("bitcoin").
		WillReturnRows(btcRow(ts))

	created, err := repo.Create(ctx, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := repo.Get(ctx, "bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, rec := range []domain.Cryptocurrency{created, got} {
		if rec.ID != in.ID || rec.Symbol != in.Symbol || rec.Name != in.Name || rec.PriceUSD != in.PriceUSD ||
			*rec.MarketCap != *in.MarketCap || *rec.Volume24h != *in.Volume24h ||
			*rec.PriceChange24h != *in.PriceChange24h || !rec.LastUpdated.Equal(in.LastUpdated) {
			t.Fatalf("round trip mismatch: got %+v want %+v", rec, in)
		}
	}
}

// Две конкурентные вставки одного id: вторая упирается в первичный ключ
func TestCreate_DuplicateKeyIsAlreadyExists(t *testing.T) {
	ctx, mock, repo := setupRepo(t)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := domain.Cryptocurrency{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", PriceUSD: 42000, LastUpdated: ts}

	mock.ExpectQuery("INSERT INTO cryptocurrencies").
		WithArgs("bitcoin", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(btcRow(ts))
	mock.ExpectQuery("INSERT INTO cryptocurrencies").
		WithArgs("bitcoin", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	if _, err := repo.Create(ctx, in); err != nil {
		t.Fatalf("first create must succeed: %v", err)
	}
	_, err := repo.Create(ctx, in)
	if !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreate_OtherErrorPropagates(t *testing.T) {
	ctx, mock, repo := setupRepo(t)

	mock.ExpectQuery("INSERT INTO cryptocurrencies").WillReturnError(errors.New("connection reset"))

	_, err := repo.Create(ctx, domain.Cryptocurrency{ID: "bitcoin"})
	if err == nil || errors.Is(err, errs.ErrAlreadyExists) || errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected raw store error, got %v", err)
	}
}

// -------------------------
// Update
// -------------------------

func TestUpdate_MergesFieldsInTransaction(t *testing.T) {
	ctx, mock, repo := setupRepo(t)
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fresh := time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("bitcoin").WillReturnRows(btcRow(old))
	// symbol/name не переданы - остаются прежними, market_cap очищается
	mock.ExpectQuery("UPDATE cryptocurrencies").
		WithArgs("bitcoin", "btc", "Bitcoin", 43000.0, (*float64)(nil), pgxmock.AnyArg(), pgxmock.AnyArg(), fresh).
		WillReturnRows(pgxmock.NewRows(cols).AddRow("bitcoin", "btc", "Bitcoin", 43000.0, (*float64)(nil), f(1), f(2), fresh))
	mock.ExpectCommit()

	got, err := repo.Update(ctx, "bitcoin", domain.CryptoUpdate{PriceUSD: 43000, Volume24h: f(1), PriceChange24h: f(2), LastUpdated: fresh})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PriceUSD != 43000 || got.MarketCap != nil || !got.LastUpdated.Equal(fresh) {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestUpdate_NotFoundRollsBack(t *testing.T) {
	ctx, mock, repo := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("ghost").WillReturnRows(pgxmock.NewRows(cols))
	mock.ExpectRollback()

	_, err := repo.Update(ctx, "ghost", domain.CryptoUpdate{PriceUSD: 1, LastUpdated: time.Now()})
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_WriteErrorRollsBack(t *testing.T) {
	ctx, mock, repo := setupRepo(t)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("bitcoin").WillReturnRows(btcRow(ts))
	mock.ExpectQuery("UPDATE cryptocurrencies").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	if _, err := repo.Update(ctx, "bitcoin", domain.CryptoUpdate{PriceUSD: 1, LastUpdated: ts}); err == nil {
		t.Fatal("expected error")
	}
}

// -------------------------
// Delete
// -------------------------

func TestDelete_ReturnsSnapshot(t *testing.T) {
	ctx, mock, repo := setupRepo(t)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("DELETE FROM cryptocurrencies").WithArgs("bitcoin").WillReturnRows(btcRow(ts))

	got, err := repo.Delete(ctx, "bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "bitcoin" || got.Name != "Bitcoin" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestDelete_NotFound(t *testing.T) {
	ctx, mock, repo := setupRepo(t)

	mock.ExpectQuery("DELETE FROM cryptocurrencies").WithArgs("ghost").WillReturnRows(pgxmock.NewRows(cols))

	_, err := repo.Delete(ctx, "ghost")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
