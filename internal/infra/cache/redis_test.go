package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/infra/coingecko"
	"github.com/redis/go-redis/v9"
)

// fakeRedis — in-memory подмена только тех команд, которые использует адаптер
type fakeRedis struct {
	redis.Cmdable
	data    map[string]string
	lastTTL time.Duration
	failGet error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	if f.failGet != nil {
		cmd.SetErr(f.failGet)
		return cmd
	}
	v, ok := f.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.lastTTL = expiration
	cmd.SetVal("OK")
	return cmd
}

func TestRedisAdapter_SetThenGet(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	a := New(fake, time.Minute)

	id, price := "bitcoin", 42000.0
	in := &coingecko.CoinDetail{
		ID:         &id,
		MarketData: &coingecko.MarketData{CurrentPrice: map[string]*float64{"usd": &price}},
	}
	if err := a.SetDetail(ctx, "bitcoin", in); err != nil {
		t.Fatalf("set: %v", err)
	}
	if fake.lastTTL != time.Minute {
		t.Fatalf("ttl not applied: %v", fake.lastTTL)
	}
	if _, ok := fake.data["coingecko:detail:bitcoin"]; !ok {
		t.Fatalf("unexpected keys: %v", fake.data)
	}

	got, ok, err := a.GetDetail(ctx, "bitcoin")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if *got.ID != "bitcoin" || *got.MarketData.CurrentPrice["usd"] != 42000 {
		t.Fatalf("unexpected detail: %+v", got)
	}
}

func TestRedisAdapter_Miss(t *testing.T) {
	a := New(newFakeRedis(), 0)

	got, ok, err := a.GetDetail(context.Background(), "ethereum")
	if err != nil || ok || got != nil {
		t.Fatalf("expected clean miss, got %v %v %v", got, ok, err)
	}
}

func TestRedisAdapter_GetError(t *testing.T) {
	fake := newFakeRedis()
	fake.failGet = errors.New("connection refused")
	a := New(fake, time.Second)

	if _, _, err := a.GetDetail(context.Background(), "bitcoin"); err == nil {
		t.Fatal("expected error")
	}
}
