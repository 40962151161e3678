package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/NastyaGoryachaya/crypto-tracker-service/internal/domain"
	errs "github.com/NastyaGoryachaya/crypto-tracker-service/internal/errors"
	coinsmocks "github.com/NastyaGoryachaya/crypto-tracker-service/internal/service/coins/mocks"
	"github.com/golang/mock/gomock"
)

func TestListCoins_OrderedByName(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := coinsmocks.NewMockService(ctrl)
	mcap := 1e12
	svc.EXPECT().List(gomock.Any(), domain.OrderByName).Return([]domain.Cryptocurrency{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", PriceUSD: 1, MarketCap: &mcap},
	}, nil)

	got, err := NewCoinsReader(svc).ListCoins(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "bitcoin" || got[0].MarketCap == nil || *got[0].MarketCap != mcap {
		t.Fatalf("unexpected dto: %+v", got)
	}
}

func TestGetCoin_PassesError(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := coinsmocks.NewMockService(ctrl)
	svc.EXPECT().Get(gomock.Any(), "ghost").Return(domain.Cryptocurrency{}, errs.ErrNotFound)

	_, err := NewCoinsReader(svc).GetCoin(context.Background(), "ghost")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
