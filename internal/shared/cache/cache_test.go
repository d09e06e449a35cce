package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-hrdesk/internal/shared/cache"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type item struct {
	Name string `json:"name"`
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("hit skips loader", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		c := cache.NewReadThrough(rdb, time.Hour, zap.NewNop())
		mock.ExpectGet("k").SetVal(`[{"name":"Annual"}]`)

		got, err := cache.Get(ctx, c, "k", func(context.Context) ([]item, error) {
			t.Fatal("loader must not run on a hit")
			return nil, nil
		})

		assert.NoError(t, err)
		assert.Equal(t, []item{{Name: "Annual"}}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss loads and stores", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		c := cache.NewReadThrough(rdb, time.Hour, zap.NewNop())
		mock.ExpectGet("k").RedisNil()
		mock.ExpectSet("k", []byte(`[{"name":"Sick"}]`), time.Hour).SetVal("OK")

		got, err := cache.Get(ctx, c, "k", func(context.Context) ([]item, error) {
			return []item{{Name: "Sick"}}, nil
		})

		assert.NoError(t, err)
		assert.Equal(t, []item{{Name: "Sick"}}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("loader error is returned and nothing is stored", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		c := cache.NewReadThrough(rdb, time.Hour, zap.NewNop())
		mock.ExpectGet("k").RedisNil()

		_, err := cache.Get(ctx, c, "k", func(context.Context) ([]item, error) {
			return nil, errors.New("db down")
		})

		assert.EqualError(t, err, "db down")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil client always loads", func(t *testing.T) {
		c := cache.NewReadThrough(nil, time.Hour, zap.NewNop())
		calls := 0
		for i := 0; i < 2; i++ {
			_, err := cache.Get(ctx, c, "k", func(context.Context) ([]item, error) {
				calls++
				return nil, nil
			})
			assert.NoError(t, err)
		}
		assert.Equal(t, 2, calls)
		c.Invalidate(ctx, "k")
	})
}

func TestInvalidate(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := cache.NewReadThrough(rdb, time.Hour, zap.NewNop())
	mock.ExpectDel("k").SetVal(1)

	c.Invalidate(context.Background(), "k")
	assert.NoError(t, mock.ExpectationsWereMet())
}
