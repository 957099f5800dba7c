package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// cachedWallet is the JSON shape stored in redis.
type cachedWallet struct {
	ID             string              `json:"id"`
	TenantID       string              `json:"tenant_id"`
	Type           domain.WalletType   `json:"type"`
	OwnerID        string              `json:"owner_id,omitempty"`
	Balance        int64               `json:"balance"`
	PendingBalance int64               `json:"pending_balance"`
	Status         domain.WalletStatus `json:"status"`
	Version        int64               `json:"version"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// WalletCache is a read-through cache in front of a wallet reader. Cache
// failures fall back to the underlying reader.
type WalletCache struct {
	client *redis.Client
	next   usecase.WalletReader
	prefix string
	ttl    time.Duration
}

// NewWalletCache creates a new WalletCache.
func NewWalletCache(client *redis.Client, next usecase.WalletReader, ttl time.Duration) *WalletCache {
	return &WalletCache{
		client: client,
		next:   next,
		prefix: "wallet:",
		ttl:    ttl,
	}
}

// GetByID returns the cached wallet or loads and caches it.
func (c *WalletCache) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	log := zerolog.Ctx(ctx)

	raw, err := c.client.Get(ctx, c.prefix+id).Bytes()
	switch {
	case err == nil:
		var cw cachedWallet
		if err := json.Unmarshal(raw, &cw); err == nil {
			return cw.wallet(), nil
		}
		log.Warn().Str("wallet_id", id).Msg("discarding undecodable cached wallet")
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("wallet_id", id).Msg("wallet cache read failed")
	}

	wallet, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(fromWallet(wallet)); err == nil {
		if err := c.client.Set(ctx, c.prefix+id, raw, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("wallet_id", id).Msg("wallet cache write failed")
		}
	}
	return wallet, nil
}

// Invalidate drops the given wallets from the cache.
func (c *WalletCache) Invalidate(ctx context.Context, walletIDs ...string) {
	if len(walletIDs) == 0 {
		return
	}
	keys := make([]string, len(walletIDs))
	for i, id := range walletIDs {
		keys[i] = c.prefix + id
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Strs("wallet_ids", walletIDs).Msg("wallet cache invalidation failed")
	}
}

func fromWallet(w *domain.Wallet) cachedWallet {
	return cachedWallet{
		ID:             w.ID,
		TenantID:       w.TenantID,
		Type:           w.Type,
		OwnerID:        w.OwnerID,
		Balance:        w.Balance,
		PendingBalance: w.PendingBalance,
		Status:         w.Status,
		Version:        w.Version,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

func (cw cachedWallet) wallet() *domain.Wallet {
	return &domain.Wallet{
		ID:             cw.ID,
		TenantID:       cw.TenantID,
		Type:           cw.Type,
		OwnerID:        cw.OwnerID,
		Balance:        cw.Balance,
		PendingBalance: cw.PendingBalance,
		Status:         cw.Status,
		Version:        cw.Version,
		CreatedAt:      cw.CreatedAt,
		UpdatedAt:      cw.UpdatedAt,
	}
}
