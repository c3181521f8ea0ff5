// Package sync ingests accounting entities pushed by the QuickBooks sync
// pipeline over NATS. Entities land in Postgres under the publishing
// tenant's scope and are served read-only by the API.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/brewops/brewery-server/internal/models"
	"github.com/brewops/brewery-server/internal/storage"
	"github.com/brewops/brewery-server/pkg/crypto"
)

// NATSSubscriber consumes sync messages and upserts synced entities
type NATSSubscriber struct {
	nc       *nats.Conn
	store    storage.Store
	tokenKey []byte
	subs     []*nats.Subscription
}

// NewNATSSubscriber creates a sync subscriber. tokenKey is the AES key for
// encrypting provider tokens at rest; connection messages are dropped when
// it is empty.
func NewNATSSubscriber(nc *nats.Conn, store storage.Store, tokenKey []byte) *NATSSubscriber {
	return &NATSSubscriber{
		nc:       nc,
		store:    store,
		tokenKey: tokenKey,
		subs:     make([]*nats.Subscription, 0),
	}
}

// Start subscribes to the sync subjects and blocks until ctx is done.
// Subject shape: quickbooks.<tenant_id>.<entity>.upsert
func (s *NATSSubscriber) Start(ctx context.Context) error {
	subjects := []string{
		"quickbooks.*.account.upsert",
		"quickbooks.*.customer.upsert",
		"quickbooks.*.item.upsert",
		"quickbooks.*.invoice.upsert",
		"quickbooks.*.payment.upsert",
	}

	for _, subject := range subjects {
		sub, err := s.nc.Subscribe(subject, s.handleUpsert)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
	}

	sub, err := s.nc.Subscribe("quickbooks.*.connection.upsert", s.handleConnection)
	if err != nil {
		return fmt.Errorf("subscribe connection: %w", err)
	}
	s.subs = append(s.subs, sub)

	log.Info().
		Int("subscriptions", len(s.subs)).
		Msg("Accounting sync subscriber started")

	<-ctx.Done()

	for _, sub := range s.subs {
		sub.Unsubscribe()
	}

	return ctx.Err()
}

// handleUpsert routes a sync message to the matching upsert
func (s *NATSSubscriber) handleUpsert(msg *nats.Msg) {
	tokens := strings.Split(msg.Subject, ".")
	if len(tokens) != 4 {
		log.Warn().Str("subject", msg.Subject).Msg("Unexpected sync subject shape")
		return
	}

	tenantID, err := uuid.Parse(tokens[1])
	if err != nil {
		log.Warn().Str("subject", msg.Subject).Msg("Sync message with invalid tenant id")
		return
	}
	entity := tokens[2]

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = s.store.WithTenant(ctx, tenantID, func(tx storage.Store) error {
		switch entity {
		case "account":
			var a models.QBAccount
			if err := json.Unmarshal(msg.Data, &a); err != nil {
				return fmt.Errorf("unmarshal account: %w", err)
			}
			a.TenantID = tenantID
			return tx.UpsertQBAccount(ctx, &a)

		case "customer":
			var c models.QBCustomer
			if err := json.Unmarshal(msg.Data, &c); err != nil {
				return fmt.Errorf("unmarshal customer: %w", err)
			}
			c.TenantID = tenantID
			return tx.UpsertQBCustomer(ctx, &c)

		case "item":
			var i models.QBItem
			if err := json.Unmarshal(msg.Data, &i); err != nil {
				return fmt.Errorf("unmarshal item: %w", err)
			}
			i.TenantID = tenantID
			return tx.UpsertQBItem(ctx, &i)

		case "invoice":
			var inv models.QBInvoice
			if err := json.Unmarshal(msg.Data, &inv); err != nil {
				return fmt.Errorf("unmarshal invoice: %w", err)
			}
			inv.TenantID = tenantID
			return tx.UpsertQBInvoice(ctx, &inv)

		case "payment":
			var p models.QBPayment
			if err := json.Unmarshal(msg.Data, &p); err != nil {
				return fmt.Errorf("unmarshal payment: %w", err)
			}
			p.TenantID = tenantID
			return tx.UpsertQBPayment(ctx, &p)

		default:
			return fmt.Errorf("unknown entity %q", entity)
		}
	})

	if err != nil {
		log.Error().Err(err).
			Str("subject", msg.Subject).
			Str("tenant_id", tenantID.String()).
			Msg("Failed to ingest sync message")
		return
	}

	log.Debug().
		Str("entity", entity).
		Str("tenant_id", tenantID.String()).
		Msg("Synced accounting entity")
}

// connectionMessage carries the provider linkage from the sync pipeline.
// Tokens arrive in cleartext over the broker and are encrypted before they
// touch the database.
type connectionMessage struct {
	RealmID        string     `json:"realmId"`
	AccessToken    string     `json:"accessToken"`
	RefreshToken   string     `json:"refreshToken"`
	TokenExpiresAt *time.Time `json:"tokenExpiresAt,omitempty"`
}

// handleConnection stores a tenant's accounting provider linkage
func (s *NATSSubscriber) handleConnection(msg *nats.Msg) {
	if len(s.tokenKey) == 0 {
		log.Warn().Str("subject", msg.Subject).Msg("No token key configured, dropping connection message")
		return
	}

	tokens := strings.Split(msg.Subject, ".")
	if len(tokens) != 4 {
		log.Warn().Str("subject", msg.Subject).Msg("Unexpected sync subject shape")
		return
	}
	tenantID, err := uuid.Parse(tokens[1])
	if err != nil {
		log.Warn().Str("subject", msg.Subject).Msg("Sync message with invalid tenant id")
		return
	}

	var cm connectionMessage
	if err := json.Unmarshal(msg.Data, &cm); err != nil {
		log.Warn().Err(err).Str("subject", msg.Subject).Msg("Malformed connection message")
		return
	}

	accessEnc, err := crypto.Encrypt(s.tokenKey, []byte(cm.AccessToken))
	if err != nil {
		log.Error().Err(err).Msg("Failed to encrypt access token")
		return
	}
	refreshEnc, err := crypto.Encrypt(s.tokenKey, []byte(cm.RefreshToken))
	if err != nil {
		log.Error().Err(err).Msg("Failed to encrypt refresh token")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = s.store.WithTenant(ctx, tenantID, func(tx storage.Store) error {
		return tx.SaveQBConnection(ctx, &models.QBConnection{
			TenantID:        tenantID,
			RealmID:         cm.RealmID,
			AccessTokenEnc:  accessEnc,
			RefreshTokenEnc: refreshEnc,
			TokenExpiresAt:  cm.TokenExpiresAt,
		})
	})
	if err != nil {
		log.Error().Err(err).
			Str("tenant_id", tenantID.String()).
			Msg("Failed to store accounting connection")
		return
	}

	log.Info().
		Str("tenant_id", tenantID.String()).
		Str("realm_id", cm.RealmID).
		Msg("Stored accounting connection")
}
