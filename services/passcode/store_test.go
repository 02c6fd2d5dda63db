package passcode

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/codeauth/testutils"
)

func storeImplementations(t *testing.T) map[string]func(t *testing.T) CodeStore {
	return map[string]func(t *testing.T) CodeStore{
		"gorm": func(t *testing.T) CodeStore {
			db := testutils.SetupTestDB(t, &CodeRecord{})
			return NewGormStore(db, nil)
		},
		"memory": func(t *testing.T) CodeStore {
			return NewMemoryStore()
		},
	}
}

func newRecord(identity string, role Role, purpose Purpose, createdAt time.Time) *CodeRecord {
	return &CodeRecord{
		Identity:  identity,
		Role:      role,
		Purpose:   purpose,
		CodeHash:  "hash",
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(10 * time.Minute),
	}
}

func TestCodeStore_Contract(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for name, newStore := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("create assigns ids", func(t *testing.T) {
				store := newStore(t)

				id1, err := store.Create(ctx, newRecord("a@x.com", RoleCustomer, PurposeSignIn, base))
				require.NoError(t, err)
				id2, err := store.Create(ctx, newRecord("a@x.com", RoleCustomer, PurposeSignIn, base))
				require.NoError(t, err)

				assert.NotZero(t, id1)
				assert.NotEqual(t, id1, id2)
			})

			t.Run("find active filters and orders newest first", func(t *testing.T) {
				store := newStore(t)

				oldID, err := store.Create(ctx, newRecord("a@x.com", RoleCustomer, PurposeSignIn, base))
				require.NoError(t, err)
				newID, err := store.Create(ctx, newRecord("a@x.com", RoleCustomer, PurposeSignUp, base.Add(time.Minute)))
				require.NoError(t, err)
				_, err = store.Create(ctx, newRecord("a@x.com", RoleCarrier, PurposeSignIn, base))
				require.NoError(t, err)
				_, err = store.Create(ctx, newRecord("b@x.com", RoleCustomer, PurposeSignIn, base))
				require.NoError(t, err)

				records, err := store.FindActive(ctx, "a@x.com", RoleCustomer)
				require.NoError(t, err)
				require.Len(t, records, 2)
				assert.Equal(t, newID, records[0].ID)
				assert.Equal(t, oldID, records[1].ID)

				records, err = store.FindActive(ctx, "a@x.com", RoleCustomer, PurposeSignIn)
				require.NoError(t, err)
				require.Len(t, records, 1)
				assert.Equal(t, oldID, records[0].ID)

				records, err = store.FindActive(ctx, "a@x.com", RoleCustomer, PurposeSignIn, PurposeSignUp)
				require.NoError(t, err)
				assert.Len(t, records, 2)
			})

			t.Run("same timestamp falls back to id order", func(t *testing.T) {
				store := newStore(t)

				_, err := store.Create(ctx, newRecord("a@x.com", RoleCustomer, PurposeSignIn, base))
				require.NoError(t, err)
				second, err := store.Create(ctx, newRecord("a@x.com", RoleCustomer, PurposeSignIn, base))
				require.NoError(t, err)

				records, err := store.FindActive(ctx, "a@x.com", RoleCustomer)
				require.NoError(t, err)
				require.Len(t, records, 2)
				assert.Equal(t, second, records[0].ID)
			})

			t.Run("used records are not active", func(t *testing.T) {
				store := newStore(t)

				id, err := store.Create(ctx, newRecord("a@x.com", RoleCustomer, PurposeSignIn, base))
				require.NoError(t, err)
				require.NoError(t, store.Update(ctx, id, MarkUsed()))

				records, err := store.FindActive(ctx, "a@x.com", RoleCustomer)
				require.NoError(t, err)
				assert.Empty(t, records)
			})

			t.Run("update attempts", func(t *testing.T) {
				store := newStore(t)

				id, err := store.Create(ctx, newRecord("a@x.com", RoleCustomer, PurposeSignIn, base))
				require.NoError(t, err)
				require.NoError(t, store.Update(ctx, id, SetAttempts(1).Expect(0)))

				records, err := store.FindActive(ctx, "a@x.com", RoleCustomer)
				require.NoError(t, err)
				require.Len(t, records, 1)
				assert.Equal(t, 1, records[0].Attempts)
				assert.False(t, records[0].Used)
			})

			t.Run("conditional update rejects stale attempts", func(t *testing.T) {
				store := newStore(t)

				id, err := store.Create(ctx, newRecord("a@x.com", RoleCustomer, PurposeSignIn, base))
				require.NoError(t, err)
				require.NoError(t, store.Update(ctx, id, SetAttempts(1).Expect(0)))

				err = store.Update(ctx, id, SetAttempts(1).Expect(0))
				assert.ErrorIs(t, err, ErrStaleRecord)

				records, err := store.FindActive(ctx, "a@x.com", RoleCustomer)
				require.NoError(t, err)
				require.Len(t, records, 1)
				assert.Equal(t, 1, records[0].Attempts)
			})

			t.Run("conditional update rejects used records", func(t *testing.T) {
				store := newStore(t)

				id, err := store.Create(ctx, newRecord("a@x.com", RoleCustomer, PurposeSignIn, base))
				require.NoError(t, err)
				require.NoError(t, store.Update(ctx, id, MarkUsed().Expect(0)))

				err = store.Update(ctx, id, MarkUsed().Expect(0))
				assert.ErrorIs(t, err, ErrStaleRecord)
			})

			t.Run("empty update is a no-op", func(t *testing.T) {
				store := newStore(t)
				assert.NoError(t, store.Update(ctx, 999, RecordUpdate{}))
			})
		})
	}
}

func TestGormStore_CanceledContext(t *testing.T) {
	db := testutils.SetupTestDB(t, &CodeRecord{})
	store := NewGormStore(db, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.FindActive(ctx, "a@x.com", RoleCustomer)
	assert.Error(t, err)
}

func TestGormStore_NeverPersistsPlaintext(t *testing.T) {
	db := testutils.SetupTestDB(t, &CodeRecord{})
	store := NewGormStore(db, nil)
	hasher := NewHasher(4)

	hash, err := hasher.Hash("482913")
	require.NoError(t, err)

	rec := newRecord("a@x.com", RoleCustomer, PurposeSignIn, time.Now())
	rec.CodeHash = hash
	_, err = store.Create(context.Background(), rec)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&CodeRecord{}).Where("code_hash = ?", "482913").Count(&count).Error)
	assert.Zero(t, count)
}

func TestMemoryStore_Get(t *testing.T) {
	store := NewMemoryStore()

	id, err := store.Create(context.Background(), newRecord("a@x.com", RoleCustomer, PurposeSignIn, time.Now()))
	require.NoError(t, err)

	rec, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", rec.Identity)

	_, ok = store.Get(id + 1)
	assert.False(t, ok)
}
