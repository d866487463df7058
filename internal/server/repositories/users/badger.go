package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/faceauth/internal/common"
	"github.com/dmitrijs2005/faceauth/internal/server/models"
)

// badgerKeyPrefix namespaces user records; keys are "user/<username>".
const badgerKeyPrefix = "user/"

// BadgerRepository keeps users in an embedded badger database. Keys sort by
// username, which is therefore the scan order of List.
type BadgerRepository struct {
	db  *badger.DB
	now func() time.Time
}

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db, now: time.Now}
}

func badgerKey(userName string) []byte {
	return []byte(badgerKeyPrefix + userName)
}

func (r *BadgerRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	stored := *user
	stored.CreatedAt = r.now().UTC()

	value, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	key := badgerKey(user.UserName)
	err = r.db.Update(func(txn *badger.Txn) error {
		// the read registers key in the transaction's conflict set, so a
		// concurrent insert of the same name fails the commit with ErrConflict
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return common.ErrorUsernameTaken
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key, value)
	})

	switch {
	case err == nil:
	case errors.Is(err, common.ErrorUsernameTaken), errors.Is(err, badger.ErrConflict):
		return nil, common.ErrorUsernameTaken
	default:
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.CreatedAt = stored.CreatedAt
	return user, nil
}

func (r *BadgerRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	user := &models.User{}

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(userName))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, user)
		})
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *BadgerRepository) List(ctx context.Context) ([]*models.User, error) {
	var result []*models.User

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			user := &models.User{}
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, user)
			})
			if err != nil {
				return fmt.Errorf("key %q: %w", it.Item().Key(), err)
			}
			result = append(result, user)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
