//go:generate go run go.uber.org/mock/mockgen -source=call.go -destination=../mocks/mock_call_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"relay-hub/domain"

	"github.com/dgraph-io/badger/v4"
)

type ICallRepository interface {
	Store(doc domain.CallDocument) error
	HistoryForUser(user string, limit int) ([]domain.CallDocument, error)
}

// CallRepository persists call documents under both participants:
//
//	call:{user}:{timestamp_padded}:{uuid}
//
// so one scan answers "calls where the user was caller or callee".
type CallRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewCallRepository(db *badger.DB, log *slog.Logger) CallRepository {
	return CallRepository{db: db, log: log}
}

func (c CallRepository) Store(doc domain.CallDocument) error {
	value, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal call document: %w", err)
	}

	suffix := fmt.Sprintf("%013d:%s", doc.Timestamp, doc.ID)
	keys := [][]byte{
		[]byte(fmt.Sprintf("call:%s:%s", doc.CallerID, suffix)),
	}
	if doc.CalleeID != doc.CallerID {
		keys = append(keys, []byte(fmt.Sprintf("call:%s:%s", doc.CalleeID, suffix)))
	}

	return c.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Set(key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// HistoryForUser returns the newest `limit` calls involving the user,
// newest first.
func (c CallRepository) HistoryForUser(user string, limit int) ([]domain.CallDocument, error) {
	var docs []domain.CallDocument
	prefix := []byte(fmt.Sprintf("call:%s:", user))

	err := c.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		it.Seek(append(append([]byte{}, prefix...), 0xff))

		for ; it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(docs) == limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				var doc domain.CallDocument
				if err := json.Unmarshal(value, &doc); err != nil {
					return err
				}
				docs = append(docs, doc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
