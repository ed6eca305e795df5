//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"relay-hub/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	Store(doc domain.MessageDocument) error
	HistoryWithPeer(user, peer string, limit int) ([]domain.MessageDocument, error)
	HistoryInGroup(groupID string, limit int) ([]domain.MessageDocument, error)
	HistoryForUser(user string, limit int) ([]domain.MessageDocument, error)
}

// MessageRepository persists message documents in BadgerDB.
//
// Every document is written under a conversation key and duplicated
// under per-user index keys:
//
//	msg:p:{a}:{b}:{timestamp_padded}:{uuid}   one-to-one, a < b
//	msg:g:{group}:{timestamp_padded}:{uuid}   group conversation
//	usr:{user}:{timestamp_padded}:{uuid}      user timeline
//
// The 13-digit zero-padded millisecond timestamp keeps keys in
// chronological order lexicographically; the trailing UUID disambiguates
// two messages landing on the same millisecond. The user timeline holds
// everything a user sent plus the one-to-one messages addressed to them;
// group traffic is queried through the group conversation key.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

func (m MessageRepository) Store(doc domain.MessageDocument) error {
	value, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal message document: %w", err)
	}

	suffix := fmt.Sprintf("%013d:%s", doc.Timestamp, doc.ID)
	keys := [][]byte{
		[]byte(fmt.Sprintf("msg:%s:%s", conversationOf(doc), suffix)),
		[]byte(fmt.Sprintf("usr:%s:%s", doc.SenderID, suffix)),
	}
	if !doc.IsGroup && doc.TargetID != doc.SenderID {
		keys = append(keys, []byte(fmt.Sprintf("usr:%s:%s", doc.TargetID, suffix)))
	}

	return m.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Set(key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// HistoryWithPeer returns the one-to-one conversation between user and
// peer: the newest `limit` messages, in chronological order.
func (m MessageRepository) HistoryWithPeer(user, peer string, limit int) ([]domain.MessageDocument, error) {
	docs, err := m.scanNewestFirst(fmt.Sprintf("msg:%s:", pairConversation(user, peer)), limit)
	if err != nil {
		return nil, err
	}
	return lo.Reverse(docs), nil
}

// HistoryInGroup returns the newest `limit` group messages, in
// chronological order.
func (m MessageRepository) HistoryInGroup(groupID string, limit int) ([]domain.MessageDocument, error) {
	docs, err := m.scanNewestFirst(fmt.Sprintf("msg:g:%s:", groupID), limit)
	if err != nil {
		return nil, err
	}
	return lo.Reverse(docs), nil
}

// HistoryForUser returns the newest `limit` entries of the user's
// timeline, in chronological order.
func (m MessageRepository) HistoryForUser(user string, limit int) ([]domain.MessageDocument, error) {
	docs, err := m.scanNewestFirst(fmt.Sprintf("usr:%s:", user), limit)
	if err != nil {
		return nil, err
	}
	return lo.Reverse(docs), nil
}

// scanNewestFirst walks a key prefix backwards, newest entries first,
// decoding values until limit is reached.
func (m MessageRepository) scanNewestFirst(prefixStr string, limit int) ([]domain.MessageDocument, error) {
	var docs []domain.MessageDocument
	prefix := []byte(prefixStr)

	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// 0xff sorts after every digit, so seeking here lands just past
		// the newest entry of the prefix.
		it.Seek(append(append([]byte{}, prefix...), 0xff))

		for ; it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(docs) == limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				var doc domain.MessageDocument
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

func conversationOf(doc domain.MessageDocument) string {
	if doc.IsGroup {
		return "g:" + doc.TargetID
	}
	return pairConversation(doc.SenderID, doc.TargetID)
}

// pairConversation orders the two identities so both directions of a
// one-to-one conversation share a key prefix.
func pairConversation(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "p:" + a + ":" + b
}
