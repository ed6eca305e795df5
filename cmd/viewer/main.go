// Command viewer inspects the hub's Badger store from the terminal
// while the hub is running. It opens the database read-only and renders
// message or call documents as a table.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"relay-hub/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" required:"true"`
}

type rowMapper func(value []byte) ([]string, error)

func main() {
	prefix := flag.String("prefix", "msg:", "Key prefix to scan (msg: | usr: | call:)")
	limit := flag.Int("limit", 100, "Maximum number of rows")
	flag.Parse()

	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// BypassLockGuard allows opening while the hub holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	color.Cyanln("Scanning", *prefix)

	table := tablewriter.NewWriter(os.Stdout)
	var mapRow rowMapper
	if strings.HasPrefix(*prefix, "call:") {
		table.SetHeader([]string{"Time", "Caller", "Callee", "Status"})
		mapRow = callRow
	} else {
		table.SetHeader([]string{"Time", "Sender", "Target", "Group", "Kind", "Lang", "Content"})
		mapRow = messageRow
	}

	if err := scan(db, table, *prefix, *limit, mapRow); err != nil {
		log.Fatal(err)
	}
	table.Render()
}

func scan(db *badger.DB, table *tablewriter.Table, prefix string, limit int, mapRow rowMapper) error {
	rows := 0
	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes) && rows < limit; it.Next() {
			key := string(it.Item().Key())
			err := it.Item().Value(func(value []byte) error {
				row, err := mapRow(value)
				if err != nil {
					// A broken value is reported, not fatal
					color.Redln("Undecodable value at", key, ":", err)
					return nil
				}
				table.Append(row)
				rows++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func messageRow(value []byte) ([]string, error) {
	var doc domain.MessageDocument
	if err := json.Unmarshal(value, &doc); err != nil {
		return nil, err
	}
	return []string{
		formatTime(doc.Timestamp),
		doc.SenderID,
		doc.TargetID,
		fmt.Sprintf("%t", doc.IsGroup),
		doc.Kind,
		doc.Lang,
		truncate(lo.FromPtr(doc.Content), 60),
	}, nil
}

func callRow(value []byte) ([]string, error) {
	var doc domain.CallDocument
	if err := json.Unmarshal(value, &doc); err != nil {
		return nil, err
	}
	return []string{formatTime(doc.Timestamp), doc.CallerID, doc.CalleeID, doc.Status}, nil
}

func formatTime(millis int64) string {
	return time.UnixMilli(millis).Format("2006-01-02 15:04:05")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
