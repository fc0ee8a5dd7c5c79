// Dumps archived chat rows from a badger database as a table.
// Useful to check what the archive sink actually wrote during dev.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/olekukonko/tablewriter"
)

// chatRow mirrors the CBOR shape written by the message repository.
type chatRow struct {
	ID        string `cbor:"1,keyasint"`
	SessionID string `cbor:"2,keyasint"`
	UserID    string `cbor:"3,keyasint"`
	Content   string `cbor:"4,keyasint"`
	At        int64  `cbor:"5,keyasint"`
}

func main() {
	dbPath := flag.String("db", "./devhub-data", "Path to badger DB")
	// Par défaut on scanne tous les messages, toutes sessions confondues
	prefix := flag.String("prefix", "msg:", "Prefix to scan")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithLoggingLevel(badger.ERROR).
		WithReadOnly(true))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Session", "User", "At", "Content"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				var row chatRow
				if err := cbor.Unmarshal(v, &row); err != nil {
					// On log l'erreur et on continue au lieu de stopper tout le scan
					fmt.Printf("Error unmarshaling key %s: %v\n", string(item.Key()), err)
					return nil
				}

				displayKey := string(item.Key())
				if len(displayKey) > 40 {
					displayKey = displayKey[:40] + "..."
				}
				table.Append([]string{
					displayKey,
					shortID(row.SessionID),
					shortID(row.UserID),
					time.Unix(0, row.At).UTC().Format(time.RFC3339),
					row.Content,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Scan failed: ", err)
	}

	table.Render()
}

// shortID keeps the first 8 characters for readability.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
