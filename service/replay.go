package service

import (
	"fmt"
	"strconv"
	"strings"

	"matchengine/domain/orderbook"
	"matchengine/infra/memory"
	"matchengine/infra/sequence"
	entrywal "matchengine/infra/wal/entry"
)

// ReplayFromWAL rebuilds in-memory book state from the entry WAL. It MUST
// run before the engine accepts new traffic. The exit WAL is not
// replayed: it already durably tracks its own send/ack state independent
// of the book.
func ReplayFromWAL(
	walDir string,
	book *orderbook.OrderBook,
	pool *memory.Pool[orderbook.Order],
	seqGen *sequence.Sequencer,
) error {
	lastSeq, err := entrywal.Replay(walDir, func(rec *entrywal.Record) error {
		if rec.Type != entrywal.RecordPlace {
			return nil
		}

		// Payload format: userID|side|type|price|qty
		parts := strings.Split(string(rec.Data), "|")
		if len(parts) != 5 {
			return fmt.Errorf("invalid WAL payload: %s", string(rec.Data))
		}

		userID, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return err
		}
		side, err := strconv.Atoi(parts[1])
		if err != nil {
			return err
		}
		otype, err := strconv.Atoi(parts[2])
		if err != nil {
			return err
		}
		price, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			return err
		}
		qty, err := strconv.ParseInt(parts[4], 10, 64)
		if err != nil {
			return err
		}

		o := pool.Get()
		*o = orderbook.Order{
			ID:     userID,
			Side:   orderbook.Side(side),
			Type:   orderbook.OrderType(otype),
			Price:  price,
			Qty:    qty,
			SeqID:  rec.Seq,
			Status: orderbook.Active,
		}

		book.Place(o)
		return nil
	})
	if err != nil {
		return err
	}

	seqGen.Reset(lastSeq)
	return nil
}
