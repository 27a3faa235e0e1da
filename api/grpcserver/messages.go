package grpcserver

import "matchengine/domain/orderbook"

// PlaceOrderRequest and the other message types below stand in for what
// would normally be protoc-generated protobuf messages. They are
// marshaled as JSON by jsoncodec instead of protobuf wire format; see
// api/grpcserver/jsoncodec for why.
type PlaceOrderRequest struct {
	Side   orderbook.Side      `json:"side"`
	Type   orderbook.OrderType `json:"type"`
	Price  int64               `json:"price"`
	Qty    int64               `json:"qty"`
	UserID uint64              `json:"user_id"`
}

type PlaceOrderResponse struct {
	Status string `json:"status"`
	SeqID  uint64 `json:"seq_id"`
}

type SnapshotRequest struct{}

type SnapshotResponse struct {
	Found bool              `json:"found"`
	Seq   uint64            `json:"seq"`
	Bids  []orderbook.Level `json:"bids"`
	Asks  []orderbook.Level `json:"asks"`
}
