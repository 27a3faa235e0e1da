package grpcserver

import (
	"context"
	"log"

	"matchengine/service"
)

// Server adapts a *service.OrderService to the OrderServiceServer
// interface expected by ServiceDesc. It holds no state of its own beyond
// the service it delegates to.
type Server struct {
	svc *service.OrderService
}

// NewServer wraps svc for gRPC registration.
func NewServer(svc *service.OrderService) *Server {
	return &Server{svc: svc}
}

// PlaceOrder submits req to the order service and reports the assigned
// sequence number.
func (s *Server) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	seq := s.svc.PlaceOrder(req.Side, req.Type, req.Price, req.Qty, req.UserID)
	log.Printf("[gRPC] PlaceOrder user=%d side=%v price=%d qty=%d seq=%d", req.UserID, req.Side, req.Price, req.Qty, seq)
	return &PlaceOrderResponse{Status: "accepted", SeqID: seq}, nil
}

// Snapshot returns the most recently published book snapshot, if any.
func (s *Server) Snapshot(ctx context.Context, req *SnapshotRequest) (*SnapshotResponse, error) {
	snap := s.svc.Snapshot()
	if snap == nil {
		return &SnapshotResponse{Found: false}, nil
	}
	return &SnapshotResponse{
		Found: true,
		Seq:   snap.Seq,
		Bids:  snap.Bids,
		Asks:  snap.Asks,
	}, nil
}
