// Package semantic owns all Qdrant operations. Each legal corpus is one
// collection whose point IDs are the dense integer offsets of the parallel
// metadata rows, so a search hit joins back to its provenance row by
// offset. The nearest-neighbor search itself is an opaque external
// service; this package only speaks its wire contract.
package semantic

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ScoredOffset is one raw search hit: a row offset and its inner-product
// similarity score.
type ScoredOffset struct {
	Offset int
	Score  float32
}

// Index is a read-only nearest-neighbor index over one corpus.
type Index interface {
	Search(ctx context.Context, vector []float32, k int) ([]ScoredOffset, error)
}

// pointsAPI is the slice of pb.PointsClient the store uses; tests stub it.
type pointsAPI interface {
	Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error)
	Count(ctx context.Context, in *pb.CountPoints, opts ...grpc.CallOption) (*pb.CountResponse, error)
}

// Store holds the Qdrant connection shared by all corpus collections.
type Store struct {
	conn   *grpc.ClientConn
	points pointsAPI
}

// New connects to Qdrant at the given gRPC address.
func New(addr string) (*Store, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	return &Store{
		conn:   conn,
		points: pb.NewPointsClient(conn),
	}, nil
}

// NewWithClient builds a store over an existing points client.
func NewWithClient(points pointsAPI) *Store {
	return &Store{points: points}
}

// Close closes the underlying gRPC connection, when one was dialed.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Index returns the search handle for one corpus collection.
func (s *Store) Index(collection string) Index {
	return &collectionIndex{store: s, collection: collection}
}

// Count returns the number of points in a collection. The bundle loader
// uses it to verify the offset join against the metadata row count.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{
		CollectionName: collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("semantic: count %s: %w", collection, err)
	}
	return int(resp.GetResult().GetCount()), nil
}

type collectionIndex struct {
	store      *Store
	collection string
}

// Search performs k-NN similarity search over one collection.
func (c *collectionIndex) Search(ctx context.Context, vector []float32, k int) ([]ScoredOffset, error) {
	resp, err := c.store.points.Search(ctx, &pb.SearchPoints{
		CollectionName: c.collection,
		Vector:         vector,
		Limit:          uint64(k),
	})
	if err != nil {
		return nil, fmt.Errorf("semantic: search %s: %w", c.collection, err)
	}

	hits := make([]ScoredOffset, 0, len(resp.GetResult()))
	for _, r := range resp.GetResult() {
		hits = append(hits, ScoredOffset{
			Offset: int(r.GetId().GetNum()),
			Score:  r.GetScore(),
		})
	}
	return hits, nil
}
