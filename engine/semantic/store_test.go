package semantic

import (
	"context"
	"errors"
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
)

type mockPoints struct {
	searchReq  *pb.SearchPoints
	searchResp *pb.SearchResponse
	searchErr  error
	countResp  *pb.CountResponse
	countErr   error
}

func (m *mockPoints) Search(_ context.Context, in *pb.SearchPoints, _ ...grpc.CallOption) (*pb.SearchResponse, error) {
	m.searchReq = in
	return m.searchResp, m.searchErr
}

func (m *mockPoints) Count(_ context.Context, _ *pb.CountPoints, _ ...grpc.CallOption) (*pb.CountResponse, error) {
	return m.countResp, m.countErr
}

func numID(n uint64) *pb.PointId {
	return &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: n}}
}

func TestSearchMapsOffsetsAndScores(t *testing.T) {
	pts := &mockPoints{searchResp: &pb.SearchResponse{
		Result: []*pb.ScoredPoint{
			{Id: numID(7), Score: 0.91},
			{Id: numID(0), Score: 0.55},
		},
	}}
	idx := NewWithClient(pts).Index("law_civil")

	hits, err := idx.Search(context.Background(), []float32{0.1, 0.2}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits", len(hits))
	}
	if hits[0].Offset != 7 || hits[0].Score != 0.91 {
		t.Errorf("hit 0 = %+v", hits[0])
	}
	if hits[1].Offset != 0 {
		t.Errorf("hit 1 = %+v", hits[1])
	}
	if pts.searchReq.CollectionName != "law_civil" {
		t.Errorf("collection = %q", pts.searchReq.CollectionName)
	}
	if pts.searchReq.Limit != 5 {
		t.Errorf("limit = %d", pts.searchReq.Limit)
	}
}

func TestSearchError(t *testing.T) {
	boom := errors.New("rpc fail")
	idx := NewWithClient(&mockPoints{searchErr: boom}).Index("c")
	if _, err := idx.Search(context.Background(), []float32{1}, 3); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestCount(t *testing.T) {
	n := uint64(42)
	s := NewWithClient(&mockPoints{countResp: &pb.CountResponse{
		Result: &pb.CountResult{Count: n},
	}})
	got, err := s.Count(context.Background(), "law_civil")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if got != 42 {
		t.Errorf("count = %d", got)
	}
}

func TestCountError(t *testing.T) {
	s := NewWithClient(&mockPoints{countErr: errors.New("rpc fail")})
	if _, err := s.Count(context.Background(), "c"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCloseWithoutConn(t *testing.T) {
	if err := NewWithClient(&mockPoints{}).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
