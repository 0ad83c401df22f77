// Package ollama wraps the Ollama HTTP API behind the embedding and
// generation interfaces the answer pipeline consumes.
package ollama

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/ollama/ollama/api"
)

// ClientPool hands out one api.Client per host. Clients are cheap but
// the pool keeps connection reuse across the embedder and generator
// pointed at the same daemon.
type ClientPool struct {
	mu      sync.Mutex
	clients map[string]*api.Client
}

func NewClientPool() *ClientPool {
	return &ClientPool{clients: make(map[string]*api.Client)}
}

// Get returns the client for host, creating it on first use.
func (p *ClientPool) Get(host string) (*api.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[host]; ok {
		return c, nil
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("ollama: parse host %q: %w", host, err)
	}
	c := api.NewClient(u, http.DefaultClient)
	p.clients[host] = c
	return c, nil
}
