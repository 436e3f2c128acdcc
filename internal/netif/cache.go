// Package netif caches the host's network interfaces as last fetched from the backend.
// There are no pushes; callers refresh explicitly.
package netif

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport"
)

type Cache struct {
	tr  transport.Transport
	now func() time.Time

	mu          sync.RWMutex
	interfaces  []domain.NetworkInterface
	refreshedAt time.Time

	hostMu   sync.Mutex
	hostname string
}

func New(tr transport.Transport) *Cache {
	return &Cache{tr: tr, now: time.Now, interfaces: []domain.NetworkInterface{}}
}

// Refresh replaces the snapshot. On failure the previous snapshot stays.
func (c *Cache) Refresh(ctx context.Context) error {
	var list []domain.NetworkInterface
	if err := c.tr.Call(ctx, transport.CmdGetNetworkInterfaces, nil, &list); err != nil {
		return fmt.Errorf("refresh network interfaces: %w", err)
	}

	c.mu.Lock()
	c.interfaces = domain.CloneInterfaces(list)
	c.refreshedAt = c.now()
	c.mu.Unlock()
	return nil
}

func (c *Cache) Interfaces() []domain.NetworkInterface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.CloneInterfaces(c.interfaces)
}

// LastRefresh is zero until the first successful Refresh.
func (c *Cache) LastRefresh() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}

// HostName returns the backend's hostname, fetched once.
func (c *Cache) HostName(ctx context.Context) (string, error) {
	c.hostMu.Lock()
	defer c.hostMu.Unlock()
	if c.hostname != "" {
		return c.hostname, nil
	}

	var name string
	if err := c.tr.Call(ctx, transport.CmdGetHostName, nil, &name); err != nil {
		return "", fmt.Errorf("get host name: %w", err)
	}
	c.hostname = name
	return name, nil
}
