package storage

import (
	"sync"

	"lakewriter/internal/domain"
)

// PresignerSource picks the presigner for a destination.
type PresignerSource interface {
	PresignerFor(dest Destination) (UploadPresigner, error)
}

type staticPresigner struct {
	presigner UploadPresigner
}

func (s staticPresigner) PresignerFor(Destination) (UploadPresigner, error) {
	return s.presigner, nil
}

// CredentialSource resolves the credential for a storage type.
// Implemented by config.Config.
type CredentialSource interface {
	StorageCredential(storageType domain.StorageType) (*domain.StorageCredential, error)
}

// Presigners builds one presigner per storage type on first use and reuses
// it afterwards. Safe for concurrent use.
type Presigners struct {
	creds CredentialSource
	build func(*domain.StorageCredential) (UploadPresigner, error)

	mu    sync.Mutex
	cache map[domain.StorageType]UploadPresigner
}

var _ PresignerSource = (*Presigners)(nil)

// NewPresigners creates a Presigners backed by creds.
func NewPresigners(creds CredentialSource) *Presigners {
	return &Presigners{
		creds: creds,
		build: NewUploadPresignerFromCredential,
		cache: make(map[domain.StorageType]UploadPresigner),
	}
}

// PresignerFor returns the presigner for the destination's storage type.
func (p *Presigners) PresignerFor(dest Destination) (UploadPresigner, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ps, ok := p.cache[dest.Type]; ok {
		return ps, nil
	}
	cred, err := p.creds.StorageCredential(dest.Type)
	if err != nil {
		return nil, err
	}
	ps, err := p.build(cred)
	if err != nil {
		return nil, err
	}
	p.cache[dest.Type] = ps
	return ps, nil
}

// Close releases presigners that hold clients.
func (p *Presigners) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for t, ps := range p.cache {
		if c, ok := ps.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		delete(p.cache, t)
	}
	return firstErr
}
