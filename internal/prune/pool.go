package prune

import "context"

// StoragePool is a bounded pool of store handles. Its capacity caps the
// number of concurrent outbound fetches independent of worker scheduling.
type StoragePool struct {
	handles chan Storage
}

func NewStoragePool(handles []Storage) *StoragePool {
	p := &StoragePool{handles: make(chan Storage, len(handles))}
	for _, h := range handles {
		p.handles <- h
	}
	return p
}

func (p *StoragePool) Acquire(ctx context.Context) (Storage, error) {
	select {
	case h := <-p.handles:
		return h, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *StoragePool) Release(h Storage) {
	p.handles <- h
}

func (p *StoragePool) Size() int {
	return cap(p.handles)
}
