package mediaio

import (
	"image"
	"sync"
)

// BucketPool is a basic TexturePool keyed by (width, height): buffers
// are recycled by exact shape, new ones allocated on a miss. Checkout and
// checkin are serialized by a mutex per spec.md §5's single-render-context
// ownership rule.
type BucketPool struct {
	mu   sync.Mutex
	free map[[2]int][]*image.RGBA
}

// NewBucketPool constructs an empty pool.
func NewBucketPool() *BucketPool {
	return &BucketPool{free: make(map[[2]int][]*image.RGBA)}
}

// Acquire returns a zeroed buffer of the requested shape, reusing a
// released one if available.
func (p *BucketPool) Acquire(width, height int) *image.RGBA {
	key := [2]int{width, height}
	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.free[key]
	if len(bucket) > 0 {
		img := bucket[len(bucket)-1]
		p.free[key] = bucket[:len(bucket)-1]
		clear(img.Pix)
		return img
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// Release returns buf to the pool, keyed by its own bounds.
func (p *BucketPool) Release(buf *image.RGBA) {
	if buf == nil {
		return
	}
	key := [2]int{buf.Bounds().Dx(), buf.Bounds().Dy()}
	p.mu.Lock()
	p.free[key] = append(p.free[key], buf)
	p.mu.Unlock()
}
