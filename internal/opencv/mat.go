// Package opencv plugs OpenCV based resizing into the resampler registry.
package opencv

import (
	"fmt"
	"image"
	"image/draw"
	"runtime"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

var (
	nextMatID   uint64
	openMats    int64
	totalOpened int64
)

// Mat owns a gocv.Mat and guarantees it is closed exactly once.
type Mat struct {
	mat     gocv.Mat
	isValid int32
	mu      sync.RWMutex
	id      uint64
}

func wrap(m gocv.Mat) (*Mat, error) {
	if m.Empty() {
		m.Close()
		return nil, fmt.Errorf("opencv: empty Mat")
	}

	sm := &Mat{
		mat:     m,
		isValid: 1,
		id:      atomic.AddUint64(&nextMatID, 1),
	}
	atomic.AddInt64(&openMats, 1)
	atomic.AddInt64(&totalOpened, 1)

	// Set finalizer for cleanup if Close() is not called
	runtime.SetFinalizer(sm, (*Mat).finalize)
	return sm, nil
}

// NewMatFromImage copies img into a premultiplied 4 channel Mat.
func NewMatFromImage(img image.Image) (*Mat, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("opencv: invalid image size %dx%d", b.Dx(), b.Dy())
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) || rgba.Stride != b.Dx()*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	view, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return nil, fmt.Errorf("opencv: create Mat: %w", err)
	}
	defer view.Close()

	// view shares rgba.Pix; the clone owns its pixels
	return wrap(view.Clone())
}

func (sm *Mat) IsValid() bool {
	return atomic.LoadInt32(&sm.isValid) == 1
}

func (sm *Mat) Rows() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.IsValid() {
		return 0
	}
	return sm.mat.Rows()
}

func (sm *Mat) Cols() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.IsValid() {
		return 0
	}
	return sm.mat.Cols()
}

// ToImage copies the Mat back into a premultiplied RGBA image.
func (sm *Mat) ToImage() (*image.RGBA, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return nil, fmt.Errorf("opencv: Mat %d is closed", sm.id)
	}
	if sm.mat.Type() != gocv.MatTypeCV8UC4 {
		return nil, fmt.Errorf("opencv: unsupported Mat type %v", sm.mat.Type())
	}

	img := image.NewRGBA(image.Rect(0, 0, sm.mat.Cols(), sm.mat.Rows()))
	copy(img.Pix, sm.mat.ToBytes())
	return img, nil
}

func (sm *Mat) ID() uint64 {
	return sm.id
}

func (sm *Mat) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if atomic.CompareAndSwapInt32(&sm.isValid, 1, 0) {
		sm.mat.Close()
		atomic.AddInt64(&openMats, -1)
		runtime.SetFinalizer(sm, nil)
	}
}

// finalize is called by Go's garbage collector as last resort cleanup
func (sm *Mat) finalize() {
	if sm.IsValid() {
		sm.Close()
	}
}

// Stats reports how many Mats are open now and how many were ever opened.
func Stats() (open, total int64) {
	return atomic.LoadInt64(&openMats), atomic.LoadInt64(&totalOpened)
}
