package actiondetect

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrBatchFull is returned when adding a frame to a Batch at capacity
var ErrBatchFull = errors.New("batch full")

// Batch collects a fixed number of video frames to be passed together to a
// Detector in a single Predict call
type Batch struct {
	frames []gocv.Mat
	// held records which slots of frames own an allocated Mat
	held []bool
	// size of the batch
	size int
	// frameCnt is a counter for how many frames have been added with Add()
	frameCnt int
}

// NewBatch creates a batch able to hold size frames
func NewBatch(size int) *Batch {
	return &Batch{
		frames: make([]gocv.Mat, size),
		held:   make([]bool, size),
		size:   size,
	}
}

// Add a copy of the frame to the batch
func (b *Batch) Add(img gocv.Mat) error {

	// check if batch is full
	if b.frameCnt >= b.size {
		return ErrBatchFull
	}

	if err := b.addAt(b.frameCnt, img); err != nil {
		return err
	}

	// increment frame counter
	b.frameCnt++
	return nil
}

// AddAt places a copy of the frame at the specific index location, replacing
// any frame already held there
func (b *Batch) AddAt(idx int, img gocv.Mat) error {

	if idx < 0 || idx >= b.size {
		return fmt.Errorf("index %d out of range [0-%d)", idx, b.size)
	}

	return b.addAt(idx, img)
}

// addAt copies the frame into the specified index location
func (b *Batch) addAt(idx int, img gocv.Mat) error {

	if img.Empty() {
		return fmt.Errorf("frame at index %d is empty", idx)
	}

	// the Mat at this slot may be reused from before Clear()
	if !b.held[idx] {
		b.frames[idx] = gocv.NewMat()
		b.held[idx] = true
	}

	img.CopyTo(&b.frames[idx])

	return nil
}

// Frames returns the frames added with Add() in the order they were added
func (b *Batch) Frames() []gocv.Mat {
	return b.frames[:b.frameCnt]
}

// Len returns the number of frames added with Add()
func (b *Batch) Len() int {
	return b.frameCnt
}

// Full reports whether the batch has reached its size
func (b *Batch) Full() bool {
	return b.frameCnt >= b.size
}

// Size returns the capacity of the batch
func (b *Batch) Size() int {
	return b.size
}

// Clear the batch so it can be reused again
func (b *Batch) Clear() {
	// just reset the counter, the held Mats are overwritten when Add() is
	// called with new frames
	b.frameCnt = 0
}

// Close the batch and free the frames it holds
func (b *Batch) Close() error {

	var errs []error

	for i := range b.frames {
		if !b.held[i] {
			continue
		}

		errs = append(errs, b.frames[i].Close())
		b.held[i] = false
	}

	b.frameCnt = 0

	return errors.Join(errs...)
}
