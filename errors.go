package literoom

import "errors"

// Error classes returned by the pipeline. Call sites wrap these with
// detail via fmt.Errorf("%w: ...", ...); callers match with errors.Is.
var (
	// ErrNotInitialized reports Process on a GPU pipeline whose
	// capability was never initialized.
	ErrNotInitialized = errors.New("literoom: capability not initialized")

	// ErrUnavailable reports Process on a GPU pipeline whose capability
	// probe found no usable device.
	ErrUnavailable = errors.New("literoom: no usable GPU device")

	// ErrAllocation reports a failed GPU resource allocation. The call
	// fails; the pipeline stays usable.
	ErrAllocation = errors.New("literoom: resource allocation failed")

	// ErrDeviceLost reports that the device stopped responding during a
	// run. The failing call returns this; the pipeline latches broken.
	ErrDeviceLost = errors.New("literoom: device lost")

	// ErrPipelineBroken reports a call on a pipeline previously broken by
	// device loss. Reset the pipeline and re-initialize the capability.
	ErrPipelineBroken = errors.New("literoom: pipeline broken by device loss")

	// ErrInvalidInput reports a malformed input pixel buffer.
	ErrInvalidInput = errors.New("literoom: invalid input buffer")

	// ErrInvalidParams reports malformed adjustment parameters. Raised
	// before any device work.
	ErrInvalidParams = errors.New("literoom: invalid parameters")

	// ErrUpscale reports a requested output larger than the working
	// image. The pipeline never upscales.
	ErrUpscale = errors.New("literoom: output exceeds working size")

	// ErrSuperseded reports a coalesced request that was replaced by a
	// newer one before it started.
	ErrSuperseded = errors.New("literoom: request superseded")

	// ErrClosed reports use of a closed pipeline or coalescer.
	ErrClosed = errors.New("literoom: closed")
)
