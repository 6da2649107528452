package display

import "errors"

var (
	// ErrAssetNotFound is returned by Start when the requested asset does
	// not exist in the catalog. The supervisor state is unchanged.
	ErrAssetNotFound = errors.New("display asset not found")

	// ErrLaunchFailed is returned by Start when the viewer process could
	// not be spawned. The supervisor is left idle.
	ErrLaunchFailed = errors.New("viewer launch failed")

	// ErrBrightnessRange is returned by UpdateBrightness for values
	// outside [1,100]. No state is changed.
	ErrBrightnessRange = errors.New("brightness out of range")
)
