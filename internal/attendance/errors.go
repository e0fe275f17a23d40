package attendance

import "errors"

// Business rejections. These are expected outcomes communicated to the
// caller as tagged errors, never as faults; handlers map them to 4xx
// responses and CLI commands print them as plain messages.
var (
	// ErrEmptyName rejects enrollment with a blank identity name.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrDuplicateFace rejects enrollment when a similar face is already
	// enrolled under a different name.
	ErrDuplicateFace = errors.New("a user with a similar face already exists")

	// ErrNotInGeofence rejects check-in/out from outside all allowed zones.
	ErrNotInGeofence = errors.New("not within the allowed area")

	// ErrFaceNotRecognized means no enrolled identity cleared the match
	// threshold. Distinct from faceid.ErrNoFace (no face in the image).
	ErrFaceNotRecognized = errors.New("face not recognized")

	// ErrAlreadyCheckedIn rejects a second checkin on the same day.
	ErrAlreadyCheckedIn = errors.New("already checked in today")

	// ErrAlreadyCheckedOut rejects a second checkout on the same day.
	ErrAlreadyCheckedOut = errors.New("already checked out today")
)
