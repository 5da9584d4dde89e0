package app

import (
	"docmanager/internal/workspace"
)

// Focus determines which component receives typed input on the
// documents screen, where the list and the docked chat panel coexist.
type Focus int

const (
	FocusList Focus = iota
	FocusChatInput
)

// Messages for tea updates.
type (
	// eventMsg is one workspace state transition, delivered from the
	// controller's event channel.
	eventMsg workspace.Event

	// fileReadMsg carries the blobs read from disk after the user picked
	// a file to upload.
	fileReadMsg struct {
		blobs []workspace.FileBlob
		err   error
	}
)
