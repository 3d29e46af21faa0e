package interfaces

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
)

// ActivityRecord aliases the go-users record type so press packages share a
// single definition with the upstream sink contract.
type ActivityRecord = usertypes.ActivityRecord

// ActivitySink stores activity records. go-users sinks satisfy this interface
// directly.
type ActivitySink interface {
	Log(ctx context.Context, record ActivityRecord) error
}
