package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests to the backup service.
const AccessTokenHeaderName = "access_token"

const (
	// DefaultCategory is applied when a create request has no category.
	DefaultCategory = "general"

	// DefaultPriority is applied when a todo create request has no priority.
	// Lower values are more urgent (1 is the highest priority).
	DefaultPriority = 3
	MinPriority     = 1
	MaxPriority     = 5

	// DateLayout is the layout of journal dates and due dates.
	DateLayout = "2006-01-02"
)
