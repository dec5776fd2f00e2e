package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Rule/action layer.
	ErrBadRequest        = "E_BAD_REQUEST"
	ErrInvalidTransition = "E_INVALID_TRANSITION"
	ErrUnknownRef        = "E_UNKNOWN_REF"
	ErrStale             = "E_STALE"
	ErrInternal          = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:   {},
	ErrBadRequest:        {},
	ErrInvalidTransition: {},
	ErrUnknownRef:        {},
	ErrStale:             {},
	ErrInternal:          {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
