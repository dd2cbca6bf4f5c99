package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const keyPrefix = "portal:"

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DeliveryUUID identifies one notification delivery: the same event sent to
// the same address always yields the same id.
func DeliveryUUID(eventID uuid.UUID, address string) uuid.UUID {
	return UUID(keyPrefix + "delivery:" + eventID.String() + ":" + strings.ToLower(strings.TrimSpace(address)))
}

// ActorUUID maps an external subject (for example a JWT "sub" that is not a
// UUID) onto a stable actor id.
func ActorUUID(subject string) uuid.UUID {
	trimmed := strings.TrimSpace(subject)
	if trimmed == "" {
		return uuid.Nil
	}
	if parsed, err := uuid.Parse(trimmed); err == nil {
		return parsed
	}
	return UUID(keyPrefix + "actor:" + trimmed)
}
