package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

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

// PostUUID derives the identifier for a post from its permalink and locale.
// The same permalink re-imported in the same locale always maps to the same post.
func PostUUID(permalink, locale string) uuid.UUID {
	return UUID("go-press:post:" + strings.ToLower(strings.TrimSpace(locale)) + ":" + strings.TrimSpace(permalink))
}

func AssetUUID(path string) uuid.UUID {
	return UUID("go-press:asset:" + strings.TrimSpace(path))
}

func LocaleUUID(localeCode string) uuid.UUID {
	return UUID("go-press:locale:" + strings.ToLower(strings.TrimSpace(localeCode)))
}

func ThemeUUID(themePath string) uuid.UUID {
	return UUID("go-press:theme:" + strings.TrimSpace(themePath))
}

func TemplateUUID(themeID uuid.UUID, slug string) uuid.UUID {
	return UUID("go-press:template:" + themeID.String() + ":" + strings.ToLower(strings.TrimSpace(slug)))
}

func DestinationUUID(name string) uuid.UUID {
	return UUID("go-press:destination:" + strings.ToLower(strings.TrimSpace(name)))
}
