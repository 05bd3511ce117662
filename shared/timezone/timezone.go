// Package timezone stamps upload times in the zone named by APP_TIMEZONE.
// Unknown or empty names fall back to UTC.
package timezone

import (
	"keepsake/config"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	once        sync.Once
	appLocation = time.UTC
)

func load() {
	name := config.Get().App.Timezone
	if name == "" {
		return
	}

	loc, err := Resolve(name)
	if err != nil {
		log.Warn().Err(err).Str("timezone", name).Msg("Unknown timezone, upload times use UTC")

		return
	}

	appLocation = loc
}

// Resolve loads an IANA zone such as "Asia/Kolkata".
func Resolve(name string) (*time.Location, error) {
	return time.LoadLocation(name)
}

func Location() *time.Location {
	once.Do(load)

	return appLocation
}

func Now() time.Time {
	return time.Now().In(Location())
}

// ToAppTime converts a stored timestamp back to the application zone.
func ToAppTime(t time.Time) time.Time {
	return t.In(Location())
}
