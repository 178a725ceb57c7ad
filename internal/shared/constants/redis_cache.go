package constants

// Redis key prefixes. Seat-map keys are invalidated by every claim mutation so
// reads never serve a released seat for longer than the TTL.
const (
	CacheKeyPrefix         = "zinema:cache:"
	OccupiedSeatsKeyPrefix = CacheKeyPrefix + "occupied_seats:"
	ShowKeyPrefix          = CacheKeyPrefix + "show:"
)

// OccupiedSeatsKey returns the cache key for a show's occupied-seat labels
func OccupiedSeatsKey(showID string) string {
	return OccupiedSeatsKeyPrefix + showID
}

// ShowKey returns the cache key for a show document
func ShowKey(showID string) string {
	return ShowKeyPrefix + showID
}
