package model

import "time"

// Direction is a travel-distance / travel-duration pair between two
// free-form addresses, as returned by the routing provider.
type Direction struct {
	DistanceInMeter   int `json:"distance_in_meter" bson:"distance_in_meter"`
	DurationInSeconds int `json:"duration_in_seconds" bson:"duration_in_seconds"`
}

// DirectionEntry is the cached form stored in the `directions` collection.
// The key is "{origin}|{destination}"; entries expire via the TTL index on
// created_at and are additionally checked against the TTL on read.
type DirectionEntry struct {
	Key               string    `bson:"key"`
	DistanceInMeter   int       `bson:"distance_in_meter"`
	DurationInSeconds int       `bson:"duration_in_seconds"`
	CreatedAt         time.Time `bson:"created_at"`
}

// DirectionKey builds the cache key for an address pair.
func DirectionKey(origin, destination string) string {
	return origin + "|" + destination
}
