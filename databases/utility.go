package databases

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxListLimit caps every moderator listing
const MaxListLimit = 100

// SortedOpts returns find options with the given sort and a limit clamped to
// (0, MaxListLimit]
func SortedOpts(sort bson.D, limit int64) *options.FindOptions {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	return options.Find().SetSort(sort).SetLimit(limit)
}
