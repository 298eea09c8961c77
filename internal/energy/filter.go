package energy

import (
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const dateLayout = "2006-01-02"

// buildListFilter translates a ListFilter into a mongo query document.
//
// Country, type and source match as case-insensitive substrings. The
// date filter selects the 24-hour window starting at midnight UTC of
// the given day. A malformed date yields a non-nil error alongside a
// still-usable filter with the date clause omitted; callers log the
// error and carry on rather than rejecting the request.
//
// Note the deliberate divergence from the global analytics adapter,
// which matches country by case-insensitive equality: record listing
// is a search box, the analytics query is a dropdown.
func buildListFilter(f ListFilter) (bson.M, error) {
	query := bson.M{}

	if f.Country != "" {
		query["country"] = substringMatch(f.Country)
	}
	if f.Type != "" {
		query["type"] = substringMatch(f.Type)
	}
	if f.Source != "" {
		query["source"] = substringMatch(f.Source)
	}

	var dateErr error
	if f.Date != "" {
		day, err := time.ParseInLocation(dateLayout, f.Date, time.UTC)
		if err != nil {
			dateErr = fmt.Errorf("ignoring malformed date filter %q: %w", f.Date, err)
		} else {
			query["date"] = bson.M{
				"$gte": day,
				"$lt":  day.Add(24 * time.Hour),
			}
		}
	}

	return query, dateErr
}

// substringMatch builds a case-insensitive substring regex. User input
// is quoted so it can never act as a pattern.
func substringMatch(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
