package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
)

// ExpectedIndexes lists the fields every catalog query filters or sorts on.
// The crawler owns the collection, so the web app only checks for them.
var ExpectedIndexes = []string{"lcname", "upload_time", "split_keywords", "author", "license"}

// VerifyIndexes reports which expected single-field indexes are missing on
// the package collection.
//
// It never creates anything. Missing indexes are logged as warnings
// because every listing page would fall back to a collection scan.
func VerifyIndexes(ctx context.Context, logger *zerolog.Logger, db *Database) ([]string, error) {
	specs, err := db.Packages.Indexes().ListSpecifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing package indexes: %w", err)
	}

	leading := make(map[string]bool, len(specs))
	for _, spec := range specs {
		var keys bson.D
		if err := bson.Unmarshal(spec.KeysDocument, &keys); err != nil {
			return nil, fmt.Errorf("decoding index %s: %w", spec.Name, err)
		}
		if len(keys) > 0 {
			leading[keys[0].Key] = true
		}
	}

	var missing []string
	for _, field := range ExpectedIndexes {
		if !leading[field] {
			missing = append(missing, field)
		}
	}

	if len(missing) == 0 {
		logger.Info().Int("indexes", len(specs)).Msg("package indexes up to date")
	} else {
		logger.Warn().Strs("missing", missing).Msg("package collection is missing indexes")
	}

	return missing, nil
}
