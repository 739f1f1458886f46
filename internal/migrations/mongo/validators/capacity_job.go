package validators

import (
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

var CapacityJobValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"pair_id",
			"booking_id",
			"parking_lot_id",
			"spaces",
			"direction",
			"fires_at",
			"status",
			"attempts",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"parking_lot_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"spaces": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"direction": bson.M{
				"enum": []string{model.DirectionDecrement, model.DirectionIncrement},
			},

			"status": bson.M{
				"enum": []string{
					model.JobStatusScheduled,
					model.JobStatusRunning,
					model.JobStatusCompleted,
					model.JobStatusCancelled,
					model.JobStatusFailed,
				},
			},

			"fires_at": bson.M{
				"bsonType": "date",
			},

			"attempts": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
		},
	},
}
