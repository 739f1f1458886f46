package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"parking_lot_id",
			"client_id",
			"entry_time",
			"exit_time",
			"spaces",
			"is_cancelled",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"parking_lot_id": bson.M{
				"bsonType": "objectId",
			},

			"client_id": bson.M{
				"bsonType": "objectId",
			},

			"entry_time": bson.M{
				"bsonType": "date",
			},

			"exit_time": bson.M{
				"bsonType": "date",
			},

			"spaces": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"is_cancelled": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
