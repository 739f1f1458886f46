package validators

import "go.mongodb.org/mongo-driver/bson"

var RatingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"user_id", "parking_lot_id", "value", "created_at"},
		"properties": bson.M{
			"user_id":        bson.M{"bsonType": "objectId"},
			"parking_lot_id": bson.M{"bsonType": "objectId"},
			"value": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  5,
			},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
