package validators

import "go.mongodb.org/mongo-driver/bson"

var VehicleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"model", "plate", "owner", "created_at"},
		"properties": bson.M{
			"model": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},
			"plate": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 20,
				"pattern":   "^[^a-z]*$",
			},
			"owner":      bson.M{"bsonType": "objectId"},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
