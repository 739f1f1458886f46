package validators

import "go.mongodb.org/mongo-driver/bson"

var ParkingLotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"spaces",
			"available_spaces",
			"location",
			"owner",
			"price",
			"city",
			"address",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"spaces": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"available_spaces": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"location": bson.M{
				"bsonType": "object",
				"required": []string{"type", "coordinates"},
				"properties": bson.M{
					"type": bson.M{
						"enum": []string{"Point"},
					},
					"coordinates": bson.M{
						"bsonType": "array",
						"minItems": 2,
						"maxItems": 2,
						"items": bson.M{
							"bsonType": []string{"double", "int", "long"},
						},
					},
				},
			},

			"owner": bson.M{
				"bsonType": "objectId",
			},

			"price": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  1,
			},

			"images": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"rating_value": bson.M{
				"bsonType": []string{"double", "int", "long"},
			},

			"rating_count": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"city": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"address": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},
		},
	},
}
