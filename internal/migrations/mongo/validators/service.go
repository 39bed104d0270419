package validators

import "go.mongodb.org/mongo-driver/bson"

var ServiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"salon_id",
			"name",
			"category",
			"duration_min",
			"is_active",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"salon_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"category": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"duration_min": bson.M{
				"bsonType": "int",
				"minimum":  5,
				"maximum":  480,
			},

			"is_active": bson.M{
				"bsonType": "bool",
			},
		},
	},
}
