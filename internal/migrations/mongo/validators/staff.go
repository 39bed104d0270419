package validators

import "go.mongodb.org/mongo-driver/bson"

var StaffProfileValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"salon_id",
			"user_id",
			"work_hours",
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

			"user_id": bson.M{
				"bsonType": "string",
			},

			"service_ids": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType":  "string",
					"minLength": 24,
					"maxLength": 24,
				},
			},

			"work_hours": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"day_of_week", "start", "end"},
					"properties": bson.M{
						"day_of_week": bson.M{
							"bsonType": "int",
							"minimum":  0,
							"maximum":  6,
						},
						"start": bson.M{
							"bsonType": "string",
							"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
						},
						"end": bson.M{
							"bsonType": "string",
							"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
						},
					},
				},
			},

			"breaks": bson.M{
				"bsonType": "array",
				"items":    dayFrameSchema,
			},

			"calendar_linked": bson.M{
				"bsonType": "bool",
			},
		},
	},
}
