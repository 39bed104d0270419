package validators

import "go.mongodb.org/mongo-driver/bson"

var dayFrameSchema = bson.M{
	"bsonType": "object",
	"required": []string{"start", "end"},
	"properties": bson.M{
		"start": bson.M{
			"bsonType": "string",
			"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
		},
		"end": bson.M{
			"bsonType": "string",
			"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
		},
	},
}

var SalonValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"address",
			"owner_id",
			"working_hours",
			"time_zone",
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

			"address": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"owner_id": bson.M{
				"bsonType": "string",
			},

			"working_hours": dayFrameSchema,

			"holidays": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
					"pattern":  "^\\d{4}-\\d{2}-\\d{2}$",
				},
			},

			"time_zone": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
