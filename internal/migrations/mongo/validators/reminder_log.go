package validators

import "go.mongodb.org/mongo-driver/bson"

var ReminderLogValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"appointment_id",
			"type",
			"sent_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"appointment_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"type": bson.M{
				"enum": []string{"day_before", "hour_before"},
			},

			"sent_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var SlotLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"expires_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"expires_at": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
