package validators

import "go.mongodb.org/mongo-driver/bson"

var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"salon_id",
			"staff_id",
			"client_id",
			"service_id",
			"start_time",
			"end_time",
			"status",
			"source",
			"created_by",
			"created_at",
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

			"staff_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"client_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"service_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"enum": []string{"pending", "confirmed", "done", "no_show", "canceled"},
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"source": bson.M{
				"enum": []string{"app", "web", "walk_in"},
			},

			"created_by": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"cancel_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"canceled_by": bson.M{
				"bsonType": "string",
			},

			"calendar_event_id": bson.M{
				"bsonType": "string",
			},
		},
	},
}
