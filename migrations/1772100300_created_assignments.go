package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_raffle_assignments",
			"name": "assignments",
			"type": "base",
			"system": false,
			"fields": [
				{
					"id": "text_asg_pk",
					"name": "id",
					"type": "text",
					"system": true,
					"required": true,
					"primaryKey": true,
					"autogeneratePattern": "[a-z0-9]{15}",
					"pattern": "^[a-z0-9]+$",
					"min": 15,
					"max": 15,
					"presentable": false,
					"hidden": false
				},
				{
					"id": "text_asg_seller_name",
					"name": "seller_name",
					"type": "text",
					"required": true,
					"presentable": true,
					"hidden": false,
					"min": 0,
					"max": 120
				},
				{
					"id": "text_asg_seller_lastname",
					"name": "seller_lastname",
					"type": "text",
					"required": false,
					"presentable": false,
					"hidden": false,
					"min": 0,
					"max": 120
				},
				{
					"id": "text_asg_seller_phone",
					"name": "seller_phone",
					"type": "text",
					"required": true,
					"presentable": false,
					"hidden": false,
					"min": 0,
					"max": 40
				},
				{
					"id": "text_asg_seller_email",
					"name": "seller_email",
					"type": "text",
					"required": false,
					"presentable": false,
					"hidden": false,
					"min": 0,
					"max": 254
				},
				{
					"id": "json_asg_numbers",
					"name": "numbers",
					"type": "json",
					"required": true,
					"presentable": false,
					"hidden": false,
					"maxSize": 0
				},
				{
					"id": "number_asg_total",
					"name": "total_amount",
					"type": "number",
					"required": false,
					"presentable": false,
					"hidden": false,
					"onlyInt": false
				},
				{
					"id": "select_asg_status",
					"name": "status",
					"type": "select",
					"required": true,
					"presentable": false,
					"hidden": false,
					"maxSelect": 1,
					"values": ["assigned", "paid", "expired", "cancelled"]
				},
				{
					"id": "date_asg_deadline",
					"name": "payment_deadline",
					"type": "date",
					"required": true,
					"presentable": false,
					"hidden": false
				},
				{
					"id": "text_asg_notes",
					"name": "notes",
					"type": "text",
					"required": false,
					"presentable": false,
					"hidden": false,
					"min": 0,
					"max": 500
				},
				{
					"id": "autodate_asg_created",
					"name": "created",
					"type": "autodate",
					"presentable": false,
					"hidden": false,
					"onCreate": true,
					"onUpdate": false
				},
				{
					"id": "autodate_asg_updated",
					"name": "updated",
					"type": "autodate",
					"presentable": false,
					"hidden": false,
					"onCreate": true,
					"onUpdate": true
				}
			],
			"indexes": [
				"CREATE INDEX idx_assignments_status ON assignments (status)",
				"CREATE INDEX idx_assignments_deadline ON assignments (payment_deadline)"
			],
			"listRule": null,
			"viewRule": null,
			"createRule": null,
			"updateRule": null,
			"deleteRule": null
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), &collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("pbc_raffle_assignments")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
